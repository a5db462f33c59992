package service

import (
	"context"
	"fmt"

	"eventsapi/internal/config"
)

// referencePolicy decides what happens to events that point at a category
// or location being deleted.
type referencePolicy struct {
	mode    string
	inUse   error
	count   func(ctx context.Context) (int64, error)
	cascade func(ctx context.Context) (int64, error)
}

func (p referencePolicy) apply(ctx context.Context) error {
	switch p.mode {
	case config.OnDeleteRestrict:
		n, err := p.count(ctx)
		if err != nil {
			return fmt.Errorf("count referencing events: %w", err)
		}
		if n > 0 {
			return p.inUse
		}
	case config.OnDeleteCascade:
		if _, err := p.cascade(ctx); err != nil {
			return fmt.Errorf("delete referencing events: %w", err)
		}
	}
	return nil
}
