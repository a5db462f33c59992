package repository

import (
	"strings"
	"time"

	"eventsapi/internal/model"
)

// EventFilter narrows an event listing. Zero-valued fields are ignored and
// the remaining criteria are combined with AND.
type EventFilter struct {
	// Search is matched case-insensitively as a substring of name or description.
	Search     string
	CategoryID string
	LocationID string
	MinPrice   *float64
	MaxPrice   *float64
	StartDate  *time.Time
	// EndDate is inclusive; callers extend it to the end of the day.
	EndDate *time.Time
}

// Matches reports whether e satisfies every criterion of f.
func (f EventFilter) Matches(e *model.Event) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(e.Name), needle) &&
			!strings.Contains(strings.ToLower(e.Description), needle) {
			return false
		}
	}
	if f.CategoryID != "" && e.CategoryID != f.CategoryID {
		return false
	}
	if f.LocationID != "" && e.LocationID != f.LocationID {
		return false
	}
	if f.MinPrice != nil && e.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && e.Price > *f.MaxPrice {
		return false
	}
	if f.StartDate != nil && e.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && e.Date.After(*f.EndDate) {
		return false
	}
	return true
}
