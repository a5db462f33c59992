package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "eventsapi/internal/errors"
	"eventsapi/internal/model"
	"eventsapi/internal/repository"
)

// EventService manages events and their ownership.
type EventService interface {
	List(ctx context.Context, filter repository.EventFilter) ([]model.EventDetails, error)
	Get(ctx context.Context, id string) (*model.EventDetails, error)
	Create(ctx context.Context, event *model.Event, userID string) (*model.EventDetails, error)
	Update(ctx context.Context, id string, patch model.EventPatch, userID string) (*model.EventDetails, error)
	Delete(ctx context.Context, id string, userID string) error
}

type eventService struct {
	store repository.Store
}

// NewEventService creates an event service.
func NewEventService(store repository.Store) EventService {
	return &eventService{store: store}
}

// List returns the matching events, earliest first. An end date is
// inclusive of its whole day.
func (s *eventService) List(ctx context.Context, filter repository.EventFilter) ([]model.EventDetails, error) {
	if filter.EndDate != nil {
		end := model.EndOfDay(*filter.EndDate)
		filter.EndDate = &end
	}

	events, err := s.store.Events().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *eventService) Get(ctx context.Context, id string) (*model.EventDetails, error) {
	details, err := s.store.Events().FindDetails(ctx, id)
	if err != nil {
		return nil, eventError(err)
	}
	return details, nil
}

// Create stores an event owned by userID after checking that its category
// and location exist.
func (s *eventService) Create(ctx context.Context, event *model.Event, userID string) (*model.EventDetails, error) {
	event.CreatedBy = userID

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := checkReferences(ctx, tx, &event.CategoryID, &event.LocationID); err != nil {
			return err
		}
		if err := tx.Events().Create(ctx, event); err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, event.ID)
}

// Update applies patch to an event owned by userID. References named in
// the patch must exist.
func (s *eventService) Update(ctx context.Context, id string, patch model.EventPatch, userID string) (*model.EventDetails, error) {
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		event, err := ownedEvent(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		if err := checkReferences(ctx, tx, patch.CategoryID, patch.LocationID); err != nil {
			return err
		}

		patch.Apply(event)
		if err := tx.Events().Update(ctx, event); err != nil {
			return eventError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Delete removes an event owned by userID.
func (s *eventService) Delete(ctx context.Context, id string, userID string) error {
	return s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := ownedEvent(ctx, tx, id, userID); err != nil {
			return err
		}
		return eventError(tx.Events().Delete(ctx, id))
	})
}

func ownedEvent(ctx context.Context, tx repository.Store, id, userID string) (*model.Event, error) {
	event, err := tx.Events().FindByID(ctx, id)
	if err != nil {
		return nil, eventError(err)
	}
	if event.CreatedBy != userID {
		return nil, apperrors.ErrNotEventOwner
	}
	return event, nil
}

// checkReferences verifies the non-nil category and location ids.
func checkReferences(ctx context.Context, tx repository.Store, categoryID, locationID *string) error {
	if categoryID != nil {
		if _, err := tx.Categories().FindByID(ctx, *categoryID); err != nil {
			return categoryError(err)
		}
	}
	if locationID != nil {
		if _, err := tx.Locations().FindByID(ctx, *locationID); err != nil {
			return locationError(err)
		}
	}
	return nil
}

func eventError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.ErrEventNotFound
	default:
		return fmt.Errorf("event store: %w", err)
	}
}
