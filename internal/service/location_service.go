package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventsapi/internal/cache"
	apperrors "eventsapi/internal/errors"
	"eventsapi/internal/model"
	"eventsapi/internal/repository"
)

const (
	locationListKey   = "locations:all"
	locationKeyPrefix = "locations:"
)

// LocationService manages event venues.
type LocationService interface {
	List(ctx context.Context) ([]model.Location, error)
	Get(ctx context.Context, id string) (*model.Location, error)
	Create(ctx context.Context, location *model.Location) error
	Update(ctx context.Context, id string, patch model.LocationPatch) (*model.Location, error)
	Delete(ctx context.Context, id string) error
}

type locationService struct {
	store    repository.Store
	cache    *cache.Client
	cacheTTL time.Duration
	onDelete string
}

// NewLocationService creates a location service.
func NewLocationService(store repository.Store, c *cache.Client, cacheTTL time.Duration, onDelete string) LocationService {
	return &locationService{
		store:    store,
		cache:    c,
		cacheTTL: cacheTTL,
		onDelete: onDelete,
	}
}

func (s *locationService) List(ctx context.Context) ([]model.Location, error) {
	var locations []model.Location
	if s.cache.GetJSON(ctx, locationListKey, &locations) {
		return locations, nil
	}

	locations, err := s.store.Locations().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	_ = s.cache.SetJSON(ctx, locationListKey, locations, s.cacheTTL)
	return locations, nil
}

func (s *locationService) Get(ctx context.Context, id string) (*model.Location, error) {
	var location model.Location
	if s.cache.GetJSON(ctx, locationKeyPrefix+id, &location) {
		return &location, nil
	}

	found, err := s.store.Locations().FindByID(ctx, id)
	if err != nil {
		return nil, locationError(err)
	}
	_ = s.cache.SetJSON(ctx, locationKeyPrefix+id, found, s.cacheTTL)
	return found, nil
}

func (s *locationService) Create(ctx context.Context, location *model.Location) error {
	if err := s.store.Locations().Create(ctx, location); err != nil {
		return locationError(err)
	}
	s.invalidate(ctx, location.ID)
	return nil
}

func (s *locationService) Update(ctx context.Context, id string, patch model.LocationPatch) (*model.Location, error) {
	location, err := s.store.Locations().FindByID(ctx, id)
	if err != nil {
		return nil, locationError(err)
	}

	patch.Apply(location)
	if err := s.store.Locations().Update(ctx, location); err != nil {
		return nil, locationError(err)
	}
	s.invalidate(ctx, id)
	return location, nil
}

func (s *locationService) Delete(ctx context.Context, id string) error {
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Locations().FindByID(ctx, id); err != nil {
			return locationError(err)
		}

		policy := referencePolicy{
			mode:  s.onDelete,
			inUse: apperrors.ErrLocationInUse,
			count: func(ctx context.Context) (int64, error) {
				return tx.Events().CountByLocation(ctx, id)
			},
			cascade: func(ctx context.Context) (int64, error) {
				return tx.Events().DeleteByLocation(ctx, id)
			},
		}
		if err := policy.apply(ctx); err != nil {
			return err
		}

		return locationError(tx.Locations().Delete(ctx, id))
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *locationService) invalidate(ctx context.Context, id string) {
	_ = s.cache.Delete(ctx, locationListKey, locationKeyPrefix+id)
}

func locationError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.ErrLocationNotFound
	default:
		return fmt.Errorf("location store: %w", err)
	}
}
