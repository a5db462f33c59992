// Package repository defines the persistence contracts shared by the
// MongoDB, MySQL and in-memory stores.
package repository

import (
	"context"
	"errors"

	"eventsapi/internal/model"
)

var (
	// ErrNotFound is returned when no record matches the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateAvatar(ctx context.Context, id string, avatarURL string) error
}

// CategoryRepository defines category persistence operations.
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	// List returns all categories sorted by name ascending.
	List(ctx context.Context) ([]model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id string) error
}

// LocationRepository defines location persistence operations.
type LocationRepository interface {
	Create(ctx context.Context, location *model.Location) error
	FindByID(ctx context.Context, id string) (*model.Location, error)
	// List returns all locations sorted by name ascending.
	List(ctx context.Context) ([]model.Location, error)
	Update(ctx context.Context, location *model.Location) error
	Delete(ctx context.Context, id string) error
}

// EventRepository defines event persistence operations.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	FindByID(ctx context.Context, id string) (*model.Event, error)
	// FindDetails returns the event with category, location and creator resolved.
	FindDetails(ctx context.Context, id string) (*model.EventDetails, error)
	// List returns expanded events matching filter, sorted by date ascending.
	List(ctx context.Context, filter EventFilter) ([]model.EventDetails, error)
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id string) error
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
	CountByLocation(ctx context.Context, locationID string) (int64, error)
	DeleteByCategory(ctx context.Context, categoryID string) (int64, error)
	DeleteByLocation(ctx context.Context, locationID string) (int64, error)
}

// Store groups the repositories of one backend.
type Store interface {
	Users() UserRepository
	Categories() CategoryRepository
	Locations() LocationRepository
	Events() EventRepository
	// WithTransaction runs fn with a Store whose writes commit or roll back together.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	// Migrate creates tables, collections and indexes.
	Migrate(ctx context.Context) error
	Close(ctx context.Context) error
}
