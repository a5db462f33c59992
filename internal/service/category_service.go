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
	categoryListKey   = "categories:all"
	categoryKeyPrefix = "categories:"
)

// CategoryService manages event categories.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id string) (*model.Category, error)
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error)
	Delete(ctx context.Context, id string) error
}

type categoryService struct {
	store    repository.Store
	cache    *cache.Client
	cacheTTL time.Duration
	onDelete string
}

// NewCategoryService creates a category service. Reads are cached for
// cacheTTL when c is enabled; onDelete is one of the config.OnDelete* policies.
func NewCategoryService(store repository.Store, c *cache.Client, cacheTTL time.Duration, onDelete string) CategoryService {
	return &categoryService{
		store:    store,
		cache:    c,
		cacheTTL: cacheTTL,
		onDelete: onDelete,
	}
}

// List returns all categories sorted by name.
func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if s.cache.GetJSON(ctx, categoryListKey, &categories) {
		return categories, nil
	}

	categories, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	_ = s.cache.SetJSON(ctx, categoryListKey, categories, s.cacheTTL)
	return categories, nil
}

// Get returns one category.
func (s *categoryService) Get(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	if s.cache.GetJSON(ctx, categoryKeyPrefix+id, &category) {
		return &category, nil
	}

	found, err := s.store.Categories().FindByID(ctx, id)
	if err != nil {
		return nil, categoryError(err)
	}
	_ = s.cache.SetJSON(ctx, categoryKeyPrefix+id, found, s.cacheTTL)
	return found, nil
}

// Create stores a new category, filling in the default color and icon.
func (s *categoryService) Create(ctx context.Context, category *model.Category) error {
	if category.Color == "" {
		category.Color = model.DefaultCategoryColor
	}
	if category.Icon == "" {
		category.Icon = model.DefaultCategoryIcon
	}

	if err := s.store.Categories().Create(ctx, category); err != nil {
		return categoryError(err)
	}
	s.invalidate(ctx, category.ID)
	return nil
}

// Update applies the set fields of patch.
func (s *categoryService) Update(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	category, err := s.store.Categories().FindByID(ctx, id)
	if err != nil {
		return nil, categoryError(err)
	}

	patch.Apply(category)
	if err := s.store.Categories().Update(ctx, category); err != nil {
		return nil, categoryError(err)
	}
	s.invalidate(ctx, id)
	return category, nil
}

// Delete removes a category and applies the configured policy to events
// that reference it.
func (s *categoryService) Delete(ctx context.Context, id string) error {
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Categories().FindByID(ctx, id); err != nil {
			return categoryError(err)
		}

		policy := referencePolicy{
			mode:  s.onDelete,
			inUse: apperrors.ErrCategoryInUse,
			count: func(ctx context.Context) (int64, error) {
				return tx.Events().CountByCategory(ctx, id)
			},
			cascade: func(ctx context.Context) (int64, error) {
				return tx.Events().DeleteByCategory(ctx, id)
			},
		}
		if err := policy.apply(ctx); err != nil {
			return err
		}

		return categoryError(tx.Categories().Delete(ctx, id))
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *categoryService) invalidate(ctx context.Context, id string) {
	_ = s.cache.Delete(ctx, categoryListKey, categoryKeyPrefix+id)
}

func categoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.ErrCategoryNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.ErrCategoryNameTaken
	default:
		return fmt.Errorf("category store: %w", err)
	}
}
