package gormstore

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"eventsapi/internal/model"
)

type locationRepository struct {
	db *gorm.DB
}

func (r *locationRepository) Create(ctx context.Context, location *model.Location) error {
	if location.ID == "" {
		location.ID = uuid.NewString()
	}
	return translate(r.db.WithContext(ctx).Create(location).Error)
}

func (r *locationRepository) FindByID(ctx context.Context, id string) (*model.Location, error) {
	var location model.Location
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&location).Error; err != nil {
		return nil, translate(err)
	}
	return &location, nil
}

func (r *locationRepository) List(ctx context.Context) ([]model.Location, error) {
	var locations []model.Location
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *locationRepository) Update(ctx context.Context, location *model.Location) error {
	res := r.db.WithContext(ctx).Model(location).Select("*").Omit("id", "created_at").Updates(location)
	return affected(res)
}

func (r *locationRepository) Delete(ctx context.Context, id string) error {
	return affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Location{}))
}
