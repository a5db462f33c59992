package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"eventsapi/internal/model"
)

type categoryRepository struct {
	collection *mongo.Collection
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if category.ID == "" {
		category.ID = newID()
	}
	now := time.Now().UTC()
	category.CreatedAt, category.UpdatedAt = now, now

	_, err := r.collection.InsertOne(ctx, category)
	return translate(err)
}

func (r *categoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	if err := findSortedByName(ctx, r.collection, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *model.Category) error {
	category.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, r.collection, category.ID, category)
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id)
}
