package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"eventsapi/internal/model"
)

type locationRepository struct {
	collection *mongo.Collection
}

func (r *locationRepository) Create(ctx context.Context, location *model.Location) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if location.ID == "" {
		location.ID = newID()
	}
	now := time.Now().UTC()
	location.CreatedAt, location.UpdatedAt = now, now

	_, err := r.collection.InsertOne(ctx, location)
	return translate(err)
}

func (r *locationRepository) FindByID(ctx context.Context, id string) (*model.Location, error) {
	var location model.Location
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &location); err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *locationRepository) List(ctx context.Context) ([]model.Location, error) {
	locations := []model.Location{}
	if err := findSortedByName(ctx, r.collection, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *locationRepository) Update(ctx context.Context, location *model.Location) error {
	location.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, r.collection, location.ID, location)
}

func (r *locationRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id)
}
