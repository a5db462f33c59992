package mongostore

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"eventsapi/internal/model"
	"eventsapi/internal/repository"
)

// eventDoc is an event as produced by the expansion pipeline. $lookup yields
// arrays, which are empty when the reference no longer resolves.
type eventDoc struct {
	model.Event `bson:",inline"`
	CategoryDoc []model.Category `bson:"categoryDoc"`
	LocationDoc []model.Location `bson:"locationDoc"`
	CreatorDoc  []model.User     `bson:"creatorDoc"`
}

func (d *eventDoc) details() model.EventDetails {
	var (
		category *model.Category
		location *model.Location
		creator  *model.User
	)
	if len(d.CategoryDoc) > 0 {
		category = &d.CategoryDoc[0]
	}
	if len(d.LocationDoc) > 0 {
		location = &d.LocationDoc[0]
	}
	if len(d.CreatorDoc) > 0 {
		creator = &d.CreatorDoc[0]
	}
	return *model.NewEventDetails(&d.Event, category, location, creator)
}

type eventRepository struct {
	collection *mongo.Collection
}

func (r *eventRepository) Create(ctx context.Context, event *model.Event) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if event.ID == "" {
		event.ID = newID()
	}
	now := time.Now().UTC()
	event.CreatedAt, event.UpdatedAt = now, now

	_, err := r.collection.InsertOne(ctx, event)
	return translate(err)
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindDetails(ctx context.Context, id string) (*model.EventDetails, error) {
	events, err := r.aggregate(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, repository.ErrNotFound
	}
	return &events[0], nil
}

func (r *eventRepository) List(ctx context.Context, filter repository.EventFilter) ([]model.EventDetails, error) {
	return r.aggregate(ctx, buildFilter(filter))
}

func (r *eventRepository) aggregate(ctx context.Context, match bson.M) ([]model.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, expansionPipeline(match))
	if err != nil {
		return nil, err
	}

	var docs []eventDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	events := make([]model.EventDetails, 0, len(docs))
	for i := range docs {
		events = append(events, docs[i].details())
	}
	return events, nil
}

func lookup(from, localField, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: as},
	}}}
}

func expansionPipeline(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: 1}}}},
		lookup(categoriesCollection, "category", "categoryDoc"),
		lookup(locationsCollection, "location", "locationDoc"),
		lookup(usersCollection, "createdBy", "creatorDoc"),
		{{Key: "$project", Value: bson.D{{Key: "creatorDoc.password", Value: 0}}}},
	}
}

// buildFilter translates f into a $match document.
func buildFilter(f repository.EventFilter) bson.M {
	filter := bson.M{}

	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	if f.CategoryID != "" {
		filter["category"] = f.CategoryID
	}
	if f.LocationID != "" {
		filter["location"] = f.LocationID
	}

	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	date := bson.M{}
	if f.StartDate != nil {
		date["$gte"] = *f.StartDate
	}
	if f.EndDate != nil {
		date["$lte"] = *f.EndDate
	}
	if len(date) > 0 {
		filter["date"] = date
	}

	return filter
}

func (r *eventRepository) Update(ctx context.Context, event *model.Event) error {
	event.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, r.collection, event.ID, event)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id)
}

func (r *eventRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	return r.count(ctx, bson.M{"category": categoryID})
}

func (r *eventRepository) CountByLocation(ctx context.Context, locationID string) (int64, error) {
	return r.count(ctx, bson.M{"location": locationID})
}

func (r *eventRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return r.collection.CountDocuments(ctx, filter)
}

func (r *eventRepository) DeleteByCategory(ctx context.Context, categoryID string) (int64, error) {
	return r.deleteMany(ctx, bson.M{"category": categoryID})
}

func (r *eventRepository) DeleteByLocation(ctx context.Context, locationID string) (int64, error) {
	return r.deleteMany(ctx, bson.M{"location": locationID})
}

func (r *eventRepository) deleteMany(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
