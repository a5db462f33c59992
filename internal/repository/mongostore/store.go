// Package mongostore implements the repositories on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventsapi/internal/repository"
)

const (
	usersCollection      = "users"
	categoriesCollection = "categories"
	locationsCollection  = "locations"
	eventsCollection     = "events"

	opTimeout = 5 * time.Second
)

// Store is a MongoDB-backed repository.Store.
type Store struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
}

var _ repository.Store = (*Store)(nil)

// New builds a store on database db. When transactions is true, WithTransaction
// runs inside a multi-document transaction, which requires a replica set.
func New(client *mongo.Client, db *mongo.Database, transactions bool) *Store {
	return &Store{client: client, db: db, transactions: transactions}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepository{collection: s.db.Collection(usersCollection)}
}

func (s *Store) Categories() repository.CategoryRepository {
	return &categoryRepository{collection: s.db.Collection(categoriesCollection)}
}

func (s *Store) Locations() repository.LocationRepository {
	return &locationRepository{collection: s.db.Collection(locationsCollection)}
}

func (s *Store) Events() repository.EventRepository {
	return &eventRepository{collection: s.db.Collection(eventsCollection)}
}

// WithTransaction runs fn in a session transaction when enabled. Otherwise fn
// runs directly and a reference deleted between check and write is possible.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if !s.transactions || s.client == nil {
		return fn(ctx, s)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s)
	})
	return err
}

// Migrate creates the indexes the repositories rely on.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		categoriesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		locationsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		eventsCollection: {
			{Keys: bson.D{{Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "location", Value: 1}}},
			{Keys: bson.D{{Key: "createdBy", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	default:
		return err
	}
}

func findOne(ctx context.Context, collection *mongo.Collection, filter interface{}, dest interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return translate(collection.FindOne(ctx, filter).Decode(dest))
}

func replaceByID(ctx context.Context, collection *mongo.Collection, id string, doc interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := collection.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, collection *mongo.Collection, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func findSortedByName(ctx context.Context, collection *mongo.Collection, dest interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return err
	}
	return cursor.All(ctx, dest)
}
