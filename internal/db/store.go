package db

import (
	"context"
	"fmt"

	"eventsapi/internal/config"
	"eventsapi/internal/logging"
	"eventsapi/internal/repository"
	"eventsapi/internal/repository/gormstore"
	"eventsapi/internal/repository/memstore"
	"eventsapi/internal/repository/mongostore"
)

// OpenStore connects the backend selected by cfg.Database.Driver.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		client, err := NewMongo(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		logging.Info().Str("database", cfg.Mongo.Database).Bool("transactions", cfg.Mongo.Transactions).
			Msg("connected to mongodb")
		return mongostore.New(client, client.Database(cfg.Mongo.Database), cfg.Mongo.Transactions), nil

	case config.DriverMySQL:
		gormDB, err := NewMySQL(cfg.MySQL.DSN)
		if err != nil {
			return nil, err
		}
		logging.Info().Msg("connected to mysql")
		return gormstore.New(gormDB), nil

	case config.DriverMemory:
		logging.Warn().Msg("using in-memory store; data is lost on restart")
		return memstore.New(), nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
