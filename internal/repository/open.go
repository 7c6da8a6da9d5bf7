package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmdiary/internal/config"
	"github.com/mamadbah2/farmdiary/internal/repository/memory"
	"github.com/mamadbah2/farmdiary/internal/repository/mongodb"
	"github.com/mamadbah2/farmdiary/internal/repository/postgres"
	"github.com/mamadbah2/farmdiary/internal/repository/sqlite"
	"github.com/mamadbah2/farmdiary/internal/repository/storage"
)

// Open returns the blob store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage, data is lost on exit")
		return memory.NewStore(), nil
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case config.DriverMongoDB:
		store, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, fmt.Errorf("open mongodb store: %w", err)
		}
		return store, nil
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
