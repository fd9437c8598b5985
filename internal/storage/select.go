package storage

import (
	"context"

	"careercast/internal/adapters/config"
	mongoadapter "careercast/internal/adapters/mongodb"
	sqliteadapter "careercast/internal/adapters/sqlite"
	mongorepo "careercast/internal/repository/mongodb"
	sqliterepo "careercast/internal/repository/sqlite"
	"careercast/pkg/errors"
	"careercast/pkg/logger"
)

// Compile-time checks that both engines satisfy the gateway contract
var (
	_ Gateway = (*mongorepo.Gateway)(nil)
	_ Gateway = (*sqliterepo.Gateway)(nil)
)

// Select chooses the storage engine for the lifetime of the process: the
// document store when configured and reachable, the single-file relational
// fallback otherwise. The choice is made exactly once; there is no
// request-time switching.
func Select(ctx context.Context, cfg *config.Config) (Gateway, error) {
	log := logger.Get().With("component", "storage")

	if cfg.Mongo.URI != "" {
		client, err := mongoadapter.NewClient(ctx, cfg.Mongo)
		if err != nil {
			log.Warnf("MongoDB unreachable, falling back to sqlite: %v", err)
		} else {
			gateway, err := mongorepo.NewGateway(ctx, client)
			if err != nil {
				log.Warnf("MongoDB gateway setup failed, falling back to sqlite: %v", err)
				_ = client.Close(ctx)
			} else {
				log.Infof("Storage engine: %s (database %s)", gateway.Engine(), cfg.Mongo.Database)
				return NewInstrumented(gateway), nil
			}
		}
	} else {
		log.Info("MONGO_URI not set, using sqlite fallback")
	}

	client, err := sqliteadapter.NewClient(cfg.SQLite)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite fallback")
	}

	gateway, err := sqliterepo.NewGateway(ctx, client.DB())
	if err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "failed to initialize sqlite gateway")
	}

	log.Infof("Storage engine: %s (%s)", gateway.Engine(), cfg.SQLite.Path)
	return NewInstrumented(gateway), nil
}
