package app

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/scm/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/scm/internal/health"
	"github.com/vladislavdragonenkov/scm/internal/storage/memory"
	"github.com/vladislavdragonenkov/scm/internal/storage/postgres"
)

// runtimeDependencies: хранилище, выбранное конфигурацией.
type runtimeDependencies struct {
	repos          domain.Repositories
	storageChecker healthcheck.Checker
	closeFn        func() error
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (runtimeDependencies, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	if driver == "" {
		driver = StorageDriverMemory
	}

	switch driver {
	case StorageDriverMemory:
		logger.Info("используем in-memory хранилище")
		return runtimeDependencies{
			repos:          memory.NewStore().Repositories(),
			storageChecker: healthcheck.CheckFunc(func(context.Context) error { return nil }),
		}, nil

	case StorageDriverPostgres:
		dsn := strings.TrimSpace(cfg.PostgresDSN)
		if dsn == "" {
			return runtimeDependencies{}, fmt.Errorf("postgres storage requires SCM_POSTGRES_DSN")
		}

		store, err := postgres.Open(ctx, dsn)
		if err != nil {
			return runtimeDependencies{}, err
		}
		if cfg.PostgresAutoMigrate {
			migrateCtx, cancel := postgres.MigrationContext(ctx)
			err = store.EnsureSchema(migrateCtx)
			cancel()
			if err != nil {
				_ = store.Close()
				return runtimeDependencies{}, fmt.Errorf("apply postgres migrations: %w", err)
			}
		}

		logger.Info("используем PostgreSQL хранилище")
		return runtimeDependencies{
			repos:          store.Repositories(),
			storageChecker: healthcheck.Ping(store),
			closeFn:        store.Close,
		}, nil

	default:
		return runtimeDependencies{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
