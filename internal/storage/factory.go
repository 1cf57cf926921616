package storage

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Config controls how the storage backend is opened.
type Config struct {
	Driver string
	DSN    string
	// AutoMigrate runs gorm's schema sync on open. Deployments that manage
	// the schema with the migrate command leave it off.
	AutoMigrate bool
}

// Open constructs a Storage based on the given configuration.
func Open(ctx context.Context, cfg Config) (Storage, error) {
	drv := cfg.Driver
	if drv == "" {
		drv = "memory"
	}
	switch drv {
	case "memory":
		zap.L().Info("storage: using in-memory backend")
		return NewMemory(), nil

	case "sqlite", "postgres":
		zap.L().Info("storage: using gorm", zap.String("driver", drv))
		st, err := NewGormStorage(drv, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := st.Migrate(ctx); err != nil {
				st.Close()
				return nil, eris.Wrap(err, "storage migrate")
			}
		}
		return st, nil

	default:
		return nil, eris.Errorf("unsupported storage driver %q", drv)
	}
}
