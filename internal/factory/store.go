package factory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/light11014/Moodmate-Backend/internal/config"
	storepkg "github.com/light11014/Moodmate-Backend/internal/store"
	"github.com/light11014/Moodmate-Backend/internal/store/memory"
	storepg "github.com/light11014/Moodmate-Backend/internal/store/postgres"
	storelite "github.com/light11014/Moodmate-Backend/internal/store/sqlite"
)

const schemaTimeout = 30 * time.Second

// Closer releases a dependency opened by this package.
type Closer func() error

func noopCloser() error { return nil }

// NewStore opens the store selected by cfg.DBDriver and applies its schema.
// The returned Closer closes the underlying database handle.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, Closer, error) {
	var (
		db     *sql.DB
		err    error
		ensure func(context.Context, *sql.DB) error
		wrap   func(*sql.DB) storepkg.Store
	)
	switch cfg.DBDriver {
	case "memory":
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return memory.New(), noopCloser, nil
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("MOODMATE_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err = storepg.Open(cfg.PostgresDSN)
		ensure, wrap = storepg.EnsureSchema, storepg.NewWithDB
	case "sqlite":
		db, err = storelite.Open(cfg.SQLitePath)
		ensure, wrap = storelite.EnsureSchema, storelite.NewWithDB
	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.DBDriver, err)
	}

	schemaCtx, cancel := context.WithTimeout(ctx, schemaTimeout)
	defer cancel()
	if err := ensure(schemaCtx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	log.Debug().Str("driver", cfg.DBDriver).Msg("store schema ready")
	return wrap(db), db.Close, nil
}
