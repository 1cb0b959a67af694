package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"taskboard/config"
	"taskboard/internal/domain/lifecycle"
	"taskboard/internal/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const (
	dbPoolMonitorInterval       = 5 * time.Second
	dbPoolWarnDurationThreshold = 50 * time.Millisecond
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry `optional:"true"`
}

// New opens the PostgreSQL connection (master plus optional replicas) and ties it to the fx lifecycle.
func New(params Params) (*gorm.DB, error) {
	if params.Config.Postgres == nil {
		return nil, errors.New("postgres configuration is missing")
	}

	db, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}
	db = db.Session(&gorm.Session{
		// Multi-statement atomicity goes through txManager.Execute.
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	if params.Registry != nil {
		if err := params.Registry.Register(collectors.NewDBStatsCollector(sqlDB, params.Config.Env.ServiceName)); err != nil {
			return nil, errors.Wrap(err, "failed to register database metrics")
		}
	}

	monitorCtx, cancelMonitor := context.WithCancel(context.Background())
	monitorDone := make(chan struct{})

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping PostgreSQL")
			}

			go func() {
				defer close(monitorDone)
				monitorDBPool(monitorCtx, params.Logger, sqlDB, dbPoolMonitorInterval)
			}()

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelMonitor()
			<-monitorDone

			return errors.WithStack(sqlDB.Close())
		},
	})

	return db, nil
}

// dbStatser is satisfied by *sql.DB.
type dbStatser interface {
	Stats() sql.DBStats
}

// monitorDBPool samples pool statistics every interval until ctx is done and
// reports requests that had to wait for a free connection.
func monitorDBPool(ctx context.Context, logger *slog.Logger, db dbStatser, interval time.Duration) {
	if logger == nil || db == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := db.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := db.Stats()
			reportPoolWaits(ctx, logger, last, now)
			last = now
		}
	}
}

func reportPoolWaits(ctx context.Context, logger *slog.Logger, before, after sql.DBStats) {
	waits := after.WaitCount - before.WaitCount
	if waits <= 0 {
		return
	}

	waited := after.WaitDuration - before.WaitDuration
	level, msg := slog.LevelDebug, "Postgres pool wait observed"
	if waited >= dbPoolWarnDurationThreshold {
		level, msg = slog.LevelWarn, "Postgres pool wait detected"
	}

	logger.LogAttrs(ctx, level, msg,
		slog.Int64("waits", waits),
		slog.Duration("waited", waited),
		slog.Duration("avgWait", waited/time.Duration(waits)),
		slog.Int("openConns", after.OpenConnections),
		slog.Int("inUseConns", after.InUse),
		slog.Int("maxOpenConns", after.MaxOpenConnections),
	)
}
