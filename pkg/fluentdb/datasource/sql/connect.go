package sql

import (
	"context"

	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq" // postgres driver
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/sllt/fluentdb/pkg/fluentdb/datasource"
)

const sqliteMemory = ":memory:"

// Connect opens an instrumented pool for cfg, applies its pool settings and checks the
// connection.
func Connect(ctx context.Context, cfg *DBConfig, logger datasource.Logger, metrics Metrics) (*DB, error) {
	if cfg == nil {
		return nil, errNilConfig
	}

	db, err := otelsql.Open(cfg.driverName(), cfg.DSN())
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database %q", cfg.Dialect, cfg.Database)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	// every connection to :memory: opens a new, empty database
	if cfg.Database == sqliteMemory {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, errors.Wrapf(err, "connect to %s database %q at %s", cfg.Dialect, cfg.Database, cfg.address())
	}

	if logger != nil {
		logger.Infof("connected to %s database '%s' at '%s'", cfg.Dialect, cfg.Database, cfg.address())
	}

	d, err := NewDB(db, cfg, logger, metrics)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return d, nil
}
