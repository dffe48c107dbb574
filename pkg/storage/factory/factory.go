// Package factory selects and opens the configured transcript store.
package factory

import (
	"context"
	"log/slog"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/logger"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/storage"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/storage/inmemory"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/storage/postgres"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/storage/sqlite"
)

// Backend names reported by Open.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendInMemory = "inmemory"
)

// Config selects a backend. PostgresDSN wins over SQLitePath; with neither
// set the store is in memory.
type Config struct {
	SQLitePath  string
	PostgresDSN string
	Logger      *slog.Logger
}

// Backend returns the backend name c selects.
func (c Config) Backend() string {
	switch {
	case c.PostgresDSN != "":
		return BackendPostgres
	case c.SQLitePath != "":
		return BackendSQLite
	default:
		return BackendInMemory
	}
}

// OrSQLite returns c with SQLitePath set to path when neither backend is
// configured. An empty path keeps the in-memory default.
func (c Config) OrSQLite(path string) Config {
	if c.PostgresDSN == "" && c.SQLitePath == "" {
		c.SQLitePath = path
	}
	return c
}

// Open opens the backend c selects.
func Open(ctx context.Context, c Config) (storage.Driver, error) {
	log := logger.OrNop(c.Logger)

	var (
		d   storage.Driver
		err error
	)

	switch c.Backend() {
	case BackendPostgres:
		d, err = postgres.NewDriver(ctx, c.PostgresDSN)
	case BackendSQLite:
		d, err = sqlite.NewDriver(ctx, c.SQLitePath)
		if err == nil {
			log.Debug("opened sqlite transcripts", "path", c.SQLitePath)
		}
	default:
		d = inmemory.NewDriver()
	}
	if err != nil {
		return nil, err
	}

	log.Debug("storage ready", "backend", c.Backend())
	return d, nil
}
