// Package pgstorage records replays into PostgreSQL. It wraps the GORM
// backend via composition and only owns the connection setup.
package pgstorage

import (
	"fmt"

	"github.com/gridcombat/engine/internal/config"
	"github.com/gridcombat/engine/internal/database"
	"github.com/gridcombat/engine/internal/logging"
	"github.com/gridcombat/engine/internal/replay/gormstore"
)

// Backend wraps the GORM backend for PostgreSQL.
type Backend struct {
	*gormstore.Backend
}

// New connects to PostgreSQL and creates the replay backend.
func New(cfg config.PostgresConfig, logManager *logging.SlogManager) (*Backend, error) {
	db, err := database.OpenPostgres(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to validate connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)

	return &Backend{
		Backend: gormstore.New(gormstore.Dependencies{
			DB:         db,
			LogManager: logManager,
		}),
	}, nil
}
