// Package sqlitestorage records replays into an in-memory SQLite
// database dumped to disk via VACUUM INTO. It wraps the GORM backend
// via composition; the only SQLite-specific concerns are creating the
// in-memory DB and snapshotting it to the configured path.
package sqlitestorage

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gridcombat/engine/internal/database"
	"github.com/gridcombat/engine/internal/logging"
	"github.com/gridcombat/engine/internal/replay/gormstore"
	"github.com/gridcombat/engine/pkg/core"
)

// Config holds configuration for the SQLite replay backend.
type Config struct {
	DumpPath     string        // Path for VACUUM INTO snapshots
	DumpInterval time.Duration // Zero disables the periodic dump loop
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstore.Backend
	db       *gorm.DB
	cfg      Config
	log      *logging.SlogManager
	stopChan chan struct{}
}

// New creates a new SQLite replay backend.
func New(cfg Config, logManager *logging.SlogManager) (*Backend, error) {
	db, err := database.OpenSqlite("")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}

	gormBackend := gormstore.New(gormstore.Dependencies{
		DB:         db,
		LogManager: logManager,
	})

	return &Backend{
		Backend:  gormBackend,
		db:       db,
		cfg:      cfg,
		log:      logManager,
		stopChan: make(chan struct{}),
	}, nil
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		go b.dumpLoop()
	}

	return nil
}

// Close stops the dump goroutine, closes the embedded GORM backend, and
// takes a final snapshot.
func (b *Backend) Close() error {
	close(b.stopChan)
	if err := b.Backend.Close(); err != nil {
		return err
	}
	return b.dump()
}

// EndEpisode finalizes the episode and snapshots it to disk so the
// replay survives even if the process dies before Close.
func (b *Backend) EndEpisode(res *core.EpisodeResult) error {
	if err := b.Backend.EndEpisode(res); err != nil {
		return err
	}
	return b.dump()
}

// dump writes the in-memory database to the configured path.
func (b *Backend) dump() error {
	if b.cfg.DumpPath == "" {
		return nil
	}
	return database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath)
}

// dumpLoop periodically dumps the in-memory SQLite database to disk.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism
// is needed.
func (b *Backend) dumpLoop() {
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	log := b.log.Logger()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := b.dump(); err != nil {
				log.Error("SQLite disk dump failed", "error", err)
			} else {
				log.Debug("SQLite dumped to disk", "duration", time.Since(start))
			}
		}
	}
}
