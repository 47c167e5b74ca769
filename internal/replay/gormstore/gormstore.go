// Package gormstore implements replay recording on GORM with internal
// queues and a background DB writer goroutine. The sqlite and postgres
// backends wrap it via composition.
package gormstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gridcombat/engine/internal/logging"
	"github.com/gridcombat/engine/internal/queue"
	"github.com/gridcombat/engine/pkg/core"
)

const writeInterval = 1 * time.Second

// Dependencies holds all dependencies for the GORM replay backend.
type Dependencies struct {
	DB         *gorm.DB
	LogManager *logging.SlogManager
}

// queues holds the write queues for batch DB insertion.
type queues struct {
	Turns *queue.Queue[Turn]
}

func newQueues() *queues {
	return &queues{
		Turns: queue.New[Turn](),
	}
}

// Backend records episodes into a GORM database with queue-based batch writes.
type Backend struct {
	deps       Dependencies
	queues     *queues
	episodeRef atomic.Uint64
	stopChan   chan struct{}
	dbReady    bool
}

// New creates a new GORM replay backend.
func New(deps Dependencies) *Backend {
	return &Backend{
		deps: deps,
	}
}

// Init creates internal queues, runs schema migration, and starts the
// DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("gormstore requires a database connection")
	}

	b.queues = newQueues()
	b.stopChan = make(chan struct{})

	if err := b.setupDB(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.dbReady = true

	b.startDBWriter()
	return nil
}

// setupDB migrates the replay tables.
func (b *Backend) setupDB() error {
	log := b.logger()

	log.Info("Migrating replay schema")
	if err := b.deps.DB.AutoMigrate(DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Info("Replay database setup complete")
	return nil
}

// Close flushes pending turns and stops the DB writer goroutine.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
	}
	b.Flush()
	return nil
}

// StartEpisode creates the episode row and its roster rows.
func (b *Backend) StartEpisode(meta *core.EpisodeMeta, roster []core.EntityRecord) error {
	db := b.deps.DB

	episode := Episode{
		EpisodeID:  meta.EpisodeID,
		Scenario:   meta.Scenario,
		Seed:       meta.Seed,
		GridWidth:  meta.GridWidth,
		GridHeight: meta.GridHeight,
		StartTime:  meta.StartTime,
	}
	if err := db.Create(&episode).Error; err != nil {
		return fmt.Errorf("failed to insert episode: %w", err)
	}

	// Store episode PK for the DB writer goroutine
	b.episodeRef.Store(uint64(episode.ID))

	entities := make([]Entity, 0, len(roster))
	for _, r := range roster {
		entities = append(entities, Entity{
			EpisodeRef: episode.ID,
			EntityID:   r.EntityID,
			Kind:       r.Kind,
			Team:       r.Team,
			X:          r.X,
			Y:          r.Y,
			Missiles:   r.Missiles,
		})
	}
	if len(entities) > 0 {
		if err := db.Create(&entities).Error; err != nil {
			return fmt.Errorf("failed to insert roster: %w", err)
		}
	}

	return nil
}

// RecordTurn converts the turn to its JSON columns and queues it.
func (b *Backend) RecordTurn(t *core.TurnRecord) error {
	moves, err := json.Marshal(t.Moves)
	if err != nil {
		return fmt.Errorf("failed to marshal moves: %w", err)
	}
	shots, err := json.Marshal(t.Shots)
	if err != nil {
		return fmt.Errorf("failed to marshal shots: %w", err)
	}
	states, err := json.Marshal(t.Entities)
	if err != nil {
		return fmt.Errorf("failed to marshal entity states: %w", err)
	}

	b.queues.Turns.Push(Turn{
		Turn:   t.Turn,
		Moves:  moves,
		Shots:  shots,
		States: states,
	})
	return nil
}

// EndEpisode flushes pending turns and writes the outcome onto the
// episode row.
func (b *Backend) EndEpisode(res *core.EpisodeResult) error {
	b.Flush()

	rewards, err := json.Marshal(res.Rewards)
	if err != nil {
		return fmt.Errorf("failed to marshal rewards: %w", err)
	}

	updates := map[string]any{
		"end_time": res.EndTime,
		"turns":    res.Turns,
		"winner":   res.Winner,
		"draw":     res.Draw,
		"reason":   res.Reason,
		"rewards":  datatypes.JSON(rewards),
	}

	episodeID := uint(b.episodeRef.Load())
	if err := b.deps.DB.Model(&Episode{}).Where("id = ?", episodeID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to finalize episode: %w", err)
	}
	return nil
}

// Flush synchronously drains the turn queue into the database.
func (b *Backend) Flush() {
	if !b.dbReady {
		return
	}

	episodeRef := uint(b.episodeRef.Load())
	stampTurns := func(items []Turn) {
		for i := range items {
			items[i].EpisodeRef = episodeRef
		}
	}

	writeQueue(b.deps.DB, b.queues.Turns, "turns", b.logger(), stampTurns)
}

func (b *Backend) logger() *slog.Logger {
	if b.deps.LogManager != nil {
		return b.deps.LogManager.Logger()
	}
	return slog.Default()
}

// writeQueue writes all items from a queue to the database in a transaction.
// On failure items are pushed back for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger, prepare func([]T)) {
	if q.Empty() {
		return
	}

	tx := db.Begin()
	items := q.GetAndEmpty()
	if prepare != nil {
		prepare(items)
	}
	if err := tx.Create(&items).Error; err != nil {
		log.Error("DB writer create failed", "queue", name, "error", err)
		tx.Rollback()
		q.Push(items...)
		return
	}

	tx.Commit()
}

// startDBWriter starts the background goroutine that periodically
// drains the turn queue into the DB.
func (b *Backend) startDBWriter() {
	go func() {
		for {
			select {
			case <-b.stopChan:
				return
			default:
			}

			b.Flush()
			time.Sleep(writeInterval)
		}
	}()
}
