// internal/replay/memory/memory.go
package memory

import (
	"sync"

	"github.com/gridcombat/engine/internal/config"
	"github.com/gridcombat/engine/internal/sim"
	"github.com/gridcombat/engine/pkg/core"
)

// EntityTrack groups an entity with all its per-turn data
type EntityTrack struct {
	Entity core.EntityRecord
	States []core.EntityState
	Path   []sim.Pos // visited cells in turn order, starting cell included
}

// Backend stores episode data in memory and exports to JSON
type Backend struct {
	cfg    config.MemoryConfig
	meta   *core.EpisodeMeta
	result *core.EpisodeResult

	entities map[int]*EntityTrack // keyed by entity ID
	turns    []core.TurnRecord

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:      cfg,
		entities: make(map[int]*EntityTrack),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartEpisode begins recording a new episode
func (b *Backend) StartEpisode(meta *core.EpisodeMeta, roster []core.EntityRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.meta = meta
	b.result = nil

	// Reset all collections
	b.entities = make(map[int]*EntityTrack)
	b.turns = nil
	b.lastExportPath = ""

	for _, r := range roster {
		b.entities[r.EntityID] = &EntityTrack{
			Entity: r,
			States: make([]core.EntityState, 0),
			Path:   []sim.Pos{{X: r.X, Y: r.Y}},
		}
	}
	return nil
}

// RecordTurn records one resolved turn
func (b *Backend) RecordTurn(t *core.TurnRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.turns = append(b.turns, *t)

	for _, s := range t.Entities {
		track, ok := b.entities[s.EntityID]
		if !ok {
			continue // silently ignore unknown entities
		}
		track.States = append(track.States, s)
		if s.Alive {
			track.Path = append(track.Path, sim.Pos{X: s.X, Y: s.Y})
		}
	}
	return nil
}

// EndEpisode finalizes and exports the episode data
func (b *Backend) EndEpisode(res *core.EpisodeResult) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.result = res
	return b.exportJSON()
}

// ExportedFilePath returns the path of the last exported replay file
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetEntity looks up a recorded entity by its ID
func (b *Backend) GetEntity(id int) (*core.EntityRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if track, ok := b.entities[id]; ok {
		return &track.Entity, true
	}
	return nil, false
}

// TurnCount returns the number of recorded turns
func (b *Backend) TurnCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.turns)
}
