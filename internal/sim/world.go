package sim

import (
	"fmt"
	"math/rand/v2"
)

// WorldState is the central mutable container for one environment
// instance: the grid, every entity, each team's fog-of-war view, the
// turn counter and the deterministic random stream. It owns no game
// rules; the resolvers mutate it in a fixed phase order.
type WorldState struct {
	Grid Grid

	entities map[int]*Entity
	order    []int // insertion order, the deterministic iteration order
	views    map[Team]*TeamView

	Turn int

	// Draw-condition counters, maintained by the resolvers.
	TurnsWithoutShot int
	TurnsWithoutMove int

	GameOver  bool
	Winner    Team // empty on draw or while running
	EndReason string

	rng    *rand.Rand
	rngSrc *rand.PCG
}

// NewWorldState builds an empty world over a grid, seeding the random
// stream. The stream is owned by the world and threaded explicitly; no
// resolver touches a global generator.
func NewWorldState(width, height int, seed int64) (*WorldState, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive: %dx%d", width, height)
	}
	rng, src := newRNG(seed)
	return &WorldState{
		Grid:     Grid{Width: width, Height: height},
		entities: make(map[int]*Entity),
		views: map[Team]*TeamView{
			TeamBlue: NewTeamView(TeamBlue),
			TeamRed:  NewTeamView(TeamRed),
		},
		rng:    rng,
		rngSrc: src,
	}, nil
}

// AddEntity registers an entity. The id must be unique, the position in
// bounds and unoccupied by a living entity.
func (w *WorldState) AddEntity(e *Entity) error {
	if _, exists := w.entities[e.ID]; exists {
		return fmt.Errorf("duplicate entity id %d", e.ID)
	}
	if !w.Grid.InBounds(e.Pos) {
		return fmt.Errorf("entity %d position out of bounds: %v", e.ID, e.Pos)
	}
	if e.Alive && w.IsOccupied(e.Pos) {
		return fmt.Errorf("entity %d position already occupied: %v", e.ID, e.Pos)
	}
	w.entities[e.ID] = e
	w.order = append(w.order, e.ID)
	return nil
}

// Entity returns the entity with the given id, or nil.
func (w *WorldState) Entity(id int) *Entity {
	return w.entities[id]
}

// Entities returns all entities, dead ones included, in insertion order.
func (w *WorldState) Entities() []*Entity {
	out := make([]*Entity, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.entities[id])
	}
	return out
}

// AliveEntities returns all living entities in insertion order.
func (w *WorldState) AliveEntities() []*Entity {
	out := make([]*Entity, 0, len(w.order))
	for _, id := range w.order {
		if e := w.entities[id]; e.Alive {
			out = append(out, e)
		}
	}
	return out
}

// TeamEntities returns a team's living entities in insertion order.
func (w *WorldState) TeamEntities(team Team) []*Entity {
	out := make([]*Entity, 0, len(w.order))
	for _, id := range w.order {
		if e := w.entities[id]; e.Alive && e.Team == team {
			out = append(out, e)
		}
	}
	return out
}

// IsOccupied reports whether a living entity stands on the cell.
func (w *WorldState) IsOccupied(p Pos) bool {
	return w.OccupantAt(p) != nil
}

// OccupantAt returns the living entity on the cell, or nil.
func (w *WorldState) OccupantAt(p Pos) *Entity {
	for _, id := range w.order {
		if e := w.entities[id]; e.Alive && e.Pos == p {
			return e
		}
	}
	return nil
}

// View returns the fog-of-war view owned by a team. Callers must never
// hand one team's view to the other team's agent.
func (w *WorldState) View(team Team) *TeamView {
	return w.views[team]
}

// TotalMissiles sums the missiles remaining on a team's living entities.
func (w *WorldState) TotalMissiles(team Team) int {
	total := 0
	for _, e := range w.TeamEntities(team) {
		total += e.Missiles
	}
	return total
}

// Clone deep-copies the world for snapshotting. Entities, views and the
// random stream are all duplicated; the clone's views are recomputed
// immediately because position and observation mutations on the source
// are not transactionally linked. The clone shares no mutable structure
// with the live world.
func (w *WorldState) Clone() (*WorldState, error) {
	rng, src, err := cloneRNG(w.rngSrc)
	if err != nil {
		return nil, fmt.Errorf("clone rng: %w", err)
	}
	cp := &WorldState{
		Grid:             w.Grid,
		entities:         make(map[int]*Entity, len(w.entities)),
		order:            append([]int(nil), w.order...),
		views:            map[Team]*TeamView{TeamBlue: NewTeamView(TeamBlue), TeamRed: NewTeamView(TeamRed)},
		Turn:             w.Turn,
		TurnsWithoutShot: w.TurnsWithoutShot,
		TurnsWithoutMove: w.TurnsWithoutMove,
		GameOver:         w.GameOver,
		Winner:           w.Winner,
		EndReason:        w.EndReason,
		rng:              rng,
		rngSrc:           src,
	}
	for id, e := range w.entities {
		dup := *e
		cp.entities[id] = &dup
	}
	RefreshObservations(cp)
	return cp, nil
}
