// Package agent provides per-team policies for driving episodes.
package agent

import (
	"fmt"

	"github.com/gridcombat/engine/internal/sim"
)

// View is the single-team slice of the world a policy is allowed to
// see: its own living units and the team's current sensor contacts.
type View struct {
	Turn     int
	Grid     sim.Grid
	Own      []*sim.Entity
	Contacts []sim.Observation
}

// NewView extracts a team's view from the live world.
func NewView(w *sim.WorldState, team sim.Team) View {
	return View{
		Turn:     w.Turn,
		Grid:     w.Grid,
		Own:      w.TeamEntities(team),
		Contacts: w.View(team).Contacts(),
	}
}

// Agent chooses one action per controlled entity each turn. Entities
// omitted from the returned map wait.
type Agent interface {
	Team() sim.Team
	Act(v View) map[int]sim.Action
}

// New builds a named policy. Seed drives any internal randomness the
// policy carries; the engine's own stream is never shared with agents.
func New(name string, team sim.Team, seed int64) (Agent, error) {
	switch name {
	case "random":
		return NewRandomAgent(team, seed), nil
	case "greedy":
		return NewGreedyAgent(team), nil
	default:
		return nil, fmt.Errorf("unknown agent %q (have random, greedy)", name)
	}
}
