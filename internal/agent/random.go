package agent

import (
	"math/rand/v2"

	"github.com/gridcombat/engine/internal/sim"
)

var directions = []sim.Direction{sim.DirUp, sim.DirDown, sim.DirLeft, sim.DirRight}

// RandomAgent picks a uniformly random action per unit from the moves
// that unit is capable of. It owns its generator, so two agents with the
// same seed replay the same choices regardless of engine state.
type RandomAgent struct {
	team sim.Team
	rng  *rand.Rand
}

// NewRandomAgent creates a random policy. A zero seed is normalized to 1.
func NewRandomAgent(team sim.Team, seed int64) *RandomAgent {
	if seed == 0 {
		seed = 1
	}
	return &RandomAgent{
		team: team,
		rng:  rand.New(rand.NewPCG(uint64(seed), uint64(seed))),
	}
}

func (a *RandomAgent) Team() sim.Team {
	return a.team
}

// Act draws one action per unit. The candidate set respects capability
// flags, so a returned action may still fail resolution (blocked cell,
// cooldown) but never targets an invisible entity.
func (a *RandomAgent) Act(v View) map[int]sim.Action {
	actions := make(map[int]sim.Action, len(v.Own))
	for _, e := range v.Own {
		actions[e.ID] = a.pick(e, v)
	}
	return actions
}

func (a *RandomAgent) pick(e *sim.Entity, v View) sim.Action {
	candidates := []sim.Action{sim.Wait()}

	if e.CanMove {
		for _, d := range directions {
			candidates = append(candidates, sim.Move(d))
		}
	}
	if e.CanShoot && e.Missiles > 0 && e.Cooldown == 0 {
		for _, obs := range v.Contacts {
			candidates = append(candidates, sim.Shoot(obs.EntityID))
		}
	}
	if e.RadarToggleable {
		candidates = append(candidates, sim.ToggleFlip())
	}

	return candidates[a.rng.IntN(len(candidates))]
}
