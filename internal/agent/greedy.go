package agent

import (
	"github.com/gridcombat/engine/internal/sim"
)

// GreedyAgent is a deterministic baseline policy. Shooters engage the
// most valuable contact in missile range, AWACS units run from the
// nearest threat, everything else closes on the enemy. It draws no
// randomness, so a fixed scenario plays out identically every run.
type GreedyAgent struct {
	team sim.Team
}

// NewGreedyAgent creates the greedy baseline policy.
func NewGreedyAgent(team sim.Team) *GreedyAgent {
	return &GreedyAgent{team: team}
}

func (a *GreedyAgent) Team() sim.Team {
	return a.team
}

func (a *GreedyAgent) Act(v View) map[int]sim.Action {
	actions := make(map[int]sim.Action, len(v.Own))
	for _, e := range v.Own {
		actions[e.ID] = a.pick(e, v)
	}
	return actions
}

func (a *GreedyAgent) pick(e *sim.Entity, v View) sim.Action {
	// Shoot first: a ready shooter with a contact in reach always fires.
	if e.CanShoot && e.Missiles > 0 && e.Cooldown == 0 {
		if target, ok := bestTarget(e, v); ok {
			return sim.Shoot(target.EntityID)
		}
	}

	// SAM radar discipline: light up only when something may be close
	// enough to engage, stay dark otherwise.
	if e.RadarToggleable {
		contactNear := false
		for _, obs := range v.Contacts {
			if v.Grid.Distance(e.Pos, obs.Pos) <= e.RadarRange {
				contactNear = true
				break
			}
		}
		if contactNear != e.RadarOn {
			return sim.Toggle(contactNear)
		}
		return sim.Wait()
	}

	if !e.CanMove {
		return sim.Wait()
	}

	if e.Kind == sim.KindAWACS {
		if threat, ok := nearestContact(e.Pos, v); ok {
			return fleeFrom(e.Pos, threat.Pos, v.Grid)
		}
		return sim.Wait()
	}

	// Close on the enemy AWACS when it is visible, otherwise on the
	// nearest contact, otherwise probe toward the grid center.
	goal, ok := awacsContact(v)
	if !ok {
		goal, ok = nearestContact(e.Pos, v)
	}
	if ok {
		return moveToward(e.Pos, goal.Pos, v.Grid)
	}
	center := sim.Pos{X: v.Grid.Width / 2, Y: v.Grid.Height / 2}
	if center == e.Pos {
		return sim.Wait()
	}
	return moveToward(e.Pos, center, v.Grid)
}

// bestTarget returns the contact to engage: an AWACS in range beats
// anything else, then the closest contact in range.
func bestTarget(e *sim.Entity, v View) (sim.Observation, bool) {
	var best sim.Observation
	bestDist := 0.0
	found := false

	for _, obs := range v.Contacts {
		dist := v.Grid.Distance(e.Pos, obs.Pos)
		if dist > e.MissileMaxRange {
			continue
		}
		if !found {
			best, bestDist, found = obs, dist, true
			continue
		}
		if obs.Kind == sim.KindAWACS && best.Kind != sim.KindAWACS {
			best, bestDist = obs, dist
			continue
		}
		if obs.Kind == best.Kind && dist < bestDist {
			best, bestDist = obs, dist
		}
	}
	return best, found
}

func awacsContact(v View) (sim.Observation, bool) {
	for _, obs := range v.Contacts {
		if obs.Kind == sim.KindAWACS {
			return obs, true
		}
	}
	return sim.Observation{}, false
}

func nearestContact(from sim.Pos, v View) (sim.Observation, bool) {
	var best sim.Observation
	bestDist := 0.0
	found := false
	for _, obs := range v.Contacts {
		dist := v.Grid.Distance(from, obs.Pos)
		if !found || dist < bestDist {
			best, bestDist, found = obs, dist, true
		}
	}
	return best, found
}

// moveToward picks the in-bounds step that most reduces distance to the
// goal. Direction order breaks ties deterministically.
func moveToward(from, goal sim.Pos, grid sim.Grid) sim.Action {
	best := sim.Wait()
	bestDist := grid.Distance(from, goal)

	for _, d := range directions {
		dx, dy := d.Delta()
		next := sim.Pos{X: from.X + dx, Y: from.Y + dy}
		if !grid.InBounds(next) {
			continue
		}
		if dist := grid.Distance(next, goal); dist < bestDist {
			best, bestDist = sim.Move(d), dist
		}
	}
	return best
}

// fleeFrom picks the in-bounds step that most increases distance to the
// threat.
func fleeFrom(from, threat sim.Pos, grid sim.Grid) sim.Action {
	best := sim.Wait()
	bestDist := grid.Distance(from, threat)

	for _, d := range directions {
		dx, dy := d.Delta()
		next := sim.Pos{X: from.X + dx, Y: from.Y + dy}
		if !grid.InBounds(next) {
			continue
		}
		if dist := grid.Distance(next, threat); dist > bestDist {
			best, bestDist = sim.Move(d), dist
		}
	}
	return best
}
