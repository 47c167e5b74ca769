package runner

import (
	"github.com/gridcombat/engine/internal/sim"
	"github.com/gridcombat/engine/pkg/core"
)

// rosterRecords converts the freshly reset world into the roster a
// replay stores at episode start.
func rosterRecords(w *sim.WorldState) []core.EntityRecord {
	entities := w.Entities()
	out := make([]core.EntityRecord, 0, len(entities))
	for _, e := range entities {
		out = append(out, core.EntityRecord{
			EntityID: e.ID,
			Kind:     string(e.Kind),
			Team:     string(e.Team),
			X:        e.Pos.X,
			Y:        e.Pos.Y,
			Missiles: e.Missiles,
		})
	}
	return out
}

// turnRecord flattens one step's diagnostics and the post-step entity
// states into the replay payload.
func turnRecord(w *sim.WorldState, res sim.StepResult) *core.TurnRecord {
	rec := &core.TurnRecord{Turn: w.Turn}

	for _, m := range res.Info.Moves {
		rec.Moves = append(rec.Moves, core.MoveRecord{
			EntityID: m.EntityID,
			FromX:    m.From.X,
			FromY:    m.From.Y,
			ToX:      m.To.X,
			ToY:      m.To.Y,
			Moved:    m.Success,
			Reason:   m.Reason,
		})
	}

	for _, s := range res.Info.Shots {
		rec.Shots = append(rec.Shots, core.ShotRecord{
			ShooterID: s.ShooterID,
			TargetID:  s.TargetID,
			Valid:     s.Valid,
			Reason:    s.Reason,
			Range:     s.Range,
			HitProb:   s.HitProb,
			Hit:       s.Hit,
			Killed:    s.Killed,
		})
	}

	for _, e := range w.Entities() {
		rec.Entities = append(rec.Entities, core.EntityState{
			EntityID: e.ID,
			X:        e.Pos.X,
			Y:        e.Pos.Y,
			Alive:    e.Alive,
			Missiles: e.Missiles,
			Cooldown: e.Cooldown,
			RadarOn:  e.RadarOn && e.HasRadar,
		})
	}
	return rec
}

func rewardRecords(rewards map[sim.Team]float64) map[string]float64 {
	out := make(map[string]float64, len(rewards))
	for team, r := range rewards {
		out[string(team)] = r
	}
	return out
}
