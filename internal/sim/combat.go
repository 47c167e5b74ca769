package sim

// ShotResult is the per-shot outcome of the combat phase, kept for
// diagnostics and replay recording.
type ShotResult struct {
	ShooterID int     `json:"shooterId"`
	TargetID  int     `json:"targetId"`
	Valid     bool    `json:"valid"`
	Reason    string  `json:"reason,omitempty"`
	Range     float64 `json:"range"`
	HitProb   float64 `json:"hitProb"`
	Hit       bool    `json:"hit"`
	Killed    bool    `json:"killed"`
}

// HitProbability interpolates linearly from base at range zero down to
// min at the maximum missile range, clamped to min beyond it. It is
// non-increasing in distance.
func HitProbability(dist, maxRange, base, min float64) float64 {
	if maxRange <= 0 || dist >= maxRange {
		return min
	}
	if dist <= 0 {
		return base
	}
	return base + (min-base)*(dist/maxRange)
}

// ResolveCombat applies the shoot subset of the turn's actions, after
// sensing has settled. Shooters fire in an order shuffled from the same
// turn RNG stream as movement (second draw of the turn), then one
// uniform sample is consumed per missile actually fired so replays stay
// deterministic.
//
// An invalid shot (shooter unarmed, out of missiles, cooling down,
// radar-off launcher, or target not in the shooter's team view) is a
// no-op and spends nothing. A valid shot always spends one missile and
// starts the shooter's cooldown, hit or miss; beyond missile range it
// is a guaranteed miss. Kills take effect immediately: the target
// leaves occupancy and every team view before the next shot resolves.
// Updates the stalemate counter.
func ResolveCombat(w *WorldState, actions map[int]Action) []ShotResult {
	var shooters []*Entity
	shotActions := make(map[int]Action)
	for _, e := range w.AliveEntities() {
		act, ok := actions[e.ID]
		if !ok || act.Type != ActionShoot {
			continue
		}
		shooters = append(shooters, e)
		shotActions[e.ID] = act
	}

	w.rng.Shuffle(len(shooters), func(i, j int) {
		shooters[i], shooters[j] = shooters[j], shooters[i]
	})

	results := make([]ShotResult, 0, len(shooters))
	fired := false
	for _, e := range shooters {
		if !e.Alive {
			// killed earlier this phase; the shot dies with it
			continue
		}
		res := shootOne(w, e, shotActions[e.ID])
		if res.Valid {
			fired = true
		}
		results = append(results, res)
	}

	if fired {
		w.TurnsWithoutShot = 0
	} else {
		w.TurnsWithoutShot++
	}
	return results
}

func shootOne(w *WorldState, shooter *Entity, act Action) ShotResult {
	res := ShotResult{ShooterID: shooter.ID, TargetID: act.TargetID}

	if !shooter.CanShoot {
		res.Reason = ReasonCannotShoot
		return res
	}
	if shooter.Missiles <= 0 {
		res.Reason = ReasonNoMissiles
		return res
	}
	if shooter.OnCooldown() {
		res.Reason = ReasonCoolingDown
		return res
	}
	// A launcher with its radar switched off has no fire-control track.
	if shooter.RadarToggleable && !shooter.RadarOn {
		res.Reason = ReasonRadarOff
		return res
	}
	// Fog-of-war is authoritative: the team must see the target this
	// turn, a remembered id from an earlier turn is not enough.
	if !w.View(shooter.Team).CanTarget(act.TargetID) {
		res.Reason = ReasonNotVisible
		return res
	}

	target := w.Entity(act.TargetID)
	if target == nil || !target.Alive {
		res.Reason = ReasonNotVisible
		return res
	}

	res.Valid = true
	shooter.Missiles--
	if shooter.CooldownSteps > 0 {
		shooter.StartCooldown()
	}

	res.Range = w.Grid.Distance(shooter.Pos, target.Pos)
	res.HitProb = HitProbability(res.Range, shooter.MissileMaxRange, shooter.BaseHitProb, shooter.MinHitProb)

	// One draw per fired missile, even for a guaranteed out-of-range
	// miss, keeps the RNG consumption sequence well-defined.
	sample := w.rng.Float64()
	if res.Range <= shooter.MissileMaxRange && sample < res.HitProb {
		res.Hit = true
		res.Killed = true
		target.Alive = false
		w.View(TeamBlue).Drop(target.ID)
		w.View(TeamRed).Drop(target.ID)
	}
	return res
}
