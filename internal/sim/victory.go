package sim

// Termination reasons reported in step info and replays.
const (
	ReasonAWACSDestroyed    = "awacs_destroyed"
	ReasonTeamEliminated    = "team_eliminated"
	ReasonMissileExhaustion = "missile_exhaustion"
	ReasonTurnLimit         = "turn_limit"
	ReasonStalemate         = "stalemate"
	ReasonStagnation        = "stagnation"
)

// VictoryConfig carries the rule thresholds from the scenario.
type VictoryConfig struct {
	MaxStalemateTurns      int
	MaxNoMoveTurns         int
	MaxTurns               int // 0 disables the turn cap
	CheckMissileExhaustion bool
}

// VictoryResult is the outcome of a termination check.
type VictoryResult struct {
	Done   bool
	Winner Team // empty on draw
	Draw   bool
	Reason string
}

// CheckVictory evaluates the termination conditions in fixed priority
// order; the first match wins, so at most one reason is ever reported:
//
//  1. AWACS destruction (both destroyed the same turn is a draw)
//  2. One team fully eliminated
//  3. Missile exhaustion on both sides (flag-gated)
//  4. Turn cap reached (if configured)
//  5. Combat stalemate
//  6. Movement stagnation
//
// Scenario validation guarantees each side fields exactly one AWACS, so
// the check never has to decide what a missing AWACS means.
func CheckVictory(w *WorldState, cfg VictoryConfig) VictoryResult {
	blueAWACS := awacsAlive(w, TeamBlue)
	redAWACS := awacsAlive(w, TeamRed)
	switch {
	case !blueAWACS && !redAWACS:
		return VictoryResult{Done: true, Draw: true, Reason: ReasonAWACSDestroyed}
	case !blueAWACS:
		return VictoryResult{Done: true, Winner: TeamRed, Reason: ReasonAWACSDestroyed}
	case !redAWACS:
		return VictoryResult{Done: true, Winner: TeamBlue, Reason: ReasonAWACSDestroyed}
	}

	blueAlive := len(w.TeamEntities(TeamBlue))
	redAlive := len(w.TeamEntities(TeamRed))
	switch {
	case blueAlive == 0 && redAlive == 0:
		return VictoryResult{Done: true, Draw: true, Reason: ReasonTeamEliminated}
	case blueAlive == 0:
		return VictoryResult{Done: true, Winner: TeamRed, Reason: ReasonTeamEliminated}
	case redAlive == 0:
		return VictoryResult{Done: true, Winner: TeamBlue, Reason: ReasonTeamEliminated}
	}

	if cfg.CheckMissileExhaustion &&
		w.TotalMissiles(TeamBlue) == 0 && w.TotalMissiles(TeamRed) == 0 {
		return VictoryResult{Done: true, Draw: true, Reason: ReasonMissileExhaustion}
	}

	if cfg.MaxTurns > 0 && w.Turn >= cfg.MaxTurns {
		return VictoryResult{Done: true, Draw: true, Reason: ReasonTurnLimit}
	}

	if cfg.MaxStalemateTurns > 0 && w.TurnsWithoutShot >= cfg.MaxStalemateTurns {
		return VictoryResult{Done: true, Draw: true, Reason: ReasonStalemate}
	}

	if cfg.MaxNoMoveTurns > 0 && w.TurnsWithoutMove >= cfg.MaxNoMoveTurns {
		return VictoryResult{Done: true, Draw: true, Reason: ReasonStagnation}
	}

	return VictoryResult{}
}

func awacsAlive(w *WorldState, team Team) bool {
	for _, e := range w.TeamEntities(team) {
		if e.Kind == KindAWACS {
			return true
		}
	}
	return false
}
