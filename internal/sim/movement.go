package sim

// Failure reasons recorded in per-turn diagnostics. Invalid actions are
// no-ops for that entity only; they never abort the turn.
const (
	ReasonCannotMove  = "cannot_move"
	ReasonBadDir      = "invalid_direction"
	ReasonOutOfBounds = "out_of_bounds"
	ReasonOccupied    = "occupied"

	ReasonCannotShoot = "cannot_shoot"
	ReasonNoMissiles  = "no_missiles"
	ReasonCoolingDown = "cooling_down"
	ReasonRadarOff    = "radar_off"
	ReasonNotVisible  = "target_not_visible"
)

// MoveResult is the per-entity outcome of the movement phase, kept for
// diagnostics.
type MoveResult struct {
	EntityID int    `json:"entityId"`
	Success  bool   `json:"success"`
	From     Pos    `json:"from"`
	To       Pos    `json:"to"`
	Reason   string `json:"reason,omitempty"`
}

// ResolveMovement applies the move and toggle subset of the turn's
// actions. Movers are processed in an order shuffled from the world's
// random stream so ties for a cell carry no entity-id bias; the shuffle
// is the first RNG draw of every turn. A move into a wall or an occupied
// cell is a no-op for that entity. Updates the stagnation counter.
func ResolveMovement(w *WorldState, actions map[int]Action) []MoveResult {
	var movers []*Entity
	moveActions := make(map[int]Action)

	for _, e := range w.AliveEntities() {
		act, ok := actions[e.ID]
		if !ok {
			continue
		}
		switch act.Type {
		case ActionMove:
			movers = append(movers, e)
			moveActions[e.ID] = act
		case ActionToggle:
			applyToggle(e, act)
		}
	}

	w.rng.Shuffle(len(movers), func(i, j int) {
		movers[i], movers[j] = movers[j], movers[i]
	})

	results := make([]MoveResult, 0, len(movers))
	moved := false
	for _, e := range movers {
		res := moveOne(w, e, moveActions[e.ID])
		if res.Success {
			moved = true
		}
		results = append(results, res)
	}

	if moved {
		w.TurnsWithoutMove = 0
	} else {
		w.TurnsWithoutMove++
	}
	return results
}

func moveOne(w *WorldState, e *Entity, act Action) MoveResult {
	res := MoveResult{EntityID: e.ID, From: e.Pos, To: e.Pos}

	if !e.CanMove {
		res.Reason = ReasonCannotMove
		return res
	}
	if !act.Dir.Valid() {
		res.Reason = ReasonBadDir
		return res
	}

	dx, dy := act.Dir.Delta()
	target := Pos{X: e.Pos.X + dx, Y: e.Pos.Y + dy}
	if !w.Grid.InBounds(target) {
		res.Reason = ReasonOutOfBounds
		return res
	}
	// Occupancy is checked against the live world so a cell a prior
	// mover just entered stays blocked.
	if w.IsOccupied(target) {
		res.Reason = ReasonOccupied
		return res
	}

	e.Pos = target
	res.Success = true
	res.To = target
	return res
}

func applyToggle(e *Entity, act Action) {
	if !e.RadarToggleable {
		return
	}
	if act.RadarOn != nil {
		e.RadarOn = *act.RadarOn
		return
	}
	e.RadarOn = !e.RadarOn
}
