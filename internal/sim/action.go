package sim

import "fmt"

// ActionType tags the variant carried by an Action.
type ActionType string

const (
	ActionWait   ActionType = "wait"
	ActionMove   ActionType = "move"
	ActionShoot  ActionType = "shoot"
	ActionToggle ActionType = "toggle"
)

// Direction is a cardinal movement direction.
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Delta returns the (dx, dy) offset for the direction. Y+ is up.
func (d Direction) Delta() (int, int) {
	switch d {
	case DirUp:
		return 0, 1
	case DirDown:
		return 0, -1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

// Valid reports whether d is one of the four cardinal directions.
func (d Direction) Valid() bool {
	switch d {
	case DirUp, DirDown, DirLeft, DirRight:
		return true
	}
	return false
}

// Action is the command an entity executes in a turn. Exactly one of the
// parameter fields is meaningful, selected by Type. Entities with no
// supplied action default to Wait.
type Action struct {
	Type     ActionType `json:"type"`
	Dir      Direction  `json:"dir,omitempty"`
	TargetID int        `json:"targetId,omitempty"`

	// RadarOn is the requested radar state for a toggle action.
	// Nil flips the current state.
	RadarOn *bool `json:"radarOn,omitempty"`
}

// Wait builds an action that does nothing this turn.
func Wait() Action {
	return Action{Type: ActionWait}
}

// Move builds a movement action in the given direction.
func Move(d Direction) Action {
	return Action{Type: ActionMove, Dir: d}
}

// Shoot builds a shot at the given entity id.
func Shoot(targetID int) Action {
	return Action{Type: ActionShoot, TargetID: targetID}
}

// Toggle builds a radar toggle to an explicit state.
func Toggle(on bool) Action {
	return Action{Type: ActionToggle, RadarOn: &on}
}

// ToggleFlip builds a radar toggle that flips the current state.
func ToggleFlip() Action {
	return Action{Type: ActionToggle}
}

func (a Action) String() string {
	switch a.Type {
	case ActionMove:
		return fmt.Sprintf("move %s", a.Dir)
	case ActionShoot:
		return fmt.Sprintf("shoot %d", a.TargetID)
	case ActionToggle:
		if a.RadarOn == nil {
			return "toggle"
		}
		if *a.RadarOn {
			return "toggle on"
		}
		return "toggle off"
	default:
		return "wait"
	}
}
