// pkg/core/records.go
package core

// EntityRecord is one roster entry, stored once at episode start.
type EntityRecord struct {
	EntityID int    `json:"entityId"`
	Kind     string `json:"kind"`
	Team     string `json:"team"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Missiles int    `json:"missiles"`
}

// EntityState is the per-turn state of one entity.
type EntityState struct {
	EntityID int  `json:"entityId"`
	X        int  `json:"x"`
	Y        int  `json:"y"`
	Alive    bool `json:"alive"`
	Missiles int  `json:"missiles"`
	Cooldown int  `json:"cooldown"`
	RadarOn  bool `json:"radarOn"`
}

// MoveRecord is the outcome of one movement attempt.
type MoveRecord struct {
	EntityID int    `json:"entityId"`
	FromX    int    `json:"fromX"`
	FromY    int    `json:"fromY"`
	ToX      int    `json:"toX"`
	ToY      int    `json:"toY"`
	Moved    bool   `json:"moved"`
	Reason   string `json:"reason,omitempty"`
}

// ShotRecord is the outcome of one missile shot.
type ShotRecord struct {
	ShooterID int     `json:"shooterId"`
	TargetID  int     `json:"targetId"`
	Valid     bool    `json:"valid"`
	Reason    string  `json:"reason,omitempty"`
	Range     float64 `json:"range"`
	HitProb   float64 `json:"hitProb"`
	Hit       bool    `json:"hit"`
	Killed    bool    `json:"killed"`
}

// TurnRecord is the per-turn payload a replay stores.
type TurnRecord struct {
	Turn     int           `json:"turn"`
	Moves    []MoveRecord  `json:"moves,omitempty"`
	Shots    []ShotRecord  `json:"shots,omitempty"`
	Entities []EntityState `json:"entities"`
}
