package sim

import (
	"errors"
	"fmt"
)

// ErrInvalidScenario wraps every configuration failure surfaced by
// Reset. Configuration errors fail fast, before any world is built.
var ErrInvalidScenario = errors.New("invalid scenario")

// Default rule thresholds, applied by scenario loaders when unset.
const (
	DefaultMaxStalemateTurns = 60
	DefaultMaxNoMoveTurns    = 15
)

// EntityConfig describes one roster entry: a unit preset plus optional
// per-entity overrides. Nil override fields keep the preset value.
type EntityConfig struct {
	ID   int  `json:"id" yaml:"id"`
	Kind Kind `json:"kind" yaml:"kind"`
	Team Team `json:"team" yaml:"team"`
	Pos  Pos  `json:"pos" yaml:"pos"`

	Missiles        *int     `json:"missiles,omitempty" yaml:"missiles,omitempty"`
	RadarRange      *float64 `json:"radarRange,omitempty" yaml:"radarRange,omitempty"`
	MissileMaxRange *float64 `json:"missileMaxRange,omitempty" yaml:"missileMaxRange,omitempty"`
	BaseHitProb     *float64 `json:"baseHitProb,omitempty" yaml:"baseHitProb,omitempty"`
	MinHitProb      *float64 `json:"minHitProb,omitempty" yaml:"minHitProb,omitempty"`
	CooldownSteps   *int     `json:"cooldownSteps,omitempty" yaml:"cooldownSteps,omitempty"`
	RadarOn         *bool    `json:"radarOn,omitempty" yaml:"radarOn,omitempty"`
}

// Scenario is the validated in-memory description an episode starts
// from. It is consumed once at Reset and never mutated by the engine;
// file persistence lives outside the core.
type Scenario struct {
	GridWidth  int   `json:"gridWidth" yaml:"gridWidth"`
	GridHeight int   `json:"gridHeight" yaml:"gridHeight"`
	Seed       int64 `json:"seed" yaml:"seed"`

	MaxStalemateTurns      int  `json:"maxStalemateTurns" yaml:"maxStalemateTurns"`
	MaxNoMoveTurns         int  `json:"maxNoMoveTurns" yaml:"maxNoMoveTurns"`
	MaxTurns               int  `json:"maxTurns,omitempty" yaml:"maxTurns,omitempty"`
	CheckMissileExhaustion bool `json:"checkMissileExhaustion" yaml:"checkMissileExhaustion"`

	Entities []EntityConfig `json:"entities" yaml:"entities"`
}

// Build constructs the entity from its preset and overrides.
func (c EntityConfig) Build() (*Entity, error) {
	var e *Entity
	switch c.Kind {
	case KindAircraft:
		e = NewAircraft(c.ID, c.Team, c.Pos)
	case KindAWACS:
		e = NewAWACS(c.ID, c.Team, c.Pos)
	case KindSAM:
		e = NewSAM(c.ID, c.Team, c.Pos)
	case KindDecoy:
		e = NewDecoy(c.ID, c.Team, c.Pos)
	default:
		return nil, fmt.Errorf("%w: unknown entity kind %q", ErrInvalidScenario, c.Kind)
	}

	if c.Missiles != nil {
		e.Missiles = *c.Missiles
	}
	if c.RadarRange != nil {
		e.RadarRange = *c.RadarRange
	}
	if c.MissileMaxRange != nil {
		e.MissileMaxRange = *c.MissileMaxRange
	}
	if c.BaseHitProb != nil {
		e.BaseHitProb = *c.BaseHitProb
	}
	if c.MinHitProb != nil {
		e.MinHitProb = *c.MinHitProb
	}
	if c.CooldownSteps != nil {
		e.CooldownSteps = *c.CooldownSteps
	}
	if c.RadarOn != nil && e.RadarToggleable {
		e.RadarOn = *c.RadarOn
	}
	return e, nil
}

// Validate checks the scenario before any world is constructed. It is
// the configuration tier of error handling: any failure here aborts
// Reset with nothing partially initialized.
func (s *Scenario) Validate() error {
	if s.GridWidth <= 0 || s.GridHeight <= 0 {
		return fmt.Errorf("%w: grid dimensions must be positive, got %dx%d",
			ErrInvalidScenario, s.GridWidth, s.GridHeight)
	}
	if s.Seed == 0 {
		return fmt.Errorf("%w: seed is required", ErrInvalidScenario)
	}
	if s.MaxStalemateTurns < 0 || s.MaxNoMoveTurns < 0 || s.MaxTurns < 0 {
		return fmt.Errorf("%w: rule thresholds must not be negative", ErrInvalidScenario)
	}

	grid := Grid{Width: s.GridWidth, Height: s.GridHeight}
	seenIDs := make(map[int]bool)
	seenPos := make(map[Pos]int)
	awacsCount := map[Team]int{}

	for _, c := range s.Entities {
		if seenIDs[c.ID] {
			return fmt.Errorf("%w: duplicate entity id %d", ErrInvalidScenario, c.ID)
		}
		seenIDs[c.ID] = true

		if c.Team != TeamBlue && c.Team != TeamRed {
			return fmt.Errorf("%w: entity %d has unknown team %q", ErrInvalidScenario, c.ID, c.Team)
		}
		if !grid.InBounds(c.Pos) {
			return fmt.Errorf("%w: entity %d position out of bounds: %v", ErrInvalidScenario, c.ID, c.Pos)
		}
		if prev, ok := seenPos[c.Pos]; ok {
			return fmt.Errorf("%w: entities %d and %d share cell %v", ErrInvalidScenario, prev, c.ID, c.Pos)
		}
		seenPos[c.Pos] = c.ID

		e, err := c.Build()
		if err != nil {
			return err
		}
		if e.Missiles < 0 {
			return fmt.Errorf("%w: entity %d has negative missiles", ErrInvalidScenario, c.ID)
		}
		if e.CanShoot && e.MissileMaxRange <= 0 {
			return fmt.Errorf("%w: entity %d has no missile range", ErrInvalidScenario, c.ID)
		}
		if e.Kind == KindDecoy && (e.CanShoot || e.HasRadar) {
			return fmt.Errorf("%w: decoy %d must stay unarmed and sensorless", ErrInvalidScenario, c.ID)
		}
		if e.Kind == KindAWACS {
			awacsCount[c.Team]++
		}
	}

	// Exactly one AWACS per side keeps the primary win condition
	// well-defined for every episode.
	for _, team := range []Team{TeamBlue, TeamRed} {
		if awacsCount[team] != 1 {
			return fmt.Errorf("%w: team %s must field exactly one AWACS, has %d",
				ErrInvalidScenario, team, awacsCount[team])
		}
	}
	return nil
}

// VictoryConfig extracts the rule thresholds for the checker.
func (s *Scenario) VictoryConfig() VictoryConfig {
	return VictoryConfig{
		MaxStalemateTurns:      s.MaxStalemateTurns,
		MaxNoMoveTurns:         s.MaxNoMoveTurns,
		MaxTurns:               s.MaxTurns,
		CheckMissileExhaustion: s.CheckMissileExhaustion,
	}
}
