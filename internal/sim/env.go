package sim

import (
	"errors"
	"fmt"
	"log/slog"
)

// Status is the environment lifecycle state.
type Status string

const (
	StatusIdle     Status = "idle"     // before the first successful Reset
	StatusActive   Status = "active"   // episode running
	StatusTerminal Status = "terminal" // episode finished
)

// ErrNotStarted is returned by Step before a successful Reset.
var ErrNotStarted = errors.New("environment not started: call Reset first")

// StepInfo is the diagnostic payload of one step.
type StepInfo struct {
	Reason string       `json:"reason,omitempty"`
	Winner Team         `json:"winner,omitempty"`
	Moves  []MoveResult `json:"moves,omitempty"`
	Shots  []ShotResult `json:"shots,omitempty"`
}

// StepResult bundles everything a step emits: the live world, per-team
// rewards, the termination flag and diagnostics.
type StepResult struct {
	World   *WorldState
	Rewards map[Team]float64
	Done    bool
	Info    StepInfo
}

// Environment owns exactly one WorldState and sequences the stateless
// resolvers over it, one turn per Step call. It is single-threaded and
// synchronous; independent instances share nothing and may run in
// parallel freely.
type Environment struct {
	world  *WorldState
	cfg    VictoryConfig
	status Status

	// last is the cached terminal result. Step calls after the episode
	// ends return it unchanged instead of erroring, so runner loops can
	// overshoot harmlessly.
	last StepResult

	log *slog.Logger
}

// NewEnvironment builds an idle environment. A nil logger falls back to
// slog.Default.
func NewEnvironment(log *slog.Logger) *Environment {
	if log == nil {
		log = slog.Default()
	}
	return &Environment{status: StatusIdle, log: log}
}

// Status returns the lifecycle state.
func (env *Environment) Status() Status {
	return env.status
}

// World returns the live world state, or nil before Reset.
func (env *Environment) World() *WorldState {
	return env.world
}

// Reset validates the scenario and deterministically constructs a fresh
// world from it: grid, roster, seeded RNG, and an initial sensor
// refresh so turn-0 observations are valid. On a validation error the
// environment keeps whatever state it had; nothing is partially built.
func (env *Environment) Reset(sc *Scenario) (*WorldState, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	world, err := NewWorldState(sc.GridWidth, sc.GridHeight, sc.Seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	for _, c := range sc.Entities {
		e, err := c.Build()
		if err != nil {
			return nil, err
		}
		if err := world.AddEntity(e); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
		}
	}
	RefreshObservations(world)

	env.world = world
	env.cfg = sc.VictoryConfig()
	env.status = StatusActive
	env.last = StepResult{}
	env.log.Debug("environment reset",
		"grid", fmt.Sprintf("%dx%d", sc.GridWidth, sc.GridHeight),
		"entities", len(sc.Entities),
		"seed", sc.Seed)
	return world, nil
}

// Step advances the world exactly one turn. Phases never interleave:
// cooldowns tick, movement resolves, sensing recomputes, combat
// resolves, then termination is evaluated. Entities absent from the
// action map wait. After the episode ends, further calls return the
// cached terminal result.
func (env *Environment) Step(actions map[int]Action) (StepResult, error) {
	switch env.status {
	case StatusIdle:
		return StepResult{}, ErrNotStarted
	case StatusTerminal:
		return env.last, nil
	}

	w := env.world
	w.Turn++

	for _, e := range w.AliveEntities() {
		e.TickCooldown()
	}

	moves := ResolveMovement(w, actions)
	RefreshObservations(w)
	shots := ResolveCombat(w, actions)
	verdict := CheckVictory(w, env.cfg)

	res := StepResult{
		World:   w,
		Rewards: rewards(verdict),
		Done:    verdict.Done,
		Info: StepInfo{
			Moves: moves,
			Shots: shots,
		},
	}

	if verdict.Done {
		w.GameOver = true
		w.Winner = verdict.Winner
		w.EndReason = verdict.Reason
		res.Info.Reason = verdict.Reason
		res.Info.Winner = verdict.Winner
		env.status = StatusTerminal
		env.last = res
		env.log.Info("episode finished",
			"turn", w.Turn, "reason", verdict.Reason, "winner", string(verdict.Winner))
	}
	return res, nil
}

// rewards implements the reward contract: zero while running, +1/-1 on
// a win, 0/0 on a draw.
func rewards(v VictoryResult) map[Team]float64 {
	r := map[Team]float64{TeamBlue: 0, TeamRed: 0}
	if !v.Done || v.Draw {
		return r
	}
	r[v.Winner] = 1
	r[v.Winner.Opponent()] = -1
	return r
}
