package sim

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepBeforeReset(t *testing.T) {
	env := NewEnvironment(nil)

	_, err := env.Step(nil)
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Equal(t, StatusIdle, env.Status())
}

func TestResetRejectsInvalidScenario(t *testing.T) {
	env := NewEnvironment(nil)
	sc := validScenario()
	sc.Seed = 0

	_, err := env.Reset(sc)
	require.ErrorIs(t, err, ErrInvalidScenario)
	assert.Equal(t, StatusIdle, env.Status())
	assert.Nil(t, env.World())
}

func TestResetBuildsInitialObservations(t *testing.T) {
	env := NewEnvironment(nil)
	sc := validScenario()
	// Park red's aircraft inside blue's AWACS radar.
	sc.Entities[3].Pos = Pos{4, 4}

	world, err := env.Reset(sc)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, env.Status())
	assert.Equal(t, 0, world.Turn)
	assert.True(t, world.View(TeamBlue).CanTarget(4), "turn-0 contacts must already be populated")
}

func TestMissingActionsWait(t *testing.T) {
	env := NewEnvironment(nil)
	world, err := env.Reset(validScenario())
	require.NoError(t, err)

	before := make(map[int]Pos)
	for _, e := range world.Entities() {
		before[e.ID] = e.Pos
	}

	res, err := env.Step(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Info.Moves)
	assert.Empty(t, res.Info.Shots)
	for _, e := range world.Entities() {
		assert.Equal(t, before[e.ID], e.Pos)
	}
}

func TestRewardsZeroWhileRunning(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.Reset(validScenario())
	require.NoError(t, err)

	res, err := env.Step(nil)
	require.NoError(t, err)
	assert.False(t, res.Done)
	assert.Equal(t, map[Team]float64{TeamBlue: 0, TeamRed: 0}, res.Rewards)
}

// awacsHunt puts a blue aircraft with a guaranteed-hit missile next to
// the red AWACS so one shot ends the episode.
func awacsHunt() *Scenario {
	one := 1
	sure := 1.0
	return &Scenario{
		GridWidth: 10, GridHeight: 10, Seed: 7,
		MaxStalemateTurns: DefaultMaxStalemateTurns,
		MaxNoMoveTurns:    DefaultMaxNoMoveTurns,
		Entities: []EntityConfig{
			{ID: 1, Kind: KindAWACS, Team: TeamBlue, Pos: Pos{0, 0}},
			{ID: 2, Kind: KindAircraft, Team: TeamBlue, Pos: Pos{5, 5},
				Missiles: &one, BaseHitProb: &sure, MinHitProb: &sure},
			{ID: 3, Kind: KindAWACS, Team: TeamRed, Pos: Pos{5, 6}},
			{ID: 4, Kind: KindAircraft, Team: TeamRed, Pos: Pos{9, 9}},
		},
	}
}

func TestRewardsOnAWACSKill(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.Reset(awacsHunt())
	require.NoError(t, err)

	res, err := env.Step(map[int]Action{2: Shoot(3)})
	require.NoError(t, err)
	require.True(t, res.Done)
	assert.Equal(t, ReasonAWACSDestroyed, res.Info.Reason)
	assert.Equal(t, TeamBlue, res.Info.Winner)
	assert.Equal(t, float64(1), res.Rewards[TeamBlue])
	assert.Equal(t, float64(-1), res.Rewards[TeamRed])
	assert.Equal(t, StatusTerminal, env.Status())
}

func TestTerminalStepReturnsCachedResult(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.Reset(awacsHunt())
	require.NoError(t, err)

	final, err := env.Step(map[int]Action{2: Shoot(3)})
	require.NoError(t, err)
	require.True(t, final.Done)
	turn := final.World.Turn

	// Overshooting the episode is harmless: same result, no mutation.
	again, err := env.Step(map[int]Action{4: Move(DirUp)})
	require.NoError(t, err)
	assert.Equal(t, final, again)
	assert.Equal(t, turn, env.World().Turn)
}

func TestDrawRewards(t *testing.T) {
	sure := 1.0
	big := 12.0
	sc := &Scenario{
		GridWidth: 10, GridHeight: 10, Seed: 3,
		MaxStalemateTurns: DefaultMaxStalemateTurns,
		MaxNoMoveTurns:    DefaultMaxNoMoveTurns,
		Entities: []EntityConfig{
			{ID: 1, Kind: KindAWACS, Team: TeamBlue, Pos: Pos{4, 4}},
			{ID: 2, Kind: KindAircraft, Team: TeamBlue, Pos: Pos{4, 5},
				BaseHitProb: &sure, MinHitProb: &sure, RadarRange: &big},
			{ID: 3, Kind: KindAWACS, Team: TeamRed, Pos: Pos{5, 4}},
			{ID: 4, Kind: KindAircraft, Team: TeamRed, Pos: Pos{5, 5},
				BaseHitProb: &sure, MinHitProb: &sure, RadarRange: &big},
		},
	}
	env := NewEnvironment(nil)
	_, err := env.Reset(sc)
	require.NoError(t, err)

	// Both AWACS die in the same turn: a draw, zero reward for both.
	res, err := env.Step(map[int]Action{2: Shoot(3), 4: Shoot(1)})
	require.NoError(t, err)
	require.True(t, res.Done)
	assert.Equal(t, ReasonAWACSDestroyed, res.Info.Reason)
	assert.Equal(t, Team(""), res.Info.Winner)
	assert.Equal(t, map[Team]float64{TeamBlue: 0, TeamRed: 0}, res.Rewards)
}

// runTrace drives one full episode under a fixed policy and returns a
// printable per-turn trace of every entity's state.
func runTrace(t *testing.T, sc *Scenario, turns int) string {
	t.Helper()
	env := NewEnvironment(nil)
	world, err := env.Reset(sc)
	require.NoError(t, err)

	dirs := []Direction{DirUp, DirRight, DirDown, DirLeft}
	var trace string
	for i := 0; i < turns; i++ {
		actions := make(map[int]Action)
		for j, e := range world.AliveEntities() {
			if e.CanMove {
				actions[e.ID] = Move(dirs[(i+j)%len(dirs)])
			}
			for _, c := range world.View(e.Team).Contacts() {
				if e.CanShoot && e.Missiles > 0 {
					actions[e.ID] = Shoot(c.EntityID)
					break
				}
			}
		}
		res, err := env.Step(actions)
		require.NoError(t, err)
		for _, e := range world.Entities() {
			trace += fmt.Sprintf("t%d id%d %v alive=%v m=%d cd=%d\n",
				world.Turn, e.ID, e.Pos, e.Alive, e.Missiles, e.Cooldown)
		}
		if res.Done {
			trace += "end " + res.Info.Reason + "\n"
			break
		}
	}
	return trace
}

func TestEpisodeDeterminism(t *testing.T) {
	a := runTrace(t, validScenario(), 40)
	b := runTrace(t, validScenario(), 40)
	assert.Equal(t, a, b, "same seed and policy must replay identically")
}

func TestSeedShapesCombatOutcome(t *testing.T) {
	coin := 0.5
	many := 50
	duel := func(seed int64) *Scenario {
		return &Scenario{
			GridWidth: 12, GridHeight: 12, Seed: seed,
			MaxStalemateTurns: DefaultMaxStalemateTurns,
			MaxNoMoveTurns:    DefaultMaxNoMoveTurns,
			Entities: []EntityConfig{
				{ID: 1, Kind: KindAWACS, Team: TeamBlue, Pos: Pos{0, 0}},
				{ID: 2, Kind: KindAircraft, Team: TeamBlue, Pos: Pos{5, 5},
					Missiles: &many, BaseHitProb: &coin, MinHitProb: &coin},
				{ID: 3, Kind: KindAWACS, Team: TeamRed, Pos: Pos{11, 11}},
				{ID: 4, Kind: KindAircraft, Team: TeamRed, Pos: Pos{5, 7},
					Missiles: &many, BaseHitProb: &coin, MinHitProb: &coin},
			},
		}
	}

	// The aircraft duel at coin-flip odds until one dies, so the turn it
	// happens on is pure hit-draw. Ten seeds producing one shared trace
	// would mean the seed is ignored somewhere.
	traces := make(map[string]bool)
	for seed := int64(1); seed <= 10; seed++ {
		traces[runTrace(t, duel(seed), 30)] = true
	}
	assert.Greater(t, len(traces), 1)
}

func TestOccupancyInvariantHolds(t *testing.T) {
	env := NewEnvironment(nil)
	world, err := env.Reset(validScenario())
	require.NoError(t, err)

	dirs := []Direction{DirUp, DirRight, DirDown, DirLeft}
	for i := 0; i < 30; i++ {
		actions := make(map[int]Action)
		for j, e := range world.AliveEntities() {
			if e.CanMove {
				actions[e.ID] = Move(dirs[(i*j)%len(dirs)])
			}
		}
		res, err := env.Step(actions)
		require.NoError(t, err)

		seen := make(map[Pos]int)
		for _, e := range world.AliveEntities() {
			if prev, ok := seen[e.Pos]; ok {
				t.Fatalf("turn %d: entities %d and %d share cell %v", world.Turn, prev, e.ID, e.Pos)
			}
			seen[e.Pos] = e.ID
			assert.True(t, world.Grid.InBounds(e.Pos))
		}
		if res.Done {
			break
		}
	}
}
