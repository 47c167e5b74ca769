package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHitProbability(t *testing.T) {
	tests := []struct {
		name string
		dist float64
		want float64
	}{
		{"point blank", 0, 0.8},
		{"quarter range", 1, 0.625},
		{"half range", 2, 0.45},
		{"at max range", 4, 0.1},
		{"beyond max range", 9, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HitProbability(tt.dist, 4, 0.8, 0.1)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestHitProbabilityMonotone(t *testing.T) {
	prev := 2.0
	for d := 0.0; d <= 6; d += 0.25 {
		p := HitProbability(d, 4, 0.8, 0.1)
		assert.LessOrEqual(t, p, prev, "distance %v", d)
		prev = p
	}
}

// armedPair puts a blue shooter and a red target in mutual radar view.
func armedPair(t *testing.T, seed int64) (*WorldState, *Entity, *Entity) {
	t.Helper()
	w := newTestWorld(t, 20, 20, seed)
	shooter := NewAircraft(1, TeamBlue, Pos{5, 5})
	target := NewAircraft(2, TeamRed, Pos{7, 5})
	require.NoError(t, w.AddEntity(shooter))
	require.NoError(t, w.AddEntity(target))
	RefreshObservations(w)
	return w, shooter, target
}

func TestCombatInvalidShotsSpendNothing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(w *WorldState, shooter, target *Entity)
		reason string
	}{
		{
			name:   "unarmed shooter",
			mutate: func(w *WorldState, s, _ *Entity) { s.CanShoot = false },
			reason: ReasonCannotShoot,
		},
		{
			name:   "no missiles",
			mutate: func(w *WorldState, s, _ *Entity) { s.Missiles = 0 },
			reason: ReasonNoMissiles,
		},
		{
			name: "cooling down",
			mutate: func(w *WorldState, s, _ *Entity) {
				s.CooldownSteps = 3
				s.StartCooldown()
			},
			reason: ReasonCoolingDown,
		},
		{
			name: "target not visible",
			mutate: func(w *WorldState, _, tgt *Entity) {
				tgt.Pos = Pos{19, 19}
				RefreshObservations(w)
			},
			reason: ReasonNotVisible,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, shooter, target := armedPair(t, 3)
			before := shooter.Missiles
			tt.mutate(w, shooter, target)

			results := ResolveCombat(w, map[int]Action{1: Shoot(2)})

			require.Len(t, results, 1)
			assert.False(t, results[0].Valid)
			assert.Equal(t, tt.reason, results[0].Reason)
			if tt.reason != ReasonNoMissiles {
				assert.Equal(t, before, shooter.Missiles, "no missile spent on a no-op")
			}
			assert.True(t, target.Alive)
		})
	}
}

func TestCombatValidShotSpendsOneMissile(t *testing.T) {
	w, shooter, _ := armedPair(t, 3)
	before := shooter.Missiles

	results := ResolveCombat(w, map[int]Action{1: Shoot(2)})

	require.Len(t, results, 1)
	assert.True(t, results[0].Valid)
	assert.Equal(t, before-1, shooter.Missiles, "exactly one missile per attempt, hit or miss")
	assert.GreaterOrEqual(t, shooter.Missiles, 0)
}

func TestCombatOutOfRangeGuaranteedMiss(t *testing.T) {
	w := newTestWorld(t, 30, 20, 3)
	shooter := NewAircraft(1, TeamBlue, Pos{0, 5})
	shooter.RadarRange = 20 // sees further than it can shoot
	target := NewAircraft(2, TeamRed, Pos{10, 5})
	require.NoError(t, w.AddEntity(shooter))
	require.NoError(t, w.AddEntity(target))
	RefreshObservations(w)
	require.True(t, w.View(TeamBlue).CanTarget(2))

	before := shooter.Missiles
	results := ResolveCombat(w, map[int]Action{1: Shoot(2)})

	require.Len(t, results, 1)
	assert.True(t, results[0].Valid, "the shot is taken and wasted")
	assert.False(t, results[0].Hit)
	assert.True(t, target.Alive)
	assert.Equal(t, before-1, shooter.Missiles, "an out-of-range shot still burns a missile")
	assert.InDelta(t, shooter.MinHitProb, results[0].HitProb, 1e-9)
}

func TestCombatSAMRules(t *testing.T) {
	w := newTestWorld(t, 20, 20, 3)
	sam := NewSAM(1, TeamBlue, Pos{5, 5})
	target := NewAircraft(2, TeamRed, Pos{7, 5})
	require.NoError(t, w.AddEntity(sam))
	require.NoError(t, w.AddEntity(target))

	// Radar off: no track, no shot.
	RefreshObservations(w)
	results := ResolveCombat(w, map[int]Action{1: Shoot(2)})
	require.Len(t, results, 1)
	assert.Equal(t, ReasonRadarOff, results[0].Reason)

	sam.RadarOn = true
	RefreshObservations(w)
	before := sam.Missiles
	results = ResolveCombat(w, map[int]Action{1: Shoot(2)})
	require.Len(t, results, 1)
	assert.True(t, results[0].Valid)
	assert.Equal(t, before-1, sam.Missiles)
	assert.Equal(t, sam.CooldownSteps, sam.Cooldown, "firing starts the cooldown, hit or miss")
}

func TestCombatKillDropsFromAllViews(t *testing.T) {
	// base_hit_prob 1.0 at distance below max range guarantees the kill.
	w := newTestWorld(t, 20, 20, 3)
	shooter := NewAircraft(1, TeamBlue, Pos{5, 5})
	shooter.BaseHitProb = 1.0
	shooter.MinHitProb = 1.0
	target := NewAircraft(2, TeamRed, Pos{6, 5})
	require.NoError(t, w.AddEntity(shooter))
	require.NoError(t, w.AddEntity(target))
	RefreshObservations(w)

	results := ResolveCombat(w, map[int]Action{1: Shoot(2)})

	require.Len(t, results, 1)
	assert.True(t, results[0].Hit)
	assert.True(t, results[0].Killed)
	assert.False(t, target.Alive)
	assert.False(t, w.View(TeamBlue).CanTarget(2), "destroyed contact leaves the views at once")
	assert.False(t, w.IsOccupied(Pos{6, 5}), "destroyed entity frees its cell")
}

func TestCombatStalemateCounter(t *testing.T) {
	w, shooter, _ := armedPair(t, 3)

	ResolveCombat(w, map[int]Action{})
	ResolveCombat(w, map[int]Action{})
	assert.Equal(t, 2, w.TurnsWithoutShot)

	ResolveCombat(w, map[int]Action{shooter.ID: Shoot(2)})
	assert.Equal(t, 0, w.TurnsWithoutShot, "an attempted shot resets the counter")

	shooter.Missiles = 0
	ResolveCombat(w, map[int]Action{shooter.ID: Shoot(2)})
	assert.Equal(t, 1, w.TurnsWithoutShot, "a rejected shot does not count as combat")
}
