package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresets(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Entity
		check func(t *testing.T, e *Entity)
	}{
		{
			name:  "aircraft",
			build: func() *Entity { return NewAircraft(1, TeamBlue, Pos{0, 0}) },
			check: func(t *testing.T, e *Entity) {
				assert.True(t, e.CanMove)
				assert.True(t, e.CanShoot)
				assert.True(t, e.HasRadar)
				assert.False(t, e.RadarToggleable)
				assert.Equal(t, KindAircraft, e.VisibleAs)
				assert.Greater(t, e.Missiles, 0)
			},
		},
		{
			name:  "awacs",
			build: func() *Entity { return NewAWACS(2, TeamRed, Pos{1, 1}) },
			check: func(t *testing.T, e *Entity) {
				assert.True(t, e.CanMove)
				assert.False(t, e.CanShoot)
				assert.Equal(t, KindAWACS, e.VisibleAs)
				assert.Greater(t, e.RadarRange, defaultAircraftRadar)
			},
		},
		{
			name:  "sam",
			build: func() *Entity { return NewSAM(3, TeamBlue, Pos{2, 2}) },
			check: func(t *testing.T, e *Entity) {
				assert.False(t, e.CanMove)
				assert.True(t, e.CanShoot)
				assert.True(t, e.RadarToggleable)
				assert.False(t, e.RadarOn, "SAM radar starts off")
				assert.Greater(t, e.CooldownSteps, 0)
			},
		},
		{
			name:  "decoy",
			build: func() *Entity { return NewDecoy(4, TeamRed, Pos{3, 3}) },
			check: func(t *testing.T, e *Entity) {
				assert.True(t, e.CanMove)
				assert.False(t, e.CanShoot)
				assert.False(t, e.HasRadar)
				assert.Equal(t, KindAircraft, e.VisibleAs, "decoy masquerades as aircraft")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.build()
			assert.True(t, e.Alive)
			tt.check(t, e)
		})
	}
}

func TestActiveRadarRange(t *testing.T) {
	sam := NewSAM(1, TeamBlue, Pos{0, 0})
	assert.Equal(t, 0.0, sam.ActiveRadarRange(), "radar off contributes nothing")
	assert.False(t, sam.SensorVisible(), "radar off hides the SAM")

	sam.RadarOn = true
	assert.Equal(t, sam.RadarRange, sam.ActiveRadarRange())
	assert.True(t, sam.SensorVisible())

	decoy := NewDecoy(2, TeamBlue, Pos{1, 1})
	assert.Equal(t, 0.0, decoy.ActiveRadarRange())
	assert.True(t, decoy.SensorVisible(), "decoys are detectable, just mislabeled")
}

func TestCooldownTick(t *testing.T) {
	sam := NewSAM(1, TeamBlue, Pos{0, 0})
	sam.StartCooldown()
	assert.True(t, sam.OnCooldown())

	for i := 0; i < sam.CooldownSteps; i++ {
		sam.TickCooldown()
	}
	assert.False(t, sam.OnCooldown())

	sam.TickCooldown()
	assert.Equal(t, 0, sam.Cooldown, "tick never goes below zero")
}
