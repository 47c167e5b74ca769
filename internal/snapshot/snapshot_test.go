package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridcombat/engine/internal/sim"
	"github.com/gridcombat/engine/pkg/core"
)

// Blue AWACS sees the red aircraft at reset; red sees nothing because
// its own AWACS is out of range of everything blue.
func testWorld(t *testing.T) *sim.WorldState {
	t.Helper()

	env := sim.NewEnvironment(nil)
	world, err := env.Reset(&sim.Scenario{
		GridWidth:  20,
		GridHeight: 20,
		Seed:       7,
		Entities: []sim.EntityConfig{
			{ID: 1, Kind: sim.KindAWACS, Team: sim.TeamBlue, Pos: sim.Pos{X: 2, Y: 2}},
			{ID: 2, Kind: sim.KindAircraft, Team: sim.TeamBlue, Pos: sim.Pos{X: 4, Y: 2}},
			{ID: 3, Kind: sim.KindAWACS, Team: sim.TeamRed, Pos: sim.Pos{X: 19, Y: 19}},
			{ID: 4, Kind: sim.KindAircraft, Team: sim.TeamRed, Pos: sim.Pos{X: 10, Y: 2}},
		},
	})
	require.NoError(t, err)
	return world
}

func TestBuildCapturesEntitiesAndPictures(t *testing.T) {
	world := testWorld(t)
	rec := &core.TurnRecord{Turn: 0}

	snap, err := Build(world, rec)
	require.NoError(t, err)

	assert.Equal(t, 0, snap.Turn)
	assert.Same(t, rec, snap.Record)
	require.Len(t, snap.Entities, 4)
	require.Len(t, snap.Pictures, 2)

	byID := map[int]EntityView{}
	for _, e := range snap.Entities {
		byID[e.ID] = e
	}
	assert.Equal(t, "awacs", byID[1].Kind)
	assert.Equal(t, "BLUE", byID[1].Team)
	assert.True(t, byID[1].RadarOn)
	assert.True(t, byID[4].Alive)

	var blue, red TeamPicture
	for _, p := range snap.Pictures {
		switch p.Team {
		case "BLUE":
			blue = p
		case "RED":
			red = p
		}
	}
	require.Len(t, blue.Contacts, 1)
	assert.Equal(t, 4, blue.Contacts[0].ID)
	assert.Equal(t, "aircraft", blue.Contacts[0].Kind)
	assert.Empty(t, red.Contacts)
}

func TestBuildIsolatesFromLiveWorld(t *testing.T) {
	world := testWorld(t)

	snap, err := Build(world, nil)
	require.NoError(t, err)

	// Mutate the live world after the snapshot was taken.
	world.Entity(4).Alive = false
	world.Entity(1).Pos = sim.Pos{X: 9, Y: 9}

	byID := map[int]EntityView{}
	for _, e := range snap.Entities {
		byID[e.ID] = e
	}
	assert.True(t, byID[4].Alive)
	assert.Equal(t, 2, byID[1].X)
}

func TestBuildReportsApparentKindForDecoys(t *testing.T) {
	env := sim.NewEnvironment(nil)
	world, err := env.Reset(&sim.Scenario{
		GridWidth:  12,
		GridHeight: 12,
		Seed:       3,
		Entities: []sim.EntityConfig{
			{ID: 1, Kind: sim.KindAWACS, Team: sim.TeamBlue, Pos: sim.Pos{X: 2, Y: 2}},
			{ID: 2, Kind: sim.KindAWACS, Team: sim.TeamRed, Pos: sim.Pos{X: 11, Y: 11}},
			{ID: 3, Kind: sim.KindDecoy, Team: sim.TeamRed, Pos: sim.Pos{X: 5, Y: 2}},
		},
	})
	require.NoError(t, err)

	snap, err := Build(world, nil)
	require.NoError(t, err)

	var blue TeamPicture
	for _, p := range snap.Pictures {
		if p.Team == "BLUE" {
			blue = p
		}
	}
	require.Len(t, blue.Contacts, 1)
	assert.Equal(t, 3, blue.Contacts[0].ID)
	assert.Equal(t, "aircraft", blue.Contacts[0].Kind, "decoys must appear as aircraft")

	// The omniscient entity list keeps the true kind.
	for _, e := range snap.Entities {
		if e.ID == 3 {
			assert.Equal(t, "decoy", e.Kind)
		}
	}
}
