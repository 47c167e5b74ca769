package scenario

import (
	"fmt"
	"sort"

	"github.com/gridcombat/engine/internal/sim"
)

// presets are the built-in scenarios available without a file.
var presets = map[string]func() *sim.Scenario{
	"duel":         duel,
	"sam-line":     samLine,
	"decoy-screen": decoyScreen,
}

// Preset returns a built-in scenario by name.
func Preset(name string) (*sim.Scenario, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (have %v)", name, PresetNames())
	}
	s := build()
	applyDefaults(s)
	return s, nil
}

// PresetNames lists the built-in scenarios in stable order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// duel is a symmetric one-aircraft-per-side scenario.
func duel() *sim.Scenario {
	return &sim.Scenario{
		GridWidth:  16,
		GridHeight: 16,
		Seed:       1,
		Entities: []sim.EntityConfig{
			{ID: 1, Kind: sim.KindAWACS, Team: sim.TeamBlue, Pos: sim.Pos{X: 1, Y: 1}},
			{ID: 2, Kind: sim.KindAircraft, Team: sim.TeamBlue, Pos: sim.Pos{X: 3, Y: 3}},
			{ID: 3, Kind: sim.KindAWACS, Team: sim.TeamRed, Pos: sim.Pos{X: 14, Y: 14}},
			{ID: 4, Kind: sim.KindAircraft, Team: sim.TeamRed, Pos: sim.Pos{X: 12, Y: 12}},
		},
	}
}

// samLine pits a blue strike pair against a red SAM belt screening its
// AWACS behind a decoy.
func samLine() *sim.Scenario {
	return &sim.Scenario{
		GridWidth:  24,
		GridHeight: 24,
		Seed:       1,
		Entities: []sim.EntityConfig{
			{ID: 1, Kind: sim.KindAWACS, Team: sim.TeamBlue, Pos: sim.Pos{X: 2, Y: 12}},
			{ID: 2, Kind: sim.KindAircraft, Team: sim.TeamBlue, Pos: sim.Pos{X: 5, Y: 10}},
			{ID: 3, Kind: sim.KindAircraft, Team: sim.TeamBlue, Pos: sim.Pos{X: 5, Y: 14}},
			{ID: 4, Kind: sim.KindAWACS, Team: sim.TeamRed, Pos: sim.Pos{X: 21, Y: 12}},
			{ID: 5, Kind: sim.KindSAM, Team: sim.TeamRed, Pos: sim.Pos{X: 16, Y: 8}},
			{ID: 6, Kind: sim.KindSAM, Team: sim.TeamRed, Pos: sim.Pos{X: 16, Y: 16}},
			{ID: 7, Kind: sim.KindDecoy, Team: sim.TeamRed, Pos: sim.Pos{X: 18, Y: 12}},
		},
	}
}

// decoyScreen gives both sides a decoy flying ahead of the AWACS.
func decoyScreen() *sim.Scenario {
	return &sim.Scenario{
		GridWidth:  20,
		GridHeight: 20,
		Seed:       1,
		Entities: []sim.EntityConfig{
			{ID: 1, Kind: sim.KindAWACS, Team: sim.TeamBlue, Pos: sim.Pos{X: 1, Y: 10}},
			{ID: 2, Kind: sim.KindAircraft, Team: sim.TeamBlue, Pos: sim.Pos{X: 4, Y: 8}},
			{ID: 3, Kind: sim.KindDecoy, Team: sim.TeamBlue, Pos: sim.Pos{X: 4, Y: 12}},
			{ID: 4, Kind: sim.KindAWACS, Team: sim.TeamRed, Pos: sim.Pos{X: 18, Y: 10}},
			{ID: 5, Kind: sim.KindAircraft, Team: sim.TeamRed, Pos: sim.Pos{X: 15, Y: 12}},
			{ID: 6, Kind: sim.KindDecoy, Team: sim.TeamRed, Pos: sim.Pos{X: 15, Y: 8}},
		},
	}
}
