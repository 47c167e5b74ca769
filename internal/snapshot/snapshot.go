// Package snapshot builds display-friendly turn payloads for live
// viewers: the full world state plus each team's fog-of-war picture.
package snapshot

import (
	"github.com/gridcombat/engine/internal/sim"
	"github.com/gridcombat/engine/pkg/core"
)

// EntityView is the true state of one entity, viewer-side.
type EntityView struct {
	ID       int    `json:"id"`
	Kind     string `json:"kind"`
	Team     string `json:"team"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Alive    bool   `json:"alive"`
	Missiles int    `json:"missiles"`
	Cooldown int    `json:"cooldown"`
	RadarOn  bool   `json:"radarOn"`
}

// Contact is one sensed enemy as a team perceives it. Kind and position
// are apparent, not authoritative.
type Contact struct {
	ID   int    `json:"id"`
	Kind string `json:"kind"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// TeamPicture is one team's fog-of-war view.
type TeamPicture struct {
	Team     string    `json:"team"`
	Contacts []Contact `json:"contacts"`
}

// TurnSnapshot is the per-turn payload published for viewers. True
// state and per-team pictures are split so a viewer can render either
// the omniscient board or one side's perception.
type TurnSnapshot struct {
	Turn     int              `json:"turn"`
	Entities []EntityView     `json:"entities"`
	Pictures []TeamPicture    `json:"pictures"`
	Record   *core.TurnRecord `json:"record,omitempty"`
}

// Build captures the world into a snapshot. The world is cloned first
// so buffered consumers never race the live simulation state.
func Build(w *sim.WorldState, rec *core.TurnRecord) (*TurnSnapshot, error) {
	frozen, err := w.Clone()
	if err != nil {
		return nil, err
	}

	snap := &TurnSnapshot{
		Turn:   frozen.Turn,
		Record: rec,
	}

	for _, e := range frozen.Entities() {
		snap.Entities = append(snap.Entities, EntityView{
			ID:       e.ID,
			Kind:     string(e.Kind),
			Team:     string(e.Team),
			X:        e.Pos.X,
			Y:        e.Pos.Y,
			Alive:    e.Alive,
			Missiles: e.Missiles,
			Cooldown: e.Cooldown,
			RadarOn:  e.RadarOn && e.HasRadar,
		})
	}

	for _, team := range []sim.Team{sim.TeamBlue, sim.TeamRed} {
		picture := TeamPicture{Team: string(team), Contacts: []Contact{}}
		for _, obs := range frozen.View(team).Contacts() {
			picture.Contacts = append(picture.Contacts, Contact{
				ID:   obs.EntityID,
				Kind: string(obs.Kind),
				X:    obs.Pos.X,
				Y:    obs.Pos.Y,
			})
		}
		snap.Pictures = append(snap.Pictures, picture)
	}

	return snap, nil
}
