package sim

import "sort"

// Observation is one sensed enemy contact: where it appears to be and
// what it appears to be. Apparent kind may differ from the true kind
// (decoys report as aircraft).
type Observation struct {
	EntityID int  `json:"entityId"`
	Team     Team `json:"team"`
	Kind     Kind `json:"kind"`
	Pos      Pos  `json:"pos"`
}

// TeamView is one team's current fog-of-war picture: the set of enemy
// contacts its sensors can see right now. The set is fully replaced on
// every sensor refresh, never merged, so stale visibility cannot leak.
type TeamView struct {
	team     Team
	contacts map[int]Observation
}

// NewTeamView builds an empty view for a team.
func NewTeamView(team Team) *TeamView {
	return &TeamView{
		team:     team,
		contacts: make(map[int]Observation),
	}
}

// Team returns the owning team.
func (v *TeamView) Team() Team {
	return v.team
}

// Reset discards every contact. Called at the start of each refresh.
func (v *TeamView) Reset() {
	v.contacts = make(map[int]Observation)
}

func (v *TeamView) add(obs Observation) {
	v.contacts[obs.EntityID] = obs
}

// Drop removes a contact, used when the observed entity is destroyed
// mid-turn so a dead unit never lingers in any view.
func (v *TeamView) Drop(entityID int) {
	delete(v.contacts, entityID)
}

// CanTarget reports whether the entity is a currently visible enemy.
// Fog-of-war is authoritative: shooters may only engage contacts.
func (v *TeamView) CanTarget(entityID int) bool {
	_, ok := v.contacts[entityID]
	return ok
}

// Contact returns the observation of a specific entity, if visible.
func (v *TeamView) Contact(entityID int) (Observation, bool) {
	obs, ok := v.contacts[entityID]
	return obs, ok
}

// Contacts returns all current contacts ordered by entity id.
func (v *TeamView) Contacts() []Observation {
	out := make([]Observation, 0, len(v.contacts))
	for _, obs := range v.contacts {
		out = append(out, obs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}

// Len returns the number of contacts.
func (v *TeamView) Len() int {
	return len(v.contacts)
}
