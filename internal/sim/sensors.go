package sim

// RefreshObservations recomputes every team's fog-of-war view from the
// current entity positions. Each view is rebuilt from scratch: a unit
// that moved out of range, or a SAM that switched its radar off, drops
// out immediately rather than lingering as a stale contact.
//
// Visibility is a property of the observed entity, not of who is
// looking: a radar-off SAM is hidden from all enemy sensors, and a
// decoy is always reported with its apparent kind.
func RefreshObservations(w *WorldState) {
	for _, team := range []Team{TeamBlue, TeamRed} {
		view := w.View(team)
		view.Reset()

		sensors := make([]*Entity, 0)
		for _, e := range w.TeamEntities(team) {
			if e.ActiveRadarRange() > 0 {
				sensors = append(sensors, e)
			}
		}

		for _, enemy := range w.TeamEntities(team.Opponent()) {
			if !enemy.SensorVisible() {
				continue
			}
			for _, s := range sensors {
				if w.Grid.Distance(s.Pos, enemy.Pos) <= s.ActiveRadarRange() {
					view.add(Observation{
						EntityID: enemy.ID,
						Team:     enemy.Team,
						Kind:     enemy.VisibleAs,
						Pos:      enemy.Pos,
					})
					break
				}
			}
		}
	}
}
