package sim

// Team identifies which side an entity fights for.
type Team string

const (
	TeamBlue Team = "BLUE"
	TeamRed  Team = "RED"
)

// Opponent returns the opposing team.
func (t Team) Opponent() Team {
	if t == TeamBlue {
		return TeamRed
	}
	return TeamBlue
}

// Kind names a unit preset. Kinds are presets of the capability set on
// Entity, not separate code paths: resolvers branch on capability flags,
// never on Kind.
type Kind string

const (
	KindAircraft Kind = "aircraft"
	KindAWACS    Kind = "awacs"
	KindSAM      Kind = "sam"
	KindDecoy    Kind = "decoy"
)

// Entity is a single unit on the grid. All per-kind behavior is encoded
// in the capability flags and numeric parameters; a new unit kind is a
// new preset, not new code.
type Entity struct {
	ID    int  `json:"id"`
	Team  Team `json:"team"`
	Kind  Kind `json:"kind"`
	Pos   Pos  `json:"pos"`
	Alive bool `json:"alive"`

	CanMove         bool `json:"canMove"`
	CanShoot        bool `json:"canShoot"`
	HasRadar        bool `json:"hasRadar"`
	RadarToggleable bool `json:"radarToggleable"`
	RadarOn         bool `json:"radarOn"`

	// VisibleAs is the apparent kind reported to enemy sensors,
	// distinct from the true Kind (decoys masquerade as aircraft).
	VisibleAs Kind `json:"visibleAs"`

	Missiles        int     `json:"missiles"`
	RadarRange      float64 `json:"radarRange"`
	MissileMaxRange float64 `json:"missileMaxRange"`
	BaseHitProb     float64 `json:"baseHitProb"`
	MinHitProb      float64 `json:"minHitProb"`
	CooldownSteps   int     `json:"cooldownSteps"`
	Cooldown        int     `json:"cooldown"`
}

// Default unit stats. Scenario rosters may override any of them per entity.
const (
	defaultAircraftRadar    = 5.0
	defaultAircraftMissiles = 3
	defaultAircraftMaxRange = 3.5
	defaultAircraftBaseHit  = 0.75
	defaultAircraftMinHit   = 0.2

	defaultAWACSRadar = 8.0

	defaultSAMRadar    = 6.0
	defaultSAMMissiles = 4
	defaultSAMMaxRange = 5.0
	defaultSAMBaseHit  = 0.8
	defaultSAMMinHit   = 0.1
	defaultSAMCooldown = 4
)

// NewAircraft builds the baseline mobile unit: moves, shoots, always-on radar.
func NewAircraft(id int, team Team, pos Pos) *Entity {
	return &Entity{
		ID: id, Team: team, Kind: KindAircraft, Pos: pos, Alive: true,
		CanMove: true, CanShoot: true, HasRadar: true, RadarOn: true,
		VisibleAs:       KindAircraft,
		Missiles:        defaultAircraftMissiles,
		RadarRange:      defaultAircraftRadar,
		MissileMaxRange: defaultAircraftMaxRange,
		BaseHitProb:     defaultAircraftBaseHit,
		MinHitProb:      defaultAircraftMinHit,
	}
}

// NewAWACS builds the surveillance unit. It is unarmed and its
// destruction is the primary win condition.
func NewAWACS(id int, team Team, pos Pos) *Entity {
	return &Entity{
		ID: id, Team: team, Kind: KindAWACS, Pos: pos, Alive: true,
		CanMove: true, HasRadar: true, RadarOn: true,
		VisibleAs:  KindAWACS,
		RadarRange: defaultAWACSRadar,
	}
}

// NewSAM builds a stationary launcher with a toggleable radar. The radar
// starts off, which also hides the SAM from every enemy sensor.
func NewSAM(id int, team Team, pos Pos) *Entity {
	return &Entity{
		ID: id, Team: team, Kind: KindSAM, Pos: pos, Alive: true,
		CanShoot: true, HasRadar: true, RadarToggleable: true,
		VisibleAs:       KindSAM,
		Missiles:        defaultSAMMissiles,
		RadarRange:      defaultSAMRadar,
		MissileMaxRange: defaultSAMMaxRange,
		BaseHitProb:     defaultSAMBaseHit,
		MinHitProb:      defaultSAMMinHit,
		CooldownSteps:   defaultSAMCooldown,
	}
}

// NewDecoy builds an unarmed, sensorless unit that enemy radar reports
// as an aircraft.
func NewDecoy(id int, team Team, pos Pos) *Entity {
	return &Entity{
		ID: id, Team: team, Kind: KindDecoy, Pos: pos, Alive: true,
		CanMove:   true,
		VisibleAs: KindAircraft,
	}
}

// ActiveRadarRange returns the sensing range contributed by this entity
// right now: zero when it has no radar, or when a toggleable radar is off.
func (e *Entity) ActiveRadarRange() float64 {
	if !e.HasRadar {
		return 0
	}
	if e.RadarToggleable && !e.RadarOn {
		return 0
	}
	return e.RadarRange
}

// SensorVisible reports whether enemy sensors can detect this entity at
// all this turn. A SAM with its radar off is invisible regardless of
// distance; every other unit is detectable within sensor range.
func (e *Entity) SensorVisible() bool {
	if e.RadarToggleable && !e.RadarOn {
		return false
	}
	return true
}

// OnCooldown reports whether the entity is still locked out from firing.
func (e *Entity) OnCooldown() bool {
	return e.Cooldown > 0
}

// TickCooldown decrements the cooldown counter, stopping at zero. Called
// once per turn for every entity before movement resolves.
func (e *Entity) TickCooldown() {
	if e.Cooldown > 0 {
		e.Cooldown--
	}
}

// StartCooldown restarts the lockout after a shot, hit or miss.
func (e *Entity) StartCooldown() {
	e.Cooldown = e.CooldownSteps
}
