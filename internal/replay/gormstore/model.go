package gormstore

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DatabaseModels lists every table the replay store migrates.
var DatabaseModels = []any{
	&Episode{},
	&Entity{},
	&Turn{},
}

// Episode is one recorded episode. Outcome columns stay zero until the
// episode ends.
type Episode struct {
	gorm.Model
	EpisodeID  string `gorm:"size:127;index"`
	Scenario   string `gorm:"size:255"`
	Seed       int64
	GridWidth  int
	GridHeight int
	StartTime  time.Time
	EndTime    time.Time
	Turns      int
	Winner     string `gorm:"size:15"`
	Draw       bool
	Reason     string `gorm:"size:63"`
	Rewards    datatypes.JSON
}

// Entity is one roster entry, written at episode start.
type Entity struct {
	gorm.Model
	EpisodeRef uint `gorm:"index"`
	EntityID   int
	Kind       string `gorm:"size:31"`
	Team       string `gorm:"size:15"`
	X          int
	Y          int
	Missiles   int
}

// Turn is one resolved turn. Moves, shots, and entity states are stored
// as JSON documents rather than normalized rows.
type Turn struct {
	gorm.Model
	EpisodeRef uint `gorm:"index"`
	Turn       int
	Moves      datatypes.JSON
	Shots      datatypes.JSON
	States     datatypes.JSON
}
