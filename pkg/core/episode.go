// pkg/core/episode.go
package core

import "time"

// EpisodeMeta describes one recorded episode.
type EpisodeMeta struct {
	EpisodeID  string    `json:"episodeId"`
	Scenario   string    `json:"scenario"`
	Seed       int64     `json:"seed"`
	GridWidth  int       `json:"gridWidth"`
	GridHeight int       `json:"gridHeight"`
	StartTime  time.Time `json:"startTime"`
}

// UploadMetadata accompanies a replay file pushed to a viewer server.
type UploadMetadata struct {
	EpisodeID string `json:"episodeId"`
	Scenario  string `json:"scenario"`
	Turns     int    `json:"turns"`
	Winner    string `json:"winner"`
	Tag       string `json:"tag"`
}

// EpisodeResult is the final outcome of an episode.
type EpisodeResult struct {
	Turns   int                `json:"turns"`
	Winner  string             `json:"winner,omitempty"` // empty on draw
	Draw    bool               `json:"draw"`
	Reason  string             `json:"reason"`
	Rewards map[string]float64 `json:"rewards"`
	EndTime time.Time          `json:"endTime"`
}
