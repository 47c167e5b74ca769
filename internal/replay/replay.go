// internal/replay/replay.go
package replay

import "github.com/gridcombat/engine/pkg/core"

// Backend is the interface all replay sinks must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Episode recording
	StartEpisode(meta *core.EpisodeMeta, roster []core.EntityRecord) error
	RecordTurn(t *core.TurnRecord) error
	EndEpisode(res *core.EpisodeResult) error
}

// Exported is an optional interface for replay backends that produce
// files suitable for loading into analysis tooling.
type Exported interface {
	ExportedFilePath() string
}
