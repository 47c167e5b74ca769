// internal/replay/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gridcombat/engine/internal/geo"
)

// ReplayExport is the root JSON structure a replay viewer loads
type ReplayExport struct {
	EpisodeID  string       `json:"episodeId"`
	Scenario   string       `json:"scenario"`
	Seed       int64        `json:"seed"`
	GridWidth  int          `json:"gridWidth"`
	GridHeight int          `json:"gridHeight"`
	EndTurn    int          `json:"endTurn"`
	Winner     string       `json:"winner,omitempty"`
	Draw       bool         `json:"draw"`
	Reason     string       `json:"reason"`
	Entities   []EntityJSON `json:"entities"`
	Events     [][]any      `json:"events"`
}

// EntityJSON represents one entity's full episode history
type EntityJSON struct {
	ID        int     `json:"id"`
	Kind      string  `json:"kind"`
	Team      string  `json:"team"`
	StartX    int     `json:"startX"`
	StartY    int     `json:"startY"`
	Missiles  int     `json:"missiles"`
	Positions [][]any `json:"positions"`
	Trace     string  `json:"trace,omitempty"` // WKT line string of the movement path
	Distance  float64 `json:"distance"`
}

// exportJSON writes the episode data to a JSON file, gzipped when configured
func (b *Backend) exportJSON() error {
	if b.meta == nil {
		return fmt.Errorf("no episode in progress")
	}

	export := b.buildExport()

	// Build filename
	scenarioName := strings.ReplaceAll(b.meta.Scenario, " ", "_")
	scenarioName = strings.ReplaceAll(scenarioName, ":", "_")
	if scenarioName == "" {
		scenarioName = "episode"
	}
	timestamp := b.meta.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", scenarioName, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", scenarioName, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write file
	if b.cfg.CompressOutput {
		if err := b.writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := b.writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() ReplayExport {
	export := ReplayExport{
		EpisodeID:  b.meta.EpisodeID,
		Scenario:   b.meta.Scenario,
		Seed:       b.meta.Seed,
		GridWidth:  b.meta.GridWidth,
		GridHeight: b.meta.GridHeight,
		Entities:   make([]EntityJSON, 0, len(b.entities)),
		Events:     make([][]any, 0),
	}

	if b.result != nil {
		export.EndTurn = b.result.Turns
		export.Winner = b.result.Winner
		export.Draw = b.result.Draw
		export.Reason = b.result.Reason
	}

	// Convert entities
	for _, track := range b.entities {
		entity := EntityJSON{
			ID:        track.Entity.EntityID,
			Kind:      track.Entity.Kind,
			Team:      track.Entity.Team,
			StartX:    track.Entity.X,
			StartY:    track.Entity.Y,
			Missiles:  track.Entity.Missiles,
			Positions: make([][]any, 0, len(track.States)),
		}

		for i, state := range track.States {
			pos := []any{
				i + 1, // turn number, states are recorded from turn 1
				[]int{state.X, state.Y},
				boolToInt(state.Alive),
				state.Missiles,
				state.Cooldown,
				boolToInt(state.RadarOn),
			}
			entity.Positions = append(entity.Positions, pos)
		}

		// Entities that never moved have no trace
		if wkt, err := geo.TraceWKT(track.Path); err == nil {
			entity.Trace = wkt
			entity.Distance = geo.TraceLength(track.Path)
		}

		export.Entities = append(export.Entities, entity)
	}

	// Convert shots and kills
	// Shot format: [turn, "shot", shooterId, targetId, hit]
	// Kill format: [turn, "killed", targetId, shooterId]
	for _, turn := range b.turns {
		for _, shot := range turn.Shots {
			if !shot.Valid {
				continue
			}
			export.Events = append(export.Events, []any{
				turn.Turn,
				"shot",
				shot.ShooterID,
				shot.TargetID,
				boolToInt(shot.Hit),
			})
			if shot.Killed {
				export.Events = append(export.Events, []any{
					turn.Turn,
					"killed",
					shot.TargetID,
					shot.ShooterID,
				})
			}
		}
	}

	return export
}

func (b *Backend) writeJSON(path string, data ReplayExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func (b *Backend) writeGzipJSON(path string, data ReplayExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
