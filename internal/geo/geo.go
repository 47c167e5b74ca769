package geo

import (
	"errors"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/gridcombat/engine/internal/sim"
)

// Replays store entity movement as WKT geometry so recordings can be
// loaded into spatial tooling without knowing the engine's grid types.

// ErrShortTrace is returned when a movement trace has fewer than two points.
var ErrShortTrace = errors.New("trace needs at least 2 points")

// Point converts a grid cell to a geometry point.
func Point(p sim.Pos) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: float64(p.X), Y: float64(p.Y)},
		Type: geom.DimXY,
	})
}

// Trace builds a line string from the cells an entity visited, in
// visit order. Consecutive duplicate cells (turns spent waiting) are
// collapsed.
func Trace(path []sim.Pos) (geom.LineString, error) {
	flat := make([]float64, 0, len(path)*2)
	var prev sim.Pos
	points := 0
	for i, p := range path {
		if i > 0 && p == prev {
			continue
		}
		flat = append(flat, float64(p.X), float64(p.Y))
		prev = p
		points++
	}
	if points < 2 {
		return geom.LineString{}, ErrShortTrace
	}

	seq := geom.NewSequence(flat, geom.DimXY)
	return geom.NewLineString(seq), nil
}

// TraceWKT renders a movement path as WKT, the form replays persist.
func TraceWKT(path []sim.Pos) (string, error) {
	ls, err := Trace(path)
	if err != nil {
		return "", err
	}
	return ls.AsText(), nil
}

// TraceLength returns the euclidean length of a movement trace. A path
// too short to form a line has length zero.
func TraceLength(path []sim.Pos) float64 {
	ls, err := Trace(path)
	if err != nil {
		return 0
	}
	return ls.Length()
}
