package sim

import "math"

// Pos is an integer grid coordinate. X increases to the right,
// Y increases upward, origin at the bottom-left.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Grid is a bounded 2D coordinate space. It carries no state beyond
// its dimensions; occupancy lives on the world.
type Grid struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// InBounds reports whether p lies inside the grid.
func (g Grid) InBounds(p Pos) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// Distance returns the straight-line distance between two cells.
func (g Grid) Distance(a, b Pos) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// Manhattan returns the taxicab distance between two cells.
func (g Grid) Manhattan(a, b Pos) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Neighbors returns the in-bounds cardinal neighbors of p.
func (g Grid) Neighbors(p Pos) []Pos {
	candidates := []Pos{
		{p.X, p.Y + 1},
		{p.X, p.Y - 1},
		{p.X - 1, p.Y},
		{p.X + 1, p.Y},
	}
	out := make([]Pos, 0, 4)
	for _, c := range candidates {
		if g.InBounds(c) {
			out = append(out, c)
		}
	}
	return out
}
