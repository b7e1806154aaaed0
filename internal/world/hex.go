// Package world provides the hex grid, board index and pointer resolution for
// the tabletop board. Uses axial coordinates (q, r) for the hex grid.
package world

import (
	"fmt"
	"strconv"
	"strings"
)

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// Add returns h+o in axial space.
func (h HexCoord) Add(o HexCoord) HexCoord {
	return HexCoord{Q: h.Q + o.Q, R: h.R + o.R}
}

// Scale multiplies both components by k.
func (h HexCoord) Scale(k int) HexCoord {
	return HexCoord{Q: h.Q * k, R: h.R * k}
}

// Key returns the canonical "q,r" encoding used by the renderer.
func (h HexCoord) Key() string {
	return strconv.Itoa(h.Q) + "," + strconv.Itoa(h.R)
}

func (h HexCoord) String() string {
	return fmt.Sprintf("(%d,%d)", h.Q, h.R)
}

// ParseKey is the inverse of Key.
func ParseKey(key string) (HexCoord, error) {
	qs, rs, ok := strings.Cut(key, ",")
	if !ok {
		return HexCoord{}, fmt.Errorf("hex key %q: missing comma", key)
	}
	q, err := strconv.Atoi(strings.TrimSpace(qs))
	if err != nil {
		return HexCoord{}, fmt.Errorf("hex key %q: %w", key, err)
	}
	r, err := strconv.Atoi(strings.TrimSpace(rs))
	if err != nil {
		return HexCoord{}, fmt.Errorf("hex key %q: %w", key, err)
	}
	return HexCoord{Q: q, R: r}, nil
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
// The same offsets apply to both flat-top and pointy-top layouts.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// NeighborOffsets returns a copy of the six axial direction vectors.
func NeighborOffsets() [6]HexCoord {
	return HexNeighborDirections
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = h.Add(dir)
	}
	return result
}

// HexDistance returns the number of neighbor steps from the origin to (q, r).
func HexDistance(q, r int) int {
	return max(abs(q), abs(r), abs(q+r))
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	return HexDistance(a.Q-b.Q, a.R-b.R)
}

// Ring returns the coordinates at exactly distance k from center, walking
// counter-clockwise from center + dir[4]*k. Ring(c, 0) is [c].
func Ring(center HexCoord, k int) []HexCoord {
	if k <= 0 {
		return []HexCoord{center}
	}
	res := make([]HexCoord, 0, 6*k)
	cur := center.Add(HexNeighborDirections[4].Scale(k))
	for side := 0; side < 6; side++ {
		for step := 0; step < k; step++ {
			res = append(res, cur)
			cur = cur.Add(HexNeighborDirections[side])
		}
	}
	return res
}

// Disk returns every coordinate within distance k of center, ring by ring.
// A disk of radius k holds 1 + 3k(k+1) cells.
func Disk(center HexCoord, k int) []HexCoord {
	res := make([]HexCoord, 0, 1+3*k*(k+1))
	for ring := 0; ring <= k; ring++ {
		res = append(res, Ring(center, ring)...)
	}
	return res
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
