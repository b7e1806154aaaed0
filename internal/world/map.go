package world

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrEmptyLayout   = errors.New("board layout has no cells")
	ErrDuplicateCell = errors.New("board layout repeats a coordinate")
	ErrCellNotFound  = errors.New("hex not on board")
)

// LayoutEntry is one row of a static board description.
type LayoutEntry struct {
	Q       int     `yaml:"q" json:"q"`
	R       int     `yaml:"r" json:"r"`
	Terrain Terrain `yaml:"terrain" json:"terrain"`
	Icon    Icon    `yaml:"icon,omitempty" json:"icon,omitempty"`
}

// Coord returns the entry's axial coordinate.
func (e LayoutEntry) Coord() HexCoord {
	return HexCoord{Q: e.Q, R: e.R}
}

// Cell is a single board hex.
type Cell struct {
	Coord     HexCoord `json:"coord"`
	Terrain   Terrain  `json:"terrain"`
	Icon      Icon     `json:"icon,omitempty"`
	Elevation float64  `json:"elevation"`
	Ring      int      `json:"ring"` // HexDistance from (0,0)

	// Occupant is the ID of the piece resting here, empty when free.
	// Single occupancy is not enforced: the last drop wins the slot.
	Occupant string `json:"occupant,omitempty"`
}

// Occupied reports whether a piece rests on the cell.
func (c Cell) Occupied() bool {
	return c.Occupant != ""
}

// Board holds every cell of the session keyed by coordinate.
// It is built once and never grows or shrinks; only occupancy changes.
// Board does no locking of its own.
type Board struct {
	cells   map[HexCoord]*Cell
	order   []HexCoord
	maxRing int
}

// Build creates a board from layout entries, taking each cell's elevation
// from heights.
func Build(entries []LayoutEntry, heights HeightTable) (*Board, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyLayout
	}

	b := &Board{
		cells: make(map[HexCoord]*Cell, len(entries)),
		order: make([]HexCoord, 0, len(entries)),
	}
	for _, e := range entries {
		coord := e.Coord()
		if _, dup := b.cells[coord]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCell, coord)
		}
		ring := HexDistance(coord.Q, coord.R)
		b.cells[coord] = &Cell{
			Coord:     coord,
			Terrain:   e.Terrain,
			Icon:      e.Icon,
			Elevation: heights.Elevation(e.Terrain),
			Ring:      ring,
		}
		b.order = append(b.order, coord)
		if ring > b.maxRing {
			b.maxRing = ring
		}
	}

	sort.Slice(b.order, func(i, j int) bool {
		ci, cj := b.cells[b.order[i]], b.cells[b.order[j]]
		if ci.Ring != cj.Ring {
			return ci.Ring < cj.Ring
		}
		if ci.Coord.R != cj.Coord.R {
			return ci.Coord.R < cj.Coord.R
		}
		return ci.Coord.Q < cj.Coord.Q
	})

	return b, nil
}

// Get returns a copy of the cell at the given coordinate.
func (b *Board) Get(coord HexCoord) (Cell, bool) {
	c, ok := b.cells[coord]
	if !ok {
		return Cell{}, false
	}
	return *c, true
}

// Lookup resolves a "q,r" key.
func (b *Board) Lookup(key string) (Cell, bool) {
	coord, err := ParseKey(key)
	if err != nil {
		return Cell{}, false
	}
	return b.Get(coord)
}

// Contains reports whether the coordinate is a board cell.
func (b *Board) Contains(coord HexCoord) bool {
	_, ok := b.cells[coord]
	return ok
}

// SetOccupant records pieceID on the cell.
func (b *Board) SetOccupant(coord HexCoord, pieceID string) error {
	c, ok := b.cells[coord]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCellNotFound, coord)
	}
	c.Occupant = pieceID
	return nil
}

// ClearOccupant frees the cell.
func (b *Board) ClearOccupant(coord HexCoord) error {
	c, ok := b.cells[coord]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCellNotFound, coord)
	}
	c.Occupant = ""
	return nil
}

// ClearAll frees every cell.
func (b *Board) ClearAll() {
	for _, c := range b.cells {
		c.Occupant = ""
	}
}

// OccupantOf returns the piece on coord, if any.
func (b *Board) OccupantOf(coord HexCoord) (string, bool) {
	c, ok := b.cells[coord]
	if !ok || c.Occupant == "" {
		return "", false
	}
	return c.Occupant, true
}

// Cells returns copies of all cells ordered by ring, then r, then q.
func (b *Board) Cells() []Cell {
	out := make([]Cell, 0, len(b.order))
	for _, coord := range b.order {
		out = append(out, *b.cells[coord])
	}
	return out
}

// Neighbors returns the on-board neighbors of coord in direction order.
func (b *Board) Neighbors(coord HexCoord) []Cell {
	var out []Cell
	for _, n := range coord.Neighbors() {
		if c, ok := b.cells[n]; ok {
			out = append(out, *c)
		}
	}
	return out
}

// WorldPosition returns the ground-plane center of coord and its elevation.
func (b *Board) WorldPosition(l Layout, coord HexCoord) (x, y, z float64, ok bool) {
	c, found := b.cells[coord]
	if !found {
		return 0, 0, 0, false
	}
	x, z = l.AxialToPixel(coord)
	return x, c.Elevation, z, true
}

// Len returns the total number of cells.
func (b *Board) Len() int {
	return len(b.cells)
}

// MaxRing returns the largest HexDistance from the origin of any cell.
func (b *Board) MaxRing() int {
	return b.maxRing
}

// TerrainCounts returns a summary of terrain distribution.
func (b *Board) TerrainCounts() map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, c := range b.cells {
		counts[c.Terrain]++
	}
	return counts
}

// String returns a summary of the board.
func (b *Board) String() string {
	return fmt.Sprintf("Board(cells=%d, max_ring=%d)", b.Len(), b.maxRing)
}
