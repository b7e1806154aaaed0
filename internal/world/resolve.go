package world

// Target is a board cell picked by a pointer.
type Target struct {
	Coord HexCoord `json:"coord"`
	Cell  Cell     `json:"cell"`
}

// Resolve snaps a ground-plane point to the nearest hex and looks it up.
// ok is false when the point lies off the board.
func Resolve(x, z float64, l Layout, b *Board) (Target, bool) {
	coord := l.PixelToAxial(x, z)
	cell, found := b.Get(coord)
	if !found {
		return Target{Coord: coord}, false
	}
	return Target{Coord: coord, Cell: cell}, true
}

// Resolver binds a layout and board so callers only pass the point.
type Resolver struct {
	Layout Layout
	Board  *Board
}

// Resolve is the bound form of the package-level Resolve.
func (r Resolver) Resolve(x, z float64) (Target, bool) {
	return Resolve(x, z, r.Layout, r.Board)
}
