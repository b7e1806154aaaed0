// Package interaction owns piece positions and the per-client drag gesture.
// The board is read by every connection and written only when a piece is
// dropped or the table is reset; Table serializes those accesses.
package interaction

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/talgya/hexboard/internal/world"
)

// DefaultPieceLift is how far above the cell face a resting piece sits.
const DefaultPieceLift = 5.0

var (
	ErrPieceNotFound   = errors.New("piece not found")
	ErrNotDragging     = errors.New("no piece is being dragged")
	ErrAlreadyDragging = errors.New("a piece is already being dragged")
)

// Table is the shared board plus the pieces on it.
type Table struct {
	mu      sync.RWMutex
	board   *world.Board
	layout  world.Layout
	lift    float64
	pieces  map[string]*world.Piece
	order   []string
	version uint64 // Bumped on every occupancy change
}

// NewTable takes ownership of board and pieces.
func NewTable(board *world.Board, layout world.Layout, pieces []*world.Piece) *Table {
	t := &Table{
		board:  board,
		layout: layout,
		lift:   DefaultPieceLift,
	}
	t.setPieces(pieces)
	return t
}

func (t *Table) setPieces(pieces []*world.Piece) {
	t.pieces = make(map[string]*world.Piece, len(pieces))
	t.order = t.order[:0]
	for _, p := range pieces {
		t.pieces[p.ID] = p
		t.order = append(t.order, p.ID)
	}
}

// SetPieceLift changes the resting height above the cell face.
func (t *Table) SetPieceLift(lift float64) {
	t.mu.Lock()
	t.lift = lift
	t.mu.Unlock()
}

// Layout returns the hex layout of the board.
func (t *Table) Layout() world.Layout {
	return t.layout
}

// Version increases whenever a piece lands, moves home or is restored.
func (t *Table) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

// Pieces returns copies of every piece in placement order.
func (t *Table) Pieces() []*world.Piece {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*world.Piece, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.pieces[id].Clone())
	}
	return out
}

// Piece returns a copy of one piece.
func (t *Table) Piece(id string) (*world.Piece, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.pieces[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Cell looks up a board cell.
func (t *Table) Cell(coord world.HexCoord) (world.Cell, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.board.Get(coord)
}

// Resolve maps a ground-plane point to a board cell.
func (t *Table) Resolve(x, z float64) (world.Target, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return world.Resolve(x, z, t.layout, t.board)
}

// ViewBoard runs fn with read access to the board. fn must not retain b.
func (t *Table) ViewBoard(fn func(b *world.Board)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fn(t.board)
}

// Place moves a piece onto a cell and returns where it came from.
// If this piece held its previous cell, the cell passes to another piece
// still resting there, or is freed when none is.
func (t *Table) Place(pieceID string, to world.HexCoord) (from *world.HexCoord, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.pieces[pieceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPieceNotFound, pieceID)
	}
	if err := t.board.SetOccupant(to, pieceID); err != nil {
		return nil, err
	}
	if p.Coord != nil {
		prev := *p.Coord
		from = &prev
		if prev != to {
			if id, held := t.board.OccupantOf(prev); held && id == pieceID {
				if err := t.handOff(prev, pieceID); err != nil {
					slog.Warn("free previous cell", "piece", pieceID, "coord", prev.Key(), "error", err)
				}
			}
		}
	}
	dest := to
	p.Coord = &dest
	t.version++
	return from, nil
}

// handOff gives coord to the latest-ordered other piece resting on it,
// or clears it.
func (t *Table) handOff(coord world.HexCoord, leaving string) error {
	for i := len(t.order) - 1; i >= 0; i-- {
		id := t.order[i]
		if id == leaving {
			continue
		}
		if c := t.pieces[id].Coord; c != nil && *c == coord {
			return t.board.SetOccupant(coord, id)
		}
	}
	return t.board.ClearOccupant(coord)
}

// Reset sends every piece back to its home cell.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.board.ClearAll()
	for _, id := range t.order {
		p := t.pieces[id]
		p.Coord = nil
		if p.Home == nil {
			continue
		}
		if err := t.board.SetOccupant(*p.Home, id); err != nil {
			slog.Warn("piece home off board", "piece", id, "home", p.Home.Key())
			continue
		}
		home := *p.Home
		p.Coord = &home
	}
	t.version++
}

// Restore replaces all pieces, e.g. from a saved session. Pieces whose
// coordinate is no longer on the board are parked off-board.
func (t *Table) Restore(pieces []*world.Piece) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.board.ClearAll()
	for _, p := range pieces {
		if p.Coord == nil {
			continue
		}
		if err := t.board.SetOccupant(*p.Coord, p.ID); err != nil {
			slog.Warn("restored piece off board", "piece", p.ID, "coord", p.Coord.Key())
			p.Coord = nil
		}
	}
	t.setPieces(pieces)
	t.version++
}

// RestingPosition returns where the renderer should draw a piece: on its
// cell raised by the piece lift, or at its off-board parking spot.
func (t *Table) RestingPosition(pieceID string) (x, y, z float64, err error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.restingPosition(pieceID)
}

func (t *Table) restingPosition(pieceID string) (x, y, z float64, err error) {
	p, ok := t.pieces[pieceID]
	if !ok {
		return 0, 0, 0, fmt.Errorf("%w: %s", ErrPieceNotFound, pieceID)
	}
	if p.Coord != nil {
		if x, y, z, ok := t.board.WorldPosition(t.layout, *p.Coord); ok {
			return x, y + t.lift, z, nil
		}
	}
	slot, offBoard := 0, 0
	for _, id := range t.order {
		if t.pieces[id].Coord == nil {
			if id == pieceID {
				slot = offBoard
			}
			offBoard++
		}
	}
	x, z = world.OffBoardPosition(t.layout, t.board, slot, offBoard)
	return x, 0, z, nil
}
