package interaction

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/hexboard/internal/world"
)

// State is the phase of a drag gesture.
type State uint8

const (
	StateIdle     State = iota // Nothing selected
	StateDragging              // A piece is lifted and follows the pointer
)

func (s State) String() string {
	if s == StateDragging {
		return "dragging"
	}
	return "idle"
}

// Hover reports how the highlighted cell changed after a pointer move.
// Prev is the cell to un-highlight, Curr the cell to highlight; either may be nil.
type Hover struct {
	Prev    *world.HexCoord
	Curr    *world.HexCoord
	Cell    *world.Cell
	Changed bool
}

// DropResult describes where a released piece comes to rest.
type DropResult struct {
	Piece   *world.Piece
	From    *world.HexCoord
	To      *world.HexCoord // nil when the piece went back
	Snapped bool            // false: dropped off-board, piece returned
	X, Y, Z float64         // Resting world position
}

// Session is one client's drag gesture against a shared Table.
// A Session is driven by a single goroutine; it is not safe for concurrent use.
type Session struct {
	ID      string
	table   *Table
	state   State
	pieceID string
	origin  *world.HexCoord
	hovered *world.HexCoord
}

// NewSession starts an idle session.
func NewSession(t *Table) *Session {
	return &Session{ID: uuid.NewString(), table: t}
}

// State returns the current gesture phase.
func (s *Session) State() State {
	return s.state
}

// Selected returns the ID of the dragged piece, empty when idle.
func (s *Session) Selected() string {
	return s.pieceID
}

// Origin returns where the dragged piece was picked up; nil if it came
// from off-board or nothing is being dragged.
func (s *Session) Origin() *world.HexCoord {
	return s.origin
}

// Hovered returns the highlighted cell, if any.
func (s *Session) Hovered() (world.HexCoord, bool) {
	if s.hovered == nil {
		return world.HexCoord{}, false
	}
	return *s.hovered, true
}

// Pick lifts a piece. The board is untouched until Drop.
func (s *Session) Pick(pieceID string) (*world.Piece, error) {
	if s.state == StateDragging {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyDragging, s.pieceID)
	}
	p, ok := s.table.Piece(pieceID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPieceNotFound, pieceID)
	}
	s.state = StateDragging
	s.pieceID = pieceID
	s.origin = p.Coord
	s.hovered = nil
	return p, nil
}

// Move resolves the pointer's ground-plane position and updates the hover.
// Leaving the board clears the highlight.
func (s *Session) Move(x, z float64) (Hover, error) {
	if s.state != StateDragging {
		return Hover{}, ErrNotDragging
	}

	h := Hover{Prev: s.hovered}
	if target, ok := s.table.Resolve(x, z); ok {
		coord := target.Coord
		cell := target.Cell
		h.Curr = &coord
		h.Cell = &cell
	}
	h.Changed = !sameCoord(h.Prev, h.Curr)
	if !h.Changed {
		h.Prev = nil
	}
	s.hovered = h.Curr
	return h, nil
}

// Drop releases the piece. Over a board cell the piece lands there and
// occupancy moves; otherwise it returns to where it was picked up.
func (s *Session) Drop() (DropResult, error) {
	if s.state != StateDragging {
		return DropResult{}, ErrNotDragging
	}
	pieceID, target := s.pieceID, s.hovered
	s.reset()

	res := DropResult{}
	if target != nil {
		from, err := s.table.Place(pieceID, *target)
		if err != nil {
			return DropResult{}, err
		}
		dest := *target
		res.From = from
		res.To = &dest
		res.Snapped = true
	}
	return s.finish(pieceID, res)
}

// Cancel abandons the gesture; the piece returns to its prior position.
func (s *Session) Cancel() (DropResult, error) {
	if s.state != StateDragging {
		return DropResult{}, ErrNotDragging
	}
	pieceID := s.pieceID
	s.reset()
	return s.finish(pieceID, DropResult{})
}

func (s *Session) finish(pieceID string, res DropResult) (DropResult, error) {
	p, ok := s.table.Piece(pieceID)
	if !ok {
		return DropResult{}, fmt.Errorf("%w: %s", ErrPieceNotFound, pieceID)
	}
	res.Piece = p
	if !res.Snapped {
		res.From = p.Coord
	}
	x, y, z, err := s.table.RestingPosition(pieceID)
	if err != nil {
		return DropResult{}, err
	}
	res.X, res.Y, res.Z = x, y, z
	return res, nil
}

func (s *Session) reset() {
	s.state = StateIdle
	s.pieceID = ""
	s.origin = nil
	s.hovered = nil
}

func sameCoord(a, b *world.HexCoord) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
