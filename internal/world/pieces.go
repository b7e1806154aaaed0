// Piece placement: seeds the starting pieces onto the board.
package world

import (
	"log/slog"
	"math"

	"github.com/google/uuid"
)

// PieceKind is the animal a piece represents.
type PieceKind string

const (
	PieceFrog  PieceKind = "frog"
	PieceFish  PieceKind = "fish"
	PieceFox   PieceKind = "fox"
	PieceBird  PieceKind = "bird"
	PieceHeron PieceKind = "heron"
	PieceSnake PieceKind = "snake"
)

// PieceSpec describes a piece before it has an identity.
type PieceSpec struct {
	Kind  PieceKind `yaml:"kind" json:"kind"`
	Color uint32    `yaml:"color" json:"color"`
	Home  *HexCoord `yaml:"home,omitempty" json:"home,omitempty"` // nil starts off-board
}

// Piece is a movable token. Coord == nil means the piece is off-board.
type Piece struct {
	ID    string    `json:"id"`
	Kind  PieceKind `json:"kind"`
	Color uint32    `json:"color"`
	Coord *HexCoord `json:"coord,omitempty"`
	Home  *HexCoord `json:"home,omitempty"`
}

// OnBoard reports whether the piece currently rests on a cell.
func (p *Piece) OnBoard() bool {
	return p.Coord != nil
}

// Clone returns a deep copy safe to hand outside a lock.
func (p *Piece) Clone() *Piece {
	c := *p
	if p.Coord != nil {
		coord := *p.Coord
		c.Coord = &coord
	}
	if p.Home != nil {
		home := *p.Home
		c.Home = &home
	}
	return &c
}

func at(q, r int) *HexCoord {
	return &HexCoord{Q: q, R: r}
}

// InitialPieces returns the starting set of the printed game.
func InitialPieces() []PieceSpec {
	return []PieceSpec{
		// Frogs (left side)
		{Kind: PieceFrog, Color: 0x2ECC71, Home: at(-5, 0)},
		{Kind: PieceFrog, Color: 0x27AE60, Home: at(-5, 1)},
		{Kind: PieceFrog, Color: 0x1E8449, Home: at(-5, 2)},
		{Kind: PieceFrog, Color: 0x58D68D, Home: at(-4, 6)},

		// Fish (in water)
		{Kind: PieceFish, Color: 0x3498DB, Home: at(-3, 1)},
		{Kind: PieceFish, Color: 0x2E86C1, Home: at(-1, 2)},
		{Kind: PieceFish, Color: 0x5DADE2, Home: at(0, 4)},

		// Foxes (right side)
		{Kind: PieceFox, Color: 0xE67E22, Home: at(3, 0)},
		{Kind: PieceFox, Color: 0xD35400, Home: at(3, 2)},
		{Kind: PieceFox, Color: 0xCA6F1E, Home: at(2, 6)},

		// Birds (around edges)
		{Kind: PieceBird, Color: 0x5DADE2, Home: at(2, 0)},
		{Kind: PieceBird, Color: 0x85C1E9, Home: at(3, 3)},
		{Kind: PieceBird, Color: 0x7FB3D5, Home: at(3, 5)},
	}
}

// PlacePieces gives each spec an ID and seats it on its home cell.
// A home that is not on the board leaves the piece off-board.
func PlacePieces(b *Board, specs []PieceSpec) []*Piece {
	pieces := make([]*Piece, 0, len(specs))
	for _, s := range specs {
		p := &Piece{
			ID:    uuid.NewString(),
			Kind:  s.Kind,
			Color: s.Color,
		}
		if s.Home != nil {
			home := *s.Home
			p.Home = &home
			if err := b.SetOccupant(home, p.ID); err != nil {
				slog.Warn("piece home off board, leaving piece off-board",
					"kind", s.Kind, "home", home.Key())
			} else {
				coord := home
				p.Coord = &coord
			}
		}
		pieces = append(pieces, p)
	}
	return pieces
}

// OffBoardPosition returns where the renderer parks the i-th off-board piece:
// evenly spaced on a circle one and a half rings beyond the board's edge.
func OffBoardPosition(l Layout, b *Board, i, total int) (x, z float64) {
	if total <= 0 {
		total = 1
	}
	spacing := l.Radius * sqrt3 // distance between adjacent hex centers
	radius := (float64(b.MaxRing()) + 1.5) * spacing
	angle := 2 * math.Pi * float64(i) / float64(total)
	return radius * math.Cos(angle), radius * math.Sin(angle)
}
