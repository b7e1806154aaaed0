package world

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Orientation selects which way the hexagons point.
type Orientation uint8

const (
	FlatTop   Orientation = iota // Corner at 0°, columns of hexes share vertical edges
	PointyTop                    // Corner at -30°, rows of hexes share horizontal edges
)

var (
	ErrInvalidRadius      = errors.New("hex radius must be positive")
	ErrInvalidOrientation = errors.New("unknown hex orientation")
)

var sqrt3 = math.Sqrt(3)

func (o Orientation) String() string {
	switch o {
	case FlatTop:
		return "flat-top"
	case PointyTop:
		return "pointy-top"
	default:
		return fmt.Sprintf("Orientation(%d)", uint8(o))
	}
}

// ParseOrientation accepts "flat", "flat-top", "pointy", "pointy-top" and the
// underscore spellings, case-insensitively.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-") {
	case "flat", "flat-top", "flattop":
		return FlatTop, nil
	case "pointy", "pointy-top", "pointytop":
		return PointyTop, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidOrientation, s)
}

// MarshalText lets Orientation appear by name in JSON and YAML.
func (o Orientation) MarshalText() ([]byte, error) {
	if o != FlatTop && o != PointyTop {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOrientation, uint8(o))
	}
	return []byte(o.String()), nil
}

func (o *Orientation) UnmarshalText(text []byte) error {
	parsed, err := ParseOrientation(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// cornerOffset is the angle of corner 0 in degrees.
func (o Orientation) cornerOffset() float64 {
	if o == PointyTop {
		return -30
	}
	return 0
}

// Point is a 2D offset in the plane of a hex face.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout binds an orientation to a hex radius (center to corner, world units).
// The zero value is not usable; build one with NewLayout.
type Layout struct {
	Orientation Orientation `json:"orientation"`
	Radius      float64     `json:"radius"`
}

// NewLayout validates the parameters once so the pixel math never divides by zero.
func NewLayout(o Orientation, radius float64) (Layout, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return Layout{}, fmt.Errorf("%w: %v", ErrInvalidRadius, radius)
	}
	if o != FlatTop && o != PointyTop {
		return Layout{}, fmt.Errorf("%w: %d", ErrInvalidOrientation, uint8(o))
	}
	return Layout{Orientation: o, Radius: radius}, nil
}

// AxialToPixel maps a hex center onto the ground plane (x, z).
func (l Layout) AxialToPixel(c HexCoord) (x, z float64) {
	q, r := float64(c.Q), float64(c.R)
	if l.Orientation == PointyTop {
		x = l.Radius * (sqrt3*q + sqrt3/2*r)
		z = l.Radius * (1.5 * r)
		return x, z
	}
	x = l.Radius * (1.5 * q)
	z = l.Radius * (sqrt3/2*q + sqrt3*r)
	return x, z
}

// PixelToAxial returns the hex containing the ground-plane point (x, z).
func (l Layout) PixelToAxial(x, z float64) HexCoord {
	qf, rf := l.fractional(x, z)
	return AxialRound(qf, rf)
}

// fractional is the exact linear inverse of AxialToPixel.
func (l Layout) fractional(x, z float64) (qf, rf float64) {
	if l.Orientation == PointyTop {
		qf = (sqrt3/3*x - z/3) / l.Radius
		rf = (2.0 / 3 * z) / l.Radius
		return qf, rf
	}
	qf = (2.0 / 3 * x) / l.Radius
	rf = (-x/3 + sqrt3/3*z) / l.Radius
	return qf, rf
}

// Corners returns the six corners of a hex of this layout, relative to its center.
func (l Layout) Corners() [6]Point {
	return HexCorners(l.Radius, l.Orientation)
}

// AxialToPixel is the free-function form of Layout.AxialToPixel.
func AxialToPixel(q, r int, radius float64, o Orientation) (x, z float64) {
	return Layout{Orientation: o, Radius: radius}.AxialToPixel(HexCoord{Q: q, R: r})
}

// PixelToAxial is the free-function form of Layout.PixelToAxial.
func PixelToAxial(x, z, radius float64, o Orientation) HexCoord {
	return Layout{Orientation: o, Radius: radius}.PixelToAxial(x, z)
}

// AxialRound snaps fractional axial coordinates to the nearest hex.
// All three cube components are rounded and the one with the largest rounding
// error is rebuilt from the other two, so q+r+s == 0 holds. Ties resolve q
// first, then r, otherwise s.
func AxialRound(qf, rf float64) HexCoord {
	sf := -qf - rf

	rq := math.Round(qf)
	rr := math.Round(rf)
	rs := math.Round(sf)

	qDiff := math.Abs(rq - qf)
	rDiff := math.Abs(rr - rf)
	sDiff := math.Abs(rs - sf)

	if qDiff > rDiff && qDiff > sDiff {
		rq = -rr - rs
	} else if rDiff > sDiff {
		rr = -rq - rs
	}

	return HexCoord{Q: int(rq), R: int(rr)}
}

// HexCorners returns the six vertices of a regular hexagon centered at the
// origin, corner i at 60°·i plus the orientation offset.
func HexCorners(radius float64, o Orientation) [6]Point {
	var corners [6]Point
	offset := o.cornerOffset()
	for i := range corners {
		rad := math.Pi / 180 * (60*float64(i) + offset)
		corners[i] = Point{
			X: radius * math.Cos(rad),
			Y: radius * math.Sin(rad),
		}
	}
	return corners
}
