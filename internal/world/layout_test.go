package world

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestRoundTripBothOrientations(t *testing.T) {
	radii := []float64{0.37, 1, 28, 50, 1000}
	for _, o := range []Orientation{FlatTop, PointyTop} {
		for _, radius := range radii {
			l, err := NewLayout(o, radius)
			if err != nil {
				t.Fatalf("NewLayout(%v, %v): %v", o, radius, err)
			}
			for q := -25; q <= 25; q++ {
				for r := -25; r <= 25; r++ {
					c := HexCoord{Q: q, R: r}
					x, z := l.AxialToPixel(c)
					if got := l.PixelToAxial(x, z); got != c {
						t.Fatalf("%v radius %v: round trip of %v gave %v", o, radius, c, got)
					}
				}
			}
		}
	}
}

func TestPointyTopScenario(t *testing.T) {
	x, z := AxialToPixel(1, -1, 28, PointyTop)
	wantX := 28 * (math.Sqrt(3) - math.Sqrt(3)/2)
	if math.Abs(x-wantX) > 1e-9 || math.Abs(x-24.2487) > 1e-3 {
		t.Fatalf("x = %v, want %v", x, wantX)
	}
	if math.Abs(z-(-42)) > 1e-9 {
		t.Fatalf("z = %v, want -42", z)
	}
	if got := PixelToAxial(x, z, 28, PointyTop); got != (HexCoord{Q: 1, R: -1}) {
		t.Fatalf("PixelToAxial = %v, want (1,-1)", got)
	}
}

func TestFlatTopMatchesFormula(t *testing.T) {
	x, z := AxialToPixel(2, -1, 50, FlatTop)
	if math.Abs(x-150) > 1e-9 {
		t.Fatalf("x = %v, want 150", x)
	}
	wantZ := 50 * (math.Sqrt(3)/2*2 - math.Sqrt(3))
	if math.Abs(z-wantZ) > 1e-9 {
		t.Fatalf("z = %v, want %v", z, wantZ)
	}
}

func cubeDist2(qf, rf float64, c HexCoord) float64 {
	dq := qf - float64(c.Q)
	dr := rf - float64(c.R)
	ds := (-qf - rf) - float64(c.S())
	return dq*dq + dr*dr + ds*ds
}

func TestAxialRoundIsNearest(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		qf := rng.Float64()*40 - 20
		rf := rng.Float64()*40 - 20

		got := AxialRound(qf, rf)
		if got.Q+got.R+got.S() != 0 {
			t.Fatalf("AxialRound(%v,%v) = %v breaks q+r+s=0", qf, rf, got)
		}

		best := math.Inf(1)
		for q := int(math.Floor(qf)) - 2; q <= int(math.Ceil(qf))+2; q++ {
			for r := int(math.Floor(rf)) - 2; r <= int(math.Ceil(rf))+2; r++ {
				if d := cubeDist2(qf, rf, HexCoord{Q: q, R: r}); d < best {
					best = d
				}
			}
		}
		if d := cubeDist2(qf, rf, got); d > best+1e-9 {
			t.Fatalf("AxialRound(%v,%v) = %v at %v, nearest is %v", qf, rf, got, d, best)
		}
	}
}

func TestAxialRoundExact(t *testing.T) {
	tests := []struct {
		qf, rf float64
		want   HexCoord
	}{
		{0, 0, HexCoord{0, 0}},
		{0.4, 0.4, HexCoord{0, 1}}, // q and r tie, r is rebuilt
		{1.2, -0.1, HexCoord{1, 0}},
		{-2.6, 1.3, HexCoord{-2, 1}},
	}
	for _, tt := range tests {
		got := AxialRound(tt.qf, tt.rf)
		if got != tt.want {
			t.Errorf("AxialRound(%v,%v) = %v, want %v", tt.qf, tt.rf, got, tt.want)
		}
	}
}

func TestPointInsideHexResolvesToIt(t *testing.T) {
	for _, o := range []Orientation{FlatTop, PointyTop} {
		l, _ := NewLayout(o, 30)
		inner := 30 * math.Sqrt(3) / 2 * 0.95
		c := HexCoord{Q: 3, R: -2}
		cx, cz := l.AxialToPixel(c)
		for deg := 0; deg < 360; deg += 15 {
			rad := float64(deg) * math.Pi / 180
			x := cx + inner*math.Cos(rad)
			z := cz + inner*math.Sin(rad)
			if got := l.PixelToAxial(x, z); got != c {
				t.Fatalf("%v: point at %d° resolved to %v, want %v", o, deg, got, c)
			}
		}
	}
}

func TestHexCorners(t *testing.T) {
	flat := HexCorners(10, FlatTop)
	if math.Abs(flat[0].X-10) > 1e-9 || math.Abs(flat[0].Y) > 1e-9 {
		t.Fatalf("flat-top corner 0 = %+v, want (10,0)", flat[0])
	}
	pointy := HexCorners(10, PointyTop)
	if math.Abs(pointy[0].X-10*math.Sqrt(3)/2) > 1e-9 || math.Abs(pointy[0].Y+5) > 1e-9 {
		t.Fatalf("pointy-top corner 0 = %+v, want (8.66,-5)", pointy[0])
	}
	for _, corners := range [][6]Point{flat, pointy} {
		for i, p := range corners {
			if d := math.Hypot(p.X, p.Y); math.Abs(d-10) > 1e-9 {
				t.Fatalf("corner %d at distance %v, want 10", i, d)
			}
		}
	}
}

func TestNewLayoutRejectsDegenerate(t *testing.T) {
	for _, radius := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := NewLayout(PointyTop, radius); !errors.Is(err, ErrInvalidRadius) {
			t.Errorf("NewLayout radius %v: err = %v, want ErrInvalidRadius", radius, err)
		}
	}
	if _, err := NewLayout(Orientation(9), 10); !errors.Is(err, ErrInvalidOrientation) {
		t.Errorf("NewLayout bad orientation: err = %v", err)
	}
}

func TestParseOrientation(t *testing.T) {
	tests := map[string]Orientation{
		"flat":       FlatTop,
		"Flat-Top":   FlatTop,
		"flat_top":   FlatTop,
		"pointy":     PointyTop,
		"pointy-top": PointyTop,
	}
	for in, want := range tests {
		got, err := ParseOrientation(in)
		if err != nil || got != want {
			t.Errorf("ParseOrientation(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseOrientation("diagonal"); !errors.Is(err, ErrInvalidOrientation) {
		t.Errorf("ParseOrientation(diagonal) err = %v", err)
	}

	var o Orientation
	if err := o.UnmarshalText([]byte("pointy-top")); err != nil || o != PointyTop {
		t.Fatalf("UnmarshalText = %v, %v", o, err)
	}
	text, err := o.MarshalText()
	if err != nil || string(text) != "pointy-top" {
		t.Fatalf("MarshalText = %q, %v", text, err)
	}
}
