package world

import "testing"

func TestResolve(t *testing.T) {
	b, err := Build(FrogBoardLayout(), DefaultHeights())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	l, _ := NewLayout(FlatTop, 50)
	res := Resolver{Layout: l, Board: b}

	x, z := l.AxialToPixel(HexCoord{Q: -2, R: 2})
	target, ok := res.Resolve(x+7, z-4)
	if !ok {
		t.Fatalf("point near (-2,2) resolved off-board")
	}
	if target.Coord != (HexCoord{Q: -2, R: 2}) || target.Cell.Terrain != TerrainSpecial {
		t.Fatalf("target = %+v", target)
	}

	target, ok = Resolve(5000, 5000, l, b)
	if ok {
		t.Fatalf("far point resolved to %+v", target)
	}
	if target.Cell.Terrain != "" {
		t.Fatalf("off-board target carries a cell: %+v", target.Cell)
	}
}

func TestResolveReflectsOccupancy(t *testing.T) {
	b, _ := Build(FrogBoardLayout(), DefaultHeights())
	l, _ := NewLayout(PointyTop, 28)
	coord := HexCoord{Q: 0, R: 3}
	if err := b.SetOccupant(coord, "fish-1"); err != nil {
		t.Fatalf("SetOccupant: %v", err)
	}
	x, z := l.AxialToPixel(coord)
	target, ok := Resolve(x, z, l, b)
	if !ok || target.Cell.Occupant != "fish-1" {
		t.Fatalf("target = %+v, %v", target, ok)
	}
}
