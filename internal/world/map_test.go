package world

import (
	"errors"
	"testing"
)

func smallLayout() []LayoutEntry {
	return []LayoutEntry{
		{Q: 0, R: 0, Terrain: TerrainSpecial, Icon: IconFrog},
		{Q: 1, R: 0, Terrain: TerrainWater},
		{Q: 0, R: 1, Terrain: TerrainOrangeRocks},
		{Q: -1, R: 1, Terrain: Terrain("LAVA")},
	}
}

func TestBuildElevations(t *testing.T) {
	b, err := Build(smallLayout(), DefaultHeights())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if b.Len() != 4 {
		t.Fatalf("Len = %d, want 4", b.Len())
	}

	tests := []struct {
		coord HexCoord
		want  float64
	}{
		{HexCoord{0, 0}, 10},
		{HexCoord{1, 0}, 0},
		{HexCoord{0, 1}, 20},
		{HexCoord{-1, 1}, DefaultCellHeight}, // unlisted terrain
	}
	for _, tt := range tests {
		c, ok := b.Get(tt.coord)
		if !ok {
			t.Fatalf("Get(%v) not found", tt.coord)
		}
		if c.Elevation != tt.want {
			t.Errorf("elevation at %v = %v, want %v", tt.coord, c.Elevation, tt.want)
		}
	}

	center, _ := b.Get(HexCoord{0, 0})
	if center.Icon != IconFrog || center.Ring != 0 {
		t.Fatalf("center = %+v", center)
	}
}

func TestBuildFailsFast(t *testing.T) {
	if _, err := Build(nil, DefaultHeights()); !errors.Is(err, ErrEmptyLayout) {
		t.Fatalf("empty layout err = %v, want ErrEmptyLayout", err)
	}
	dup := append(smallLayout(), LayoutEntry{Q: 1, R: 0, Terrain: TerrainGrass})
	if _, err := Build(dup, DefaultHeights()); !errors.Is(err, ErrDuplicateCell) {
		t.Fatalf("duplicate layout err = %v, want ErrDuplicateCell", err)
	}
}

func TestOccupancy(t *testing.T) {
	b, err := Build(smallLayout(), DefaultHeights())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	coord := HexCoord{1, 0}

	if err := b.SetOccupant(coord, "frog-1"); err != nil {
		t.Fatalf("SetOccupant: %v", err)
	}
	c, _ := b.Get(coord)
	if c.Occupant != "frog-1" || !c.Occupied() {
		t.Fatalf("occupant = %q, want frog-1", c.Occupant)
	}
	if id, ok := b.OccupantOf(coord); !ok || id != "frog-1" {
		t.Fatalf("OccupantOf = %q, %v", id, ok)
	}

	// Dropping onto an occupied cell is allowed; the newer piece takes the slot.
	if err := b.SetOccupant(coord, "fox-1"); err != nil {
		t.Fatalf("SetOccupant over occupied cell: %v", err)
	}

	if err := b.ClearOccupant(coord); err != nil {
		t.Fatalf("ClearOccupant: %v", err)
	}
	c, _ = b.Get(coord)
	if c.Occupied() {
		t.Fatalf("cell still occupied by %q", c.Occupant)
	}

	missing := HexCoord{Q: 40, R: 40}
	if _, ok := b.Get(missing); ok {
		t.Fatalf("Get(%v) found a cell", missing)
	}
	if err := b.SetOccupant(missing, "x"); !errors.Is(err, ErrCellNotFound) {
		t.Fatalf("SetOccupant off board err = %v", err)
	}
	if err := b.ClearOccupant(missing); !errors.Is(err, ErrCellNotFound) {
		t.Fatalf("ClearOccupant off board err = %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	b, _ := Build(smallLayout(), DefaultHeights())
	c, _ := b.Get(HexCoord{0, 0})
	c.Occupant = "sneaky"
	if again, _ := b.Get(HexCoord{0, 0}); again.Occupied() {
		t.Fatalf("mutating a returned cell changed the board")
	}
}

func TestLookupByKey(t *testing.T) {
	b, _ := Build(smallLayout(), DefaultHeights())
	if c, ok := b.Lookup("-1,1"); !ok || c.Terrain != "LAVA" {
		t.Fatalf("Lookup(-1,1) = %+v, %v", c, ok)
	}
	if _, ok := b.Lookup("bogus"); ok {
		t.Fatalf("Lookup(bogus) found a cell")
	}
}

func TestCellsOrderAndNeighbors(t *testing.T) {
	b, _ := Build(smallLayout(), DefaultHeights())
	cells := b.Cells()
	if cells[0].Coord != (HexCoord{0, 0}) {
		t.Fatalf("first cell = %v, want origin", cells[0].Coord)
	}
	for i := 1; i < len(cells); i++ {
		if cells[i].Ring < cells[i-1].Ring {
			t.Fatalf("cells not ordered by ring: %v", cells)
		}
	}

	if got := len(b.Neighbors(HexCoord{0, 0})); got != 3 {
		t.Fatalf("origin has %d on-board neighbors, want 3", got)
	}
}

func TestWorldPosition(t *testing.T) {
	b, _ := Build(smallLayout(), DefaultHeights())
	l, _ := NewLayout(FlatTop, 50)
	x, y, z, ok := b.WorldPosition(l, HexCoord{0, 1})
	if !ok {
		t.Fatalf("WorldPosition not found")
	}
	wx, wz := l.AxialToPixel(HexCoord{0, 1})
	if x != wx || z != wz || y != 20 {
		t.Fatalf("WorldPosition = (%v,%v,%v), want (%v,20,%v)", x, y, z, wx, wz)
	}
	if _, _, _, ok := b.WorldPosition(l, HexCoord{9, 9}); ok {
		t.Fatalf("WorldPosition off board reported ok")
	}
}
