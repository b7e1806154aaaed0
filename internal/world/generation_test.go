package world

import (
	"errors"
	"testing"
)

func TestRingBoardCellCount(t *testing.T) {
	entries, err := GenerateRings(DefaultRingConfig())
	if err != nil {
		t.Fatalf("GenerateRings: %v", err)
	}
	b, err := Build(entries, DefaultHeights())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if b.Len() != 1+6+12+18+24+30 {
		t.Fatalf("ring board has %d cells, want 91", b.Len())
	}
	if b.MaxRing() != 5 {
		t.Fatalf("MaxRing = %d, want 5", b.MaxRing())
	}

	center, ok := b.Get(HexCoord{0, 0})
	if !ok {
		t.Fatalf("center missing")
	}
	if center.Ring != 0 || HexDistance(0, 0) != 0 {
		t.Fatalf("center ring = %d", center.Ring)
	}
	if center.Terrain != TerrainSpecial || center.Icon != IconFrog {
		t.Fatalf("center = %+v, want special frog cell", center)
	}

	perRing := make(map[int]int)
	for _, c := range b.Cells() {
		perRing[c.Ring]++
	}
	for ring := 1; ring <= 5; ring++ {
		if perRing[ring] != 6*ring {
			t.Errorf("ring %d has %d cells, want %d", ring, perRing[ring], 6*ring)
		}
	}
}

func TestRingGenerationIsDeterministic(t *testing.T) {
	first, err := GenerateRings(DefaultRingConfig())
	if err != nil {
		t.Fatalf("GenerateRings: %v", err)
	}
	second, _ := GenerateRings(DefaultRingConfig())

	a, _ := Build(first, DefaultHeights())
	b, _ := Build(second, DefaultHeights())
	for _, c := range a.Cells() {
		other, ok := b.Get(c.Coord)
		if !ok {
			t.Fatalf("%v missing from second build", c.Coord)
		}
		if other.Terrain != c.Terrain || other.Icon != c.Icon || other.Elevation != c.Elevation {
			t.Fatalf("%v differs between builds: %+v vs %+v", c.Coord, c, other)
		}
	}
}

func TestRingPatternIndex(t *testing.T) {
	cfg := RingConfig{
		MaxRing: 1,
		Rings: []RingPattern{
			{Terrains: []Terrain{TerrainSpecial}},
			{Terrains: []Terrain{TerrainWater, TerrainGrass, TerrainDirt}, TerrainA: 1, TerrainB: 2},
		},
	}
	entries, err := GenerateRings(cfg)
	if err != nil {
		t.Fatalf("GenerateRings: %v", err)
	}
	for _, e := range entries {
		if e.Q == 0 && e.R == 0 {
			continue
		}
		want := cfg.Rings[1].Terrains[abs(e.Q+2*e.R)%3]
		if e.Terrain != want {
			t.Errorf("(%d,%d) terrain %s, want %s", e.Q, e.R, e.Terrain, want)
		}
		if e.Icon != IconNone {
			t.Errorf("(%d,%d) got icon %q from an icon-less pattern", e.Q, e.R, e.Icon)
		}
	}
}

func TestRingGenerationRejectsBadConfig(t *testing.T) {
	if _, err := GenerateRings(RingConfig{MaxRing: -1, Rings: DefaultRingConfig().Rings}); err == nil {
		t.Errorf("negative max ring accepted")
	}
	if _, err := GenerateRings(RingConfig{MaxRing: 2}); err == nil {
		t.Errorf("missing patterns accepted")
	}
	if _, err := GenerateRings(RingConfig{MaxRing: 1, Rings: []RingPattern{{}}}); err == nil {
		t.Errorf("empty terrain pattern accepted")
	}
}

func TestFrogBoardLayout(t *testing.T) {
	entries := FrogBoardLayout()
	if len(entries) != 63 {
		t.Fatalf("literal layout has %d cells, want 63", len(entries))
	}
	b, err := Build(entries, DefaultHeights())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	spots := map[HexCoord]Terrain{
		{Q: -5, R: 0}: TerrainOrangeRocks,
		{Q: -3, R: 1}: TerrainWater,
		{Q: -2, R: 2}: TerrainSpecial,
		{Q: -1, R: 3}: TerrainDirt,
		{Q: 1, R: 4}:  TerrainSpecial,
		{Q: 3, R: 6}:  TerrainOrangeRocks,
	}
	for coord, want := range spots {
		c, ok := b.Get(coord)
		if !ok || c.Terrain != want {
			t.Errorf("cell %v = %+v, want %s", coord, c, want)
		}
	}

	again, _ := Build(FrogBoardLayout(), DefaultHeights())
	for _, c := range b.Cells() {
		if other, _ := again.Get(c.Coord); other.Terrain != c.Terrain {
			t.Fatalf("literal layout not stable at %v", c.Coord)
		}
	}
}

func TestGeneratePolicies(t *testing.T) {
	cfg := DefaultGenConfig()
	entries, err := Generate(cfg)
	if err != nil || len(entries) != 63 {
		t.Fatalf("literal policy: %d entries, %v", len(entries), err)
	}

	cfg.Literal = smallLayout()
	entries, err = Generate(cfg)
	if err != nil || len(entries) != len(smallLayout()) {
		t.Fatalf("custom literal policy: %d entries, %v", len(entries), err)
	}

	cfg.Policy = PolicyRings
	entries, err = Generate(cfg)
	if err != nil || len(entries) != 91 {
		t.Fatalf("ring policy: %d entries, %v", len(entries), err)
	}

	cfg.Policy = "spiral"
	if _, err := Generate(cfg); !errors.Is(err, ErrUnknownPolicy) {
		t.Fatalf("unknown policy err = %v", err)
	}
}

func TestParseLayoutPolicy(t *testing.T) {
	for in, want := range map[string]LayoutPolicy{"": PolicyLiteral, "Literal": PolicyLiteral, " rings ": PolicyRings} {
		got, err := ParseLayoutPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseLayoutPolicy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseLayoutPolicy("spiral"); !errors.Is(err, ErrUnknownPolicy) {
		t.Errorf("ParseLayoutPolicy(spiral) err = %v", err)
	}
}
