// Board layout generation.
// Two policies produce the static layout: the hand-authored table of the
// printed board, or concentric rings with terrain picked by a fixed hash of
// (q, r). Neither uses randomness, so a layout is a pure function of its config.
package world

import (
	"errors"
	"fmt"
	"strings"
)

// LayoutPolicy selects how the board layout is produced.
type LayoutPolicy string

const (
	PolicyLiteral LayoutPolicy = "literal"
	PolicyRings   LayoutPolicy = "rings"
)

var ErrUnknownPolicy = errors.New("unknown layout policy")

// ParseLayoutPolicy normalizes a policy name.
func ParseLayoutPolicy(s string) (LayoutPolicy, error) {
	switch p := LayoutPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyLiteral, PolicyRings:
		return p, nil
	case "":
		return PolicyLiteral, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// RingPattern assigns terrain and icons to one ring. The pattern index for a
// cell is |A·q + B·r| mod len(pattern).
type RingPattern struct {
	Terrains []Terrain `yaml:"terrains" json:"terrains"`
	TerrainA int       `yaml:"terrain_a" json:"terrain_a"`
	TerrainB int       `yaml:"terrain_b" json:"terrain_b"`

	Icons []Icon `yaml:"icons,omitempty" json:"icons,omitempty"`
	IconA int    `yaml:"icon_a" json:"icon_a"`
	IconB int    `yaml:"icon_b" json:"icon_b"`
}

// RingConfig holds ring generation parameters.
type RingConfig struct {
	Center  HexCoord      `yaml:"center" json:"center"`
	MaxRing int           `yaml:"max_ring" json:"max_ring"`
	Rings   []RingPattern `yaml:"rings" json:"rings"` // Index = ring distance; last entry repeats outward
}

// GenConfig holds layout generation parameters.
type GenConfig struct {
	Policy  LayoutPolicy
	Literal []LayoutEntry // Empty means FrogBoardLayout
	Rings   RingConfig
}

// DefaultGenConfig returns the printed board.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Policy: PolicyLiteral,
		Rings:  DefaultRingConfig(),
	}
}

// DefaultRingConfig returns a five-ring pond board: a special center, water
// and grass in the middle rings, rocky shore outside.
func DefaultRingConfig() RingConfig {
	return RingConfig{
		MaxRing: 5,
		Rings: []RingPattern{
			{Terrains: []Terrain{TerrainSpecial}, Icons: []Icon{IconFrog}},
			{
				Terrains: []Terrain{TerrainWater, TerrainWater, TerrainGrass}, TerrainA: 1, TerrainB: 2,
				Icons: []Icon{IconFish, IconNone}, IconA: 1, IconB: 1,
			},
			{
				Terrains: []Terrain{TerrainWater, TerrainGrass, TerrainWater, TerrainDirt}, TerrainA: 2, TerrainB: 3,
				Icons: []Icon{IconNone, IconDragonfly, IconNone, IconFish}, IconA: 3, IconB: 1,
			},
			{
				Terrains: []Terrain{TerrainGrass, TerrainWater, TerrainGrass, TerrainDirt, TerrainGrass}, TerrainA: 3, TerrainB: 1,
				Icons: []Icon{IconNone, IconFrog, IconMosquito, IconNone, IconSnake}, IconA: 2, IconB: 5,
			},
			{
				Terrains: []Terrain{TerrainGrass, TerrainDirt, TerrainGrass, TerrainSpecial}, TerrainA: 5, TerrainB: 3,
				Icons: []Icon{IconNone, IconHeron, IconNone, IconBug, IconNone, IconDeer}, IconA: 1, IconB: 4,
			},
			{
				Terrains: []Terrain{TerrainOrangeRocks, TerrainOrangeRocks, TerrainGrass}, TerrainA: 7, TerrainB: 2,
				Icons: []Icon{IconNone, IconFox, IconNone, IconNone}, IconA: 3, IconB: 7,
			},
		},
	}
}

// Generate produces the board layout selected by cfg.Policy.
func Generate(cfg GenConfig) ([]LayoutEntry, error) {
	switch cfg.Policy {
	case PolicyLiteral, "":
		if len(cfg.Literal) > 0 {
			out := make([]LayoutEntry, len(cfg.Literal))
			copy(out, cfg.Literal)
			return out, nil
		}
		return FrogBoardLayout(), nil
	case PolicyRings:
		return GenerateRings(cfg.Rings)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, cfg.Policy)
	}
}

// GenerateRings enumerates every cell within MaxRing of the center, ring by
// ring, and assigns terrain and icon from that ring's pattern.
func GenerateRings(cfg RingConfig) ([]LayoutEntry, error) {
	if cfg.MaxRing < 0 {
		return nil, fmt.Errorf("ring generation: negative max ring %d", cfg.MaxRing)
	}
	if len(cfg.Rings) == 0 {
		return nil, errors.New("ring generation: no ring patterns")
	}
	for i, p := range cfg.Rings {
		if len(p.Terrains) == 0 {
			return nil, fmt.Errorf("ring generation: pattern %d has no terrains", i)
		}
	}

	entries := make([]LayoutEntry, 0, 1+3*cfg.MaxRing*(cfg.MaxRing+1))
	for dist := 0; dist <= cfg.MaxRing; dist++ {
		pattern := cfg.Rings[min(dist, len(cfg.Rings)-1)]
		for _, coord := range Ring(cfg.Center, dist) {
			entries = append(entries, LayoutEntry{
				Q:       coord.Q,
				R:       coord.R,
				Terrain: pickTerrain(pattern, coord),
				Icon:    pickIcon(pattern, coord),
			})
		}
	}
	return entries, nil
}

func patternIndex(a, b int, coord HexCoord, n int) int {
	return abs(a*coord.Q+b*coord.R) % n
}

func pickTerrain(p RingPattern, coord HexCoord) Terrain {
	return p.Terrains[patternIndex(p.TerrainA, p.TerrainB, coord, len(p.Terrains))]
}

func pickIcon(p RingPattern, coord HexCoord) Icon {
	if len(p.Icons) == 0 {
		return IconNone
	}
	return p.Icons[patternIndex(p.IconA, p.IconB, coord, len(p.Icons))]
}

// FrogBoardLayout returns the hand-authored 63-cell layout of the printed
// board: seven rows r=0..6, each spanning q=-5..3.
func FrogBoardLayout() []LayoutEntry {
	const (
		W = TerrainWater
		G = TerrainGrass
		D = TerrainDirt
		O = TerrainOrangeRocks
		S = TerrainSpecial
	)
	rows := [7][9]Terrain{
		{O, O, O, G, G, G, G, O, O},
		{O, G, W, W, G, G, W, G, O},
		{O, G, W, S, W, W, G, G, O},
		{G, G, W, W, D, W, W, G, G},
		{G, G, D, W, W, W, S, G, O},
		{O, G, G, W, W, G, G, G, O},
		{O, O, G, G, G, G, G, O, O},
	}

	entries := make([]LayoutEntry, 0, 63)
	for r, row := range rows {
		for i, t := range row {
			entries = append(entries, LayoutEntry{Q: i - 5, R: r, Terrain: t})
		}
	}
	return entries
}
