package world

import "sort"

// Terrain is the surface kind of a board cell. Stored by name so layout
// tables and config files can carry kinds this package does not list.
type Terrain string

const (
	TerrainWater       Terrain = "WATER"
	TerrainGrass       Terrain = "GRASS"
	TerrainDirt        Terrain = "DIRT"
	TerrainOrangeRocks Terrain = "ORANGE_ROCKS"
	TerrainSpecial     Terrain = "SPECIAL" // Darker grass marking special cells
)

// Icon is the animal silhouette printed on a cell face.
type Icon string

const (
	IconNone      Icon = ""
	IconFrog      Icon = "FROG"
	IconSnake     Icon = "SNAKE"
	IconHeron     Icon = "HERON"
	IconFish      Icon = "FISH"
	IconBug       Icon = "BUG"
	IconMosquito  Icon = "MOSQUITO"
	IconDragonfly Icon = "DRAGONFLY"
	IconDeer      Icon = "DEER"
	IconFox       Icon = "FOX"
)

// DefaultCellHeight is the extrusion used for terrain missing from a HeightTable.
const DefaultCellHeight = 10.0

// HeightTable maps terrain to cell elevation in world units.
type HeightTable struct {
	Heights map[Terrain]float64 `yaml:"heights" json:"heights"`
	Default float64             `yaml:"default" json:"default"`
}

// DefaultHeights returns the heights of the printed board.
func DefaultHeights() HeightTable {
	return HeightTable{
		Heights: map[Terrain]float64{
			TerrainWater:       0,
			TerrainGrass:       10,
			TerrainDirt:        8,
			TerrainOrangeRocks: 20,
			TerrainSpecial:     10,
		},
		Default: DefaultCellHeight,
	}
}

// Elevation returns the height for t, or the table default when t is unlisted.
func (h HeightTable) Elevation(t Terrain) float64 {
	if v, ok := h.Heights[t]; ok {
		return v
	}
	return h.Default
}

// terrainColors are the RGB face colors the renderer uses.
var terrainColors = map[Terrain]uint32{
	TerrainWater:       0x5DADE2,
	TerrainGrass:       0x27AE60,
	TerrainDirt:        0xD4B896,
	TerrainOrangeRocks: 0xE67E22,
	TerrainSpecial:     0x1E8449,
}

// TerrainColor returns the face color for t, falling back to grass.
func TerrainColor(t Terrain) uint32 {
	if c, ok := terrainColors[t]; ok {
		return c
	}
	return terrainColors[TerrainGrass]
}

// SortedTerrains returns the keys of counts in name order, for stable logging.
func SortedTerrains(counts map[Terrain]int) []Terrain {
	out := make([]Terrain, 0, len(counts))
	for t := range counts {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
