package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Decoration is cosmetic scatter drawn on top of a cell. It never feeds back
// into terrain or elevation.
type Decoration struct {
	Tufts   int `json:"tufts"`   // Grass tufts
	Pebbles int `json:"pebbles"` // Loose stones
	Reeds   int `json:"reeds"`   // Water reeds
}

// Empty reports whether nothing should be drawn.
func (d Decoration) Empty() bool {
	return d.Tufts == 0 && d.Pebbles == 0 && d.Reeds == 0
}

// Decorate scatters decoration across the board using layered simplex noise.
// The same seed always yields the same scatter.
func Decorate(b *Board, seed int64) map[HexCoord]Decoration {
	density := opensimplex.NewNormalized(seed)
	variety := opensimplex.NewNormalized(seed + 1)

	out := make(map[HexCoord]Decoration, b.Len())
	for _, c := range b.Cells() {
		// Axial → cartesian with unit spacing, so noise is orientation independent.
		x := float64(c.Coord.Q) + float64(c.Coord.R)*0.5
		y := float64(c.Coord.R) * sqrt3 / 2

		d := octaveNoise(density, x, y, 3, 0.35, 0.5)
		v := octaveNoise(variety, x, y, 2, 0.6, 0.5)

		var dec Decoration
		switch c.Terrain {
		case TerrainGrass, TerrainSpecial:
			dec.Tufts = int(d * 6)
			if v > 0.7 {
				dec.Pebbles = 1
			}
		case TerrainDirt:
			dec.Pebbles = int(d * 4)
			dec.Tufts = int(v * 2)
		case TerrainOrangeRocks:
			dec.Pebbles = 1 + int(d*3)
		case TerrainWater:
			if v > 0.55 {
				dec.Reeds = int(d * 4)
			}
		}
		if !dec.Empty() {
			out[c.Coord] = dec
		}
	}
	return out
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
