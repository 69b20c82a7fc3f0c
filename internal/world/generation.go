// World generation using layered simplex noise. Elevation, rainfall,
// and temperature fields are sampled on a cylinder so terrain is
// seamless across the east-west wrap, then terrain is derived per tile.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/hexrealm/internal/rules"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Width    int
	Height   int
	Seed     int64   // 0 = random
	SeaLevel float64 // Elevation threshold for ocean (0.0–1.0)
	PeakLvl  float64 // Elevation threshold for mountains (0.0–1.0)
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:    40,
		Height:   30,
		SeaLevel: 0.30,
		PeakLvl:  0.74,
	}
}

// Generate creates a complete map with derived terrain. Deterministic
// for a fixed nonzero seed.
func Generate(cfg GenConfig, civCount int, reg *rules.Registry) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	rainNoise := opensimplex.NewNormalized(seed + 1)
	tempNoise := opensimplex.NewNormalized(seed + 2)

	m := NewMap(cfg.Width, cfg.Height, civCount, reg)

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			c := Coord{X: x, Y: y}

			elev := cylinderNoise(elevNoise, x, y, cfg.Width, 4, 3.0, 0.5)
			rain := cylinderNoise(rainNoise, x, y, cfg.Width, 3, 2.2, 0.5)
			temp := cylinderNoise(tempNoise, x, y, cfg.Width, 3, 2.0, 0.5)

			// Latitude band: hot equator, frozen poles.
			lat := math.Abs(float64(y)/float64(cfg.Height-1) - 0.5) * 2
			temp = temp*0.4 + (1.0-lat)*0.5 + (1.0-elev)*0.1

			terrain := deriveTerrain(elev, rain, temp, cfg)
			t := NewTile(c, terrain, civCount)
			m.Tiles[m.Pos(c)] = t
		}
	}

	markCoastalTiles(m)
	placeRivers(m, seed)
	return m
}

// cylinderNoise samples octave noise with x mapped onto a circle so the
// field wraps seamlessly east-west.
func cylinderNoise(noise opensimplex.Noise, x, y, width, octaves int, frequency, persistence float64) float64 {
	angle := 2 * math.Pi * float64(x) / float64(width)
	nx := math.Cos(angle)
	nz := math.Sin(angle)
	ny := float64(y) * 2 * math.Pi / float64(width)

	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	freq := frequency
	for i := 0; i < octaves; i++ {
		total += noise.Eval3(nx*freq, ny*freq, nz*freq) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		freq *= 2
	}
	return total / maxVal
}

// deriveTerrain maps environmental parameters onto the closed terrain
// set.
func deriveTerrain(elev, rain, temp float64, cfg GenConfig) Terrain {
	if elev < cfg.SeaLevel {
		if temp < 0.2 {
			return TerrainFrozenOcean
		}
		return TerrainOcean
	}
	if elev > cfg.PeakLvl {
		return TerrainMountain
	}
	if temp < 0.25 {
		return TerrainTundra
	}
	if rain < 0.25 && temp > 0.55 {
		return TerrainDesert
	}
	if rain > 0.55 {
		return TerrainForest
	}
	if rain > 0.4 {
		return TerrainGrass
	}
	return TerrainPlains
}

// markCoastalTiles converts ocean tiles that touch land into shoreline.
func markCoastalTiles(m *Map) {
	var toMark []*Tile
	for _, t := range m.Tiles {
		if t.Terrain != TerrainOcean && t.Terrain != TerrainFrozenOcean {
			continue
		}
		for _, nc := range AdjacentCoords(t.Coords) {
			n := m.TileAt(nc)
			if n == nil {
				continue
			}
			if n.Terrain != TerrainOcean && n.Terrain != TerrainFrozenOcean &&
				n.Terrain != TerrainCoastal && n.Terrain != TerrainFrozenCoastal {
				toMark = append(toMark, t)
				break
			}
		}
	}
	for _, t := range toMark {
		if t.Terrain == TerrainFrozenOcean {
			setTerrain(t, TerrainFrozenCoastal)
		} else {
			setTerrain(t, TerrainCoastal)
		}
	}
}

// placeRivers traces a river from each of a handful of randomly chosen
// mountain tiles, marking the path as river.
func placeRivers(m *Map, seed int64) {
	rng := rand.New(rand.NewSource(seed + 100))

	var sources []*Tile
	for _, t := range m.Tiles {
		if t.Terrain == TerrainMountain {
			sources = append(sources, t)
		}
	}
	numRivers := len(sources) / 6
	if numRivers < 1 {
		numRivers = 1
	}
	if numRivers > 8 {
		numRivers = 8
	}
	rng.Shuffle(len(sources), func(i, j int) {
		sources[i], sources[j] = sources[j], sources[i]
	})
	if len(sources) > numRivers {
		sources = sources[:numRivers]
	}

	for _, src := range sources {
		traceRiver(m, src, rng)
	}
}

// traceRiver walks from a source in a random direction, mostly straight
// with a slight meander (no elevation is consulted), marking land tiles
// other than mountains as river. It stops at water, after maxSteps, or
// when no unvisited neighbor is left.
func traceRiver(m *Map, start *Tile, rng *rand.Rand) {
	cur := start
	visited := map[int]bool{m.Pos(start.Coords): true}
	const maxSteps = 40

	dir := rng.Intn(6)
	for step := 0; step < maxSteps; step++ {
		switch cur.Terrain {
		case TerrainOcean, TerrainFrozenOcean, TerrainCoastal, TerrainFrozenCoastal:
			return
		case TerrainMountain:
			// Springs pass under the peak, surfacing beyond it.
		default:
			setTerrain(cur, TerrainRiver)
		}

		// Prefer continuing straight with a slight meander.
		var next *Tile
		for _, d := range []int{dir, dir + 1, dir - 1, dir + 2, dir - 2} {
			nc, ok := m.Normalize(InDirection(cur.Coords, d))
			if !ok {
				continue
			}
			cand := m.Tiles[m.Pos(nc)]
			if visited[m.Pos(nc)] {
				continue
			}
			next = cand
			dir = mod(d, 6)
			break
		}
		if next == nil {
			return
		}
		visited[m.Pos(next.Coords)] = true
		cur = next
	}
}

// setTerrain swaps a tile's terrain and refreshes its base yield.
func setTerrain(t *Tile, terrain Terrain) {
	t.Terrain = terrain
	t.BaseYield = terrain.BaseYield()
}
