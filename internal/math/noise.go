// Package noise provides seeded gradient noise for procedural meshes and
// sounds.
package noise

import (
	"math"
	"math/rand"

	"glscene/internal/util"
)

// Generator produces deterministic gradient noise for one seed.
type Generator struct {
	seed int
	rng  *rand.Rand
}

// NewGenerator returns a generator for seed. Equal seeds give equal noise.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		seed: int(seed),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// RandomRange returns a random float in [min, max).
func (g *Generator) RandomRange(min, max float64) float64 {
	return min + g.rng.Float64()*(max-min)
}

// Perlin1D returns 1D Perlin noise, roughly in [-1, 1].
func (g *Generator) Perlin1D(x float64) float64 {
	x0 := math.Floor(x)
	x1 := x0 + 1
	sx := fade(x - x0)

	g0 := gradient1D(hash(int(x0), 0, g.seed))
	g1 := gradient1D(hash(int(x1), 0, g.seed))

	return util.Lerp(g0*(x-x0), g1*(x-x1), sx) * 2
}

// Perlin2D returns 2D Perlin noise, roughly in [-1, 1].
func (g *Generator) Perlin2D(x, y float64) float64 {
	x0 := math.Floor(x)
	x1 := x0 + 1
	y0 := math.Floor(y)
	y1 := y0 + 1

	sx := fade(x - x0)
	sy := fade(y - y0)

	g00 := gradient2D(hash(int(x0), int(y0), g.seed))
	g10 := gradient2D(hash(int(x1), int(y0), g.seed))
	g01 := gradient2D(hash(int(x0), int(y1), g.seed))
	g11 := gradient2D(hash(int(x1), int(y1), g.seed))

	d00 := g00[0]*(x-x0) + g00[1]*(y-y0)
	d10 := g10[0]*(x-x1) + g10[1]*(y-y0)
	d01 := g01[0]*(x-x0) + g01[1]*(y-y1)
	d11 := g11[0]*(x-x1) + g11[1]*(y-y1)

	return util.Lerp(util.Lerp(d00, d10, sx), util.Lerp(d01, d11, sx), sy)
}

// FBM2D sums octaves of Perlin2D and normalizes by the total amplitude.
func (g *Generator) FBM2D(x, y float64, octaves int, lacunarity, gain float64) float64 {
	if octaves <= 0 {
		return 0
	}
	sum, amp, freq, total := 0.0, 1.0, 1.0, 0.0
	for i := 0; i < octaves; i++ {
		sum += g.Perlin2D(x*freq+float64(i)*17.3, y*freq) * amp
		total += amp
		amp *= gain
		freq *= lacunarity
	}
	return sum / total
}

func hash(x, y, seed int) int {
	h := seed + x*374761393 + y*668265263
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

func gradient1D(h int) float64 {
	if h&1 == 0 {
		return 1
	}
	return -1
}

func gradient2D(h int) [2]float64 {
	switch h & 7 {
	case 0:
		return [2]float64{1, 0}
	case 1:
		return [2]float64{-1, 0}
	case 2:
		return [2]float64{0, 1}
	case 3:
		return [2]float64{0, -1}
	case 4:
		return [2]float64{1, 1}
	case 5:
		return [2]float64{-1, 1}
	case 6:
		return [2]float64{1, -1}
	default:
		return [2]float64{-1, -1}
	}
}

// fade is the improved Perlin curve 6t^5 - 15t^4 + 10t^3
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}
