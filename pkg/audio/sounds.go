package audio

import (
	"math"

	noise "glscene/internal/math"
	"glscene/internal/util"
)

// Tone returns a sine tone with a short smooth fade at both ends.
func Tone(freq, seconds float64) []float32 {
	n := int(seconds * SampleRate)
	out := make([]float32, n)
	fade := min(n/10, SampleRate/100)
	for i := range out {
		v := math.Sin(2 * math.Pi * freq * float64(i) / SampleRate)
		env := 1.0
		if fade > 0 {
			if i < fade {
				env = util.SmoothStep(0, 1, float64(i)/float64(fade))
			} else if i >= n-fade {
				env = util.SmoothStep(0, 1, float64(n-1-i)/float64(fade))
			}
		}
		out[i] = float32(v * env * 0.5)
	}
	return out
}

// Hum returns a low drone modulated by Perlin noise, suitable for looping
// ambience. The same seed gives the same samples.
func Hum(seed int64, seconds float64) []float32 {
	g := noise.NewGenerator(seed)
	// the second partial beats against the first at a seeded rate
	overtone := 110 + g.RandomRange(0.2, 0.8)
	n := int(seconds * SampleRate)
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / SampleRate
		mod := 0.5 + 0.5*g.Perlin1D(t*1.5)
		v := 0.6*math.Sin(2*math.Pi*55*t) + 0.3*math.Sin(2*math.Pi*overtone*t)
		out[i] = float32(v * mod * 0.4)
	}
	normalize(out, 0.8)
	return out
}

func normalize(samples []float32, peak float32) {
	var m float32
	for _, s := range samples {
		m = max(m, float32(math.Abs(float64(s))))
	}
	if m == 0 {
		return
	}
	k := peak / m
	for i := range samples {
		samples[i] *= k
	}
}
