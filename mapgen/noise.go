package mapgen

import (
	"math"

	perlin "github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Perlin parameters: a single octave keeps the field close to classic
// texture-style Perlin noise, which the thresholds are tuned for.
const (
	perlinAlpha   = 2
	perlinBeta    = 2
	perlinOctaves = 1
)

// noiseSource evaluates raw coherent noise normalised to [0,1]
type noiseSource interface {
	eval(x, y float64) float64
}

type perlinSource struct {
	p *perlin.Perlin
}

func (s perlinSource) eval(x, y float64) float64 {
	// Noise2D is roughly in [-1,1]
	return clamp01((s.p.Noise2D(x, y) + 1) / 2)
}

type simplexSource struct {
	n opensimplex.Noise
}

func (s simplexSource) eval(x, y float64) float64 {
	return clamp01(s.n.Eval2(x, y))
}

// NoiseField is a deterministic scalar field over integer tile coordinates
type NoiseField struct {
	src     noiseSource
	scale   float64
	offsetX float64
	offsetY float64
}

// NewNoiseField creates a field for the given backend, seed, scale and offset
func NewNoiseField(kind NoiseKind, seed Seed, scale, offsetX, offsetY float64) *NoiseField {
	var src noiseSource
	switch kind {
	case NoiseSimplex:
		src = simplexSource{n: opensimplex.NewNormalized(int64(seed))}
	default:
		src = perlinSource{p: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, int64(seed))}
	}
	return &NoiseField{
		src:     src,
		scale:   scale,
		offsetX: offsetX,
		offsetY: offsetY,
	}
}

// Sample returns the field value in [0,1] at tile (x, y)
func (f *NoiseField) Sample(x, y int) float64 {
	return f.src.eval((float64(x)+f.offsetX)*f.scale, (float64(y)+f.offsetY)*f.scale)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
