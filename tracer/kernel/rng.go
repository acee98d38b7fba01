package kernel

import (
	"math/rand/v2"

	"github.com/microsoft/morphcharts-sub000/types"
)

// A deterministic per-invocation random number generator. Streams are
// keyed by (logical pixel index, sample index) so that any split of an
// image into tiles or of a sample count into dispatches replays the same
// random sequence for each pixel sample.
type Rng struct {
	pcg rand.PCG
}

// Reset the generator to the stream of a pixel sample.
func (r *Rng) Seed(pixelIndex, sampleIndex uint64) {
	r.pcg.Seed(pixelIndex, sampleIndex^0x9e3779b97f4a7c15)
}

// Get a uniform value in [0, 1).
func (r *Rng) Float32() float32 {
	return float32(r.pcg.Uint64()>>40) * (1.0 / (1 << 24))
}

// Get a random point inside the unit sphere.
func (r *Rng) InUnitSphere() types.Vec3 {
	for {
		p := types.Vec3{2*r.Float32() - 1, 2*r.Float32() - 1, 2*r.Float32() - 1}
		if lenSq := p.LenSq(); lenSq < 1 && lenSq > 1e-12 {
			return p
		}
	}
}

// Get a random unit vector.
func (r *Rng) UnitVector() types.Vec3 {
	return r.InUnitSphere().Normalize()
}
