package tracer

import (
	"math"
	"time"
)

// The SampleScheduler interface is implemented by all sample scheduling
// algorithms.
type SampleScheduler interface {
	// Decide how many samples per pixel the next request should add given
	// the samples remaining until the target and the statistics of the
	// previous request (nil if there was none).
	//
	// The returned value is always in the [1, remaining] range unless
	// remaining is 0.
	Schedule(remaining uint32, last *Stats) uint32
}

// The fixed scheduler always requests the same number of samples.
type fixedScheduler struct {
	samples uint32
}

// Create a scheduler that adds a fixed number of samples per request.
func NewFixedScheduler(samples uint32) SampleScheduler {
	if samples == 0 {
		samples = 1
	}
	return &fixedScheduler{samples: samples}
}

func (sch *fixedScheduler) Schedule(remaining uint32, _ *Stats) uint32 {
	return clampSamples(sch.samples, remaining)
}

// The adaptive scheduler assumes that the cost of a sample is approximately
// the same between subsequent requests and sizes each request so that it
// fits in a time budget.
type adaptiveScheduler struct {
	budget     time.Duration
	maxSamples uint32
}

// Create a scheduler that sizes requests to fit the given time budget. A
// maxSamples value of 0 does not limit the request size.
func NewAdaptiveScheduler(budget time.Duration, maxSamples uint32) SampleScheduler {
	return &adaptiveScheduler{
		budget:     budget,
		maxSamples: maxSamples,
	}
}

// Use the integration time of the last request to estimate the cost of a
// single sample s = t_i / n_i and schedule n_i+1 = floor(budget / s) samples.
func (sch *adaptiveScheduler) Schedule(remaining uint32, last *Stats) uint32 {
	if last == nil || last.Samples == 0 || last.IntegrateTime <= 0 {
		return clampSamples(1, remaining)
	}

	perSample := float64(last.IntegrateTime) / float64(last.Samples)
	samples := math.Floor(float64(sch.budget) / perSample)
	if sch.maxSamples != 0 {
		samples = math.Min(samples, float64(sch.maxSamples))
	}
	samples = math.Min(math.Max(samples, 1), math.MaxUint32)

	return clampSamples(uint32(samples), remaining)
}

func clampSamples(samples, remaining uint32) uint32 {
	if samples > remaining {
		return remaining
	}
	if samples == 0 && remaining > 0 {
		return 1
	}
	return samples
}
