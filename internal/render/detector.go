// FilePath: internal/render/detector.go
package render

import (
	"math"

	"github.com/damachine/coolerdash/internal/sensors"
)

// Detector suppresses redraws for samples that moved less than the configured
// tolerance on both channels since the last accepted sample. The first sample
// is always accepted.
type Detector struct {
	tolerance float64
	last      sensors.Sample
	primed    bool
}

// NewDetector creates a detector with the given per-channel tolerance in
// degrees Celsius.
func NewDetector(tolerance float64) *Detector {
	return &Detector{tolerance: tolerance}
}

// ShouldRender reports whether sample differs from the last accepted sample
// by at least the tolerance on either channel. A movement of exactly the
// tolerance triggers a redraw. On acceptance the sample is stored.
func (d *Detector) ShouldRender(sample sensors.Sample) bool {
	if !d.primed {
		d.primed = true
		d.last = sample
		return true
	}
	if math.Abs(float64(sample.CPUTemp-d.last.CPUTemp)) >= d.tolerance ||
		math.Abs(float64(sample.GPUTemp-d.last.GPUTemp)) >= d.tolerance {
		d.last = sample
		return true
	}
	return false
}

// Last returns the most recently accepted sample.
func (d *Detector) Last() sensors.Sample {
	return d.last
}
