// FilePath: internal/render/detector_test.go
package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/damachine/coolerdash/internal/sensors"
)

func TestDetectorAcceptsFirstSample(t *testing.T) {
	d := NewDetector(1.0)
	assert.True(t, d.ShouldRender(sensors.Sample{CPUTemp: 42.0, GPUTemp: 51.0}))
	assert.Equal(t, sensors.Sample{CPUTemp: 42.0, GPUTemp: 51.0}, d.Last())
}

func TestDetectorSuppressesSmallMovement(t *testing.T) {
	d := NewDetector(1.0)
	d.ShouldRender(sensors.Sample{CPUTemp: 42.0, GPUTemp: 51.0})

	assert.False(t, d.ShouldRender(sensors.Sample{CPUTemp: 42.0, GPUTemp: 51.0}))
	assert.False(t, d.ShouldRender(sensors.Sample{CPUTemp: 42.5, GPUTemp: 51.4}))
	assert.False(t, d.ShouldRender(sensors.Sample{CPUTemp: 41.1, GPUTemp: 51.0}))

	// Suppressed samples do not move the reference point
	assert.Equal(t, sensors.Sample{CPUTemp: 42.0, GPUTemp: 51.0}, d.Last())
}

func TestDetectorTriggersAtExactTolerance(t *testing.T) {
	d := NewDetector(1.0)
	d.ShouldRender(sensors.Sample{CPUTemp: 42.0, GPUTemp: 51.0})

	assert.True(t, d.ShouldRender(sensors.Sample{CPUTemp: 43.0, GPUTemp: 51.0}))
	assert.Equal(t, sensors.Sample{CPUTemp: 43.0, GPUTemp: 51.0}, d.Last())
}

func TestDetectorEitherChannelTriggers(t *testing.T) {
	d := NewDetector(1.0)
	d.ShouldRender(sensors.Sample{CPUTemp: 42.0, GPUTemp: 51.0})

	assert.True(t, d.ShouldRender(sensors.Sample{CPUTemp: 42.0, GPUTemp: 52.5}))
	assert.True(t, d.ShouldRender(sensors.Sample{CPUTemp: 40.0, GPUTemp: 52.5}))
}

func TestDetectorDriftBelowToleranceNeverRedraws(t *testing.T) {
	// Slow monotonic drift in sub-tolerance steps: the reference point stays
	// pinned to the last accepted sample, so the cumulative movement
	// eventually triggers.
	d := NewDetector(1.0)
	d.ShouldRender(sensors.Sample{CPUTemp: 42.0, GPUTemp: 51.0})

	assert.False(t, d.ShouldRender(sensors.Sample{CPUTemp: 42.4, GPUTemp: 51.0}))
	assert.False(t, d.ShouldRender(sensors.Sample{CPUTemp: 42.8, GPUTemp: 51.0}))
	assert.True(t, d.ShouldRender(sensors.Sample{CPUTemp: 43.2, GPUTemp: 51.0}))
}

func TestDetectorZeroToleranceAlwaysRedraws(t *testing.T) {
	d := NewDetector(0.0)
	d.ShouldRender(sensors.Sample{CPUTemp: 42.0, GPUTemp: 51.0})
	assert.True(t, d.ShouldRender(sensors.Sample{CPUTemp: 42.0, GPUTemp: 51.0}))
}
