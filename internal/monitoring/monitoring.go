// FilePath: internal/monitoring/monitoring.go
package monitoring

import (
	"sync"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/damachine/coolerdash/internal/sensors"
)

// Service collects process-local pipeline counters for the status surface.
// The pipeline records from its single loop thread; the status server reads
// snapshots concurrently.
type Service struct {
	mu sync.Mutex

	startedAt      time.Time
	ticks          uint64
	renders        uint64
	uploads        uint64
	uploadFailures uint64
	lastSample     sensors.Sample
	lastCoolant    float32
	lastRenderAt   time.Time
}

// Snapshot is a point-in-time copy of the pipeline counters.
type Snapshot struct {
	UptimeSeconds  float64 `json:"uptime_seconds"`
	Ticks          uint64  `json:"ticks"`
	Renders        uint64  `json:"renders"`
	Uploads        uint64  `json:"uploads"`
	UploadFailures uint64  `json:"upload_failures"`
	CPUTemp        float32 `json:"cpu_temp"`
	GPUTemp        float32 `json:"gpu_temp"`
	CoolantTemp    float32 `json:"coolant_temp"`
	LastRenderAt   string  `json:"last_render_at,omitempty"`
}

// NewService creates a new monitoring service
func NewService() *Service {
	return &Service{startedAt: time.Now()}
}

// RecordTick stores the sample observed by the current tick.
func (s *Service) RecordTick(sample sensors.Sample, coolant float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks++
	s.lastSample = sample
	s.lastCoolant = coolant
}

// RecordRender counts one successfully rendered frame.
func (s *Service) RecordRender() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renders++
	s.lastRenderAt = time.Now()
}

// RecordUpload counts one logical publish; err marks it failed.
func (s *Service) RecordUpload(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.uploadFailures++
		nuts.L.Warnf("[Monitoring] Upload failed: %v", err)
		return
	}
	s.uploads++
}

// Snapshot returns a copy of the current counters.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		UptimeSeconds:  time.Since(s.startedAt).Seconds(),
		Ticks:          s.ticks,
		Renders:        s.renders,
		Uploads:        s.uploads,
		UploadFailures: s.uploadFailures,
		CPUTemp:        s.lastSample.CPUTemp,
		GPUTemp:        s.lastSample.GPUTemp,
		CoolantTemp:    s.lastCoolant,
	}
	if !s.lastRenderAt.IsZero() {
		snap.LastRenderAt = s.lastRenderAt.Format(time.RFC3339)
	}
	return snap
}
