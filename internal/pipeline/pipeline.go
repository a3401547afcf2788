// FilePath: internal/pipeline/pipeline.go
package pipeline

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/damachine/coolerdash/internal/config"
	"github.com/damachine/coolerdash/internal/monitoring"
	"github.com/damachine/coolerdash/internal/render"
	"github.com/damachine/coolerdash/internal/sensors"
)

// FrameRenderer rasterises a sample to the configured image path.
type FrameRenderer interface {
	Render(sample sensors.Sample) error
}

// DeviceSession is the slice of the daemon session the pipeline drives.
type DeviceSession interface {
	PushFrame(path string) error
	Ready() bool
	Close()
}

// Pipeline owns the cooperative render-and-push loop: sample, gate, render,
// upload, sleep. The termination flag and the shutdown-frame latch are the
// only state shared with signal delivery.
type Pipeline struct {
	cfg      *config.Config
	source   sensors.Source
	detector *render.Detector
	renderer FrameRenderer
	session  DeviceSession
	stats    *monitoring.Service

	running      atomic.Bool
	shutdownSent atomic.Bool
}

// New assembles a pipeline from its collaborators.
func New(cfg *config.Config, source sensors.Source, detector *render.Detector,
	renderer FrameRenderer, session DeviceSession, stats *monitoring.Service) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		source:   source,
		detector: detector,
		renderer: renderer,
		session:  session,
		stats:    stats,
	}
}

// Run drives the tick loop until a termination signal arrives, then emits the
// shutdown frame at most once and closes the session. Signal handlers only
// mark intent; all HTTP traffic happens on this goroutine.
func (p *Pipeline) Run() {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	p.running.Store(true)
	interval := p.cfg.RefreshInterval()
	nuts.L.Infof("[Pipeline] Sampling every %v", interval)

	for p.running.Load() {
		p.tick(time.Now())

		// The inter-tick sleep is the sole suspension point; a signal wakes
		// it immediately.
		select {
		case sig := <-sigCh:
			nuts.L.Infof("[Pipeline] Received %s, shutting down", sig)
			p.running.Store(false)
		case <-time.After(interval):
		}
	}

	p.shutdown()
}

// Stop requests loop termination; used by tests and embedders.
func (p *Pipeline) Stop() {
	p.running.Store(false)
}

// tick samples the sensors, gates on the change detector, renders and
// publishes. Every failure past the gate is logged and swallowed; the loop
// never stops on a bad tick.
func (p *Pipeline) tick(now time.Time) {
	sample := sensors.Sample{
		CPUTemp: p.source.ReadCPU(),
		GPUTemp: p.source.ReadGPU(now.UnixMilli()),
	}
	p.stats.RecordTick(sample, p.source.ReadCoolant())

	if !p.detector.ShouldRender(sample) {
		return
	}
	if err := p.renderer.Render(sample); err != nil {
		nuts.L.Warnf("[Pipeline] Render failed, skipping upload: %v", err)
		return
	}
	p.stats.RecordRender()

	err := p.session.PushFrame(p.cfg.Paths.ImagePath)
	p.stats.RecordUpload(err)
	if err != nil {
		nuts.L.Warnf("[Pipeline] Frame upload failed: %v", err)
	}
}

// shutdown sends the farewell frame at most once per process lifetime and
// always closes the session.
func (p *Pipeline) shutdown() {
	if p.shutdownSent.CompareAndSwap(false, true) {
		if p.session.Ready() && p.cfg.Paths.ShutdownImage != "" {
			nuts.L.Infof("[Pipeline] Sending shutdown frame")
			if err := p.session.PushFrame(p.cfg.Paths.ShutdownImage); err != nil {
				nuts.L.Warnf("[Pipeline] Could not send shutdown frame: %v", err)
			}
		}
	}
	p.session.Close()
}
