// FilePath: cmd/coolerdash/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tm "github.com/buger/goterm"
	nuts "github.com/vaudience/go-nuts"

	"github.com/damachine/coolerdash/internal/config"
	"github.com/damachine/coolerdash/internal/coolercontrol"
	"github.com/damachine/coolerdash/internal/errors"
	"github.com/damachine/coolerdash/internal/monitoring"
	"github.com/damachine/coolerdash/internal/pipeline"
	"github.com/damachine/coolerdash/internal/render"
	"github.com/damachine/coolerdash/internal/sensors"
	"github.com/damachine/coolerdash/internal/status"
)

func main() {
	// Clear console and draw logo
	ClearConsole()
	DrawLogo()
	// Initialize version info
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting CoolerDash v%s", nuts.GetVersion())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		nuts.L.Errorf("[Main] Failed to load configuration: %v", err)
		os.Exit(errors.ExitCode(err))
	}

	if err := os.MkdirAll(cfg.Paths.ImageDir, 0755); err != nil {
		nuts.L.Warnf("[Main] Could not create image directory %s: %v", cfg.Paths.ImageDir, err)
	}

	// Sensor discovery
	probe := sensors.NewProbe(cfg.Paths.Hwmon, cfg.GPUCacheInterval())
	probe.Discover()
	nuts.L.Infof("[Main] CPU monitor initialized")
	if probe.ProbeGPU() {
		nuts.L.Infof("[Main] GPU monitor initialized")
	} else {
		nuts.L.Warnf("[Main] GPU monitor not available (no NVIDIA GPU?)")
	}

	// CoolerControl session
	session, err := coolercontrol.Open(cfg)
	if err != nil {
		nuts.L.Errorf("[Main] CoolerControl session could not be initialized: %v", err)
		fmt.Fprintln(os.Stderr, "Please check:")
		fmt.Fprintln(os.Stderr, "  - Is coolercontrold running? (systemctl status coolercontrold)")
		fmt.Fprintf(os.Stderr, "  - Is the daemon reachable at %s?\n", cfg.Daemon.Address)
		fmt.Fprintln(os.Stderr, "  - Is the daemon password correct?")
		os.Exit(errors.ExitCode(err))
	}

	if _, err := session.DiscoverDeviceUID(); err != nil {
		nuts.L.Errorf("[Main] Could not detect AIO device UID: %v", err)
		fmt.Fprintln(os.Stderr, "Please check:")
		fmt.Fprintln(os.Stderr, "  - Is your AIO device connected?")
		fmt.Fprintln(os.Stderr, "  - Does your device support an LCD display?")
		fmt.Fprintf(os.Stderr, "  - Run 'curl %s/devices' to see available devices\n", cfg.Daemon.Address)
		session.Close()
		os.Exit(errors.ExitCode(err))
	}

	renderer, err := render.New(cfg)
	if err != nil {
		nuts.L.Errorf("[Main] Failed to initialize renderer: %v", err)
		session.Close()
		os.Exit(errors.ExitCode(err))
	}

	stats := monitoring.NewService()

	var statusSrv *status.Server
	if cfg.Status.Enabled {
		statusSrv = status.New(cfg, stats, status.Info{
			DeviceUID:    session.DeviceUID(),
			DeviceName:   session.DeviceName(),
			GPUAvailable: probe.GPUAvailable(),
		})
		statusSrv.Start()
	}

	nuts.L.Infof("[Main] All modules successfully initialized")

	detector := render.NewDetector(cfg.Cache.ChangeToleranceTemp)
	pipe := pipeline.New(cfg, probe, detector, renderer, session, stats)
	pipe.Run()

	if statusSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := statusSrv.Shutdown(ctx); err != nil {
			nuts.L.Warnf("[Main] Status server shutdown: %v", err)
		}
	}

	nuts.L.Infof("[Main] CoolerDash stopped")
}

// ClearConsole clears the console screen and moves the cursor home.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"   ______            __          ____             __  ",
		"  / ____/___  ____  / /__  _____/ __ \\____ ______/ /_ ",
		" / /   / __ \\/ __ \\/ / _ \\/ ___/ / / / __ `/ ___/ __ \\",
		"/ /___/ /_/ / /_/ / /  __/ /  / /_/ / /_/ (__  ) / / /",
		"\\____/\\____/\\____/_/\\___/_/  /_____/\\__,_/____/_/ /_/ ",
		"......................................................  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
