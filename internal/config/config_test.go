// FilePath: internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("COOLERDASH_CONFIG", filepath.Join(t.TempDir(), "missing.ini"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 240, cfg.Display.Width)
	assert.Equal(t, 240, cfg.Display.Height)
	assert.Equal(t, 100, cfg.Display.Brightness)
	assert.Equal(t, 0, cfg.Display.Orientation)
	assert.Equal(t, 230, cfg.Layout.BarWidth)
	assert.Equal(t, 55.0, cfg.Temperature.ThresholdGreen)
	assert.Equal(t, 65.0, cfg.Temperature.ThresholdOrange)
	assert.Equal(t, 75.0, cfg.Temperature.ThresholdRed)
	assert.Equal(t, "/sys/class/hwmon", cfg.Paths.Hwmon)
	assert.Equal(t, "http://localhost:11987", cfg.Daemon.Address)
	assert.False(t, cfg.Status.Enabled)
	assert.Equal(t, Color{R: 0, G: 255, B: 0}, cfg.Colors.Green)
	assert.Equal(t, Color{R: 255, G: 0, B: 0}, cfg.Colors.Red)
	assert.Equal(t, 2500*time.Millisecond, cfg.RefreshInterval())
	assert.Equal(t, 2*time.Second, cfg.GPUCacheInterval())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
[display]
width = 320
height = 320
refresh_interval_sec = 1
refresh_interval_nsec = 0
brightness = 80
orientation = 180

[layout]
bar_width = 300
bar_height = 40

[temperature]
threshold_green = 50.0
threshold_orange = 60.0
threshold_red = 70.0

[cache]
change_tolerance_temp = 0.5

[daemon]
address = http://127.0.0.1:12000
password = secret

[color_green]
r = 10
g = 200
b = 10
`)
	t.Setenv("COOLERDASH_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 320, cfg.Display.Width)
	assert.Equal(t, 80, cfg.Display.Brightness)
	assert.Equal(t, 180, cfg.Display.Orientation)
	assert.Equal(t, 300, cfg.Layout.BarWidth)
	assert.Equal(t, 50.0, cfg.Temperature.ThresholdGreen)
	assert.Equal(t, 0.5, cfg.Cache.ChangeToleranceTemp)
	assert.Equal(t, "http://127.0.0.1:12000", cfg.Daemon.Address)
	assert.Equal(t, "secret", cfg.Daemon.Password)
	assert.Equal(t, Color{R: 10, G: 200, B: 10}, cfg.Colors.Green)
	assert.Equal(t, time.Second, cfg.RefreshInterval())
	assert.Equal(t, 40, cfg.Layout.BarHeight)

	// Unset sections keep their defaults
	assert.Equal(t, 22.0, cfg.Font.SizeLabels)
	assert.Equal(t, "/sys/class/hwmon", cfg.Paths.Hwmon)
}

func TestLoadRejectsBadOrientation(t *testing.T) {
	path := writeConfig(t, `
[display]
orientation = 45
`)
	t.Setenv("COOLERDASH_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orientation")
}

func TestLoadRejectsUnorderedThresholds(t *testing.T) {
	path := writeConfig(t, `
[temperature]
threshold_green = 75.0
threshold_orange = 65.0
threshold_red = 55.0
`)
	t.Setenv("COOLERDASH_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thresholds")
}

func TestLoadRejectsBadBrightness(t *testing.T) {
	path := writeConfig(t, `
[display]
brightness = 150
`)
	t.Setenv("COOLERDASH_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brightness")
}
