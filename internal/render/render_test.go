// FilePath: internal/render/render_test.go
package render

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damachine/coolerdash/internal/config"
	"github.com/damachine/coolerdash/internal/sensors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Display: config.DisplayConfig{
			Width: 240, Height: 240,
			RefreshIntervalSec: 2, RefreshIntervalNsec: 500000000,
			Brightness: 100, Orientation: 0,
		},
		Layout: config.LayoutConfig{
			BoxWidth: 240, BoxHeight: 120,
			BarWidth: 230, BarHeight: 30, BarGap: 6,
			BorderLineWidth: 1.5,
		},
		Font: config.FontConfig{SizeTemp: 90, SizeLabels: 22},
		Temperature: config.TemperatureConfig{
			ThresholdGreen: 55, ThresholdOrange: 65, ThresholdRed: 75,
		},
		Cache: config.CacheConfig{GPUIntervalSec: 2, ChangeToleranceTemp: 1.0},
		Paths: config.PathsConfig{
			ImageDir:  dir,
			ImagePath: filepath.Join(dir, "frame.png"),
		},
		Colors: config.ColorsConfig{
			Green:     config.Color{R: 0, G: 255, B: 0},
			Orange:    config.Color{R: 255, G: 140, B: 0},
			HotOrange: config.Color{R: 255, G: 70, B: 0},
			Red:       config.Color{R: 255, G: 0, B: 0},
			Temp:      config.Color{R: 255, G: 255, B: 255},
			Label:     config.Color{R: 200, G: 200, B: 200},
			Bg:        config.Color{R: 41, G: 41, B: 41},
			Border:    config.Color{R: 20, G: 20, B: 20},
		},
	}
}

func decodeFrame(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func rgbAt(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func assertPixel(t *testing.T, img image.Image, x, y int, want config.Color) {
	t.Helper()
	r, g, b := rgbAt(img, x, y)
	assert.Equal(t, uint8(want.R), r, "red at (%d,%d)", x, y)
	assert.Equal(t, uint8(want.G), g, "green at (%d,%d)", x, y)
	assert.Equal(t, uint8(want.B), b, "blue at (%d,%d)", x, y)
}

func TestRenderWritesFrame(t *testing.T) {
	cfg := testConfig(t)
	r, err := New(cfg)
	require.NoError(t, err)

	require.NoError(t, r.Render(sensors.Sample{CPUTemp: 42.0, GPUTemp: 51.0}))

	img := decodeFrame(t, cfg.Paths.ImagePath)
	bounds := img.Bounds()
	assert.Equal(t, 240, bounds.Dx())
	assert.Equal(t, 240, bounds.Dy())

	// Bar geometry: group of bar+gap+bar centred vertically, bars centred
	// horizontally
	barX := (240 - cfg.Layout.BarWidth) / 2 // 5
	cpuBarY := (240-(2*cfg.Layout.BarHeight+cfg.Layout.BarGap))/2 + 1
	gpuBarY := cpuBarY + cfg.Layout.BarHeight + cfg.Layout.BarGap

	// Both temperatures are in band 1 (green)
	assertPixel(t, img, barX+20, cpuBarY+15, cfg.Colors.Green)
	assertPixel(t, img, barX+20, gpuBarY+15, cfg.Colors.Green)

	// Beyond the fill width the bar background shows
	cpuFill := fillWidth(42.0, cfg.Layout.BarWidth) // 97
	assertPixel(t, img, barX+cpuFill+20, cpuBarY+15, cfg.Colors.Bg)

	// Corner outside the frame chrome stays black
	assertPixel(t, img, 238, 1, config.Color{R: 0, G: 0, B: 0})
}

func TestRenderBandCrossing(t *testing.T) {
	cfg := testConfig(t)
	r, err := New(cfg)
	require.NoError(t, err)

	// 56 °C is past the green threshold: band 2
	require.NoError(t, r.Render(sensors.Sample{CPUTemp: 56.0, GPUTemp: 40.0}))

	img := decodeFrame(t, cfg.Paths.ImagePath)
	barX := (240 - cfg.Layout.BarWidth) / 2
	cpuBarY := (240-(2*cfg.Layout.BarHeight+cfg.Layout.BarGap))/2 + 1
	assertPixel(t, img, barX+20, cpuBarY+15, cfg.Colors.Orange)
}

func TestRenderZeroTemperatureLeavesBarEmpty(t *testing.T) {
	cfg := testConfig(t)
	r, err := New(cfg)
	require.NoError(t, err)

	require.NoError(t, r.Render(sensors.Sample{CPUTemp: 42.0, GPUTemp: 0.0}))

	img := decodeFrame(t, cfg.Paths.ImagePath)
	barX := (240 - cfg.Layout.BarWidth) / 2
	cpuBarY := (240-(2*cfg.Layout.BarHeight+cfg.Layout.BarGap))/2 + 1
	gpuBarY := cpuBarY + cfg.Layout.BarHeight + cfg.Layout.BarGap

	// GPU bar shows only background, no fill
	assertPixel(t, img, barX+20, gpuBarY+15, cfg.Colors.Bg)
}

func TestRenderCreatesImageDir(t *testing.T) {
	cfg := testConfig(t)
	nested := filepath.Join(cfg.Paths.ImageDir, "a", "b")
	cfg.Paths.ImageDir = nested
	cfg.Paths.ImagePath = filepath.Join(nested, "frame.png")

	r, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, r.Render(sensors.Sample{CPUTemp: 42.0, GPUTemp: 51.0}))

	_, err = os.Stat(cfg.Paths.ImagePath)
	assert.NoError(t, err)
}

func TestBandColor(t *testing.T) {
	cfg := testConfig(t)

	cases := []struct {
		temp float32
		want config.Color
	}{
		{0, cfg.Colors.Green},
		{54.9, cfg.Colors.Green},
		{55.0, cfg.Colors.Green},
		{55.1, cfg.Colors.Orange},
		{65.0, cfg.Colors.Orange},
		{65.1, cfg.Colors.HotOrange},
		{75.0, cfg.Colors.HotOrange},
		{75.1, cfg.Colors.Red},
		{120, cfg.Colors.Red},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, bandColor(tc.temp, cfg), "temp %.1f", tc.temp)
	}
}

func TestFillWidth(t *testing.T) {
	cases := []struct {
		temp float32
		want int
	}{
		{42.0, 97},
		{51.0, 117},
		{0.0, 0},
		{-5.0, 0},
		{100.0, 230},
		{150.0, 230},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, fillWidth(tc.temp, 230), "temp %.1f", tc.temp)
	}
}
