// FilePath: internal/render/render.go
package render

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	nuts "github.com/vaudience/go-nuts"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"

	"github.com/damachine/coolerdash/internal/config"
	"github.com/damachine/coolerdash/internal/errors"
	"github.com/damachine/coolerdash/internal/sensors"
)

const (
	barCornerRadius = 8.0
	dirPermissions  = 0755
)

// Renderer rasterises sensor samples into the LCD frame at the configured
// image path. Font faces are resolved once at construction.
type Renderer struct {
	cfg       *config.Config
	tempFace  font.Face
	labelFace font.Face
}

// New creates a renderer for the given configuration. When font.face is empty
// or unloadable, the embedded bold face is used so rendering never depends on
// system font files.
func New(cfg *config.Config) (*Renderer, error) {
	tempFace, err := loadFace(cfg.Font.Face, cfg.Font.SizeTemp)
	if err != nil {
		return nil, errors.NewRenderError("failed to load temperature font face", err)
	}
	labelFace, err := loadFace(cfg.Font.Face, cfg.Font.SizeLabels)
	if err != nil {
		return nil, errors.NewRenderError("failed to load label font face", err)
	}
	return &Renderer{cfg: cfg, tempFace: tempFace, labelFace: labelFace}, nil
}

func loadFace(path string, points float64) (font.Face, error) {
	if path != "" {
		face, err := gg.LoadFontFace(path, points)
		if err == nil {
			return face, nil
		}
		nuts.L.Warnf("[Render] Font face %s not loadable, using embedded bold face: %v", path, err)
	}
	parsed, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    points,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Render draws the two-box temperature frame for sample and writes it as a
// PNG to paths.image_path. The file is fully flushed before Render returns so
// the uploader always sees a complete image.
func (r *Renderer) Render(sample sensors.Sample) error {
	cfg := r.cfg
	dc := gg.NewContext(cfg.Display.Width, cfg.Display.Height)

	// Background
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	r.drawLabels(dc)
	r.drawTemperatures(dc, sample)
	r.drawBars(dc, sample)

	if err := os.MkdirAll(cfg.Paths.ImageDir, dirPermissions); err != nil {
		nuts.L.Warnf("[Render] Could not ensure image directory %s: %v", cfg.Paths.ImageDir, err)
	}
	return writePNG(dc, cfg.Paths.ImagePath)
}

// drawLabels draws the left-aligned CPU/GPU box labels.
func (r *Renderer) drawLabels(dc *gg.Context) {
	cfg := r.cfg
	boxH := float64(cfg.Layout.BoxHeight)
	size := cfg.Font.SizeLabels

	dc.SetFontFace(r.labelFace)
	dc.SetRGB255(cfg.Colors.Label.R, cfg.Colors.Label.G, cfg.Colors.Label.B)
	dc.DrawString("CPU", 0, boxH/2+size/2-12)
	dc.DrawString("GPU", 0, boxH+boxH/2+size/2+2)
}

// drawTemperatures draws the numeric temperatures, truncated toward zero and
// suffixed with a degree sign, centred in their boxes with the fixed 22 px
// bias of the original layout.
func (r *Renderer) drawTemperatures(dc *gg.Context, sample sensors.Sample) {
	cfg := r.cfg
	boxW := float64(cfg.Layout.BoxWidth)
	boxH := float64(cfg.Layout.BoxHeight)

	dc.SetFontFace(r.tempFace)
	dc.SetRGB255(cfg.Colors.Temp.R, cfg.Colors.Temp.G, cfg.Colors.Temp.B)

	cpuText := fmt.Sprintf("%d°", int(sample.CPUTemp))
	w, h := dc.MeasureString(cpuText)
	dc.DrawString(cpuText, (boxW-w)/2+22, (boxH+h)/2-22)

	gpuText := fmt.Sprintf("%d°", int(sample.GPUTemp))
	w, h = dc.MeasureString(gpuText)
	dc.DrawString(gpuText, (boxW-w)/2+22, boxH+(boxH+h)/2+22)
}

// drawBars draws the two horizontal temperature bars, centred as a group.
func (r *Renderer) drawBars(dc *gg.Context, sample sensors.Sample) {
	cfg := r.cfg
	barW := cfg.Layout.BarWidth
	barH := cfg.Layout.BarHeight
	barX := float64(cfg.Display.Width-barW) / 2
	cpuBarY := float64(cfg.Display.Height-(2*barH+cfg.Layout.BarGap))/2 + 1
	gpuBarY := cpuBarY + float64(barH+cfg.Layout.BarGap)

	r.drawBar(dc, barX, cpuBarY, sample.CPUTemp)
	r.drawBar(dc, barX, gpuBarY, sample.GPUTemp)
}

func (r *Renderer) drawBar(dc *gg.Context, x, y float64, temp float32) {
	cfg := r.cfg
	barW := float64(cfg.Layout.BarWidth)
	barH := float64(cfg.Layout.BarHeight)

	// Background
	dc.SetRGB255(cfg.Colors.Bg.R, cfg.Colors.Bg.G, cfg.Colors.Bg.B)
	dc.DrawRoundedRectangle(x, y, barW, barH, barCornerRadius)
	dc.Fill()

	// Fill, band-colored; a fill narrower than the corner diameter is drawn
	// as a plain rectangle
	fill := bandColor(temp, cfg)
	fw := float64(fillWidth(temp, cfg.Layout.BarWidth))
	dc.SetRGB255(fill.R, fill.G, fill.B)
	if fw > 2*barCornerRadius {
		dc.DrawRoundedRectangle(x, y, fw, barH, barCornerRadius)
	} else {
		dc.DrawRectangle(x, y, fw, barH)
	}
	dc.Fill()

	// Border
	dc.SetLineWidth(cfg.Layout.BorderLineWidth)
	dc.SetRGB255(cfg.Colors.Border.R, cfg.Colors.Border.G, cfg.Colors.Border.B)
	dc.DrawRoundedRectangle(x, y, barW, barH, barCornerRadius)
	dc.Stroke()
}

// bandColor maps a temperature to one of the four constant band colors.
func bandColor(temp float32, cfg *config.Config) config.Color {
	t := float64(temp)
	switch {
	case t <= cfg.Temperature.ThresholdGreen:
		return cfg.Colors.Green
	case t <= cfg.Temperature.ThresholdOrange:
		return cfg.Colors.Orange
	case t <= cfg.Temperature.ThresholdRed:
		return cfg.Colors.HotOrange
	default:
		return cfg.Colors.Red
	}
}

// fillWidth maps a temperature on the 0-100 scale to a bar fill width in
// pixels, clamped to [0, barWidth].
func fillWidth(temp float32, barWidth int) int {
	if temp <= 0 {
		return 0
	}
	w := int(math.Round(float64(temp) / 100.0 * float64(barWidth)))
	if w < 0 {
		return 0
	}
	if w > barWidth {
		return barWidth
	}
	return w
}

// writePNG writes the context to path and syncs it to disk.
func writePNG(dc *gg.Context, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.NewRenderError(fmt.Sprintf("failed to create %s", filepath.Base(path)), err)
	}
	if err := dc.EncodePNG(f); err != nil {
		f.Close()
		return errors.NewRenderError("failed to encode frame", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return errors.NewRenderError("failed to flush frame", err)
	}
	if err := f.Close(); err != nil {
		return errors.NewRenderError("failed to close frame file", err)
	}
	return nil
}
