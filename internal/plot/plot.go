// Package plot renders masked diffraction images and integration
// profiles to PNG files.
package plot

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/scatterdata/automask/internal/frame"
	"github.com/scatterdata/automask/internal/integrate"
	"github.com/scatterdata/automask/internal/mask"
)

// DefaultZScore is the intensity window half-width in standard
// deviations used when the caller passes a non-positive z-score.
const DefaultZScore = 2.0

// imageGrid adapts a frame plus mask to the plotter.GridXYZ interface.
// Masked pixels render at the bottom of the color scale; everything
// else is clamped into the z-score window.
type imageGrid struct {
	img        *frame.Frame
	m          *mask.Mask
	vmin, vmax float64
}

func (g imageGrid) Dims() (int, int) { return g.img.Cols, g.img.Rows }
func (g imageGrid) X(c int) float64  { return float64(c) }

// Y flips the row axis so row 0 is drawn at the top, matching how
// detector images are conventionally displayed.
func (g imageGrid) Y(r int) float64 { return float64(g.img.Rows - 1 - r) }

func (g imageGrid) Z(c, r int) float64 {
	if g.m != nil && g.m.IsMasked(r, c) {
		return g.vmin
	}
	v := g.img.At(r, c)
	if v < g.vmin {
		return g.vmin
	}
	if v > g.vmax {
		return g.vmax
	}
	return v
}

// SaveImagePNG renders the image as a heat map with the color window
// set to mean +/- zScore*std of the unmasked pixels.
func SaveImagePNG(img *frame.Frame, m *mask.Mask, path string, zScore float64) error {
	if m != nil && (m.Rows != img.Rows || m.Cols != img.Cols) {
		return fmt.Errorf("unmatched mask shape: %dx%d vs image %dx%d", m.Rows, m.Cols, img.Rows, img.Cols)
	}
	if zScore <= 0 {
		zScore = DefaultZScore
	}

	var vals []float64
	for i, v := range img.Data {
		if m != nil && m.Bits[i] != 0 {
			continue
		}
		vals = append(vals, v)
	}
	if len(vals) == 0 {
		return fmt.Errorf("no unmasked pixels to render")
	}
	mean := stat.Mean(vals, nil)
	std := stat.StdDev(vals, nil)
	if math.IsNaN(std) || std == 0 {
		std = 1
	}

	grid := imageGrid{
		img:  img,
		m:    m,
		vmin: mean - zScore*std,
		vmax: mean + zScore*std,
	}

	p := plot.New()
	p.Title.Text = "masked image"
	p.X.Tick.Marker = plot.ConstantTicks(nil)
	p.Y.Tick.Marker = plot.ConstantTicks(nil)
	p.Add(plotter.NewHeatMap(grid, palette.Heat(64, 1)))

	// Keep the pixel aspect ratio roughly square.
	width := 8 * vg.Inch
	height := vg.Length(float64(width) * float64(img.Rows) / float64(img.Cols))
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("save image plot: %w", err)
	}
	return nil
}

// SaveProfilePNG renders a 1D integration profile as a line plot.
func SaveProfilePNG(profile *integrate.Profile, path string) error {
	pts := make(plotter.XYs, 0, len(profile.Q))
	for i := range profile.Q {
		if math.IsNaN(profile.I[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: profile.Q[i], Y: profile.I[i]})
	}
	if len(pts) == 0 {
		return fmt.Errorf("profile has no populated bins")
	}

	p := plot.New()
	p.Title.Text = "1D azimuthal integration"
	p.X.Label.Text = "Q (1/Å)"
	p.Y.Label.Text = "I (a.u.)"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Width = vg.Points(1)
	p.Add(line)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save profile plot: %w", err)
	}
	return nil
}
