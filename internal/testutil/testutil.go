// Package testutil provides shared fixtures for the automask tests:
// synthetic diffraction frames and calibration files.
package testutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/scatterdata/automask/internal/frame"
	"github.com/scatterdata/automask/internal/geometry"
)

// TestGeometry returns a small zero-rotation calibration matching a
// rows x cols detector with 200um pixels and the beam in the center.
func TestGeometry(rows, cols int) *geometry.Geometry {
	return &geometry.Geometry{
		Detector:   "synthetic",
		Distance:   0.2,
		Poni1:      float64(rows) / 2 * 200e-6,
		Poni2:      float64(cols) / 2 * 200e-6,
		Wavelength: 1e-10,
		PixelSize1: 200e-6,
		PixelSize2: 200e-6,
	}
}

// SyntheticFrame builds a smooth radially symmetric diffraction
// pattern: intensity falls off with distance from the beam center, so
// every radial bin is near-constant and planted outliers stand out.
func SyntheticFrame(rows, cols int) *frame.Frame {
	f := frame.New(rows, cols)
	cr, cc := float64(rows)/2, float64(cols)/2
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			d := math.Hypot(float64(r)-cr, float64(c)-cc)
			f.Set(r, c, 1000*math.Exp(-d/40)+100)
		}
	}
	return f
}

// PlantHotPixels overwrites n pixels along the frame diagonal with an
// extreme intensity and returns their coordinates. The diagonal is
// offset from the beam center: a lone outlier in a near-empty central
// ring cannot exceed the alpha threshold of its own tiny sample.
// Deterministic so tests can assert exactly which pixels must be
// masked.
func PlantHotPixels(f *frame.Frame, n int, value float64) [][2]int {
	coords := make([][2]int, 0, n)
	step := f.Rows / (n + 1)
	if step == 0 {
		step = 1
	}
	for i := 1; i <= n; i++ {
		r := (i*step + 5) % f.Rows
		c := (i*step + 5) % f.Cols
		f.Set(r, c, value)
		coords = append(coords, [2]int{r, c})
	}
	return coords
}

// WritePONI writes a version-2 .poni file for the geometry into dir
// and returns its path.
func WritePONI(t *testing.T, dir string, g *geometry.Geometry) string {
	t.Helper()
	path := filepath.Join(dir, "geo.poni")
	content := fmt.Sprintf(`# synthetic calibration
poni_version: 2
Detector: %s
Detector_config: {"pixel1": %g, "pixel2": %g}
Distance: %g
Poni1: %g
Poni2: %g
Rot1: %g
Rot2: %g
Rot3: %g
Wavelength: %g
`, g.Detector, g.PixelSize1, g.PixelSize2, g.Distance, g.Poni1, g.Poni2, g.Rot1, g.Rot2, g.Rot3, g.Wavelength)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write poni: %v", err)
	}
	return path
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
