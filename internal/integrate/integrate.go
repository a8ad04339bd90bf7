// Package integrate reduces 2D diffraction images to 1D radial
// profiles and handles background subtraction.
package integrate

import (
	"bufio"
	"fmt"
	"math"
	"os"

	"github.com/scatterdata/automask/internal/frame"
	"github.com/scatterdata/automask/internal/geometry"
	"github.com/scatterdata/automask/internal/mask"
)

// DefaultNpt is the number of radial bins used when the caller does
// not specify one.
const DefaultNpt = 3000

// Profile is a 1D integration result: Q bin centers (inverse
// angstroms) and the mean intensity of the unmasked pixels per bin.
// Bins with no surviving pixels hold NaN.
type Profile struct {
	Q []float64
	I []float64
}

// Integrate1D averages unmasked pixel intensities into npt uniform Q
// bins. m may be nil to integrate every pixel; npt <= 0 uses
// DefaultNpt.
func Integrate1D(img *frame.Frame, geo *geometry.Geometry, m *mask.Mask, npt int) (*Profile, error) {
	if err := geo.Validate(); err != nil {
		return nil, fmt.Errorf("calibration: %w", err)
	}
	if m != nil && (m.Rows != img.Rows || m.Cols != img.Cols) {
		return nil, fmt.Errorf("unmatched mask shape: %dx%d vs image %dx%d", m.Rows, m.Cols, img.Rows, img.Cols)
	}
	if npt <= 0 {
		npt = DefaultNpt
	}

	q := geo.QArray(img.Rows, img.Cols)
	qmin, qmax := math.Inf(1), math.Inf(-1)
	for i, v := range q.Data {
		if m != nil && m.Bits[i] != 0 {
			continue
		}
		if v < qmin {
			qmin = v
		}
		if v > qmax {
			qmax = v
		}
	}
	if qmin > qmax {
		return nil, fmt.Errorf("no unmasked pixels to integrate")
	}

	width := (qmax - qmin) / float64(npt)
	sums := make([]float64, npt)
	counts := make([]int, npt)
	for i, v := range q.Data {
		if m != nil && m.Bits[i] != 0 {
			continue
		}
		bin := npt - 1
		if width > 0 {
			bin = int((v - qmin) / width)
			if bin >= npt {
				bin = npt - 1
			}
		}
		sums[bin] += img.Data[i]
		counts[bin]++
	}

	p := &Profile{
		Q: make([]float64, npt),
		I: make([]float64, npt),
	}
	for bin := 0; bin < npt; bin++ {
		p.Q[bin] = qmin + (float64(bin)+0.5)*width
		if counts[bin] > 0 {
			p.I[bin] = sums[bin] / float64(counts[bin])
		} else {
			p.I[bin] = math.NaN()
		}
	}
	return p, nil
}

// Subtract returns img - scale*bg. The shapes must match; pass scale 1
// for an unscaled background.
func Subtract(img, bg *frame.Frame, scale float64) (*frame.Frame, error) {
	if !img.SameShape(bg) {
		return nil, fmt.Errorf("unmatched shape between two images: %dx%d, %dx%d", bg.Rows, bg.Cols, img.Rows, img.Cols)
	}
	out := frame.New(img.Rows, img.Cols)
	for i := range img.Data {
		out.Data[i] = img.Data[i] - scale*bg.Data[i]
	}
	return out, nil
}

// WriteChi saves a profile as a two-column text file. Empty bins are
// skipped rather than written as NaN.
func WriteChi(path string, p *Profile) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer fh.Close()

	w := bufio.NewWriter(fh)
	fmt.Fprintln(w, "# automask 1D azimuthal integration")
	fmt.Fprintln(w, "# q_A^-1  intensity")
	for i := range p.Q {
		if math.IsNaN(p.I[i]) {
			continue
		}
		fmt.Fprintf(w, "%.6e %.6e\n", p.Q[i], p.I[i])
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
