package mask

import (
	"fmt"
	"math"

	"github.com/scatterdata/automask/internal/frame"
	"github.com/scatterdata/automask/internal/geometry"
)

// Binner assigns each detector pixel to a radial bin by its Q value.
// Bins are uniform between the minimum and maximum Q on the detector.
type Binner struct {
	nbins int
	// index holds the bin of each pixel, -1 for pixels with
	// non-finite coordinates.
	index []int
}

// NewBinner builds a binner over the per-pixel Q array.
func NewBinner(q *frame.Frame, nbins int) (*Binner, error) {
	if nbins < 1 {
		return nil, fmt.Errorf("bin count must be at least 1, got %d", nbins)
	}

	qmin, qmax := math.Inf(1), math.Inf(-1)
	for _, v := range q.Data {
		if !isFinite(v) {
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
		return nil, fmt.Errorf("no finite Q values to bin")
	}

	width := (qmax - qmin) / float64(nbins)
	b := &Binner{
		nbins: nbins,
		index: make([]int, q.Len()),
	}
	for i, v := range q.Data {
		if !isFinite(v) || width == 0 {
			if !isFinite(v) {
				b.index[i] = -1
			}
			continue
		}
		bin := int((v - qmin) / width)
		if bin >= nbins {
			bin = nbins - 1
		}
		b.index[i] = bin
	}
	return b, nil
}

// NBins returns the number of radial bins.
func (b *Binner) NBins() int {
	return b.nbins
}

// BinOf returns the bin of the i-th pixel, or -1 if unbinnable.
func (b *Binner) BinOf(i int) int {
	return b.index[i]
}

// DeriveBins computes a bin count matched to the detector resolution:
// one bin per half pixel-diagonal step of radius, so adjacent rings
// remain separable without oversampling.
func DeriveBins(geo *geometry.Geometry, rows, cols int) int {
	rres := math.Hypot(geo.PixelSize1, geo.PixelSize2)
	r := geo.RArray(rows, cols)

	rmin, rmax := math.Inf(1), math.Inf(-1)
	for _, v := range r.Data {
		if !isFinite(v) {
			continue
		}
		if v < rmin {
			rmin = v
		}
		if v > rmax {
			rmax = v
		}
	}
	if rmin > rmax || rres <= 0 {
		return 1
	}

	nbins := int(math.Ceil((rmax - rmin) / (rres / 2)))
	if nbins < 1 {
		nbins = 1
	}
	return nbins
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
