// Package mask builds per-pixel masks for diffraction images: detector
// edges, intensity thresholds, and radially binned outlier rejection.
package mask

import (
	"fmt"

	"github.com/scatterdata/automask/internal/frame"
)

// Mask flags detector pixels to exclude from analysis. Bits holds one
// byte per pixel, row-major: 1 = masked out, 0 = good (the Fit2D
// convention).
type Mask struct {
	Rows int
	Cols int
	Bits []uint8
}

// New returns an all-good mask of the given shape.
func New(rows, cols int) *Mask {
	return &Mask{
		Rows: rows,
		Cols: cols,
		Bits: make([]uint8, rows*cols),
	}
}

// FromFrame converts an image-style mask (any nonzero pixel = masked)
// into a Mask. User masks delivered as TIFFs arrive this way.
func FromFrame(f *frame.Frame) *Mask {
	m := New(f.Rows, f.Cols)
	for i, v := range f.Data {
		if v != 0 {
			m.Bits[i] = 1
		}
	}
	return m
}

// IsMasked reports whether the pixel at (row, col) is excluded.
func (m *Mask) IsMasked(row, col int) bool {
	return m.Bits[row*m.Cols+col] != 0
}

// SetMasked excludes the pixel at (row, col).
func (m *Mask) SetMasked(row, col int) {
	m.Bits[row*m.Cols+col] = 1
}

// Count returns the number of masked pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b != 0 {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	c := New(m.Rows, m.Cols)
	copy(c.Bits, m.Bits)
	return c
}

// Union merges another mask into this one. A pixel masked in either
// input stays masked; nothing is ever cleared.
func (m *Mask) Union(o *Mask) error {
	if o.Rows != m.Rows || o.Cols != m.Cols {
		return fmt.Errorf("unmatched mask shapes: %dx%d vs %dx%d", m.Rows, m.Cols, o.Rows, o.Cols)
	}
	for i, b := range o.Bits {
		if b != 0 {
			m.Bits[i] = 1
		}
	}
	return nil
}

// Contains reports whether every pixel masked in o is also masked here.
func (m *Mask) Contains(o *Mask) bool {
	if o.Rows != m.Rows || o.Cols != m.Cols {
		return false
	}
	for i, b := range o.Bits {
		if b != 0 && m.Bits[i] == 0 {
			return false
		}
	}
	return true
}

// MaskEdges excludes a border of the given width on all four sides.
// A border wide enough to cover the frame masks everything.
func (m *Mask) MaskEdges(edge int) {
	if edge <= 0 {
		return
	}
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if r < edge || r >= m.Rows-edge || c < edge || c >= m.Cols-edge {
				m.SetMasked(r, c)
			}
		}
	}
}

// ApplyThresholds excludes pixels outside [lower, upper]. A lower
// bound of 0 is treated as disabled so legitimately negative
// dark-subtracted pixels survive; +Inf disables the upper bound.
func (m *Mask) ApplyThresholds(img *frame.Frame, lower, upper float64) error {
	if img.Rows != m.Rows || img.Cols != m.Cols {
		return fmt.Errorf("unmatched image shape: %dx%d vs mask %dx%d", img.Rows, img.Cols, m.Rows, m.Cols)
	}
	for i, v := range img.Data {
		if lower != 0 && v < lower {
			m.Bits[i] = 1
		}
		if v > upper {
			m.Bits[i] = 1
		}
	}
	return nil
}
