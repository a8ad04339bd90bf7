// Package frame holds 2D detector images and their file codecs.
package frame

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"golang.org/x/image/tiff"
)

// Frame is a single detector image stored row-major as float64.
// Row 0 is the first detector row (slow axis), column 0 the first
// pixel of each row (fast axis).
type Frame struct {
	Rows int
	Cols int
	Data []float64
}

// New returns an all-zero frame of the given shape.
func New(rows, cols int) *Frame {
	return &Frame{
		Rows: rows,
		Cols: cols,
		Data: make([]float64, rows*cols),
	}
}

// At returns the intensity at (row, col). No bounds checking beyond
// the underlying slice.
func (f *Frame) At(row, col int) float64 {
	return f.Data[row*f.Cols+col]
}

// Set stores an intensity at (row, col).
func (f *Frame) Set(row, col int, v float64) {
	f.Data[row*f.Cols+col] = v
}

// Len returns the number of pixels.
func (f *Frame) Len() int {
	return f.Rows * f.Cols
}

// SameShape reports whether two frames have identical dimensions.
func (f *Frame) SameShape(o *Frame) bool {
	return o != nil && f.Rows == o.Rows && f.Cols == o.Cols
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := New(f.Rows, f.Cols)
	copy(c.Data, f.Data)
	return c
}

// LoadTIFF reads a grayscale TIFF into a frame. 8 and 16-bit integer
// grays are widened to float64; other image types are converted through
// the 16-bit gray color model.
func LoadTIFF(path string) (*Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer fh.Close()

	img, err := tiff.Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("decode tiff %s: %w", path, err)
	}
	return fromImage(img), nil
}

func fromImage(img image.Image) *Frame {
	b := img.Bounds()
	f := New(b.Dy(), b.Dx())

	switch im := img.(type) {
	case *image.Gray:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				f.Set(y, x, float64(im.GrayAt(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
	case *image.Gray16:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				f.Set(y, x, float64(im.Gray16At(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
				f.Set(y, x, float64(g.Y))
			}
		}
	}
	return f
}

// WriteTIFF saves a frame as a 16-bit grayscale TIFF. Values are
// clamped to the uint16 range; intended for fixtures and round-trips,
// not as a lossless archive format.
func WriteTIFF(path string, f *Frame) error {
	img := image.NewGray16(image.Rect(0, 0, f.Cols, f.Rows))
	for y := 0; y < f.Rows; y++ {
		for x := 0; x < f.Cols; x++ {
			v := f.At(y, x)
			if v < 0 {
				v = 0
			}
			if v > 65535 {
				v = 65535
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(v)})
		}
	}

	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer fh.Close()

	if err := tiff.Encode(fh, img, nil); err != nil {
		return fmt.Errorf("encode tiff %s: %w", path, err)
	}
	return nil
}
