package mask

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Fit2D .msk layout: a 1024-byte header opening with the "MASK" magic
// and little-endian int32 dimensions (fast axis first), then rows of
// LSB-first bit-packed pixels, each row padded to a 4-byte multiple.
const (
	fit2dHeaderSize = 1024
	fit2dMagic      = "MASK"
)

func fit2dRowStride(cols int) int {
	return ((cols+7)/8 + 3) &^ 3
}

// WriteFit2D saves a mask as a Fit2D .msk file.
func WriteFit2D(path string, m *Mask) error {
	stride := fit2dRowStride(m.Cols)
	buf := make([]byte, fit2dHeaderSize+stride*m.Rows)
	copy(buf, fit2dMagic)
	binary.LittleEndian.PutUint32(buf[4:], uint32(m.Cols))
	binary.LittleEndian.PutUint32(buf[8:], uint32(m.Rows))

	for r := 0; r < m.Rows; r++ {
		row := buf[fit2dHeaderSize+r*stride:]
		for c := 0; c < m.Cols; c++ {
			if m.IsMasked(r, c) {
				row[c/8] |= 1 << (c % 8)
			}
		}
	}

	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("write mask %s: %w", path, err)
	}
	return nil
}

// ReadFit2D loads a Fit2D .msk file.
func ReadFit2D(path string) (*Mask, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mask %s: %w", path, err)
	}
	if len(buf) < fit2dHeaderSize || string(buf[:4]) != fit2dMagic {
		return nil, fmt.Errorf("%s: not a Fit2D mask file", path)
	}

	cols := int(int32(binary.LittleEndian.Uint32(buf[4:])))
	rows := int(int32(binary.LittleEndian.Uint32(buf[8:])))
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%s: invalid mask dimensions %dx%d", path, rows, cols)
	}
	stride := fit2dRowStride(cols)
	if len(buf) < fit2dHeaderSize+stride*rows {
		return nil, fmt.Errorf("%s: truncated mask data", path)
	}

	m := New(rows, cols)
	for r := 0; r < rows; r++ {
		row := buf[fit2dHeaderSize+r*stride:]
		for c := 0; c < cols; c++ {
			if row[c/8]&(1<<(c%8)) != 0 {
				m.SetMasked(r, c)
			}
		}
	}
	return m, nil
}
