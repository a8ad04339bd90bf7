package frame

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestFrameAccessors(t *testing.T) {
	f := New(3, 4)
	if f.Len() != 12 {
		t.Fatalf("Len() = %d, want 12", f.Len())
	}
	f.Set(2, 3, 7.5)
	if got := f.At(2, 3); got != 7.5 {
		t.Errorf("At(2,3) = %f, want 7.5", got)
	}
	if f.At(0, 0) != 0 {
		t.Errorf("fresh frame not zeroed")
	}
}

func TestSameShape(t *testing.T) {
	f := New(3, 4)
	if !f.SameShape(New(3, 4)) {
		t.Error("SameShape(3x4, 3x4) = false")
	}
	if f.SameShape(New(4, 3)) {
		t.Error("SameShape(3x4, 4x3) = true")
	}
	if f.SameShape(nil) {
		t.Error("SameShape(nil) = true")
	}
}

func TestClone(t *testing.T) {
	f := New(2, 2)
	f.Set(0, 1, 3)
	c := f.Clone()
	c.Set(0, 1, 9)
	if f.At(0, 1) != 3 {
		t.Error("Clone shares storage with original")
	}
}

func TestTIFFRoundTrip(t *testing.T) {
	f := New(5, 7)
	for r := 0; r < 5; r++ {
		for c := 0; c < 7; c++ {
			f.Set(r, c, float64(r*1000+c*10))
		}
	}

	path := filepath.Join(t.TempDir(), "img.tiff")
	if err := WriteTIFF(path, f); err != nil {
		t.Fatalf("WriteTIFF: %v", err)
	}

	got, err := LoadTIFF(path)
	if err != nil {
		t.Fatalf("LoadTIFF: %v", err)
	}
	if !got.SameShape(f) {
		t.Fatalf("shape = %dx%d, want %dx%d", got.Rows, got.Cols, f.Rows, f.Cols)
	}
	for i := range f.Data {
		if math.Abs(got.Data[i]-f.Data[i]) > 0.5 {
			t.Fatalf("pixel %d = %f, want %f", i, got.Data[i], f.Data[i])
		}
	}
}

func TestWriteTIFFClamps(t *testing.T) {
	f := New(1, 2)
	f.Set(0, 0, -50)
	f.Set(0, 1, 1e9)

	path := filepath.Join(t.TempDir(), "clamp.tiff")
	if err := WriteTIFF(path, f); err != nil {
		t.Fatalf("WriteTIFF: %v", err)
	}
	got, err := LoadTIFF(path)
	if err != nil {
		t.Fatalf("LoadTIFF: %v", err)
	}
	if got.At(0, 0) != 0 {
		t.Errorf("negative pixel = %f, want 0", got.At(0, 0))
	}
	if got.At(0, 1) != 65535 {
		t.Errorf("saturated pixel = %f, want 65535", got.At(0, 1))
	}
}

func TestLoadTIFFErrors(t *testing.T) {
	if _, err := LoadTIFF(filepath.Join(t.TempDir(), "missing.tiff")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.tiff")
	if err := os.WriteFile(bad, []byte("not a tiff at all"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTIFF(bad); err == nil {
		t.Error("expected error for malformed file")
	}
}
