package mask

import (
	"math"
	"testing"

	"github.com/scatterdata/automask/internal/config"
	"github.com/scatterdata/automask/internal/frame"
	"github.com/scatterdata/automask/internal/testutil"
)

func TestNewBinner(t *testing.T) {
	q := frame.New(1, 10)
	for i := range q.Data {
		q.Data[i] = float64(i)
	}

	b, err := NewBinner(q, 5)
	if err != nil {
		t.Fatalf("NewBinner: %v", err)
	}
	if b.NBins() != 5 {
		t.Errorf("NBins() = %d, want 5", b.NBins())
	}
	// q=0..9 over 5 bins of width 1.8.
	wantBins := []int{0, 0, 1, 1, 2, 2, 3, 3, 4, 4}
	for i, want := range wantBins {
		if got := b.BinOf(i); got != want {
			t.Errorf("BinOf(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestNewBinnerNonFinite(t *testing.T) {
	q := frame.New(1, 4)
	q.Data = []float64{0, 1, math.NaN(), math.Inf(1)}

	b, err := NewBinner(q, 2)
	if err != nil {
		t.Fatalf("NewBinner: %v", err)
	}
	if b.BinOf(2) != -1 || b.BinOf(3) != -1 {
		t.Error("non-finite pixels should be unbinnable")
	}
	if b.BinOf(0) != 0 || b.BinOf(1) != 1 {
		t.Error("finite pixels misbinned")
	}
}

func TestNewBinnerErrors(t *testing.T) {
	q := frame.New(1, 4)
	if _, err := NewBinner(q, 0); err == nil {
		t.Error("accepted zero bins")
	}

	allNaN := frame.New(1, 4)
	for i := range allNaN.Data {
		allNaN.Data[i] = math.NaN()
	}
	if _, err := NewBinner(allNaN, 3); err == nil {
		t.Error("accepted all-NaN coordinates")
	}
}

func TestDeriveBinsScalesWithDetector(t *testing.T) {
	geo := testutil.TestGeometry(64, 64)
	small := DeriveBins(geo, 32, 32)
	large := DeriveBins(geo, 128, 128)
	if small < 1 || large < 1 {
		t.Fatalf("bin counts must be positive: %d, %d", small, large)
	}
	if large <= small {
		t.Errorf("larger detector should need more bins: %d vs %d", large, small)
	}
}

func TestBinnedOutlierMasksOnlyDeviants(t *testing.T) {
	// Two bins: a flat population and one wild pixel per bin.
	img := frame.New(1, 12)
	q := frame.New(1, 12)
	for i := 0; i < 6; i++ {
		q.Data[i] = 0.1
		img.Data[i] = 10
	}
	for i := 6; i < 12; i++ {
		q.Data[i] = 0.9
		img.Data[i] = 50
	}
	img.Data[3] = 1e6
	img.Data[9] = 1e6

	b, err := NewBinner(q, 2)
	if err != nil {
		t.Fatal(err)
	}
	working := New(1, 12)
	if err := BinnedOutlier(img, b, 1.0, config.StatMedian, working); err != nil {
		t.Fatalf("BinnedOutlier: %v", err)
	}

	if !working.IsMasked(0, 3) || !working.IsMasked(0, 9) {
		t.Error("outliers not masked")
	}
	if got := working.Count(); got != 2 {
		t.Errorf("masked %d pixels, want 2", got)
	}
}

func TestBinnedOutlierMeanStatistic(t *testing.T) {
	img := frame.New(1, 8)
	q := frame.New(1, 8)
	for i := 0; i < 8; i++ {
		q.Data[i] = 0.5
		img.Data[i] = 100
	}
	img.Data[5] = 1e5

	b, err := NewBinner(q, 1)
	if err != nil {
		t.Fatal(err)
	}
	working := New(1, 8)
	if err := BinnedOutlier(img, b, 1.5, config.StatMean, working); err != nil {
		t.Fatal(err)
	}
	if !working.IsMasked(0, 5) {
		t.Error("outlier not masked with mean statistic")
	}
	if working.Count() != 1 {
		t.Errorf("masked %d pixels, want 1", working.Count())
	}
}

func TestBinnedOutlierSkipsMaskedPixels(t *testing.T) {
	img := frame.New(1, 6)
	q := frame.New(1, 6)
	for i := 0; i < 6; i++ {
		q.Data[i] = 0.5
		img.Data[i] = 10
	}
	// The wild pixel is already masked; the bin statistics must not
	// see it and nothing new gets masked.
	img.Data[2] = 1e9
	working := New(1, 6)
	working.Bits[2] = 1

	b, err := NewBinner(q, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := BinnedOutlier(img, b, 2.0, config.StatMedian, working); err != nil {
		t.Fatal(err)
	}
	if working.Count() != 1 {
		t.Errorf("masked %d pixels, want just the pre-masked one", working.Count())
	}
}
