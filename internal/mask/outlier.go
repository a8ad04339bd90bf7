package mask

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/scatterdata/automask/internal/config"
	"github.com/scatterdata/automask/internal/frame"
)

// BinnedOutlier excludes pixels deviating more than alpha standard
// deviations from their radial bin's center statistic. Only pixels
// still good in the working mask contribute to the statistics, so
// beamstop and threshold rejections don't skew the bins.
func BinnedOutlier(img *frame.Frame, binner *Binner, alpha float64, statistic string, working *Mask) error {
	if img.Rows != working.Rows || img.Cols != working.Cols {
		return fmt.Errorf("unmatched image shape: %dx%d vs mask %dx%d", img.Rows, img.Cols, working.Rows, working.Cols)
	}
	if len(binner.index) != img.Len() {
		return fmt.Errorf("binner built for %d pixels, image has %d", len(binner.index), img.Len())
	}

	// Gather the surviving intensities of each bin.
	values := make([][]float64, binner.NBins())
	for i, v := range img.Data {
		bin := binner.BinOf(i)
		if bin < 0 || working.Bits[i] != 0 {
			continue
		}
		values[bin] = append(values[bin], v)
	}

	centers := make([]float64, binner.NBins())
	sigmas := make([]float64, binner.NBins())
	for bin, vals := range values {
		// A lone pixel has no spread to clip against.
		if len(vals) < 2 {
			sigmas[bin] = -1
			continue
		}
		switch statistic {
		case config.StatMean:
			centers[bin] = stat.Mean(vals, nil)
		default:
			sorted := append([]float64(nil), vals...)
			sort.Float64s(sorted)
			centers[bin] = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		}
		sigmas[bin] = stat.StdDev(vals, nil)
	}

	for i, v := range img.Data {
		bin := binner.BinOf(i)
		if bin < 0 || working.Bits[i] != 0 || sigmas[bin] < 0 {
			continue
		}
		dev := v - centers[bin]
		if dev < 0 {
			dev = -dev
		}
		if dev > alpha*sigmas[bin] {
			working.Bits[i] = 1
		}
	}
	return nil
}
