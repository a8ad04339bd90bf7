package mask

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/scatterdata/automask/internal/config"
	"github.com/scatterdata/automask/internal/frame"
	"github.com/scatterdata/automask/internal/geometry"
)

// AutoMask computes the mask of a dark-subtracted diffraction image.
// The pipeline: seed from the user mask (union, never cleared), mask
// the detector border, apply intensity thresholds, then reject
// per-radial-bin statistical outliers. Settings may be nil for all
// defaults. The returned mask uses 1 = masked out, 0 = good.
func AutoMask(img *frame.Frame, geo *geometry.Geometry, userMask *Mask, settings *config.MaskSettings) (*Mask, error) {
	if settings == nil {
		settings = &config.MaskSettings{}
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("mask settings: %w", err)
	}
	if err := geo.Validate(); err != nil {
		return nil, fmt.Errorf("calibration: %w", err)
	}

	working := New(img.Rows, img.Cols)
	if userMask != nil {
		if err := working.Union(userMask); err != nil {
			return nil, fmt.Errorf("user mask: %w", err)
		}
	}

	working.MaskEdges(settings.GetEdge())
	if err := working.ApplyThresholds(img, settings.GetLowerThresh(), settings.GetUpperThresh()); err != nil {
		return nil, err
	}

	if alpha := settings.GetAlpha(); alpha > 0 {
		nbins := settings.GetBins()
		if nbins == 0 {
			nbins = DeriveBins(geo, img.Rows, img.Cols)
		}
		binner, err := NewBinner(geo.QArray(img.Rows, img.Cols), nbins)
		if err != nil {
			return nil, fmt.Errorf("radial binning: %w", err)
		}
		if err := BinnedOutlier(img, binner, alpha, settings.GetBinStatistic(), working); err != nil {
			return nil, err
		}
	}
	return working, nil
}

// AutoMaskFile runs AutoMask on files: a TIFF image and a .poni
// calibration in, a Fit2D .msk out. userPath may name a prior mask
// (.msk, or a TIFF where nonzero means masked); empty means none.
func AutoMaskFile(imagePath, poniPath, maskPath, userPath string, settings *config.MaskSettings) error {
	img, err := frame.LoadTIFF(imagePath)
	if err != nil {
		return err
	}
	geo, err := geometry.LoadPONI(poniPath)
	if err != nil {
		return err
	}

	var userMask *Mask
	if userPath != "" {
		userMask, err = LoadUserMask(userPath)
		if err != nil {
			return err
		}
	}

	m, err := AutoMask(img, geo, userMask, settings)
	if err != nil {
		return err
	}
	return WriteFit2D(maskPath, m)
}

// LoadUserMask reads a prior mask from disk, picking the codec by
// extension: .msk is Fit2D, anything else is tried as a TIFF whose
// nonzero pixels are masked.
func LoadUserMask(path string) (*Mask, error) {
	if strings.EqualFold(filepath.Ext(path), ".msk") {
		return ReadFit2D(path)
	}
	f, err := frame.LoadTIFF(path)
	if err != nil {
		return nil, err
	}
	return FromFrame(f), nil
}
