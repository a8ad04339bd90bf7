package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Bin statistic names accepted by MaskSettings.
const (
	StatMedian = "median"
	StatMean   = "mean"
)

// MaskSettings represents the tunable knobs of the auto-masking
// pipeline. Fields are pointers so a partial JSON file only overrides
// what it names; the Get* methods supply defaults for the rest.
type MaskSettings struct {
	// Alpha is the sigma-clipping factor of the binned outlier stage.
	// 0 disables outlier rejection.
	Alpha *float64 `json:"alpha,omitempty"`
	// Edge is the number of border pixels masked on every side.
	Edge *int `json:"edge,omitempty"`
	// LowerThresh masks pixels below this intensity. 0 disables the
	// lower bound (dark-subtracted images may legitimately go negative).
	LowerThresh *float64 `json:"lower_thresh,omitempty"`
	// UpperThresh masks pixels above this intensity (saturation).
	UpperThresh *float64 `json:"upper_thresh,omitempty"`
	// BinStatistic selects the center estimator of each radial bin:
	// "median" or "mean".
	BinStatistic *string `json:"bin_statistic,omitempty"`
	// Bins overrides the number of radial bins. 0 derives the count
	// from the detector geometry.
	Bins *int `json:"bins,omitempty"`
}

// LoadMaskSettings loads MaskSettings from a JSON file. The file must
// have a .json extension and stay under the size cap. Omitted fields
// keep their defaults, so partial configs are safe.
func LoadMaskSettings(path string) (*MaskSettings, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("settings file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat settings file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("settings file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	s := &MaskSettings{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings JSON: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// Validate checks that the settings values are usable.
func (s *MaskSettings) Validate() error {
	if s.Alpha != nil && *s.Alpha < 0 {
		return fmt.Errorf("alpha must be non-negative, got %f", *s.Alpha)
	}
	if s.Edge != nil && *s.Edge < 0 {
		return fmt.Errorf("edge must be non-negative, got %d", *s.Edge)
	}
	if s.LowerThresh != nil && s.UpperThresh != nil && *s.LowerThresh > *s.UpperThresh {
		return fmt.Errorf("lower_thresh %f exceeds upper_thresh %f", *s.LowerThresh, *s.UpperThresh)
	}
	if s.BinStatistic != nil {
		switch *s.BinStatistic {
		case StatMedian, StatMean:
		default:
			return fmt.Errorf("bin_statistic must be %q or %q, got %q", StatMedian, StatMean, *s.BinStatistic)
		}
	}
	if s.Bins != nil && *s.Bins < 0 {
		return fmt.Errorf("bins must be non-negative, got %d", *s.Bins)
	}
	return nil
}

// GetAlpha returns the alpha value or the default.
func (s *MaskSettings) GetAlpha() float64 {
	if s.Alpha == nil {
		return 2.0
	}
	return *s.Alpha
}

// GetEdge returns the edge value or the default.
func (s *MaskSettings) GetEdge() int {
	if s.Edge == nil {
		return 30
	}
	return *s.Edge
}

// GetLowerThresh returns the lower_thresh value or the default.
func (s *MaskSettings) GetLowerThresh() float64 {
	if s.LowerThresh == nil {
		return 0
	}
	return *s.LowerThresh
}

// GetUpperThresh returns the upper_thresh value or the default
// (+Inf, meaning no upper bound).
func (s *MaskSettings) GetUpperThresh() float64 {
	if s.UpperThresh == nil {
		return math.Inf(1)
	}
	return *s.UpperThresh
}

// GetBinStatistic returns the bin_statistic value or the default.
func (s *MaskSettings) GetBinStatistic() string {
	if s.BinStatistic == nil {
		return StatMedian
	}
	return *s.BinStatistic
}

// GetBins returns the bins value or 0, meaning derive from geometry.
func (s *MaskSettings) GetBins() int {
	if s.Bins == nil {
		return 0
	}
	return *s.Bins
}
