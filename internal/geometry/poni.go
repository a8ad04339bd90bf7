// Package geometry parses pyFAI calibration results and maps detector
// pixels to scattering coordinates.
package geometry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Geometry is a detector calibration in the pyFAI PONI convention.
// All lengths are in meters, angles in radians. Poni1/Poni2 locate the
// point of normal incidence on the detector surface; Rot1-3 orient the
// detector relative to the beam.
type Geometry struct {
	Detector   string
	Distance   float64
	Poni1      float64
	Poni2      float64
	Rot1       float64
	Rot2       float64
	Rot3       float64
	Wavelength float64
	PixelSize1 float64
	PixelSize2 float64
}

// detectorConfig is the JSON payload of the Detector_config key in
// version-2 PONI files.
type detectorConfig struct {
	PixelSize1 float64 `json:"pixel1"`
	PixelSize2 float64 `json:"pixel2"`
}

// LoadPONI reads a pyFAI .poni calibration file (versions 1 and 2).
// Version 1 carries PixelSize1/PixelSize2 keys directly; version 2
// nests pixel sizes in a Detector_config JSON object.
func LoadPONI(path string) (*Geometry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open calibration %s: %w", path, err)
	}
	defer fh.Close()

	g := &Geometry{}
	scanner := bufio.NewScanner(fh)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%s:%d: not a key: value line: %q", path, lineNo, line)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		var perr error
		switch key {
		case "poni_version":
			// recognized, nothing to store
		case "detector":
			g.Detector = value
		case "detector_config":
			var dc detectorConfig
			if err := json.Unmarshal([]byte(value), &dc); err != nil {
				return nil, fmt.Errorf("%s:%d: detector_config: %w", path, lineNo, err)
			}
			g.PixelSize1 = dc.PixelSize1
			g.PixelSize2 = dc.PixelSize2
		case "distance", "dist":
			g.Distance, perr = strconv.ParseFloat(value, 64)
		case "poni1":
			g.Poni1, perr = strconv.ParseFloat(value, 64)
		case "poni2":
			g.Poni2, perr = strconv.ParseFloat(value, 64)
		case "rot1":
			g.Rot1, perr = strconv.ParseFloat(value, 64)
		case "rot2":
			g.Rot2, perr = strconv.ParseFloat(value, 64)
		case "rot3":
			g.Rot3, perr = strconv.ParseFloat(value, 64)
		case "wavelength":
			g.Wavelength, perr = strconv.ParseFloat(value, 64)
		case "pixelsize1":
			g.PixelSize1, perr = strconv.ParseFloat(value, 64)
		case "pixelsize2":
			g.PixelSize2, perr = strconv.ParseFloat(value, 64)
		default:
			// Unknown keys (splinefile, etc.) are skipped so newer
			// pyFAI files still load.
		}
		if perr != nil {
			return nil, fmt.Errorf("%s:%d: key %s: %w", path, lineNo, key, perr)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read calibration %s: %w", path, err)
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("calibration %s: %w", path, err)
	}
	return g, nil
}

// Validate checks that the calibration describes a usable geometry.
func (g *Geometry) Validate() error {
	if g.Distance <= 0 {
		return fmt.Errorf("distance must be positive, got %g", g.Distance)
	}
	if g.Wavelength <= 0 {
		return fmt.Errorf("wavelength must be positive, got %g", g.Wavelength)
	}
	if g.PixelSize1 <= 0 || g.PixelSize2 <= 0 {
		return fmt.Errorf("pixel sizes must be positive, got %g x %g", g.PixelSize1, g.PixelSize2)
	}
	return nil
}
