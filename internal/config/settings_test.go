package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

func TestDefaults(t *testing.T) {
	s := &MaskSettings{}
	if got := s.GetAlpha(); got != 2.0 {
		t.Errorf("GetAlpha() = %f, want 2.0", got)
	}
	if got := s.GetEdge(); got != 30 {
		t.Errorf("GetEdge() = %d, want 30", got)
	}
	if got := s.GetLowerThresh(); got != 0 {
		t.Errorf("GetLowerThresh() = %f, want 0", got)
	}
	if got := s.GetUpperThresh(); !math.IsInf(got, 1) {
		t.Errorf("GetUpperThresh() = %f, want +Inf", got)
	}
	if got := s.GetBinStatistic(); got != StatMedian {
		t.Errorf("GetBinStatistic() = %q, want %q", got, StatMedian)
	}
	if got := s.GetBins(); got != 0 {
		t.Errorf("GetBins() = %d, want 0", got)
	}
}

func TestOverrides(t *testing.T) {
	s := &MaskSettings{
		Alpha:        ptrFloat64(3.0),
		Edge:         ptrInt(10),
		LowerThresh:  ptrFloat64(1.0),
		UpperThresh:  ptrFloat64(1e9),
		BinStatistic: ptrString(StatMean),
		Bins:         ptrInt(500),
	}
	if s.GetAlpha() != 3.0 || s.GetEdge() != 10 || s.GetLowerThresh() != 1.0 ||
		s.GetUpperThresh() != 1e9 || s.GetBinStatistic() != StatMean || s.GetBins() != 500 {
		t.Errorf("overridden settings not returned: %+v", s)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       MaskSettings
		wantErr bool
	}{
		{"empty is valid", MaskSettings{}, false},
		{"negative alpha", MaskSettings{Alpha: ptrFloat64(-1)}, true},
		{"negative edge", MaskSettings{Edge: ptrInt(-5)}, true},
		{"inverted thresholds", MaskSettings{LowerThresh: ptrFloat64(10), UpperThresh: ptrFloat64(1)}, true},
		{"equal thresholds", MaskSettings{LowerThresh: ptrFloat64(5), UpperThresh: ptrFloat64(5)}, false},
		{"unknown statistic", MaskSettings{BinStatistic: ptrString("mode")}, true},
		{"mean statistic", MaskSettings{BinStatistic: ptrString(StatMean)}, false},
		{"negative bins", MaskSettings{Bins: ptrInt(-1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMaskSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mask.json")
	content := `{"alpha": 3.0, "edge": 15, "upper_thresh": 60000}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadMaskSettings(path)
	if err != nil {
		t.Fatalf("LoadMaskSettings: %v", err)
	}
	if s.GetAlpha() != 3.0 || s.GetEdge() != 15 || s.GetUpperThresh() != 60000 {
		t.Errorf("loaded settings = %+v", s)
	}
	// Omitted fields keep defaults.
	if s.GetLowerThresh() != 0 || s.GetBinStatistic() != StatMedian {
		t.Errorf("omitted fields did not default: %+v", s)
	}
}

func TestLoadMaskSettingsErrors(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "mask.txt")
	os.WriteFile(txt, []byte("{}"), 0644)
	if _, err := LoadMaskSettings(txt); err == nil {
		t.Error("accepted non-json extension")
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{broken"), 0644)
	if _, err := LoadMaskSettings(bad); err == nil {
		t.Error("accepted malformed JSON")
	}

	invalid := filepath.Join(dir, "invalid.json")
	os.WriteFile(invalid, []byte(`{"alpha": -2}`), 0644)
	if _, err := LoadMaskSettings(invalid); err == nil {
		t.Error("accepted invalid settings")
	}

	if _, err := LoadMaskSettings(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("accepted missing file")
	}
}
