package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scatterdata/automask/internal/integrate"
	"github.com/scatterdata/automask/internal/mask"
)

func TestWrite(t *testing.T) {
	m := mask.New(32, 32)
	m.MaskEdges(4)
	profile := &integrate.Profile{
		Q: []float64{0.1, 0.2, 0.3},
		I: []float64{10, 20, 15},
	}
	sum := Summary{ImageFile: "image.tiff", MaskFile: "mask.msk", Alpha: 2, Edge: 4}

	path := filepath.Join(t.TempDir(), "report.html")
	if err := Write(path, sum, m, profile); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	html := string(data)
	if !strings.Contains(html, "echarts") {
		t.Error("report does not embed echarts")
	}
	if !strings.Contains(html, "Mask summary") {
		t.Error("report is missing the mask summary chart")
	}
	if !strings.Contains(html, "1D azimuthal integration") {
		t.Error("report is missing the profile chart")
	}
	if !strings.Contains(html, "image.tiff") {
		t.Error("report is missing the image filename")
	}
}

func TestWriteWithoutProfile(t *testing.T) {
	m := mask.New(8, 8)
	path := filepath.Join(t.TempDir(), "report.html")
	if err := Write(path, Summary{ImageFile: "i.tiff"}, m, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "1D azimuthal integration") {
		t.Error("profile chart emitted without a profile")
	}
}
