// Package report renders an interactive HTML summary of a masking run
// using go-echarts.
package report

import (
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/scatterdata/automask/internal/integrate"
	"github.com/scatterdata/automask/internal/mask"
)

// Summary carries run metadata shown in the report header.
type Summary struct {
	ImageFile string
	MaskFile  string
	Alpha     float64
	Edge      int
}

// maxProfilePoints bounds the chart payload; longer profiles are
// downsampled by stride.
const maxProfilePoints = 2000

// Write renders the report to an HTML file. profile may be nil when
// integration was not requested; the mask summary chart is always
// emitted.
func Write(path string, sum Summary, m *mask.Mask, profile *integrate.Profile) error {
	page := components.NewPage()
	page.PageTitle = "automask report"

	page.AddCharts(maskBar(sum, m))
	if profile != nil {
		page.AddCharts(profileLine(profile))
	}

	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	defer fh.Close()

	if err := page.Render(fh); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func maskBar(sum Summary, m *mask.Mask) *charts.Bar {
	total := m.Rows * m.Cols
	masked := m.Count()

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Mask summary",
			Subtitle: fmt.Sprintf("image=%s alpha=%.2f edge=%d masked=%.2f%%", sum.ImageFile, sum.Alpha, sum.Edge, 100*float64(masked)/float64(total)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis([]string{"good", "masked"}).
		AddSeries("pixels", []opts.BarData{
			{Value: total - masked},
			{Value: masked},
		})
	return bar
}

func profileLine(profile *integrate.Profile) *charts.Line {
	stride := 1
	if len(profile.Q) > maxProfilePoints {
		stride = int(math.Ceil(float64(len(profile.Q)) / float64(maxProfilePoints)))
	}

	xs := make([]string, 0, len(profile.Q)/stride+1)
	ys := make([]opts.LineData, 0, len(profile.Q)/stride+1)
	for i := 0; i < len(profile.Q); i += stride {
		if math.IsNaN(profile.I[i]) {
			continue
		}
		xs = append(xs, fmt.Sprintf("%.3f", profile.Q[i]))
		ys = append(ys, opts.LineData{Value: profile.I[i]})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "1D azimuthal integration", Subtitle: fmt.Sprintf("%d bins", len(profile.Q))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Q (1/Å)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "I (a.u.)"}),
	)
	line.SetXAxis(xs).AddSeries("intensity", ys)
	return line
}
