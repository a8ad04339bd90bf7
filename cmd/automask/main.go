// Package main provides the automask command: automated mask
// generation for 2D diffraction detector images, with optional
// azimuthal integration, plotting, HTML reporting, and a run catalog.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/scatterdata/automask/internal/config"
	"github.com/scatterdata/automask/internal/frame"
	"github.com/scatterdata/automask/internal/geometry"
	"github.com/scatterdata/automask/internal/integrate"
	"github.com/scatterdata/automask/internal/mask"
	"github.com/scatterdata/automask/internal/maskdb"
	"github.com/scatterdata/automask/internal/monitoring"
	"github.com/scatterdata/automask/internal/plot"
	"github.com/scatterdata/automask/internal/report"
	"github.com/scatterdata/automask/internal/version"
)

// Config holds the parsed command line.
type Config struct {
	ImageFile    string
	PoniFile     string
	MaskFile     string
	UserFile     string
	SettingsFile string

	Alpha       float64
	Edge        int
	LowerThresh float64
	UpperThresh float64

	ChiFile    string
	Npt        int
	PlotDir    string
	ReportFile string
	DBFile     string

	Verbose     bool
	ShowVersion bool
}

func main() {
	cfg, explicit := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("automask %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	monitoring.SetVerbose(cfg.Verbose)

	if cfg.ImageFile == "" || cfg.PoniFile == "" || cfg.MaskFile == "" {
		flag.Usage()
		log.Fatal("-image, -poni and -out are required")
	}

	settings, err := loadSettings(cfg, explicit)
	if err != nil {
		log.Fatalf("Settings: %v", err)
	}

	if err := run(cfg, settings); err != nil {
		log.Fatalf("Masking failed: %v", err)
	}
}

func parseFlags() (Config, map[string]bool) {
	cfg := Config{}

	flag.StringVar(&cfg.ImageFile, "image", "", "Path to the dark-subtracted TIFF image")
	flag.StringVar(&cfg.PoniFile, "poni", "", "Path to the pyFAI .poni calibration file")
	flag.StringVar(&cfg.MaskFile, "out", "", "Output path for the Fit2D .msk mask")
	flag.StringVar(&cfg.UserFile, "user-mask", "", "Optional prior mask (.msk or TIFF, nonzero = masked)")
	flag.StringVar(&cfg.SettingsFile, "config", "", "Optional mask settings JSON file")

	flag.Float64Var(&cfg.Alpha, "alpha", 2.0, "Sigma-clipping factor for binned outliers (0 disables)")
	flag.IntVar(&cfg.Edge, "edge", 30, "Border pixels to mask on each side")
	flag.Float64Var(&cfg.LowerThresh, "lower", 0, "Mask pixels below this intensity (0 disables)")
	flag.Float64Var(&cfg.UpperThresh, "upper", 0, "Mask pixels above this intensity (0 disables)")

	flag.StringVar(&cfg.ChiFile, "integrate", "", "Also write a 1D integration profile (.chi) to this path")
	flag.IntVar(&cfg.Npt, "npt", integrate.DefaultNpt, "Number of integration bins")
	flag.StringVar(&cfg.PlotDir, "plot", "", "Directory for PNG plots of the masked image and profile")
	flag.StringVar(&cfg.ReportFile, "report", "", "Write an HTML report to this path")
	flag.StringVar(&cfg.DBFile, "db", "", "Record the run in this SQLite catalog")

	flag.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	flag.Parse()

	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	return cfg, explicit
}

// loadSettings merges the settings file with command-line overrides.
// A flag given explicitly wins over the file; flags left at their
// defaults defer to the file, then to the built-in defaults.
func loadSettings(cfg Config, explicit map[string]bool) (*config.MaskSettings, error) {
	settings := &config.MaskSettings{}
	if cfg.SettingsFile != "" {
		loaded, err := config.LoadMaskSettings(cfg.SettingsFile)
		if err != nil {
			return nil, err
		}
		settings = loaded
	}

	if explicit["alpha"] {
		settings.Alpha = &cfg.Alpha
	}
	if explicit["edge"] {
		settings.Edge = &cfg.Edge
	}
	if explicit["lower"] {
		settings.LowerThresh = &cfg.LowerThresh
	}
	if explicit["upper"] && cfg.UpperThresh != 0 {
		settings.UpperThresh = &cfg.UpperThresh
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func run(cfg Config, settings *config.MaskSettings) error {
	start := time.Now()

	img, err := frame.LoadTIFF(cfg.ImageFile)
	if err != nil {
		return err
	}
	geo, err := geometry.LoadPONI(cfg.PoniFile)
	if err != nil {
		return err
	}
	monitoring.Debugf("loaded %dx%d image, detector %q at %.3f m", img.Rows, img.Cols, geo.Detector, geo.Distance)

	var userMask *mask.Mask
	if cfg.UserFile != "" {
		userMask, err = mask.LoadUserMask(cfg.UserFile)
		if err != nil {
			return err
		}
		monitoring.Debugf("user mask: %d pixels pre-masked", userMask.Count())
	}

	m, err := mask.AutoMask(img, geo, userMask, settings)
	if err != nil {
		return err
	}
	if err := mask.WriteFit2D(cfg.MaskFile, m); err != nil {
		return err
	}

	total := m.Rows * m.Cols
	masked := m.Count()
	monitoring.Logf("masked %d of %d pixels (%.2f%%) -> %s",
		masked, total, 100*float64(masked)/float64(total), cfg.MaskFile)

	var profile *integrate.Profile
	if cfg.ChiFile != "" || cfg.PlotDir != "" || cfg.ReportFile != "" {
		profile, err = integrate.Integrate1D(img, geo, m, cfg.Npt)
		if err != nil {
			return err
		}
	}
	if cfg.ChiFile != "" {
		if err := integrate.WriteChi(cfg.ChiFile, profile); err != nil {
			return err
		}
		monitoring.Logf("wrote integration profile -> %s", cfg.ChiFile)
	}

	if cfg.PlotDir != "" {
		if err := os.MkdirAll(cfg.PlotDir, 0755); err != nil {
			return fmt.Errorf("create plot directory: %w", err)
		}
		if err := plot.SaveImagePNG(img, m, filepath.Join(cfg.PlotDir, "masked_image.png"), 0); err != nil {
			return err
		}
		if err := plot.SaveProfilePNG(profile, filepath.Join(cfg.PlotDir, "profile.png")); err != nil {
			return err
		}
		monitoring.Logf("wrote plots -> %s", cfg.PlotDir)
	}

	if cfg.ReportFile != "" {
		sum := report.Summary{
			ImageFile: cfg.ImageFile,
			MaskFile:  cfg.MaskFile,
			Alpha:     settings.GetAlpha(),
			Edge:      settings.GetEdge(),
		}
		if err := report.Write(cfg.ReportFile, sum, m, profile); err != nil {
			return err
		}
		monitoring.Logf("wrote report -> %s", cfg.ReportFile)
	}

	if cfg.DBFile != "" {
		if err := recordRun(cfg, settings, m, time.Since(start)); err != nil {
			return err
		}
	}
	return nil
}

func recordRun(cfg Config, settings *config.MaskSettings, m *mask.Mask, elapsed time.Duration) error {
	db, err := maskdb.Open(cfg.DBFile)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}

	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	runID, err := db.InsertRun(maskdb.RunRecord{
		ImageFile:    cfg.ImageFile,
		PoniFile:     cfg.PoniFile,
		MaskFile:     cfg.MaskFile,
		UserFile:     cfg.UserFile,
		Settings:     settingsJSON,
		TotalPixels:  int64(m.Rows * m.Cols),
		MaskedPixels: int64(m.Count()),
		DurationMs:   elapsed.Milliseconds(),
	})
	if err != nil {
		return err
	}
	monitoring.Logf("recorded run %s -> %s", runID, cfg.DBFile)
	return nil
}
