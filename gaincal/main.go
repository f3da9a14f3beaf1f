package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sqlx "github.com/jmoiron/sqlx"
	gain "github.com/next-exp/gaincal_go/pkg"
	"github.com/next-exp/gaincal_go/pkg/h5rlog"
	"github.com/next-exp/gaincal_go/pkg/logging"
	"github.com/next-exp/gaincal_go/pkg/plots"
	"github.com/next-exp/gaincal_go/pkg/registry"
	"github.com/next-exp/gaincal_go/pkg/rlog"
)

var logger = logging.New(os.Stdout, os.Stderr)

func main() {
	if err := run(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	configFilename := flag.String("config", "", "Configuration file path")
	fileIn := flag.String("file", "", "Input rlog file (overrides file_in)")
	nChannels := flag.Int("channels", -1, "Number of channels (overrides n_channels)")
	maxPeaks := flag.Int("maxpeaks", -1, "Maximum number of peaks (overrides max_peaks)")
	verbosity := flag.Int("verbosity", -1, "0: silent, 1: print peaks, 2: save plots")
	numWorkers := flag.Int("workers", 0, "Number of workers (overrides num_workers)")
	flag.Parse()

	configuration, err := LoadConfiguration(*configFilename)
	if err != nil {
		return fmt.Errorf("Error reading configuration file: %w", err)
	}
	if *fileIn != "" {
		configuration.FileIn = *fileIn
	}
	if *nChannels >= 0 {
		configuration.NChannels = *nChannels
	}
	if *maxPeaks >= 0 {
		configuration.MaxPeaks = *maxPeaks
	}
	if *verbosity >= 0 {
		configuration.Verbosity = *verbosity
	}
	if *numWorkers > 0 {
		configuration.NumWorkers = *numWorkers
	}
	gain.SetLogger(logger)

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	info, err := gain.ParseRunName(configuration.FileIn)
	if err != nil {
		return err
	}

	variants := gain.NewVariantTable(configuration.Variants, configuration.Devices)
	if !configuration.NoDB {
		if err := loadRegistry(configuration, info.Date, variants); err != nil {
			return err
		}
	}
	variant, err := variants.Resolve(info.Serial)
	if err != nil {
		return err
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Device %s: variant %s, %d bins in [%.0f, %.0f)", info.Serial, variant.Name,
			variant.Bounds.NBins, variant.Bounds.XMin, variant.Bounds.XMax)
		logger.Info(message, "main")
	}

	src, err := openSource(configuration)
	if err != nil {
		return err
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Number of events: %d, channels: %d", src.Rows(), src.Channels())
		logger.Info(message, "main")
	}

	analyzer := &gain.Analyzer{
		Bounds:    variant.Bounds,
		Search:    configuration.PeakSearch(),
		Verbosity: gain.Verbosity(configuration.Verbosity),
	}
	if analyzer.Verbosity >= gain.SavePlots {
		analyzer.Plotter = plots.NewPlotter(configuration.PlotDir, variant.Name, plots.DefaultStyle())
	}

	batch := gain.BatchConfig{
		Channels:   configuration.ChannelRange(),
		NumWorkers: configuration.NumWorkers,
	}
	table, err := gain.RunBatch(src, batch, analyzer)
	if err != nil {
		return err
	}

	fileOut := configuration.FileOut
	if fileOut == "" {
		fileOut = info.ResultsFilename()
	}
	if err := gain.WriteResultsFile(fileOut, table); err != nil {
		return fmt.Errorf("Error writing results: %w", err)
	}
	message := fmt.Sprintf("%d channels written to %s: %d valid, %d pedestal only, %d without peaks, %d failed",
		len(table), fileOut, table.Count(gain.StatusValid), table.Count(gain.StatusPedestalOnly),
		table.Count(gain.StatusNoPeaks), table.Count(gain.StatusFailed))
	logger.Info(message, "main")

	if configuration.Summary {
		prefix := strings.TrimSuffix(fileOut, filepath.Ext(fileOut))
		if err := writeSummary(table, prefix, variant.Name); err != nil {
			return err
		}
	}
	return nil
}

func loadRegistry(configuration gain.Configuration, date string, variants *gain.VariantTable) error {
	var (
		dbConn *sqlx.DB
		err    error
	)
	switch configuration.DBDriver {
	case "sqlite":
		dbConn, err = registry.OpenSQLite(configuration.DBPath)
	default:
		dbConn, err = registry.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
	}
	if err != nil {
		return fmt.Errorf("Error connection to database: %w", err)
	}
	defer dbConn.Close()

	if err := registry.Populate(dbConn, date, variants); err != nil {
		return err
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Device variants read from DB: %v", variants.Variants())
		logger.Info(message, "database")
	}
	return nil
}

func openSource(configuration gain.Configuration) (gain.EventSource, error) {
	format := configuration.Format
	if format == "" {
		switch strings.ToLower(filepath.Ext(configuration.FileIn)) {
		case ".h5", ".hdf5":
			format = "hdf5"
		default:
			format = "root"
		}
	}
	switch format {
	case "root":
		return rlog.Open(configuration.FileIn, configuration.Tree, configuration.Branch)
	case "hdf5":
		return h5rlog.Open(configuration.FileIn, configuration.Dataset)
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}

func writeSummary(table gain.ResultsTable, prefix, title string) error {
	style := plots.DefaultStyle()
	if err := plots.SummaryPlot(table, prefix+"_all_ch.pdf", style); err != nil {
		return fmt.Errorf("Error writing summary plot: %w", err)
	}
	if err := plots.SummaryHTML(table, prefix+"_all_ch.html", title, style); err != nil {
		return fmt.Errorf("Error writing summary page: %w", err)
	}
	logger.Info(fmt.Sprintf("Summary written to %s_all_ch.pdf", prefix), "main")
	return nil
}
