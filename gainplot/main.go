package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gain "github.com/next-exp/gaincal_go/pkg"
	"github.com/next-exp/gaincal_go/pkg/logging"
	"github.com/next-exp/gaincal_go/pkg/plots"
)

var logger = logging.New(os.Stdout, os.Stderr)

func main() {
	if err := run(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	filename := flag.String("file", "", "Results table")
	outDir := flag.String("out", "", "Output directory (defaults to the table directory)")
	html := flag.Bool("html", false, "Also write an interactive HTML summary")
	valid := flag.Bool("valid", false, "Also write the valid channels view")
	connections := flag.String("connections", "", "Connections table grouping the valid channels by module (implies -valid)")
	variant := flag.String("variant", "ACL", "Connections column to group by")
	flag.Parse()

	if *filename == "" {
		return fmt.Errorf("missing results table, use -file")
	}
	table, err := gain.ReadResultsFile(*filename)
	if err != nil {
		return fmt.Errorf("Error reading results: %w", err)
	}

	dir := *outDir
	if dir == "" {
		dir = filepath.Dir(*filename)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	base := filepath.Base(*filename)
	prefix := filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base)))

	for _, c := range plots.ClassifyResults(table) {
		message := fmt.Sprintf("%s: %d", c.Label, len(c.Channels))
		logger.Info(message, "summary")
	}

	style := plots.DefaultStyle()
	pdf := prefix + "_all_ch.pdf"
	if err := plots.SummaryPlot(table, pdf, style); err != nil {
		return fmt.Errorf("Error writing summary plot: %w", err)
	}
	logger.Info(fmt.Sprintf("Summary written to %s", pdf), "summary")

	if *html {
		page := prefix + "_all_ch.html"
		if err := plots.SummaryHTML(table, page, base, style); err != nil {
			return fmt.Errorf("Error writing summary page: %w", err)
		}
		logger.Info(fmt.Sprintf("Summary written to %s", page), "summary")
	}

	if *valid || *connections != "" {
		var conns plots.Connections
		if *connections != "" {
			conns, err = plots.ReadConnectionsFile(*connections, *variant)
			if err != nil {
				return fmt.Errorf("Error reading connections: %w", err)
			}
		}
		view := prefix + "_valid_ch.pdf"
		if err := plots.ValidChannelsPlot(table, conns, view, style); err != nil {
			return fmt.Errorf("Error writing valid channels plot: %w", err)
		}
		logger.Info(fmt.Sprintf("Valid channels written to %s", view), "summary")
	}
	return nil
}
