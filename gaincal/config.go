package main

import (
	"encoding/json"
	"fmt"
	"os"

	gain "github.com/next-exp/gaincal_go/pkg"
)

// LoadConfiguration starts from the default settings and overrides them
// with the JSON file, if any.
func LoadConfiguration(filename string) (gain.Configuration, error) {
	config := gain.DefaultConfiguration()
	if filename == "" {
		return config, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func printConfiguration(config gain.Configuration, logger gain.Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Format: %s", config.Format), "config")
	logger.Info(fmt.Sprintf("Plot dir: %s", config.PlotDir), "config")
	logger.Info(fmt.Sprintf("First channel: %d", config.FirstChannel), "config")
	logger.Info(fmt.Sprintf("Number of channels: %d", config.NChannels), "config")
	logger.Info(fmt.Sprintf("Inclusive last: %t", config.InclusiveLast), "config")
	logger.Info(fmt.Sprintf("Max peaks: %d", config.MaxPeaks), "config")
	logger.Info(fmt.Sprintf("Sigma: %.1f", config.Sigma), "config")
	logger.Info(fmt.Sprintf("Min ratio: %.2f", config.MinRatio), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Tree: %s", config.Tree), "config")
	logger.Info(fmt.Sprintf("Branch: %s", config.Branch), "config")
	logger.Info(fmt.Sprintf("Dataset: %s", config.Dataset), "config")
	logger.Info(fmt.Sprintf("Variants: %v", config.Variants), "config")
	logger.Info(fmt.Sprintf("Devices: %v", config.Devices), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("DB driver: %s", config.DBDriver), "config")
	logger.Info(fmt.Sprintf("DB path: %s", config.DBPath), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Summary: %t", config.Summary), "config")
}
