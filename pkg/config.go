package gain

type Configuration struct {
	FileIn        string                     `json:"file_in"`
	FileOut       string                     `json:"file_out"`
	PlotDir       string                     `json:"plot_dir"`
	FirstChannel  int                        `json:"first_channel"`
	NChannels     int                        `json:"n_channels"`
	InclusiveLast bool                       `json:"inclusive_last"`
	MaxPeaks      int                        `json:"max_peaks"`
	Sigma         float64                    `json:"sigma"`
	MinRatio      float64                    `json:"min_ratio"`
	Verbosity     int                        `json:"verbosity"`
	NumWorkers    int                        `json:"num_workers"`
	Format        string                     `json:"format"`
	Tree          string                     `json:"tree"`
	Branch        string                     `json:"branch"`
	Dataset       string                     `json:"dataset"`
	Variants      map[string]HistogramBounds `json:"variants"`
	Devices       map[string]string          `json:"devices"`
	NoDB          bool                       `json:"no_db"`
	DBDriver      string                     `json:"db_driver"`
	DBPath        string                     `json:"db_path"`
	Host          string                     `json:"host"`
	User          string                     `json:"user"`
	Passwd        string                     `json:"pass"`
	DBName        string                     `json:"dbname"`
	Summary       bool                       `json:"summary"`
}

// DefaultConfiguration holds the settings used for the LED calibration runs:
// 64 channel boards, up to 20 peaks, 3 bins smoothing and 10% minimum peak
// ratio.
func DefaultConfiguration() Configuration {
	return Configuration{
		PlotDir:      "plots",
		FirstChannel: 0,
		NChannels:    64,
		MaxPeaks:     20,
		Sigma:        3,
		MinRatio:     0.1,
		Verbosity:    0,
		NumWorkers:   1,
		Tree:         "rlog",
		Branch:       "integral",
		Dataset:      "rlog/integral",
		Variants:     DefaultVariants(),
		Devices:      DefaultDevices(),
		NoDB:         true,
		DBDriver:     "mysql",
		Host:         "next.ific.uv.es",
		User:         "nextreader",
		Passwd:       "readonly",
		DBName:       "SIPMCALIB",
	}
}

func (c Configuration) ChannelRange() ChannelRange {
	return ChannelRange{
		First:     c.FirstChannel,
		Last:      c.NChannels,
		Inclusive: c.InclusiveLast,
	}
}

func (c Configuration) PeakSearch() PeakSearch {
	return PeakSearch{
		MaxPeaks: c.MaxPeaks,
		Sigma:    c.Sigma,
		MinRatio: c.MinRatio,
	}
}
