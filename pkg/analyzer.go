package gain

import (
	"errors"
	"fmt"
)

type Status int

const (
	StatusValid Status = iota
	StatusPedestalOnly
	StatusNoPeaks
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusPedestalOnly:
		return "pedestal-only"
	case StatusNoPeaks:
		return "no-peaks"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Verbosity int

const (
	Silent Verbosity = iota
	PrintPeaks
	SavePlots
)

// CalibrationResult is one row of the results table.
type CalibrationResult struct {
	Channel     int
	PeaksFound  int
	Gain        float64
	ErrGain     float64
	Offset      float64
	ErrOffset   float64
	Status      Status
	FitWarnings int
	Peaks       []PeakFit
	Line        LinearFit
	Err         error
}

// Plotter renders the per-channel artifacts. Implementations live outside
// the core so the analysis never depends on plotting state.
type Plotter interface {
	PlotSpectrum(s *Spectrum, fits []PeakFit) error
	PlotLinearFit(channel int, fits []PeakFit, line LinearFit) error
}

type Analyzer struct {
	Bounds    HistogramBounds
	Search    PeakSearch
	Verbosity Verbosity
	Plotter   Plotter
}

// AnalyzeChannel runs spectrum building, peak search, Gaussian peak fits and
// the linear gain fit for one channel, then applies the pedestal rule.
func (a *Analyzer) AnalyzeChannel(channel int, samples []float64) CalibrationResult {
	res := CalibrationResult{Channel: channel}

	spectrum, err := NewSpectrum(samples, a.Bounds)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res
	}
	spectrum.Channel = channel

	peaks := DetectPeaks(spectrum, a.Search)
	SortPeaks(peaks)
	res.PeaksFound = len(peaks)

	if a.Verbosity >= PrintPeaks {
		for i, p := range peaks {
			message := fmt.Sprintf("Channel %d: Peak #%d @ ADC %.1f", channel, i, p.Position)
			logger.Info(message, "peaks")
		}
		message := fmt.Sprintf("Channel %d: # of peaks found %d", channel, len(peaks))
		logger.Info(message, "peaks")
	}

	res.Peaks = FitPeaks(spectrum, PeakPositions(peaks))
	mu := make([]float64, len(res.Peaks))
	errMu := make([]float64, len(res.Peaks))
	for i, pf := range res.Peaks {
		mu[i] = pf.Mu
		errMu[i] = pf.ErrMu
		if !pf.Converged {
			res.FitWarnings++
			fitErr := &ErrFitNonConvergence{Channel: channel, Peak: i, Position: pf.Seed, Reason: pf.Reason}
			logger.Error(fitErr.Error())
		}
	}

	line, err := FitLine(mu, errMu)
	if line.MissingErrors > 0 && line.Points > 1 {
		weighting := "weighted"
		if !line.Weighted {
			weighting = "unweighted"
		}
		message := fmt.Sprintf("Channel %d: %d of %d peak means without error, linear fit %s",
			channel, line.MissingErrors, line.Points, weighting)
		logger.Info(message, "linefit")
	}
	res.Line = line
	res.Gain = line.Gain
	res.ErrGain = line.ErrGain
	res.Offset = line.Offset
	res.ErrOffset = line.ErrOffset
	switch {
	case errors.Is(err, ErrNoPeaks):
		res.Status = StatusNoPeaks
	case errors.Is(err, ErrUnderdetermined), err == nil:
		res.Status = StatusValid
	default:
		res.Status = StatusValid
		res.Err = err
		message := fmt.Errorf("channel %d: %w", channel, err)
		logger.Error(message.Error())
	}
	ApplyPedestalRule(&res)

	if a.Verbosity >= SavePlots && a.Plotter != nil && res.Status == StatusValid {
		a.plot(spectrum, res)
	}
	return res
}

func (a *Analyzer) plot(spectrum *Spectrum, res CalibrationResult) {
	if err := a.Plotter.PlotSpectrum(spectrum, res.Peaks); err != nil {
		message := fmt.Errorf("channel %d: error saving spectrum plot: %w", res.Channel, err)
		logger.Error(message.Error())
	}
	if err := a.Plotter.PlotLinearFit(res.Channel, res.Peaks, res.Line); err != nil {
		message := fmt.Errorf("channel %d: error saving linear fit plot: %w", res.Channel, err)
		logger.Error(message.Error())
	}
}
