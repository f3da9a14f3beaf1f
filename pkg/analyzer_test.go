package gain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPlotter struct {
	mu       sync.Mutex
	spectra  []int
	linefits []int
}

func (p *recordingPlotter) PlotSpectrum(s *Spectrum, fits []PeakFit) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spectra = append(p.spectra, s.Channel)
	return nil
}

func (p *recordingPlotter) PlotLinearFit(channel int, fits []PeakFit, line LinearFit) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.linefits = append(p.linefits, channel)
	return nil
}

type recordingLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (l *recordingLogger) Info(message string, module string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, message)
}

func (l *recordingLogger) Error(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, message)
}

func TestAnalyzeChannelRecoversGain(t *testing.T) {
	a := &Analyzer{Bounds: testBounds, Search: defaultSearch}
	res := a.AnalyzeChannel(2, threePeaks())

	assert.Equal(t, 2, res.Channel)
	assert.Equal(t, StatusValid, res.Status)
	assert.Equal(t, 3, res.PeaksFound)
	assert.Equal(t, 0, res.FitWarnings)
	assert.InEpsilon(t, 800, res.Gain, 0.01)
	assert.InEpsilon(t, 12000, res.Offset, 0.01)
	assert.Greater(t, res.ErrGain, 0.0)
	assert.Greater(t, res.ErrOffset, 0.0)
	require.Len(t, res.Peaks, 3)
	for i := 1; i < len(res.Peaks); i++ {
		assert.Less(t, res.Peaks[i-1].Mu, res.Peaks[i].Mu)
	}
}

func TestAnalyzeChannelPedestalOnly(t *testing.T) {
	a := &Analyzer{Bounds: testBounds, Search: defaultSearch}
	res := a.AnalyzeChannel(0, normalSamples(11500, 150, 12000))

	assert.Equal(t, StatusPedestalOnly, res.Status)
	assert.Equal(t, 1, res.PeaksFound)
	assert.Equal(t, PedestalOnlyGain, res.Gain)
	assert.Equal(t, 0.0, res.ErrGain)
	assert.InDelta(t, 11500, res.Offset, 20)
}

func TestAnalyzeChannelNoPeaks(t *testing.T) {
	a := &Analyzer{Bounds: testBounds, Search: defaultSearch}

	res := a.AnalyzeChannel(5, nil)
	assert.Equal(t, StatusNoPeaks, res.Status)
	assert.Equal(t, 0, res.PeaksFound)
	assert.Equal(t, 0.0, res.Gain)
	assert.Equal(t, 0.0, res.Offset)

	a.Search.MaxPeaks = 0
	first := a.AnalyzeChannel(5, threePeaks())
	second := a.AnalyzeChannel(5, threePeaks())
	assert.Equal(t, StatusNoPeaks, first.Status)
	assert.Equal(t, 0, first.PeaksFound)
	assert.Equal(t, first.Gain, second.Gain)
	assert.Equal(t, first.Offset, second.Offset)
}

func TestAnalyzeChannelInvalidBounds(t *testing.T) {
	a := &Analyzer{Bounds: HistogramBounds{}, Search: defaultSearch}
	res := a.AnalyzeChannel(1, threePeaks())
	assert.Equal(t, StatusFailed, res.Status)
	assert.Error(t, res.Err)
}

func TestAnalyzeChannelPlotsValidChannels(t *testing.T) {
	plotter := &recordingPlotter{}
	a := &Analyzer{Bounds: testBounds, Search: defaultSearch, Verbosity: SavePlots, Plotter: plotter}

	a.AnalyzeChannel(2, threePeaks())
	a.AnalyzeChannel(3, normalSamples(11500, 150, 12000))
	a.AnalyzeChannel(4, nil)

	assert.Equal(t, []int{2}, plotter.spectra)
	assert.Equal(t, []int{2}, plotter.linefits)

	a.Verbosity = PrintPeaks
	a.AnalyzeChannel(2, threePeaks())
	assert.Len(t, plotter.spectra, 1)
}

func TestAnalyzeChannelLogsPeaks(t *testing.T) {
	l := &recordingLogger{}
	SetLogger(l)
	defer SetLogger(nil)

	a := &Analyzer{Bounds: testBounds, Search: defaultSearch, Verbosity: PrintPeaks}
	a.AnalyzeChannel(2, threePeaks())

	require.Len(t, l.infos, 4)
	assert.Contains(t, l.infos[0], "Channel 2: Peak #0 @ ADC")
	assert.Equal(t, "Channel 2: # of peaks found 3", l.infos[3])
	assert.Empty(t, l.errors)
}

// deltaPeaks puts every sample of each peak in a single bin, so no peak
// window holds enough populated bins for a Gaussian fit.
func deltaPeaks() []float64 {
	var samples []float64
	for _, p := range []struct {
		x float64
		n int
	}{{12000, 600}, {12800, 400}, {13600, 200}} {
		for i := 0; i < p.n; i++ {
			samples = append(samples, p.x)
		}
	}
	return samples
}

func TestAnalyzeChannelFitWarnings(t *testing.T) {
	l := &recordingLogger{}
	SetLogger(l)
	defer SetLogger(nil)

	a := &Analyzer{Bounds: testBounds, Search: defaultSearch}
	res := a.AnalyzeChannel(6, deltaPeaks())

	assert.Equal(t, 3, res.PeaksFound)
	assert.Equal(t, 3, res.FitWarnings)
	require.Len(t, l.errors, 3)
	for _, message := range l.errors {
		assert.Contains(t, message, "channel 6")
		assert.Contains(t, message, "did not converge")
	}

	// raw seeds are still used for the gain
	assert.Equal(t, StatusValid, res.Status)
	assert.False(t, res.Line.Weighted)
	assert.Equal(t, 3, res.Line.MissingErrors)
	assert.InDelta(t, 805, res.Gain, 1)
	require.NotEmpty(t, l.infos)
	assert.Contains(t, l.infos[len(l.infos)-1], "unweighted")
}
