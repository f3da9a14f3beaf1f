package plots

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	gain "github.com/next-exp/gaincal_go/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func normalSamples(mu, sigma float64, n int) []float64 {
	dist := distuv.Normal{Mu: mu, Sigma: sigma}
	samples := make([]float64, n)
	for j := range samples {
		samples[j] = dist.Quantile((float64(j) + 0.5) / float64(n))
	}
	return samples
}

func assertNonEmptyFile(t *testing.T, filename string) {
	t.Helper()
	info, err := os.Stat(filename)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestChannelPlots(t *testing.T) {
	samples := append(normalSamples(12000, 120, 6000), normalSamples(12800, 120, 4000)...)
	samples = append(samples, normalSamples(13600, 120, 2000)...)

	a := &gain.Analyzer{
		Bounds:    gain.HistogramBounds{NBins: 500, XMin: 10000, XMax: 45000},
		Search:    gain.PeakSearch{MaxPeaks: 20, Sigma: 3, MinRatio: 0.1},
		Verbosity: gain.SavePlots,
	}
	dir := t.TempDir()
	p := NewPlotter(dir, "ACL", DefaultStyle())
	a.Plotter = p

	res := a.AnalyzeChannel(7, samples)
	require.Equal(t, gain.StatusValid, res.Status)

	assert.Equal(t, filepath.Join(dir, "ACL", "ch7_spectrum.pdf"), p.SpectrumFilename(7))
	assert.Equal(t, filepath.Join(dir, "ACL", "ch7_fit.pdf"), p.FitFilename(7))
	assertNonEmptyFile(t, p.SpectrumFilename(7))
	assertNonEmptyFile(t, p.FitFilename(7))
}

func TestPlotSpectrumWithUnfittedPeak(t *testing.T) {
	s, err := gain.NewSpectrum(normalSamples(12000, 120, 5000), gain.HistogramBounds{NBins: 500, XMin: 10000, XMax: 45000})
	require.NoError(t, err)
	s.Channel = 1

	p := NewPlotter(t.TempDir(), "LCM", DefaultStyle())
	fits := []gain.PeakFit{gain.FitPeak(s, 0, 12000), gain.FitPeak(s, 1, 40000)}
	require.NoError(t, p.PlotSpectrum(s, fits))
	assertNonEmptyFile(t, p.SpectrumFilename(1))
}

func resultsTable() gain.ResultsTable {
	return gain.ResultsTable{
		{Channel: 0, PeaksFound: 0},
		{Channel: 1, PeaksFound: 1, Gain: gain.PedestalOnlyGain, Offset: 11500},
		{Channel: 2, PeaksFound: 3, Gain: 801.2, ErrGain: 1.1, Offset: 12000},
		{Channel: 3, PeaksFound: 4, Gain: 795.7, ErrGain: 0.9, Offset: 11950},
	}
}

func TestClassifyResults(t *testing.T) {
	classes := ClassifyResults(resultsTable())
	require.Len(t, classes, 3)
	assert.Equal(t, []float64{2, 3}, classes[0].Channels)
	assert.Equal(t, []float64{801.2, 795.7}, classes[0].Gains)
	assert.Equal(t, []float64{1}, classes[1].Channels)
	assert.Equal(t, []float64{0}, classes[2].Channels)
}

func TestSummary(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "results_0cd913fb_20220207_all_ch.pdf")
	html := filepath.Join(dir, "results_0cd913fb_20220207_all_ch.html")

	require.NoError(t, SummaryPlot(resultsTable(), pdf, DefaultStyle()))
	require.NoError(t, SummaryHTML(resultsTable(), html, "ACL", DefaultStyle()))
	assertNonEmptyFile(t, pdf)
	assertNonEmptyFile(t, html)

	content, err := os.ReadFile(html)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Valid channels")
	assert.Contains(t, string(content), "#004C97")
}

func TestSummaryOnlyInactive(t *testing.T) {
	pdf := filepath.Join(t.TempDir(), "empty_all_ch.pdf")
	require.NoError(t, SummaryPlot(gain.ResultsTable{{Channel: 0}}, pdf, DefaultStyle()))
	assertNonEmptyFile(t, pdf)
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, "#AF272F", hexColor(DefaultStyle().FitColor))
}

func TestReadConnections(t *testing.T) {
	input := "ACL,LCM\nA1,L1\nA1,L1\nA2,L2\n,L2\n"
	conns, err := ReadConnections(strings.NewReader(input), "ACL")
	require.NoError(t, err)
	assert.Equal(t, Connections{0: "A1", 1: "A1", 2: "A2"}, conns)

	conns, err = ReadConnections(strings.NewReader("Channel, LCM\n7, L3\n9, L4\n"), "LCM")
	require.NoError(t, err)
	assert.Equal(t, Connections{7: "L3", 9: "L4"}, conns)

	_, err = ReadConnections(strings.NewReader(input), "HCM")
	assert.ErrorContains(t, err, "no HCM column")
	_, err = ReadConnections(strings.NewReader(""), "ACL")
	assert.Error(t, err)

	_, err = ReadConnectionsFile(filepath.Join(t.TempDir(), "connections.csv"), "ACL")
	var openErr *gain.ErrOpenFile
	assert.ErrorAs(t, err, &openErr)
}

func TestGroupValidChannels(t *testing.T) {
	table := resultsTable()
	table = append(table, gain.CalibrationResult{Channel: 4, PeaksFound: 5, Gain: 799.1, ErrGain: 1})

	groups := GroupValidChannels(table, Connections{2: "B", 3: "A", 4: "B"})
	require.Len(t, groups, 2)
	assert.Equal(t, "A", groups[0].Label)
	assert.Equal(t, []float64{3}, groups[0].Channels)
	assert.Equal(t, "B", groups[1].Label)
	assert.Equal(t, []float64{2, 4}, groups[1].Channels)
	assert.Equal(t, []float64{3, 5}, groups[1].Peaks)

	// no connections: a single group of valid channels
	groups = GroupValidChannels(table, nil)
	require.Len(t, groups, 1)
	assert.Equal(t, []float64{2, 3, 4}, groups[0].Channels)
	assert.Equal(t, []float64{801.2, 795.7, 799.1}, groups[0].Gains)

	// channels missing from the connections table are left out
	groups = GroupValidChannels(table, Connections{3: "A"})
	require.Len(t, groups, 1)
	assert.Equal(t, []float64{3}, groups[0].Channels)
}

func TestValidChannelsPlot(t *testing.T) {
	dir := t.TempDir()
	connections := filepath.Join(dir, "connections.csv")
	require.NoError(t, os.WriteFile(connections, []byte("ACL,LCM\nA1,L1\nA1,L1\nA1,L1\nA2,L2\n"), 0o644))
	conns, err := ReadConnectionsFile(connections, "ACL")
	require.NoError(t, err)

	pdf := filepath.Join(dir, "results_0cd913fb_20220207_valid_ch.pdf")
	require.NoError(t, ValidChannelsPlot(resultsTable(), conns, pdf, DefaultStyle()))
	assertNonEmptyFile(t, pdf)

	empty := filepath.Join(dir, "empty_valid_ch.pdf")
	require.NoError(t, ValidChannelsPlot(gain.ResultsTable{{Channel: 0}}, nil, empty, DefaultStyle()))
	assertNonEmptyFile(t, empty)
}
