package gain

import (
	"gonum.org/v1/gonum/stat/distuv"
)

var testBounds = HistogramBounds{NBins: 500, XMin: 10000, XMax: 45000}

// normalSamples returns n deterministic samples following a normal
// distribution, taken at evenly spaced quantiles.
func normalSamples(mu, sigma float64, n int) []float64 {
	dist := distuv.Normal{Mu: mu, Sigma: sigma}
	samples := make([]float64, n)
	for j := range samples {
		samples[j] = dist.Quantile((float64(j) + 0.5) / float64(n))
	}
	return samples
}

type testPeak struct {
	mu, sigma float64
	n         int
}

func peakSamples(peaks ...testPeak) []float64 {
	var samples []float64
	for _, p := range peaks {
		samples = append(samples, normalSamples(p.mu, p.sigma, p.n)...)
	}
	return samples
}

// threePeaks is a 0, 1 and 2 p.e. spectrum with a gain of 800 ADC/p.e.
func threePeaks() []float64 {
	return peakSamples(
		testPeak{mu: 12000, sigma: 120, n: 6000},
		testPeak{mu: 12800, sigma: 120, n: 4000},
		testPeak{mu: 13600, sigma: 120, n: 2000},
	)
}

// columns builds rows from per-channel samples of equal length.
func columns(channels ...[]float64) [][]float64 {
	rows := make([][]float64, len(channels[0]))
	for i := range rows {
		row := make([]float64, len(channels))
		for ch := range channels {
			row[ch] = channels[ch][i]
		}
		rows[i] = row
	}
	return rows
}

var defaultSearch = PeakSearch{MaxPeaks: 20, Sigma: 3, MinRatio: 0.1}
