package gain

import (
	"math"
	"sort"
)

// PeakSearch holds the peak-finder settings. Sigma is the smoothing width in
// bins and MinRatio the minimum amplitude relative to the tallest peak.
type PeakSearch struct {
	MaxPeaks int
	Sigma    float64
	MinRatio float64
}

type PeakCandidate struct {
	Position  float64
	Amplitude float64
	Bin       int
}

// DetectPeaks returns the local maxima of the smoothed spectrum, tallest
// first. A bin qualifies when it is a strict maximum over ceil(Sigma) bins on
// either side, so features narrower than the smoothing resolution merge.
func DetectPeaks(s *Spectrum, p PeakSearch) []PeakCandidate {
	if p.MaxPeaks <= 0 || s.Total() == 0 {
		return nil
	}
	smoothed := smoothGaussian(s.Counts(), p.Sigma)
	half := int(math.Ceil(p.Sigma))
	if half < 1 {
		half = 1
	}

	var candidates []PeakCandidate
	for i := 1; i < len(smoothed)-1; i++ {
		if smoothed[i] <= 0 || !isLocalMaximum(smoothed, i, half) {
			continue
		}
		candidates = append(candidates, PeakCandidate{
			Position:  refinePosition(smoothed, i, s.Bounds),
			Amplitude: smoothed[i],
			Bin:       i,
		})
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Amplitude > candidates[j].Amplitude
	})
	threshold := p.MinRatio * candidates[0].Amplitude
	kept := candidates[:0]
	for _, c := range candidates {
		if c.Amplitude < threshold || len(kept) == p.MaxPeaks {
			break
		}
		kept = append(kept, c)
	}
	return kept
}

// SortPeaks orders candidates by ascending position. After sorting, the
// index of a peak is its assumed photoelectron count.
func SortPeaks(peaks []PeakCandidate) {
	sort.Slice(peaks, func(i, j int) bool {
		return peaks[i].Position < peaks[j].Position
	})
}

func PeakPositions(peaks []PeakCandidate) []float64 {
	positions := make([]float64, len(peaks))
	for i, p := range peaks {
		positions[i] = p.Position
	}
	return positions
}

// plateaus resolve to their leftmost bin
func isLocalMaximum(y []float64, i, half int) bool {
	for j := i - half; j < i; j++ {
		if j >= 0 && y[j] >= y[i] {
			return false
		}
	}
	for j := i + 1; j <= i+half; j++ {
		if j < len(y) && y[j] > y[i] {
			return false
		}
	}
	return true
}

func refinePosition(y []float64, i int, b HistogramBounds) float64 {
	left, mid, right := y[i-1], y[i], y[i+1]
	delta := 0.0
	denom := left - 2*mid + right
	if denom < 0 {
		delta = 0.5 * (left - right) / denom
		delta = math.Max(-0.5, math.Min(0.5, delta))
	}
	return b.BinCenter(i) + delta*b.BinWidth()
}

// smoothGaussian convolves y with a normalised Gaussian kernel truncated at
// 3 sigma. The kernel is renormalised where it overhangs the edges.
func smoothGaussian(y []float64, sigma float64) []float64 {
	out := make([]float64, len(y))
	if sigma <= 0 {
		copy(out, y)
		return out
	}
	half := int(math.Ceil(3 * sigma))
	kernel := make([]float64, 2*half+1)
	for k := -half; k <= half; k++ {
		kernel[k+half] = math.Exp(-0.5 * float64(k*k) / (sigma * sigma))
	}
	for i := range y {
		var sum, norm float64
		for k := -half; k <= half; k++ {
			j := i + k
			if j < 0 || j >= len(y) {
				continue
			}
			sum += kernel[k+half] * y[j]
			norm += kernel[k+half]
		}
		out[i] = sum / norm
	}
	return out
}
