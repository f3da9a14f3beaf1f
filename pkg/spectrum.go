package gain

import (
	"fmt"
	"math"

	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/gonum/floats"
)

// HistogramBounds is the binning shared by every channel of a run.
type HistogramBounds struct {
	NBins int     `json:"nbins" db:"nbins"`
	XMin  float64 `json:"xmin" db:"xmin"`
	XMax  float64 `json:"xmax" db:"xmax"`
}

func (b HistogramBounds) Validate() error {
	if b.NBins <= 0 {
		return fmt.Errorf("invalid histogram bounds: nbins=%d", b.NBins)
	}
	if !(b.XMax > b.XMin) {
		return fmt.Errorf("invalid histogram bounds: xmin=%g xmax=%g", b.XMin, b.XMax)
	}
	return nil
}

func (b HistogramBounds) BinWidth() float64 {
	return (b.XMax - b.XMin) / float64(b.NBins)
}

// BinIndex returns the bin holding x, or -1 when x falls outside [XMin, XMax).
func (b HistogramBounds) BinIndex(x float64) int {
	if math.IsNaN(x) || x < b.XMin || x >= b.XMax {
		return -1
	}
	idx := int(math.Floor((x - b.XMin) / b.BinWidth()))
	if idx >= b.NBins {
		// x just below XMax can round up to NBins
		idx = b.NBins - 1
	}
	return idx
}

func (b HistogramBounds) BinCenter(i int) float64 {
	return b.XMin + (float64(i)+0.5)*b.BinWidth()
}

// Spectrum is the charge-integral histogram of one channel.
type Spectrum struct {
	Channel   int
	Bounds    HistogramBounds
	h         *hbook.H1D
	discarded int
}

// NewSpectrum fills a fixed-binning histogram with samples. Samples outside
// [XMin, XMax) are dropped and only counted in Discarded.
func NewSpectrum(samples []float64, b HistogramBounds) (*Spectrum, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	s := &Spectrum{
		Bounds: b,
		h:      hbook.NewH1D(b.NBins, b.XMin, b.XMax),
	}
	for _, x := range samples {
		s.Fill(x)
	}
	return s, nil
}

func (s *Spectrum) Fill(x float64) {
	idx := s.Bounds.BinIndex(x)
	if idx < 0 {
		s.discarded++
		return
	}
	// filling at the bin center keeps hbook's binning identical to ours
	s.h.Fill(s.Bounds.BinCenter(idx), 1)
}

// Counts returns a copy of the bin contents.
func (s *Spectrum) Counts() []float64 {
	out := make([]float64, s.Len())
	for i, bin := range s.h.Binning.Bins {
		out[i] = bin.SumW()
	}
	return out
}

func (s *Spectrum) Count(i int) float64 {
	return s.h.Binning.Bins[i].SumW()
}

func (s *Spectrum) Len() int {
	return len(s.h.Binning.Bins)
}

// Total is the number of in-range samples.
func (s *Spectrum) Total() float64 {
	return floats.Sum(s.Counts())
}

func (s *Spectrum) Discarded() int {
	return s.discarded
}

func (s *Spectrum) BinCenter(i int) float64 {
	return s.Bounds.BinCenter(i)
}

func (s *Spectrum) BinWidth() float64 {
	return s.Bounds.BinWidth()
}

// H1D exposes the underlying histogram for rendering.
func (s *Spectrum) H1D() *hbook.H1D {
	return s.h
}
