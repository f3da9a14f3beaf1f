package plots

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	gain "github.com/next-exp/gaincal_go/pkg"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Plotter writes the per-channel PDFs of one run under Dir/Variant.
type Plotter struct {
	Dir     string
	Variant string
	Style   Style
}

func NewPlotter(dir, variant string, style Style) *Plotter {
	return &Plotter{Dir: dir, Variant: variant, Style: style}
}

func (p *Plotter) outputDir() (string, error) {
	dir := filepath.Join(p.Dir, p.Variant)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func (p *Plotter) SpectrumFilename(channel int) string {
	return filepath.Join(p.Dir, p.Variant, fmt.Sprintf("ch%d_spectrum.pdf", channel))
}

func (p *Plotter) FitFilename(channel int) string {
	return filepath.Join(p.Dir, p.Variant, fmt.Sprintf("ch%d_fit.pdf", channel))
}

// PlotSpectrum draws the charge histogram with every fitted Gaussian
// restricted to its window and a marker line at each detected peak.
func (p *Plotter) PlotSpectrum(s *gain.Spectrum, fits []gain.PeakFit) error {
	if _, err := p.outputDir(); err != nil {
		return err
	}

	plt := hplot.New()
	p.Style.apply(plt.Plot)
	plt.Title.Text = fmt.Sprintf("ch%d", s.Channel)
	plt.X.Label.Text = "ADC Counts"
	plt.Y.Label.Text = "Counts"

	h := hplot.NewH1D(s.H1D())
	h.LineStyle.Color = p.Style.DataColor
	h.LineStyle.Width = p.Style.LineWidth
	plt.Add(h)

	ymax := 0.0
	for _, c := range s.Counts() {
		ymax = math.Max(ymax, c)
	}
	for _, pf := range fits {
		peak, err := plotter.NewLine(plotter.XYs{{X: pf.Seed, Y: 0}, {X: pf.Seed, Y: ymax}})
		if err != nil {
			return err
		}
		peak.LineStyle.Color = p.Style.PeakColor
		peak.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		plt.Add(peak)

		if pf.Method == gain.MethodNone || pf.Sigma <= 0 {
			continue
		}
		params := []float64{pf.Amplitude, pf.Mu, pf.Sigma}
		f := plotter.NewFunction(func(x float64) float64 {
			z := (x - params[1]) / params[2]
			return params[0] * math.Exp(-0.5*z*z)
		})
		f.XMin = pf.Window.Low
		f.XMax = pf.Window.High
		f.Samples = 100
		f.LineStyle.Color = p.Style.FitColor
		f.LineStyle.Width = p.Style.LineWidth
		plt.Add(f)
	}
	plt.X.Min = s.Bounds.XMin
	plt.X.Max = s.Bounds.XMax

	return plt.Save(p.Style.Width, p.Style.Height, p.SpectrumFilename(s.Channel))
}

type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// PlotLinearFit draws the peak means against their p.e. count with the
// fitted calibration line.
func (p *Plotter) PlotLinearFit(channel int, fits []gain.PeakFit, line gain.LinearFit) error {
	if _, err := p.outputDir(); err != nil {
		return err
	}

	plt := plot.New()
	p.Style.apply(plt)
	plt.Title.Text = fmt.Sprintf("ch%d: gain %.2f ± %.2f ADC/p.e.", channel, line.Gain, line.ErrGain)
	plt.X.Label.Text = "# p.e."
	plt.Y.Label.Text = "ADC Counts"

	points := errorPoints{
		XYs:     make(plotter.XYs, len(fits)),
		YErrors: make(plotter.YErrors, len(fits)),
	}
	for i, pf := range fits {
		points.XYs[i].X = gain.PhotoelectronCount(i)
		points.XYs[i].Y = pf.Mu
		points.YErrors[i].Low = pf.ErrMu
		points.YErrors[i].High = pf.ErrMu
	}

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Color = p.Style.DataColor
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	errBars, err := plotter.NewYErrorBars(points)
	if err != nil {
		return err
	}
	errBars.LineStyle.Color = p.Style.DataColor

	fit := plotter.NewFunction(func(x float64) float64 {
		return line.Offset + line.Gain*x
	})
	fit.XMin = 0
	fit.XMax = math.Max(float64(len(fits)-1), 1)
	fit.LineStyle.Color = p.Style.FitColor
	fit.LineStyle.Width = p.Style.LineWidth

	plt.Add(fit, scatter, errBars)
	plt.Legend.Add("peaks", scatter)
	plt.Legend.Add("linear fit", fit)
	plt.X.Min = -0.5
	plt.X.Max = fit.XMax + 0.5

	return plt.Save(p.Style.Width, p.Style.Height, p.FitFilename(channel))
}
