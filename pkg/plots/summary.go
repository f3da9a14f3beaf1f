package plots

import (
	"fmt"
	"image/color"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	gain "github.com/next-exp/gaincal_go/pkg"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"
)

// GainClass groups the channels of a results table the way the summary
// plots show them.
type GainClass struct {
	Label    string
	Status   gain.Status
	Channels []float64
	Gains    []float64
	Errors   []float64
}

// ClassifyResults splits a table in valid, pedestal-only and inactive
// channels, in that order.
func ClassifyResults(table gain.ResultsTable) []GainClass {
	classes := []GainClass{
		{Label: "Valid channels", Status: gain.StatusValid},
		{Label: "Only pedestal", Status: gain.StatusPedestalOnly},
		{Label: "Inactive channels", Status: gain.StatusNoPeaks},
	}
	for _, r := range table {
		var c *GainClass
		switch gain.ClassifyGain(r.Gain) {
		case gain.StatusValid:
			c = &classes[0]
		case gain.StatusPedestalOnly:
			c = &classes[1]
		default:
			c = &classes[2]
		}
		c.Channels = append(c.Channels, float64(r.Channel))
		c.Gains = append(c.Gains, r.Gain)
		c.Errors = append(c.Errors, r.ErrGain)
	}
	return classes
}

func (s Style) classColor(status gain.Status) color.Color {
	switch status {
	case gain.StatusValid:
		return s.DataColor
	case gain.StatusPedestalOnly:
		return s.PedestalColor
	default:
		return s.InactiveColor
	}
}

func classShape(status gain.Status) draw.GlyphDrawer {
	switch status {
	case gain.StatusValid:
		return draw.CircleGlyph{}
	case gain.StatusPedestalOnly:
		return draw.BoxGlyph{}
	default:
		return draw.PyramidGlyph{}
	}
}

func classPoints(c GainClass) errorPoints {
	pts := errorPoints{
		XYs:     make(plotter.XYs, len(c.Channels)),
		YErrors: make(plotter.YErrors, len(c.Channels)),
	}
	for i := range c.Channels {
		pts.XYs[i].X = c.Channels[i]
		pts.XYs[i].Y = c.Gains[i]
		pts.YErrors[i].Low = c.Errors[i]
		pts.YErrors[i].High = c.Errors[i]
	}
	return pts
}

// SummaryPlot writes a two panel PDF: gain against channel for every class
// on top, and the valid channels alone with their errors below.
func SummaryPlot(table gain.ResultsTable, filename string, style Style) error {
	classes := ClassifyResults(table)

	all := plot.New()
	style.apply(all)
	all.X.Label.Text = "Channel number"
	all.Y.Label.Text = "SiPM Gain [ADC / p.e.]"
	for _, c := range classes {
		if len(c.Channels) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(classPoints(c))
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = style.classColor(c.Status)
		sc.GlyphStyle.Shape = classShape(c.Status)
		sc.GlyphStyle.Radius = vg.Points(3.5)
		all.Add(sc)
		all.Legend.Add(c.Label, sc)
	}

	valid := plot.New()
	style.apply(valid)
	valid.Title.Text = classes[0].Label
	valid.X.Label.Text = "Channel number"
	valid.Y.Label.Text = "SiPM Gain [ADC / p.e.]"
	valid.Add(plotter.NewGrid())
	if len(classes[0].Channels) > 0 {
		pts := classPoints(classes[0])
		line, sc, err := plotter.NewLinePoints(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Color = style.DataColor
		sc.GlyphStyle.Color = style.DataColor
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		bars, err := plotter.NewYErrorBars(pts)
		if err != nil {
			return err
		}
		bars.LineStyle.Color = style.DataColor
		valid.Add(line, sc, bars)
	}

	tiles := draw.Tiles{Rows: 2, Cols: 1, PadY: vg.Points(20)}
	return savePDF([][]*plot.Plot{{all}, {valid}}, tiles, style.Width, 2*style.Height, filename)
}

// savePDF draws a grid of aligned plots on a single PDF page.
func savePDF(plots [][]*plot.Plot, tiles draw.Tiles, width, height vg.Length, filename string) error {
	canvas := vgpdf.New(width, height)
	canvases := plot.Align(plots, tiles, draw.New(canvas))
	for i := range plots {
		for j := range plots[i] {
			plots[i][j].Draw(canvases[i][j])
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if _, err := canvas.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s: %w", filename, err)
	}
	return f.Close()
}

// SummaryHTML writes an interactive gain against channel scatter chart.
func SummaryHTML(table gain.ResultsTable, filename, title string, style Style) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("channels=%d", len(table))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Channel number", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Gain [ADC/p.e.]", NameLocation: "middle", NameGap: 50}),
	)
	for _, c := range ClassifyResults(table) {
		data := make([]opts.ScatterData, 0, len(c.Channels))
		for i := range c.Channels {
			data = append(data, opts.ScatterData{Value: []interface{}{c.Channels[i], c.Gains[i], c.Errors[i]}})
		}
		scatter.AddSeries(c.Label, data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(style.classColor(c.Status))}),
		)
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := scatter.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("error rendering %s: %w", filename, err)
	}
	return f.Close()
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8)
}
