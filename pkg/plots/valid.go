package plots

import (
	"image/color"

	gain "github.com/next-exp/gaincal_go/pkg"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ValidChannelsPlot writes a side by side PDF of the valid channels: gain
// against channel on the left and number of fitted peaks on the right, one
// series per connection module.
func ValidChannelsPlot(table gain.ResultsTable, conns Connections, filename string, style Style) error {
	gains := plot.New()
	style.apply(gains)
	gains.X.Label.Text = "Channel number"
	gains.Y.Label.Text = "SiPM Gain [ADC / p.e.]"

	peaks := plot.New()
	style.apply(peaks)
	peaks.X.Label.Text = "Channel number"
	peaks.Y.Label.Text = "# fitted peaks"

	for i, g := range GroupValidChannels(table, conns) {
		c, shape := plotutil.Color(i), plotutil.Shape(i)
		if _, err := style.addSeries(gains, g.Channels, g.Gains, c, shape); err != nil {
			return err
		}
		sc, err := style.addSeries(peaks, g.Channels, g.Peaks, c, shape)
		if err != nil {
			return err
		}
		peaks.Legend.Add(g.Label, sc)
	}

	tiles := draw.Tiles{Rows: 1, Cols: 2, PadX: vg.Points(20)}
	return savePDF([][]*plot.Plot{{gains, peaks}}, tiles, 2*style.Width, style.Height, filename)
}

func (s Style) addSeries(p *plot.Plot, xs, ys []float64, c color.Color, shape draw.GlyphDrawer) (*plotter.Scatter, error) {
	xy := make(plotter.XYs, len(xs))
	for i := range xs {
		xy[i].X = xs[i]
		xy[i].Y = ys[i]
	}
	line, sc, err := plotter.NewLinePoints(xy)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = c
	line.LineStyle.Width = s.LineWidth
	sc.GlyphStyle.Color = c
	sc.GlyphStyle.Shape = shape
	sc.GlyphStyle.Radius = vg.Points(4)
	p.Add(line, sc)
	return sc, nil
}
