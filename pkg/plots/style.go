// Package plots renders the calibration artifacts: per-channel spectrum and
// linear-fit plots, and the gain summary of a whole board.
package plots

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/vg"
)

// Style is passed explicitly to every plot; there is no package level style.
type Style struct {
	Width     vg.Length
	Height    vg.Length
	FontSize  font.Length
	LineWidth vg.Length

	DataColor     color.Color
	FitColor      color.Color
	PeakColor     color.Color
	PedestalColor color.Color
	InactiveColor color.Color
}

func DefaultStyle() Style {
	return Style{
		Width:         6 * vg.Inch,
		Height:        6 * vg.Inch,
		FontSize:      14,
		LineWidth:     vg.Points(1.5),
		DataColor:     color.RGBA{R: 0x00, G: 0x4C, B: 0x97, A: 0xFF},
		FitColor:      color.RGBA{R: 0xAF, G: 0x27, B: 0x2F, A: 0xFF},
		PeakColor:     color.RGBA{R: 0x4C, G: 0x8C, B: 0x2B, A: 0xFF},
		PedestalColor: color.RGBA{R: 0x4C, G: 0x8C, B: 0x2B, A: 0xFF},
		InactiveColor: color.RGBA{R: 0xAF, G: 0x27, B: 0x2F, A: 0xFF},
	}
}

func (s Style) apply(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = s.FontSize
	p.X.Label.TextStyle.Font.Size = s.FontSize
	p.Y.Label.TextStyle.Font.Size = s.FontSize
	p.X.Tick.Label.Font.Size = s.FontSize * 0.8
	p.Y.Tick.Label.Font.Size = s.FontSize * 0.8
	p.Legend.TextStyle.Font.Size = s.FontSize * 0.8
	p.Legend.Top = true
}
