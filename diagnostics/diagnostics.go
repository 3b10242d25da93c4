// Package diagnostics renders quick-look plots of visibility coverage and
// image profiles: uv coverage scatter plots and point-spread-function cuts,
// written as PNG files.
package diagnostics

import (
	"fmt"
	"image/color"
	"image/png"
	"math"
	"os"

	"gonum.org/v1/plot"

	// Liberation fonts register automatically on import
	_ "gonum.org/v1/plot/font/liberation"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/radiokit/aperture/skyimage"
	"github.com/radiokit/aperture/visibility"
)

// StepTicks is a tick marker with fixed step intervals.
type StepTicks struct {
	Step   float64
	Format string
}

func (t StepTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	start := math.Ceil(min/t.Step) * t.Step
	for v := start; v <= max; v += t.Step {
		ticks = append(ticks, plot.Tick{
			Value: v,
			Label: fmt.Sprintf(t.Format, v),
		})
	}
	return ticks
}

func applyFonts(p *plot.Plot) {
	// Modify the font fields directly on existing styles
	p.Title.TextStyle.Font.Typeface = "Liberation"
	p.Title.TextStyle.Font.Variant = "Sans"
	p.Title.TextStyle.Font.Size = vg.Points(12)

	p.X.Label.TextStyle.Font.Typeface = "Liberation"
	p.X.Label.TextStyle.Font.Variant = "Sans"
	p.X.Label.TextStyle.Font.Size = vg.Points(12)

	p.Y.Label.TextStyle.Font.Typeface = "Liberation"
	p.Y.Label.TextStyle.Font.Variant = "Sans"
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)

	p.X.Tick.Label.Font.Typeface = "Liberation"
	p.X.Tick.Label.Font.Variant = "Sans"
	p.X.Tick.Label.Font.Size = vg.Points(10)

	p.Y.Tick.Label.Font.Typeface = "Liberation"
	p.Y.Tick.Label.Font.Variant = "Sans"
	p.Y.Tick.Label.Font.Size = vg.Points(10)
}

// SaveUVCoverage scatter-plots the uv points of the first channel, with the
// conjugate points mirrored through the origin, and writes the plot to a
// PNG file.
func SaveUVCoverage(vis *visibility.Visibility, filename string) error {
	p := plot.New()
	applyFonts(p)

	p.Title.Text = "uv coverage"
	p.X.Label.Text = "u (wavelengths)"
	p.Y.Label.Text = "v (wavelengths)"
	p.Add(plotter.NewGrid())

	n := vis.NumRows()
	pts := make(plotter.XYs, 0, 2*n)
	for r := 0; r < n; r++ {
		uvw := vis.UVWLambda(r, 0)
		pts = append(pts,
			plotter.XY{X: uvw[0], Y: uvw[1]},
			plotter.XY{X: -uvw[0], Y: -uvw[1]})
	}

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Radius = vg.Points(1)
	sc.GlyphStyle.Color = color.RGBA{R: 0, G: 0, B: 255, A: 255} // blue
	p.Add(sc)

	return writePNG(p, filename, 800, 800)
}

// SavePSFProfile plots the central row of an image slice, normally the
// point-spread function, and writes the plot to a PNG file.
func SavePSFProfile(im *skyimage.Image, channel, pol int, filename string) error {
	_, _, ny, nx := im.Shape()
	row := im.Data[channel][pol][ny/2]

	p := plot.New()
	applyFonts(p)

	p.Title.Text = "Point spread function, central cut"
	p.X.Label.Text = "pixel"
	p.Y.Label.Text = "response"
	p.Y.Tick.Marker = StepTicks{Step: 0.2, Format: "%.2f"}
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, nx)
	for x := 0; x < nx; x++ {
		pts[x].X = float64(x)
		pts[x].Y = row[x]
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 0, G: 0, B: 255, A: 255} // blue
	p.Add(line)

	hpts := plotter.XYs{
		{X: 0.0, Y: 0.0},
		{X: float64(nx - 1), Y: 0.0},
	}
	hline, err := plotter.NewLine(hpts)
	if err != nil {
		return err
	}
	hline.Dashes = []vg.Length{
		vg.Points(6), // dash length
		vg.Points(4), // gap length
	}
	hline.Color = color.RGBA{R: 0, G: 0, B: 0, A: 255} // black
	p.Add(hline)

	return writePNG(p, filename, 1000, 600)
}

// writePNG renders the plot into an in-memory image at 96 dpi and writes it
// out.
func writePNG(p *plot.Plot, filename string, wPx, hPx float64) (err error) {
	const dpi = 96
	width := vg.Length(wPx) * vg.Inch / dpi
	height := vg.Length(hPx) * vg.Inch / dpi

	c := vgimg.New(width, height)
	dc := draw.New(c)
	p.Draw(dc)

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, c.Image())
}
