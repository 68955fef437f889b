package modules

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotSpec is everything needed to draw one function.
type PlotSpec struct {
	Title     string
	Function  string
	PlotType  string
	XRange    [2]float64
	YRange    [2]float64
	HasYRange bool
	Points    [][2]float64
}

// Renderer writes a plot image to path.
type Renderer interface {
	Render(spec PlotSpec, path string) error
}

// GonumRenderer draws every plot type as a 2D line through the sampled
// points; 3d, parametric and polar data arrive already projected to (x, y).
type GonumRenderer struct {
	Width, Height vg.Length
}

func (r GonumRenderer) Render(spec PlotSpec, path string) error {
	w, h := r.Width, r.Height
	if w == 0 || h == 0 {
		w, h = 8*vg.Inch, 6*vg.Inch
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	if len(spec.Points) > 0 {
		xys := make(plotter.XYs, len(spec.Points))
		for i, pt := range spec.Points {
			xys[i].X, xys[i].Y = pt[0], pt[1]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(spec.Function, line)
		p.Legend.Top = true
	}

	p.X.Min, p.X.Max = spec.XRange[0], spec.XRange[1]
	if spec.HasYRange && spec.YRange[0] < spec.YRange[1] {
		p.Y.Min, p.Y.Max = spec.YRange[0], spec.YRange[1]
	}
	return p.Save(w, h, path)
}
