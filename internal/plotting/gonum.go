package plotting

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Gonum draws onto a gonum.org/v1/plot canvas.
type Gonum struct {
	Width   vg.Length
	Height  vg.Length
	OutPath string

	p      *plot.Plot
	legend     bool
	xMax, yMax float64
	done       bool
}

// NewGonum returns a surface of the given size in inches. OutPath is where Finish(true) saves.
func NewGonum(width, height float64, outPath string) *Gonum {
	return &Gonum{
		Width:   vg.Length(width) * vg.Inch,
		Height:  vg.Length(height) * vg.Inch,
		OutPath: outPath,
		p:       plot.New(),
	}
}

func (g *Gonum) Frame(title, xLabel, yLabel string, xMax, yMax float64, legend bool) {
	g.p.Title.Text = title
	g.p.X.Label.Text = xLabel
	g.p.Y.Label.Text = yLabel
	g.xMax, g.yMax = xMax, yMax
	g.p.Add(plotter.NewGrid())
	g.legend = legend
	g.p.Legend.Top = true
	g.p.Legend.Left = true
}

func toXYs(pts []Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i].X, xys[i].Y = pt.X, pt.Y
	}
	return xys
}

func glyph(s Shape) draw.GlyphDrawer {
	switch s {
	case Square:
		return draw.SquareGlyph{}
	case Triangle:
		return draw.TriangleGlyph{}
	default:
		return draw.CircleGlyph{}
	}
}

func (g *Gonum) Scatter(pts []Point, colors []color.Color, shape Shape, label string) error {
	if len(colors) != len(pts) {
		return fmt.Errorf("scatter %q: %d colors for %d points", label, len(colors), len(pts))
	}
	if len(pts) == 0 {
		return nil
	}
	s, err := plotter.NewScatter(toXYs(pts))
	if err != nil {
		return err
	}
	s.GlyphStyle = draw.GlyphStyle{Color: Black, Radius: vg.Points(3), Shape: glyph(shape)}
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		gs := s.GlyphStyle
		gs.Color = colors[i]
		return gs
	}
	g.p.Add(s)
	if g.legend && label != "" {
		g.p.Legend.Add(label, s)
	}
	return nil
}

func (g *Gonum) dashed(pts []Point, c color.Color) error {
	l, err := plotter.NewLine(toXYs(pts))
	if err != nil {
		return err
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(1)
	l.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
	g.p.Add(l)
	return nil
}

func (g *Gonum) HLine(y, xMin, xMax float64, c color.Color) error {
	return g.dashed([]Point{{xMin, y}, {xMax, y}}, c)
}

func (g *Gonum) VLine(x, yMin, yMax float64, c color.Color) error {
	return g.dashed([]Point{{x, yMin}, {x, yMax}}, c)
}

func (g *Gonum) Fill(verts []Point, c color.Color) error {
	poly, err := plotter.NewPolygon(toXYs(verts))
	if err != nil {
		return err
	}
	poly.Color = c
	poly.LineStyle.Width = 0
	g.p.Add(poly)
	return nil
}

func (g *Gonum) Annotate(txt string, at Point, c color.Color) error {
	l, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: at.X, Y: at.Y}},
		Labels: []string{txt},
	})
	if err != nil {
		return err
	}
	l.Offset = vg.Point{Y: -vg.Points(10)}
	for i := range l.TextStyle {
		l.TextStyle[i].Color = c
		l.TextStyle[i].XAlign = text.XCenter
		l.TextStyle[i].YAlign = text.YTop
	}
	g.p.Add(l)
	return nil
}

// Finish hands over the plot. With show set and an OutPath configured the
// figure is written to disk; otherwise it stays in memory.
func (g *Gonum) Finish(show bool) (*Figure, error) {
	if g.done {
		return nil, fmt.Errorf("surface already finished")
	}
	g.done = true
	// Add widens the axes to fit every plotter, so limits go on last.
	if g.xMax > 0 {
		g.p.X.Min, g.p.X.Max = 0, g.xMax
	}
	if g.yMax > 0 {
		g.p.Y.Min, g.p.Y.Max = 0, g.yMax
	}
	fig := &Figure{Plot: g.p, Width: g.Width, Height: g.Height}
	if show && g.OutPath != "" {
		if err := fig.Save(g.OutPath); err != nil {
			return nil, err
		}
	}
	return fig, nil
}
