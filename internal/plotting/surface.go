package plotting

import (
	"image/color"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

type Point struct{ X, Y float64 }

type Shape uint8

const (
	Circle Shape = iota
	Square
	Triangle
)

// Surface is the set of drawing primitives report plots are built from.
type Surface interface {
	Frame(title, xLabel, yLabel string, xMax, yMax float64, legend bool)
	Scatter(pts []Point, colors []color.Color, shape Shape, label string) error
	HLine(y, xMin, xMax float64, c color.Color) error
	VLine(x, yMin, yMax float64, c color.Color) error
	Fill(verts []Point, c color.Color) error
	Annotate(text string, at Point, c color.Color) error
	Finish(show bool) (*Figure, error)
}

// Figure is the handle to a finished plot.
type Figure struct {
	Plot   *plot.Plot
	Path   string
	Width  vg.Length
	Height vg.Length
}

func (f *Figure) WritePNG(w io.Writer) error {
	wt, err := f.Plot.WriterTo(f.Width, f.Height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Save writes the figure to path, creating the directory if needed.
func (f *Figure) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := f.Plot.Save(f.Width, f.Height, path); err != nil {
		return err
	}
	f.Path = path
	return nil
}

var (
	Black   = color.RGBA{A: 0xff}
	Gray    = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	Red     = color.RGBA{R: 0xff, A: 0xff}
	Blue    = color.RGBA{B: 0xff, A: 0xff}
	Magenta = color.RGBA{R: 0xff, B: 0xff, A: 0xff}
	Green   = color.RGBA{G: 0x80, A: 0xff}
)
