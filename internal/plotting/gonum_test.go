package plotting

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func drawSample(t *testing.T, g *Gonum) {
	t.Helper()
	g.Frame("Infogram", "total_information", "net_information", 1.05, 1.05, true)
	require.NoError(t, g.Fill([]Point{{0, 0}, {0, 1.1}, {0.1, 1.1}, {0.1, 0.1}, {1.1, 0.1}, {1.1, 0}}, color.NRGBA{R: 0xCC, G: 0x66, B: 0x3E, A: 26}))
	require.NoError(t, g.Scatter([]Point{{0.5, 0.5}, {0.05, 0.9}}, []color.Color{Black, Gray}, Circle, "training data"))
	require.NoError(t, g.Scatter([]Point{{0.3, 0.2}}, []color.Color{Black}, Triangle, "xval holdout data"))
	require.NoError(t, g.HLine(0.1, 0.1, 1.1, Red))
	require.NoError(t, g.VLine(0.1, 0.1, 1.1, Red))
	require.NoError(t, g.Annotate("amount", Point{0.5, 0.5}, Blue))
}

func TestGonum_HeadlessPNG(t *testing.T) {
	g := NewGonum(3, 3, filepath.Join(t.TempDir(), "never.png"))
	drawSample(t, g)

	fig, err := g.Finish(false)
	require.NoError(t, err)
	require.Empty(t, fig.Path)
	_, err = os.Stat(g.OutPath)
	require.True(t, os.IsNotExist(err))

	var buf bytes.Buffer
	require.NoError(t, fig.WritePNG(&buf))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
	require.Equal(t, "Infogram", fig.Plot.Title.Text)
	require.Equal(t, 1.05, fig.Plot.X.Max)
	require.Equal(t, 1.05, fig.Plot.Y.Max)
	require.Equal(t, 0.0, fig.Plot.X.Min)
	require.Equal(t, 0.0, fig.Plot.Y.Min)
}

func TestGonum_ShowSaves(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plots", "ig.png")
	g := NewGonum(3, 3, out)
	drawSample(t, g)

	fig, err := g.Finish(true)
	require.NoError(t, err)
	require.Equal(t, out, fig.Path)
	st, err := os.Stat(out)
	require.NoError(t, err)
	require.Positive(t, st.Size())

	_, err = g.Finish(true)
	require.Error(t, err)
}

func TestGonum_ScatterChecks(t *testing.T) {
	g := NewGonum(3, 3, "")
	g.Frame("", "", "", 1, 1, false)
	require.Error(t, g.Scatter([]Point{{0.1, 0.1}}, nil, Square, "valid"))
	require.NoError(t, g.Scatter(nil, nil, Square, "empty"))
}
