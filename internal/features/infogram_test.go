package features

import (
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"modelreport/internal/data"
	"modelreport/internal/plotting"
)

type frameMap map[string]*data.Frame

func (m frameMap) GetFrame(_ context.Context, key string) (*data.Frame, error) {
	f, ok := m[key]
	if !ok {
		return nil, errors.New("no frame " + key)
	}
	return f, nil
}

type scatterCall struct {
	pts    []plotting.Point
	colors []color.Color
	shape  plotting.Shape
	label  string
}

type annotation struct {
	text  string
	at    plotting.Point
	color color.Color
}

// recorder captures drawing calls in order.
type recorder struct {
	calls       []string
	title       string
	xMax, yMax  float64
	legend      bool
	fill        []plotting.Point
	fillColor   color.Color
	scatters    []scatterCall
	hLines      [][3]float64
	vLines      [][3]float64
	annotations []annotation
	shown       bool
	finished    int
}

func (r *recorder) Frame(title, _, _ string, xMax, yMax float64, legend bool) {
	r.calls = append(r.calls, "frame")
	r.title, r.xMax, r.yMax, r.legend = title, xMax, yMax, legend
}

func (r *recorder) Scatter(pts []plotting.Point, colors []color.Color, shape plotting.Shape, label string) error {
	r.calls = append(r.calls, "scatter")
	r.scatters = append(r.scatters, scatterCall{pts, colors, shape, label})
	return nil
}

func (r *recorder) HLine(y, xMin, xMax float64, _ color.Color) error {
	r.calls = append(r.calls, "hline")
	r.hLines = append(r.hLines, [3]float64{y, xMin, xMax})
	return nil
}

func (r *recorder) VLine(x, yMin, yMax float64, _ color.Color) error {
	r.calls = append(r.calls, "vline")
	r.vLines = append(r.vLines, [3]float64{x, yMin, yMax})
	return nil
}

func (r *recorder) Fill(verts []plotting.Point, c color.Color) error {
	r.calls = append(r.calls, "fill")
	r.fill, r.fillColor = verts, c
	return nil
}

func (r *recorder) Annotate(text string, at plotting.Point, c color.Color) error {
	r.calls = append(r.calls, "annotate")
	r.annotations = append(r.annotations, annotation{text, at, c})
	return nil
}

func (r *recorder) Finish(show bool) (*plotting.Figure, error) {
	r.calls = append(r.calls, "finish")
	r.finished++
	r.shown = show
	return &plotting.Figure{}, nil
}

func testInfogram(t *testing.T, protected []string) (*Infogram, frameMap) {
	t.Helper()
	frames := frameMap{}
	out := &data.Output{
		AllPredictorNames:      []string{"amount", "region", "tenure"},
		Relevance:              []float64{0.7, 0.02, 0.25},
		CMI:                    []float64{0.5, 0.9, 0.2},
		CMIRaw:                 []float64{0.4, 0.8, 0.1},
		AdmissibleFeatures:     []string{"amount", "tenure"},
		AdmissibleRelevance:    []float64{0.7, 0.25},
		AdmissibleCMI:          []float64{0.5, 0.2},
		AdmissibleCMIRaw:       []float64{0.4, 0.1},
		AdmissibleFeaturesXval: []string{"amount"},
	}
	rows := map[data.Split][]data.PredictorReport{
		data.Training: {
			{Name: "amount", AdmissibleIndex: 0.8, Relevance: 0.7, SafetyNormalized: 0.5},
			{Name: "region", AdmissibleIndex: 0, Relevance: 0.02, SafetyNormalized: 0.9},
			{Name: "tenure", AdmissibleIndex: 0.3, Relevance: 0.25, SafetyNormalized: 0.2},
		},
		data.Validation: {
			{Name: "amount", AdmissibleIndex: 0, Relevance: 0.05, SafetyNormalized: 0.5},
			{Name: "region", AdmissibleIndex: 0.4, Relevance: 0.3, SafetyNormalized: 0.3},
		},
		data.Holdout: {
			{Name: "amount", AdmissibleIndex: 0.6, Relevance: 0.6, SafetyNormalized: 0.4},
		},
	}
	for s, r := range rows {
		key := &data.KeyRef{Name: "score_" + s.String()}
		f := data.ScoreFrameColumns(key.Name, r, len(protected) > 0)
		frames[key.Name] = &f
		switch s {
		case data.Training:
			out.AdmissibleScoreKey = key
		case data.Validation:
			out.AdmissibleScoreKeyValid = key
		case data.Holdout:
			out.AdmissibleScoreKeyXval = key
		}
	}
	m := &data.Model{
		ModelID: data.KeyRef{Name: "ig"},
		Parameters: data.Parameters{
			ProtectedColumns:          protected,
			TotalInformationThreshold: 0.2,
			NetInformationThreshold:   data.Unset,
			RelevanceIndexThreshold:   0.3,
			SafetyIndexThreshold:      0.15,
		},
		Output: out,
	}
	ig, err := NewInfogram(m, frames, nil)
	require.NoError(t, err)
	return ig, frames
}

func TestInfogram_Accessors(t *testing.T) {
	ig, _ := testInfogram(t, nil)
	require.Equal(t, "ig", ig.ID())
	require.Equal(t, Thresholds{X: 0.2, Y: 0.1}, ig.Thresholds())

	feats, err := ig.AdmissibleFeatures(data.Training)
	require.NoError(t, err)
	require.Equal(t, []string{"amount", "tenure"}, feats)

	feats, err = ig.AdmissibleFeatures(data.Holdout)
	require.NoError(t, err)
	require.Equal(t, []string{"amount"}, feats)

	_, err = ig.AdmissibleFeatures(data.Validation)
	require.ErrorIs(t, err, data.ErrMissingResult)
	require.Contains(t, err.Error(), "validation")

	raw, err := ig.AdmissibleCMIRaw(data.Training)
	require.NoError(t, err)
	require.Equal(t, []float64{0.4, 0.1}, raw)
	_, err = ig.AdmissibleRelevance(data.Holdout)
	require.ErrorIs(t, err, data.ErrMissingResult)

	names, rel, err := ig.AllPredictorRelevance()
	require.NoError(t, err)
	require.Equal(t, []string{"amount", "region", "tenure"}, names)
	require.Equal(t, []float64{0.7, 0.02, 0.25}, rel)

	_, cmi, err := ig.AllPredictorCMI()
	require.NoError(t, err)
	require.Len(t, cmi, 3)
}

func TestInfogram_AllPredictorsShape(t *testing.T) {
	ig, _ := testInfogram(t, nil)
	ig.out.CMIRaw = ig.out.CMIRaw[:2]
	_, _, err := ig.AllPredictorCMIRaw()
	require.ErrorIs(t, err, data.ErrStructureMismatch)

	ig.out.AllPredictorNames = nil
	_, _, err = ig.AllPredictorRelevance()
	require.ErrorIs(t, err, data.ErrMissingResult)
}

func TestInfogram_Report(t *testing.T) {
	ig, _ := testInfogram(t, []string{"age"})
	r, err := ig.Report(context.Background(), data.Validation)
	require.NoError(t, err)
	require.Equal(t, data.Validation, r.Split)
	require.Equal(t, "relevance_index", r.XLabel)
	require.Equal(t, Thresholds{X: 0.3, Y: 0.15, Fair: true}, r.Thresholds)
	require.Equal(t, []string{"region"}, r.AdmissibleNames())

	t.Run("missing frame key", func(t *testing.T) {
		ig.out.AdmissibleScoreKeyXval = nil
		_, err := ig.Report(context.Background(), data.Holdout)
		require.ErrorIs(t, err, data.ErrMissingResult)
	})

	t.Run("frame source failure", func(t *testing.T) {
		ig.out.AdmissibleScoreKeyXval = &data.KeyRef{Name: "gone"}
		_, err := ig.Report(context.Background(), data.Holdout)
		require.Error(t, err)
		require.Contains(t, err.Error(), "gone")
	})
}

func TestInfogram_Plot(t *testing.T) {
	ig, _ := testInfogram(t, nil)
	rec := &recorder{}
	fig, err := ig.Plot(context.Background(), rec, PlotOptions{Train: true, Valid: true, Xval: true, Legend: true, Show: true})
	require.NoError(t, err)
	require.NotNil(t, fig)

	require.Equal(t, "Infogram", rec.title)
	require.Equal(t, 1.05, rec.xMax)
	require.Equal(t, 1.05, rec.yMax)
	require.True(t, rec.legend)
	require.True(t, rec.shown)
	require.Equal(t, 1, rec.finished)
	require.Equal(t, "frame", rec.calls[0])
	require.Equal(t, "fill", rec.calls[1])
	require.Equal(t, "finish", rec.calls[len(rec.calls)-1])

	t.Run("region spans the origin and the plot corner", func(t *testing.T) {
		require.Contains(t, rec.fill, plotting.Point{X: 0, Y: 0})
		require.Contains(t, rec.fill, plotting.Point{X: XMax, Y: 0})
		require.Contains(t, rec.fill, plotting.Point{X: 0, Y: YMax})
		require.Contains(t, rec.fill, plotting.Point{X: 0.2, Y: 0.1})
	})

	t.Run("one scatter per split", func(t *testing.T) {
		require.Len(t, rec.scatters, 3)
		require.Equal(t, plotting.Circle, rec.scatters[0].shape)
		require.Equal(t, plotting.Square, rec.scatters[1].shape)
		require.Equal(t, plotting.Triangle, rec.scatters[2].shape)
		require.Equal(t, []color.Color{plotting.Black, plotting.Gray, plotting.Black}, rec.scatters[0].colors)
		require.Equal(t, []color.Color{plotting.Gray, plotting.Black}, rec.scatters[1].colors)
	})

	t.Run("threshold lines", func(t *testing.T) {
		require.Equal(t, [][3]float64{{0.1, 0.2, XMax}}, rec.hLines)
		require.Equal(t, [][3]float64{{0.2, 0.1, YMax}}, rec.vLines)
	})

	t.Run("only admissible points are annotated", func(t *testing.T) {
		var texts []string
		for _, a := range rec.annotations {
			texts = append(texts, a.text)
		}
		require.Equal(t, []string{"amount", "tenure", "region", "amount"}, texts)
	})

	t.Run("annotation colors differ per split", func(t *testing.T) {
		require.Equal(t, AnnotationColor(data.Training), rec.annotations[0].color)
		require.Equal(t, AnnotationColor(data.Validation), rec.annotations[2].color)
		require.Equal(t, AnnotationColor(data.Holdout), rec.annotations[3].color)
		require.NotEqual(t, rec.annotations[0].color, rec.annotations[2].color)
		require.NotEqual(t, rec.annotations[2].color, rec.annotations[3].color)
		require.NotEqual(t, rec.annotations[0].color, rec.annotations[3].color)
	})
}

func TestInfogram_PlotHeadless(t *testing.T) {
	ig, _ := testInfogram(t, nil)
	rec := &recorder{}
	_, err := ig.Plot(context.Background(), rec, PlotOptions{Valid: true, Title: "Churn"})
	require.NoError(t, err)
	require.Equal(t, "Churn", rec.title)
	require.False(t, rec.shown)
	require.Len(t, rec.scatters, 1)
}

func TestInfogram_PlotErrors(t *testing.T) {
	ig, frames := testInfogram(t, nil)

	_, err := ig.Plot(context.Background(), &recorder{}, PlotOptions{})
	require.Error(t, err)

	delete(frames, "score_"+data.Holdout.String())
	rec := &recorder{}
	_, err = ig.Plot(context.Background(), rec, PlotOptions{Train: true, Xval: true})
	require.Error(t, err)
	require.Empty(t, rec.calls)

	_, err = Draw(&recorder{}, nil, Thresholds{}, PlotOptions{})
	require.Error(t, err)
}

func TestNewInfogram_NoOutput(t *testing.T) {
	_, err := NewInfogram(&data.Model{}, frameMap{}, nil)
	require.ErrorIs(t, err, data.ErrMissingResult)
}

func TestDraw_GonumAxisLimits(t *testing.T) {
	ig, _ := testInfogram(t, nil)
	r, err := ig.Report(context.Background(), data.Training)
	require.NoError(t, err)

	fig, err := Draw(plotting.NewGonum(4, 4, ""), []*ClassifiedReport{r}, ig.Thresholds(), PlotOptions{})
	require.NoError(t, err)
	// the region and threshold lines reach 1.1 but the axes stop at 1.05
	require.Equal(t, 0.0, fig.Plot.X.Min)
	require.Equal(t, 1.05, fig.Plot.X.Max)
	require.Equal(t, 0.0, fig.Plot.Y.Min)
	require.Equal(t, 1.05, fig.Plot.Y.Max)
}
