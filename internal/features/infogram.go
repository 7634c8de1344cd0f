package features

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"go.uber.org/zap"

	"modelreport/internal/data"
	"modelreport/internal/plotting"
)

// FrameSource fetches columnar frames by key.
type FrameSource interface {
	GetFrame(ctx context.Context, key string) (*data.Frame, error)
}

// Infogram wraps a trained infogram model.
type Infogram struct {
	model  *data.Model
	out    *data.Output
	frames FrameSource
	log    *zap.Logger
}

func NewInfogram(m *data.Model, frames FrameSource, log *zap.Logger) (*Infogram, error) {
	out, err := m.RequireOutput()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Infogram{model: m, out: out, frames: frames, log: log.With(zap.String("model", m.ModelID.Name))}, nil
}

func (ig *Infogram) ID() string { return ig.model.ModelID.Name }

func (ig *Infogram) Thresholds() Thresholds { return ThresholdsFor(ig.model.Parameters) }

// AdmissibleFeatures lists the predictors admitted on the given split.
func (ig *Infogram) AdmissibleFeatures(s data.Split) ([]string, error) {
	v := ig.out.AdmissibleFeaturesFor(s)
	if v == nil {
		return nil, fmt.Errorf("%w: model %s doesn't have any admissible features for %s data", data.ErrMissingResult, ig.ID(), s)
	}
	return v, nil
}

func (ig *Infogram) AdmissibleRelevance(s data.Split) ([]float64, error) {
	return ig.require(ig.out.AdmissibleRelevanceFor(s), "admissible_relevance", s)
}

// AdmissibleCMI returns the normalized CMI of the admissible predictors.
func (ig *Infogram) AdmissibleCMI(s data.Split) ([]float64, error) {
	return ig.require(ig.out.AdmissibleCMIFor(s), "admissible_cmi", s)
}

func (ig *Infogram) AdmissibleCMIRaw(s data.Split) ([]float64, error) {
	return ig.require(ig.out.AdmissibleCMIRawFor(s), "admissible_cmi_raw", s)
}

func (ig *Infogram) require(v []float64, field string, s data.Split) ([]float64, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: model %s has no %s for %s data", data.ErrMissingResult, ig.ID(), field, s)
	}
	return v, nil
}

// AllPredictorRelevance returns the relevance of every predictor, admissible or not.
func (ig *Infogram) AllPredictorRelevance() ([]string, []float64, error) {
	return ig.allPredictors(ig.out.Relevance, "relevance")
}

func (ig *Infogram) AllPredictorCMI() ([]string, []float64, error) {
	return ig.allPredictors(ig.out.CMI, "cmi")
}

func (ig *Infogram) AllPredictorCMIRaw() ([]string, []float64, error) {
	return ig.allPredictors(ig.out.CMIRaw, "cmi_raw")
}

func (ig *Infogram) allPredictors(v []float64, field string) ([]string, []float64, error) {
	names := ig.out.AllPredictorNames
	if names == nil {
		return nil, nil, fmt.Errorf("%w: model %s has no all_predictor_names", data.ErrMissingResult, ig.ID())
	}
	if len(v) != len(names) {
		return nil, nil, fmt.Errorf("%w: %s has %d values for %d predictors", data.ErrStructureMismatch, field, len(v), len(names))
	}
	return names, v, nil
}

// ScoreFrame fetches the admissible score frame of a split.
func (ig *Infogram) ScoreFrame(ctx context.Context, s data.Split) (*data.ScoreFrame, error) {
	key := ig.out.ScoreKey(s)
	if key == nil || key.Name == "" {
		return nil, fmt.Errorf("%w: cannot locate the frame containing the infogram data from %s dataset", data.ErrMissingResult, s)
	}
	if ig.frames == nil {
		return nil, errors.New("infogram has no frame source")
	}
	f, err := ig.frames.GetFrame(ctx, key.Name)
	if err != nil {
		return nil, fmt.Errorf("fetch frame %s: %w", key.Name, err)
	}
	return data.ScoreFrameFromFrame(f, s)
}

// Report classifies one split against the model's thresholds.
func (ig *Infogram) Report(ctx context.Context, s data.Split) (*ClassifiedReport, error) {
	sf, err := ig.ScoreFrame(ctx, s)
	if err != nil {
		return nil, err
	}
	return Classify(sf, ig.Thresholds())
}

type PlotOptions struct {
	Train  bool
	Valid  bool
	Xval   bool
	Title  string
	Legend bool
	// Show renders the figure to its destination; false keeps it headless.
	Show bool
}

func (o PlotOptions) splits() []data.Split {
	var out []data.Split
	if o.Train {
		out = append(out, data.Training)
	}
	if o.Valid {
		out = append(out, data.Validation)
	}
	if o.Xval {
		out = append(out, data.Holdout)
	}
	return out
}

// Plot fetches and classifies the requested splits, then draws the infogram.
func (ig *Infogram) Plot(ctx context.Context, surface plotting.Surface, opts PlotOptions) (*plotting.Figure, error) {
	splits := opts.splits()
	if len(splits) == 0 {
		return nil, errors.New("no dataset selected for the infogram plot")
	}
	reports := make([]*ClassifiedReport, 0, len(splits))
	for _, s := range splits {
		r, err := ig.Report(ctx, s)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	fig, err := Draw(surface, reports, ig.Thresholds(), opts)
	if err != nil {
		return nil, err
	}
	ig.log.Info("infogram plotted", zap.Int("splits", len(reports)), zap.Bool("show", opts.Show))
	return fig, nil
}

type splitStyle struct {
	shape    plotting.Shape
	label    string
	annotate color.Color
}

var splitStyles = map[data.Split]splitStyle{
	data.Training:   {plotting.Circle, "training data", plotting.Blue},
	data.Validation: {plotting.Square, "validation data", plotting.Magenta},
	data.Holdout:    {plotting.Triangle, "xval holdout data", plotting.Green},
}

// AnnotationColor is the label color of admissible points on a split.
func AnnotationColor(s data.Split) color.Color { return splitStyles[s].annotate }

var regionColor = color.NRGBA{R: 0xCC, G: 0x66, B: 0x3E, A: 26}

// Draw renders classified reports onto a surface. Points are black when
// admissible and gray otherwise; only admissible points are annotated.
func Draw(surface plotting.Surface, reports []*ClassifiedReport, th Thresholds, opts PlotOptions) (*plotting.Figure, error) {
	if len(reports) == 0 {
		return nil, errors.New("nothing to draw")
	}
	title := opts.Title
	if title == "" {
		title = "Infogram"
	}
	surface.Frame(title, reports[0].XLabel, reports[0].YLabel, 1.05, 1.05, opts.Legend)
	if err := surface.Fill(AdmissibleRegion(th), regionColor); err != nil {
		return nil, err
	}
	for _, r := range reports {
		colors := make([]color.Color, len(r.Rows))
		for i, ok := range r.Admissible {
			colors[i] = plotting.Gray
			if ok {
				colors[i] = plotting.Black
			}
		}
		st := splitStyles[r.Split]
		if err := surface.Scatter(r.Points(), colors, st.shape, st.label); err != nil {
			return nil, err
		}
	}
	h, v := ThresholdLines(th)
	if err := surface.HLine(h.From.Y, h.From.X, h.To.X, plotting.Red); err != nil {
		return nil, err
	}
	if err := surface.VLine(v.From.X, v.From.Y, v.To.Y, plotting.Red); err != nil {
		return nil, err
	}
	for _, r := range reports {
		pts := r.Points()
		c := AnnotationColor(r.Split)
		for i, ok := range r.Admissible {
			if !ok {
				continue
			}
			if err := surface.Annotate(r.Rows[i].Name, pts[i], c); err != nil {
				return nil, err
			}
		}
	}
	return surface.Finish(opts.Show)
}
