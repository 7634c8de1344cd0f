package features

import (
	"fmt"

	"modelreport/internal/data"
	"modelreport/internal/plotting"
)

// Plot extents. The admissible region is drawn against these regardless of the data range.
const (
	XMax = 1.1
	YMax = 1.1
)

// ClassifiedReport is one split's score frame with its admissibility mask.
type ClassifiedReport struct {
	Split      data.Split
	XLabel     string
	YLabel     string
	Thresholds Thresholds
	Rows       []data.PredictorReport
	Admissible []bool
}

// Classify partitions the predictors of a score frame. A predictor is admissible
// exactly when its admissible index is positive; any IsAdmissible flag on the
// input rows is overwritten. The report holds its own copy of the rows.
func Classify(frame *data.ScoreFrame, th Thresholds) (*ClassifiedReport, error) {
	if frame == nil {
		return nil, fmt.Errorf("%w: no admissible score frame", data.ErrMissingResult)
	}
	r := &ClassifiedReport{
		Split:      frame.Split,
		XLabel:     frame.XLabel,
		YLabel:     frame.YLabel,
		Thresholds: th,
		Rows:       make([]data.PredictorReport, len(frame.Rows)),
		Admissible: make([]bool, len(frame.Rows)),
	}
	for i, row := range frame.Rows {
		row.IsAdmissible = row.AdmissibleIndex > 0
		r.Rows[i] = row
		r.Admissible[i] = row.IsAdmissible
	}
	return r, nil
}

func (r *ClassifiedReport) AdmissibleNames() []string {
	var out []string
	for i, ok := range r.Admissible {
		if ok {
			out = append(out, r.Rows[i].Name)
		}
	}
	return out
}

func (r *ClassifiedReport) InadmissibleNames() []string {
	var out []string
	for i, ok := range r.Admissible {
		if !ok {
			out = append(out, r.Rows[i].Name)
		}
	}
	return out
}

// Points returns (relevance, normalized safety) for every predictor in row order.
func (r *ClassifiedReport) Points() []plotting.Point {
	pts := make([]plotting.Point, len(r.Rows))
	for i, row := range r.Rows {
		pts[i] = plotting.Point{X: row.Relevance, Y: row.SafetyNormalized}
	}
	return pts
}

// AdmissibleRegion is the shaded polygon of the infogram.
func AdmissibleRegion(th Thresholds) []plotting.Point {
	return []plotting.Point{
		{X: 0, Y: 0},
		{X: 0, Y: YMax},
		{X: th.X, Y: YMax},
		{X: th.X, Y: th.Y},
		{X: XMax, Y: th.Y},
		{X: XMax, Y: 0},
	}
}

type Segment struct{ From, To plotting.Point }

// ThresholdLines returns the horizontal line at Y over [X, XMax] and the vertical line at X over [Y, YMax].
func ThresholdLines(th Thresholds) (h, v Segment) {
	h = Segment{From: plotting.Point{X: th.X, Y: th.Y}, To: plotting.Point{X: XMax, Y: th.Y}}
	v = Segment{From: plotting.Point{X: th.X, Y: th.Y}, To: plotting.Point{X: th.X, Y: YMax}}
	return h, v
}
