package data

import (
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"go.uber.org/multierr"
)

// Positional layout of an admissible score frame.
const (
	colPredictor = iota
	colAdmissible
	colAdmissibleIndex
	colRelevance
	colSafety
	colSafetyRaw
	scoreFrameColumns
)

func DecodeModel(r io.Reader) (*Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func LoadBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var b Bundle
	if err := json.NewDecoder(f).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

func WriteBundle(path string, b *Bundle) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// RequireOutput returns the model output or ErrMissingResult.
func (m *Model) RequireOutput() (*Output, error) {
	if m == nil || m.Output == nil {
		return nil, missing("model has no output")
	}
	return m.Output, nil
}

func (o *Output) ScoreKey(s Split) *KeyRef {
	switch s {
	case Validation:
		return o.AdmissibleScoreKeyValid
	case Holdout:
		return o.AdmissibleScoreKeyXval
	default:
		return o.AdmissibleScoreKey
	}
}

func (o *Output) AdmissibleFeaturesFor(s Split) []string {
	return pick(s, o.AdmissibleFeatures, o.AdmissibleFeaturesValid, o.AdmissibleFeaturesXval)
}

func (o *Output) AdmissibleRelevanceFor(s Split) []float64 {
	return pick(s, o.AdmissibleRelevance, o.AdmissibleRelevanceValid, o.AdmissibleRelevanceXval)
}

func (o *Output) AdmissibleCMIFor(s Split) []float64 {
	return pick(s, o.AdmissibleCMI, o.AdmissibleCMIValid, o.AdmissibleCMIXval)
}

func (o *Output) AdmissibleCMIRawFor(s Split) []float64 {
	return pick(s, o.AdmissibleCMIRaw, o.AdmissibleCMIRawValid, o.AdmissibleCMIRawXval)
}

func pick[T any](s Split, train, valid, xval T) T {
	switch s {
	case Validation:
		return valid
	case Holdout:
		return xval
	default:
		return train
	}
}

// ScoreFrameFromFrame converts a columnar admissible score frame into rows.
// The admissible flag is recomputed from the admissible index (column 2) and
// the server's admissible column (column 1) is not read. A live server can
// report a positive index for every predictor, in which case every row comes
// out admissible here even where column 1 says otherwise.
func ScoreFrameFromFrame(f *Frame, split Split) (*ScoreFrame, error) {
	if f == nil {
		return nil, missing("no admissible score frame for %s data", split)
	}
	if len(f.Columns) < scoreFrameColumns {
		return nil, mismatch("frame %s has %d columns, want %d", f.FrameID.Name, len(f.Columns), scoreFrameColumns)
	}
	names := f.Columns[colPredictor].StringData
	n := len(names)
	var errs error
	for _, c := range []int{colAdmissibleIndex, colRelevance, colSafety, colSafetyRaw} {
		if got := len(f.Columns[c].Data); got != n {
			errs = multierr.Append(errs, mismatch("column %q has %d rows, want %d", f.Columns[c].Label, got, n))
		}
	}
	if errs != nil {
		return nil, errs
	}
	sf := &ScoreFrame{
		Key:    f.FrameID.Name,
		Split:  split,
		XLabel: f.Columns[colRelevance].Label,
		YLabel: f.Columns[colSafety].Label,
		Rows:   make([]PredictorReport, n),
	}
	for i := range names {
		idx := f.Columns[colAdmissibleIndex].Data[i]
		sf.Rows[i] = PredictorReport{
			Name:             names[i],
			IsAdmissible:     idx > 0,
			AdmissibleIndex:  idx,
			Relevance:        f.Columns[colRelevance].Data[i],
			SafetyNormalized: f.Columns[colSafety].Data[i],
			SafetyRaw:        f.Columns[colSafetyRaw].Data[i],
		}
	}
	return sf, nil
}

// ScoreFrameColumns builds the frame the service would return for rows.
func ScoreFrameColumns(key string, rows []PredictorReport, fair bool) Frame {
	xl, yl := "total_information", "net_information"
	if fair {
		xl, yl = "relevance_index", "safety_index"
	}
	cols := []Column{
		{Label: "column", Type: "string"},
		{Label: "admissible", Type: "real"},
		{Label: "admissible_index", Type: "real"},
		{Label: xl, Type: "real"},
		{Label: yl, Type: "real"},
		{Label: "cmi_raw", Type: "real"},
	}
	for _, r := range rows {
		cols[colPredictor].StringData = append(cols[colPredictor].StringData, r.Name)
		adm := 0.0
		if r.AdmissibleIndex > 0 {
			adm = 1
		}
		cols[colAdmissible].Data = append(cols[colAdmissible].Data, adm)
		cols[colAdmissibleIndex].Data = append(cols[colAdmissibleIndex].Data, r.AdmissibleIndex)
		cols[colRelevance].Data = append(cols[colRelevance].Data, r.Relevance)
		cols[colSafety].Data = append(cols[colSafety].Data, r.SafetyNormalized)
		cols[colSafetyRaw].Data = append(cols[colSafetyRaw].Data, r.SafetyRaw)
	}
	return Frame{FrameID: KeyRef{Name: key, Type: "Key<Frame>"}, Columns: cols}
}
