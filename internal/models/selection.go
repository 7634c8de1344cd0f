package models

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"modelreport/internal/data"
)

// ModelSelection resolves coefficients of a trained model selection run by
// predictor subset size. It never mutates the payload it wraps.
type ModelSelection struct {
	model    *data.Model
	out      *data.Output
	mode     data.SearchMode
	inline   bool
	maxK     int
	registry Registry
	log      *zap.Logger

	cache   bool
	mu      sync.Mutex
	fetched map[string]*data.Model
}

type Option func(*ModelSelection)

func WithLogger(l *zap.Logger) Option {
	return func(ms *ModelSelection) {
		if l != nil {
			ms.log = l
		}
	}
}

// WithModelCache keeps fetched sub-models for the lifetime of the ModelSelection.
// Without it every call goes back to the registry.
func WithModelCache() Option {
	return func(ms *ModelSelection) { ms.cache = true }
}

func NewModelSelection(m *data.Model, reg Registry, opts ...Option) (*ModelSelection, error) {
	out, err := m.RequireOutput()
	if err != nil {
		return nil, err
	}
	ms := &ModelSelection{
		model:    m,
		out:      out,
		mode:     m.Parameters.Mode,
		registry: reg,
		log:      zap.NewNop(),
		fetched:  map[string]*data.Model{},
	}
	for _, opt := range opts {
		opt(ms)
	}
	ms.log = ms.log.With(zap.String("model", m.ModelID.Name), zap.String("mode", string(ms.mode)))
	if !ms.mode.Valid() {
		return nil, fmt.Errorf("%w: %q", data.ErrUnknownMode, ms.mode)
	}
	ms.inline = ms.mode == data.ModeMaxRSweep && !m.Parameters.BuildGLMModel
	if ms.inline {
		err = ms.validateInline()
	} else {
		err = ms.validateModels()
	}
	if err != nil {
		return nil, err
	}
	return ms, nil
}

func (ms *ModelSelection) validateInline() error {
	names := ms.out.CoefficientNames
	if names == nil {
		return fmt.Errorf("%w: maxrsweep model has no coefficient_names", data.ErrMissingResult)
	}
	var errs error
	for _, col := range []struct {
		field string
		rows  [][]float64
	}{
		{"coefficient_values", ms.out.CoefficientValues},
		{"coefficient_values_normalized", ms.out.CoefficientValuesNormalized},
	} {
		if len(col.rows) != len(names) {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s has %d models, coefficient_names has %d", data.ErrStructureMismatch, col.field, len(col.rows), len(names)))
			continue
		}
		for i, row := range col.rows {
			if len(row) != len(names[i]) {
				errs = multierr.Append(errs, fmt.Errorf("%w: %s[%d] has %d values for %d names", data.ErrStructureMismatch, col.field, i, len(row), len(names[i])))
			}
		}
	}
	ms.maxK = len(names)
	return errs
}

func (ms *ModelSelection) validateModels() error {
	var errs error
	if ms.registry == nil {
		errs = multierr.Append(errs, errors.New("model selection needs a registry to fetch sub-models"))
	}
	ids := ms.out.BestModelIDs
	if len(ids) == 0 {
		return multierr.Append(errs, fmt.Errorf("%w: model has no best_model_ids", data.ErrMissingResult))
	}
	subsets := ms.out.BestPredictorsSubset
	if len(subsets) < len(ids) {
		return multierr.Append(errs, fmt.Errorf("%w: best_predictors_subset has %d entries for %d models", data.ErrStructureMismatch, len(subsets), len(ids)))
	}
	ms.maxK = len(subsets[len(ids)-1])
	if ms.maxK < len(ids) {
		errs = multierr.Append(errs, fmt.Errorf("%w: %d models stored but the largest subset has %d predictors", data.ErrStructureMismatch, len(ids), ms.maxK))
	}
	return errs
}

func (ms *ModelSelection) Mode() data.SearchMode { return ms.mode }

// MaxPredictorSize is the largest subset size that can be requested.
func (ms *ModelSelection) MaxPredictorSize() int { return ms.maxK }

func (ms *ModelSelection) ModelCount() int {
	if ms.inline {
		return len(ms.out.CoefficientNames)
	}
	return len(ms.out.BestModelIDs)
}

// Coefficients returns the coefficients of the model built with size predictors,
// standardized when normalized is set. The result is nil when that model has no
// coefficients table.
func (ms *ModelSelection) Coefficients(ctx context.Context, size int, normalized bool) (*Coefficients, error) {
	idx, err := ResolveIndex(ms.mode, size, ms.maxK, ms.ModelCount())
	if err != nil {
		return nil, err
	}
	if ms.inline {
		values := ms.out.CoefficientValues[idx]
		if normalized {
			values = ms.out.CoefficientValuesNormalized[idx]
		}
		return &Coefficients{
			Names:  append([]string(nil), ms.out.CoefficientNames[idx]...),
			Values: append([]float64(nil), values...),
		}, nil
	}
	id := ms.out.BestModelIDs[idx].Name
	sub, err := ms.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return tableCoefficients(sub, normalized)
}

// AllCoefficients returns one entry per subset size; entry k-1 holds the model with k predictors.
// Sizes without a stored model are nil entries.
func (ms *ModelSelection) AllCoefficients(ctx context.Context, normalized bool) ([]*Coefficients, error) {
	all := make([]*Coefficients, ms.maxK)
	for k := 1; k <= ms.maxK; k++ {
		c, err := ms.Coefficients(ctx, k, normalized)
		switch {
		case errors.Is(err, data.ErrInvalidSubsetSize):
			ms.log.Debug("no model for subset size", zap.Int("predictor_size", k))
		case err != nil:
			return nil, err
		default:
			all[k-1] = c
		}
	}
	return all, nil
}

func (ms *ModelSelection) fetch(ctx context.Context, id string) (*data.Model, error) {
	if ms.cache {
		ms.mu.Lock()
		m, ok := ms.fetched[id]
		ms.mu.Unlock()
		if ok {
			return m, nil
		}
	}
	m, err := ms.registry.GetModel(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch model %s: %w", id, err)
	}
	ms.log.Debug("fetched sub-model", zap.String("sub_model", id))
	if ms.cache {
		ms.mu.Lock()
		ms.fetched[id] = m
		ms.mu.Unlock()
	}
	return m, nil
}

func tableCoefficients(m *data.Model, normalized bool) (*Coefficients, error) {
	if m == nil || m.Output == nil || m.Output.CoefficientsTable == nil {
		return nil, nil
	}
	tbl := m.Output.CoefficientsTable
	values := tbl.Coefficients
	column := "coefficients"
	if normalized {
		values = tbl.StandardizedCoefficients
		column = "standardized_coefficients"
	}
	if len(values) != len(tbl.Names) {
		return nil, fmt.Errorf("%w: model %s has %d %s for %d names", data.ErrStructureMismatch, m.ModelID.Name, len(values), column, len(tbl.Names))
	}
	return &Coefficients{
		Names:  append([]string(nil), tbl.Names...),
		Values: append([]float64(nil), values...),
	}, nil
}

func (ms *ModelSelection) BestR2Values() []float64 { return ms.out.BestR2Values }

// PredictorsAddedPerStep is not recorded by backward elimination; that mode gets an advisory instead.
func (ms *ModelSelection) PredictorsAddedPerStep() ([][]string, *data.Advisory) {
	if ms.mode == data.ModeBackward {
		ms.log.Warn("predictors added per step requested for backward mode")
		return nil, &data.Advisory{
			Kind:    data.NotApplicable,
			Subject: "predictors_added_per_step",
			Message: "backward mode does not have list predictors_added_per_step",
		}
	}
	return ms.out.PredictorsAddedPerStep, nil
}

func (ms *ModelSelection) PredictorsRemovedPerStep() [][]string { return ms.out.PredictorsRemovedPerStep }

// BestModelPredictors lists the best predictor subset for each stored model.
func (ms *ModelSelection) BestModelPredictors() [][]string { return ms.out.BestPredictorsSubset }
