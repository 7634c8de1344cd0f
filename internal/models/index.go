package models

import (
	"fmt"

	"modelreport/internal/data"
)

// indexRule maps a predictor subset size to a position in the stored model list.
type indexRule func(size, maxK, count int) int

func ascendingIndex(size, _, _ int) int { return size - 1 }

// backwardIndex counts back from the last stored model, which holds maxK predictors.
func backwardIndex(size, maxK, count int) int {
	offset := maxK - size
	return count - 1 - offset
}

var indexRules = map[data.SearchMode]indexRule{
	data.ModeForward:    ascendingIndex,
	data.ModeAllSubsets: ascendingIndex,
	data.ModeMaxR:       ascendingIndex,
	data.ModeMaxRSweep:  ascendingIndex,
	data.ModeBackward:   backwardIndex,
}

func checkSize(size, maxK int) error {
	if size > maxK {
		return fmt.Errorf("%w: predictor_size %d cannot exceed the total number of predictors used (%d)", data.ErrInvalidSubsetSize, size, maxK)
	}
	if size <= 0 {
		return fmt.Errorf("%w: predictor_size %d must be between 0 and the total number of predictors used (%d)", data.ErrInvalidSubsetSize, size, maxK)
	}
	return nil
}

// ResolveIndex returns where the model with size predictors is stored.
func ResolveIndex(mode data.SearchMode, size, maxK, count int) (int, error) {
	rule, ok := indexRules[mode]
	if !ok {
		return 0, fmt.Errorf("%w: %q", data.ErrUnknownMode, mode)
	}
	if err := checkSize(size, maxK); err != nil {
		return 0, err
	}
	idx := rule(size, maxK, count)
	if idx < 0 || idx >= count {
		return 0, fmt.Errorf("%w: no %s model was built with %d predictors (%d models stored, max %d)", data.ErrInvalidSubsetSize, mode, size, count, maxK)
	}
	return idx, nil
}
