package data

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingResult means the training run did not produce an artifact the caller relies on.
	ErrMissingResult = errors.New("missing result")
	// ErrInvalidSubsetSize means a predictor subset size outside [1, max].
	ErrInvalidSubsetSize = errors.New("invalid predictor subset size")
	// ErrStructureMismatch means two parallel result arrays disagree in shape.
	ErrStructureMismatch = errors.New("result structure mismatch")
	ErrUnknownMode       = errors.New("unknown search mode")
)

type AdvisoryKind string

const (
	ModeMismatch  AdvisoryKind = "mode_mismatch"
	NotApplicable AdvisoryKind = "not_applicable"
)

// Advisory is a non-fatal diagnostic. Operations return it instead of failing.
type Advisory struct {
	Kind    AdvisoryKind `json:"kind"`
	Subject string       `json:"subject"`
	Message string       `json:"message"`
}

func (a Advisory) String() string {
	return fmt.Sprintf("%s: %s: %s", a.Kind, a.Subject, a.Message)
}

func missing(what string, args ...any) error {
	return fmt.Errorf("%w: "+what, append([]any{ErrMissingResult}, args...)...)
}

func mismatch(what string, args ...any) error {
	return fmt.Errorf("%w: "+what, append([]any{ErrStructureMismatch}, args...)...)
}
