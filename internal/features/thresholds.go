package features

import (
	"go.uber.org/zap"

	"modelreport/internal/data"
)

// Thresholds is the active (x, y) pair of an infogram: total/net information
// in core mode, relevance/safety index in fair mode.
type Thresholds struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Fair bool    `json:"fair"`
}

func (t Thresholds) Names() (x, y string) {
	if t.Fair {
		return "relevance_index_threshold", "safety_index_threshold"
	}
	return "total_information_threshold", "net_information_threshold"
}

func orDefault(v float64) float64 {
	if v <= data.Unset {
		return data.DefaultThreshold
	}
	return v
}

// ThresholdsFor returns the pair a trained infogram used.
func ThresholdsFor(p data.Parameters) Thresholds {
	if len(p.ProtectedColumns) > 0 {
		return Thresholds{X: orDefault(p.RelevanceIndexThreshold), Y: orDefault(p.SafetyIndexThreshold), Fair: true}
	}
	return Thresholds{X: orDefault(p.TotalInformationThreshold), Y: orDefault(p.NetInformationThreshold)}
}

// ThresholdParams holds the four named infogram thresholds of a run being
// configured. Which pair may be assigned depends on whether protected columns
// are set; a wrong-mode assignment is dropped with an advisory.
type ThresholdParams struct {
	protected []string
	total     float64
	net       float64
	relevance float64
	safety    float64
	log       *zap.Logger
}

func NewThresholdParams(protected []string, log *zap.Logger) *ThresholdParams {
	if log == nil {
		log = zap.NewNop()
	}
	return &ThresholdParams{
		protected: protected,
		total:     data.DefaultThreshold,
		net:       data.DefaultThreshold,
		relevance: data.DefaultThreshold,
		safety:    data.DefaultThreshold,
		log:       log,
	}
}

func (p *ThresholdParams) Fair() bool { return len(p.protected) > 0 }

func (p *ThresholdParams) SetTotalInformationThreshold(v float64) *data.Advisory {
	return p.set(&p.total, v, false, "total_information_threshold", "relevance_index_threshold")
}

func (p *ThresholdParams) SetNetInformationThreshold(v float64) *data.Advisory {
	return p.set(&p.net, v, false, "net_information_threshold", "safety_index_threshold")
}

func (p *ThresholdParams) SetRelevanceIndexThreshold(v float64) *data.Advisory {
	return p.set(&p.relevance, v, true, "relevance_index_threshold", "total_information_threshold")
}

func (p *ThresholdParams) SetSafetyIndexThreshold(v float64) *data.Advisory {
	return p.set(&p.safety, v, true, "safety_index_threshold", "net_information_threshold")
}

func (p *ThresholdParams) set(dst *float64, v float64, fairOnly bool, name, instead string) *data.Advisory {
	applies := fairOnly == p.Fair()
	if v <= data.Unset {
		if applies {
			*dst = data.DefaultThreshold
		}
		return nil
	}
	if applies {
		*dst = v
		return nil
	}
	mode := "core"
	if p.Fair() {
		mode = "fair"
	}
	adv := &data.Advisory{
		Kind:    data.ModeMismatch,
		Subject: name,
		Message: "should not be set for " + mode + " infogram runs, set " + instead + " instead; using default of 0.1 if not set",
	}
	p.log.Warn("threshold ignored", zap.String("threshold", name), zap.Float64("value", v), zap.String("mode", mode))
	return adv
}

// Active returns the pair for the current mode.
func (p *ThresholdParams) Active() Thresholds {
	if p.Fair() {
		return Thresholds{X: p.relevance, Y: p.safety, Fair: true}
	}
	return Thresholds{X: p.total, Y: p.net}
}

// Apply writes the configured thresholds into training parameters. Inactive ones are left unset.
func (p *ThresholdParams) Apply(params *data.Parameters) {
	params.ProtectedColumns = p.protected
	params.TotalInformationThreshold, params.NetInformationThreshold = data.Unset, data.Unset
	params.RelevanceIndexThreshold, params.SafetyIndexThreshold = data.Unset, data.Unset
	th := p.Active()
	if th.Fair {
		params.RelevanceIndexThreshold, params.SafetyIndexThreshold = th.X, th.Y
	} else {
		params.TotalInformationThreshold, params.NetInformationThreshold = th.X, th.Y
	}
}

// Value returns a threshold by its parameter name.
func (p *ThresholdParams) Value(name string) (float64, bool) {
	switch name {
	case "total_information_threshold":
		return p.total, true
	case "net_information_threshold":
		return p.net, true
	case "relevance_index_threshold":
		return p.relevance, true
	case "safety_index_threshold":
		return p.safety, true
	}
	return 0, false
}
