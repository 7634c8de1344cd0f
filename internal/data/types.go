package data

// KeyRef is how the training service refers to models and frames.
type KeyRef struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Split identifies which dataset an infogram result was computed on.
type Split uint8

const (
	Training Split = iota
	Validation
	Holdout
)

var Splits = []Split{Training, Validation, Holdout}

func (s Split) String() string {
	switch s {
	case Training:
		return "training"
	case Validation:
		return "validation"
	case Holdout:
		return "xval holdout"
	default:
		return "unknown"
	}
}

// ParseSplit accepts the query spellings used by the REST surface.
func ParseSplit(s string) (Split, bool) {
	switch s {
	case "", "train", "training":
		return Training, true
	case "valid", "validation":
		return Validation, true
	case "xval", "holdout":
		return Holdout, true
	}
	return Training, false
}

type SearchMode string

const (
	ModeForward    SearchMode = "forward"
	ModeBackward   SearchMode = "backward"
	ModeAllSubsets SearchMode = "allsubsets"
	ModeMaxR       SearchMode = "maxr"
	ModeMaxRSweep  SearchMode = "maxrsweep"
)

func (m SearchMode) Valid() bool {
	switch m {
	case ModeForward, ModeBackward, ModeAllSubsets, ModeMaxR, ModeMaxRSweep:
		return true
	}
	return false
}

// Unset marks a threshold the caller never assigned. Anything at or below it counts as unset.
const Unset = -1.0

const DefaultThreshold = 0.1

type Parameters struct {
	Mode               SearchMode `json:"mode,omitempty"`
	BuildGLMModel      bool       `json:"build_glm_model"`
	MaxPredictorNumber int        `json:"max_predictor_number,omitempty"`
	MinPredictorNumber int        `json:"min_predictor_number,omitempty"`

	ProtectedColumns          []string `json:"protected_columns,omitempty"`
	TotalInformationThreshold float64  `json:"total_information_threshold"`
	NetInformationThreshold   float64  `json:"net_information_threshold"`
	RelevanceIndexThreshold   float64  `json:"relevance_index_threshold"`
	SafetyIndexThreshold      float64  `json:"safety_index_threshold"`
}

// CoefficientsTable is the per-model table a GLM sub-model exposes.
type CoefficientsTable struct {
	Names                    []string  `json:"names"`
	Coefficients             []float64 `json:"coefficients"`
	StandardizedCoefficients []float64 `json:"standardized_coefficients"`
}

type Output struct {
	AdmissibleFeatures       []string  `json:"admissible_features"`
	AdmissibleFeaturesValid  []string  `json:"admissible_features_valid"`
	AdmissibleFeaturesXval   []string  `json:"admissible_features_xval"`
	AdmissibleRelevance      []float64 `json:"admissible_relevance"`
	AdmissibleRelevanceValid []float64 `json:"admissible_relevance_valid"`
	AdmissibleRelevanceXval  []float64 `json:"admissible_relevance_xval"`
	AdmissibleCMI            []float64 `json:"admissible_cmi"`
	AdmissibleCMIValid       []float64 `json:"admissible_cmi_valid"`
	AdmissibleCMIXval        []float64 `json:"admissible_cmi_xval"`
	AdmissibleCMIRaw         []float64 `json:"admissible_cmi_raw"`
	AdmissibleCMIRawValid    []float64 `json:"admissible_cmi_raw_valid"`
	AdmissibleCMIRawXval     []float64 `json:"admissible_cmi_raw_xval"`
	AdmissibleScoreKey       *KeyRef   `json:"admissible_score_key"`
	AdmissibleScoreKeyValid  *KeyRef   `json:"admissible_score_key_valid"`
	AdmissibleScoreKeyXval   *KeyRef   `json:"admissible_score_key_xval"`
	AllPredictorNames        []string  `json:"all_predictor_names"`
	Relevance                []float64 `json:"relevance"`
	CMI                      []float64 `json:"cmi"`
	CMIRaw                   []float64 `json:"cmi_raw"`

	BestModelIDs                []KeyRef    `json:"best_model_ids"`
	BestR2Values                []float64   `json:"best_r2_values"`
	PredictorsAddedPerStep      [][]string  `json:"predictors_added_per_step"`
	PredictorsRemovedPerStep    [][]string  `json:"predictors_removed_per_step"`
	BestPredictorsSubset        [][]string  `json:"best_predictors_subset"`
	CoefficientNames            [][]string  `json:"coefficient_names"`
	CoefficientValues           [][]float64 `json:"coefficient_values"`
	CoefficientValuesNormalized [][]float64 `json:"coefficient_values_normalized"`

	CoefficientsTable *CoefficientsTable `json:"coefficients_table"`
}

// Model is the payload the training service returns for any model key.
type Model struct {
	ModelID    KeyRef     `json:"model_id"`
	Algo       string     `json:"algo"`
	Parameters Parameters `json:"parameters"`
	Output     *Output    `json:"output"`
}

// Column is one column of a frame. Numeric columns fill Data, string columns StringData.
type Column struct {
	Label      string    `json:"label"`
	Type       string    `json:"type"`
	Data       []float64 `json:"data,omitempty"`
	StringData []string  `json:"string_data,omitempty"`
}

type Frame struct {
	FrameID KeyRef   `json:"frame_id"`
	Columns []Column `json:"columns"`
}

// PredictorReport is one row of an admissible score frame.
type PredictorReport struct {
	Name             string  `json:"name"`
	IsAdmissible     bool    `json:"is_admissible"`
	AdmissibleIndex  float64 `json:"admissible_index"`
	Relevance        float64 `json:"relevance"`
	SafetyNormalized float64 `json:"safety_normalized"`
	SafetyRaw        float64 `json:"safety_raw"`
}

type ScoreFrame struct {
	Key    string
	Split  Split
	XLabel string
	YLabel string
	Rows   []PredictorReport
}

// Bundle is an offline snapshot of registry content.
type Bundle struct {
	Models []Model `json:"models"`
	Frames []Frame `json:"frames"`
}
