package data

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
)

var predictorStems = []string{"amount", "tenure", "age", "income", "balance", "region", "channel", "device", "score", "visits"}

func predictorNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = predictorStems[i%len(predictorStems)]
		if i >= len(predictorStems) {
			names[i] += "_" + strconv.Itoa(i/len(predictorStems))
		}
	}
	return names
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }

// GenerateInfogramBundle builds an infogram model with score frames for every split.
// params carries the run configuration; protected columns select the fair pair
// of thresholds, which decide which synthetic predictors come out admissible.
func GenerateInfogramBundle(rng *rand.Rand, id string, predictors int, params Parameters) *Bundle {
	names := predictorNames(predictors)
	fair := len(params.ProtectedColumns) > 0
	thX, thY := params.TotalInformationThreshold, params.NetInformationThreshold
	if fair {
		thX, thY = params.RelevanceIndexThreshold, params.SafetyIndexThreshold
	}
	out := &Output{AllPredictorNames: names}
	b := &Bundle{}
	for _, s := range Splits {
		rows := make([]PredictorReport, predictors)
		for i := range rows {
			rel := round4(rng.Float64())
			cmi := round4(rng.Float64())
			idx := 0.0
			if rel > thX && cmi > thY {
				idx = round4(math.Sqrt(rel*rel + cmi*cmi))
			}
			rows[i] = PredictorReport{
				Name:             names[i],
				IsAdmissible:     idx > 0,
				AdmissibleIndex:  idx,
				Relevance:        rel,
				SafetyNormalized: cmi,
				SafetyRaw:        round4(cmi * (0.5 + rng.Float64())),
			}
		}
		key := &KeyRef{Name: fmt.Sprintf("%s_admissible_score_%s", id, splitSuffix(s)), Type: "Key<Frame>"}
		b.Frames = append(b.Frames, ScoreFrameColumns(key.Name, rows, fair))

		var feats []string
		var rel, cmi, raw []float64
		for _, r := range rows {
			if !r.IsAdmissible {
				continue
			}
			feats = append(feats, r.Name)
			rel = append(rel, r.Relevance)
			cmi = append(cmi, r.SafetyNormalized)
			raw = append(raw, r.SafetyRaw)
		}
		if feats == nil {
			feats = []string{}
			rel, cmi, raw = []float64{}, []float64{}, []float64{}
		}
		switch s {
		case Training:
			out.AdmissibleScoreKey = key
			out.AdmissibleFeatures, out.AdmissibleRelevance, out.AdmissibleCMI, out.AdmissibleCMIRaw = feats, rel, cmi, raw
			out.Relevance = make([]float64, predictors)
			out.CMI = make([]float64, predictors)
			out.CMIRaw = make([]float64, predictors)
			for i, r := range rows {
				out.Relevance[i], out.CMI[i], out.CMIRaw[i] = r.Relevance, r.SafetyNormalized, r.SafetyRaw
			}
		case Validation:
			out.AdmissibleScoreKeyValid = key
			out.AdmissibleFeaturesValid, out.AdmissibleRelevanceValid, out.AdmissibleCMIValid, out.AdmissibleCMIRawValid = feats, rel, cmi, raw
		case Holdout:
			out.AdmissibleScoreKeyXval = key
			out.AdmissibleFeaturesXval, out.AdmissibleRelevanceXval, out.AdmissibleCMIXval, out.AdmissibleCMIRawXval = feats, rel, cmi, raw
		}
	}
	b.Models = append(b.Models, Model{
		ModelID:    KeyRef{Name: id, Type: "Key<Model>"},
		Algo:       "infogram",
		Parameters: params,
		Output:     out,
	})
	return b
}

func splitSuffix(s Split) string {
	switch s {
	case Validation:
		return "valid"
	case Holdout:
		return "xval"
	default:
		return "train"
	}
}

// GenerateSelectionBundle builds a model selection result with one GLM sub-model per
// subset size in [minK, maxK]. Backward runs with minK > 1 keep fewer models than maxK.
// The maxrsweep mode without GLM models stores coefficients inline instead.
func GenerateSelectionBundle(rng *rand.Rand, id string, mode SearchMode, maxK, minK int, buildGLM bool) *Bundle {
	if minK < 1 || mode != ModeBackward {
		minK = 1
	}
	names := predictorNames(maxK)
	perm := rng.Perm(maxK)
	order := make([]string, maxK)
	for i, p := range perm {
		order[i] = names[p]
	}

	out := &Output{}
	b := &Bundle{}
	r2 := 0.0
	for k := minK; k <= maxK; k++ {
		subset := append([]string(nil), order[:k]...)
		r2 += (1 - r2) * (0.2 + 0.3*rng.Float64())
		out.BestPredictorsSubset = append(out.BestPredictorsSubset, subset)
		out.BestR2Values = append(out.BestR2Values, round4(r2))

		coefNames := append([]string{"Intercept"}, subset...)
		raw := make([]float64, len(coefNames))
		std := make([]float64, len(coefNames))
		for i := range coefNames {
			raw[i] = round4(rng.NormFloat64() * 3)
			std[i] = round4(raw[i] / (1 + rng.Float64()))
		}
		if mode == ModeMaxRSweep && !buildGLM {
			out.CoefficientNames = append(out.CoefficientNames, coefNames)
			out.CoefficientValues = append(out.CoefficientValues, raw)
			out.CoefficientValuesNormalized = append(out.CoefficientValuesNormalized, std)
			continue
		}
		subID := fmt.Sprintf("%s_model_%d", id, k)
		out.BestModelIDs = append(out.BestModelIDs, KeyRef{Name: subID, Type: "Key<Model>"})
		b.Models = append(b.Models, Model{
			ModelID: KeyRef{Name: subID, Type: "Key<Model>"},
			Algo:    "glm",
			Output: &Output{CoefficientsTable: &CoefficientsTable{
				Names:                    coefNames,
				Coefficients:             raw,
				StandardizedCoefficients: std,
			}},
		})
	}

	switch mode {
	case ModeBackward:
		for k := maxK; k > minK; k-- {
			out.PredictorsRemovedPerStep = append(out.PredictorsRemovedPerStep, []string{order[k-1]})
		}
	default:
		for k := 1; k <= maxK; k++ {
			out.PredictorsAddedPerStep = append(out.PredictorsAddedPerStep, []string{order[k-1]})
			out.PredictorsRemovedPerStep = append(out.PredictorsRemovedPerStep, []string{})
		}
	}

	parent := Model{
		ModelID: KeyRef{Name: id, Type: "Key<Model>"},
		Algo:    "modelselection",
		Parameters: Parameters{
			Mode:               mode,
			BuildGLMModel:      buildGLM,
			MaxPredictorNumber: maxK,
			MinPredictorNumber: minK,
		},
		Output: out,
	}
	b.Models = append([]Model{parent}, b.Models...)
	return b
}
