package predictor

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/salmamehrez85/UniMate/model"
)

// SimilarCourse is one LLM-ranked past course surfaced with a prediction.
type SimilarCourse struct {
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
	Reason     string  `json:"reason"`
}

// Prediction is the predicted final-score range for one active course.
// Ephemeral; recomputed on every request.
type Prediction struct {
	Min            float64         `json:"min"`
	Max            float64         `json:"max"`
	Confidence     string          `json:"confidence"`
	SimilarCourses []SimilarCourse `json:"similarCourses"`
	UsedAI         bool            `json:"usedAI"`
	Reason         string          `json:"reason,omitempty"`
}

// pastCourseData is the per-course history the weighted blend draws on.
// bias is how much the final grade moved relative to pre-final performance.
type pastCourseData struct {
	preFinalAvg float64
	finalPct    float64
}

// PredictCourse predicts the final-score range for one active course.
// The AI path runs only when at least one past course has a resolvable final
// grade and the course has current performance data; everything else, and any
// failure inside the AI path, degrades to a deterministic fallback.
// Never returns an error.
func (s *Service) PredictCourse(ctx context.Context, course *model.Course, pastCourses []model.Course) Prediction {
	current := CurrentPerformance(course.Assessments)

	eligible := make([]model.Course, 0, len(pastCourses))
	for _, past := range pastCourses {
		if _, ok := past.ResolveFinalGrade(); ok {
			eligible = append(eligible, past)
		}
	}

	if s.generator != nil && current != nil && len(eligible) > 0 {
		prediction, err := s.predictWithAI(ctx, course, eligible, *current)
		if err == nil {
			return prediction
		}
		log.Printf("AI prediction failed for course %q: %v", course.Code, err)

		// Degraded result anchored on what we know about the course
		anchor := clampPct(*current)
		return Prediction{
			Min:            clampPct(math.Round(anchor - 3)),
			Max:            clampPct(math.Round(anchor + 3)),
			Confidence:     ConfidenceLow,
			SimilarCourses: []SimilarCourse{},
			UsedAI:         false,
			Reason:         "Prediction service unavailable, range based on current performance",
		}
	}

	return fallbackPrediction(current)
}

// predictWithAI runs the full LLM-assisted path: profile the target course,
// profile every past course (one call each, sequential), rank by similarity,
// then blend the similarity-weighted historical bias and finals with the
// current performance.
func (s *Service) predictWithAI(ctx context.Context, course *model.Course, pastCourses []model.Course, currentAvg float64) (Prediction, error) {
	targetProfile := s.ProfileCourse(ctx, course.Name, course.OutlineText)
	target := profiledCourse{
		ID:      course.Code,
		Name:    course.Name,
		Profile: targetProfile,
	}

	history := make([]profiledCourse, 0, len(pastCourses))
	pastData := make(map[string]pastCourseData, len(pastCourses))
	pastNames := make(map[string]string, len(pastCourses))

	for _, past := range pastCourses {
		finalPct, ok := past.ResolveFinalGrade()
		if !ok {
			continue
		}

		preFinal := finalPct
		if perf := CurrentPerformance(past.Assessments); perf != nil {
			preFinal = *perf
		}
		pastData[past.Code] = pastCourseData{preFinalAvg: preFinal, finalPct: finalPct}
		pastNames[past.Code] = past.Name

		profile := s.ProfileCourse(ctx, past.Name, past.OutlineText)
		history = append(history, profiledCourse{
			ID:      past.Code,
			Name:    past.Name,
			Profile: profile,
		})
	}

	if len(history) == 0 {
		return Prediction{}, fmt.Errorf("no past courses with resolvable final grades")
	}

	ranking, err := s.rankSimilarCourses(ctx, target, history)
	if err != nil {
		return Prediction{}, err
	}

	var weightedBias, weightedFinal, totalSim float64
	similar := make([]SimilarCourse, 0, len(ranking.RankedPastCourses))

	for _, item := range ranking.RankedPastCourses {
		data, ok := pastData[item.CourseID]
		if !ok {
			continue
		}

		sim := item.SimilarityScore
		bias := data.finalPct - data.preFinalAvg

		weightedBias += bias * sim
		weightedFinal += data.finalPct * sim
		totalSim += sim

		name := pastNames[item.CourseID]
		if name == "" {
			name = item.CourseID
		}
		similar = append(similar, SimilarCourse{
			Name:       name,
			Similarity: sim,
			Reason:     item.Reason,
		})
	}

	var predicted float64
	var confidence string

	if totalSim == 0 {
		predicted = currentAvg
		confidence = ConfidenceLow
	} else {
		avgBias := weightedBias / totalSim
		avgPastFinal := weightedFinal / totalSim

		// predicted = 0.5*(current + avgBias) + 0.5*avgPastFinal
		predicted = 0.5*(currentAvg+avgBias) + 0.5*avgPastFinal

		if totalSim > 1.5 {
			confidence = ConfidenceHigh
		} else {
			confidence = ConfidenceMedium
		}
	}

	predicted = clampPct(predicted)

	return Prediction{
		Min:            clampPct(math.Round(predicted - 3)),
		Max:            clampPct(math.Round(predicted + 3)),
		Confidence:     confidence,
		SimilarCourses: similar,
		UsedAI:         true,
	}, nil
}

// fallbackPrediction is the rule-based path: a banded table over the current
// average, with dedicated bands for "no data yet" and "just started". After
// the band is chosen, confidence is recomputed from the quality of the range
// because the static per-band labels are too optimistic far from the input.
func fallbackPrediction(currentAvg *float64) Prediction {
	if currentAvg == nil {
		return Prediction{
			Min:            50,
			Max:            85,
			Confidence:     ConfidenceLow,
			SimilarCourses: []SimilarCourse{},
			UsedAI:         false,
			Reason:         "No assessment data yet, range is wide until the first grades arrive",
		}
	}

	avg := *currentAvg

	if avg == 0 {
		prediction := Prediction{
			Min:            40,
			Max:            70,
			Confidence:     ConfidenceMedium,
			SimilarCourses: []SimilarCourse{},
			UsedAI:         false,
			Reason:         "Course just started, plenty of room to recover",
		}
		prediction.Confidence = rangeConfidence(prediction.Min, prediction.Max, avg)
		return prediction
	}

	var lo, hi float64
	var confidence, reason string

	switch {
	case avg >= 90:
		lo, hi = avg-3, avg+2
		confidence = ConfidenceHigh
		reason = "Excellent track record, expect it to hold"
	case avg >= 85:
		lo, hi = avg-4, avg+3
		confidence = ConfidenceHigh
		reason = "Strong performance so far"
	case avg >= 80:
		lo, hi = avg-5, avg+4
		confidence = ConfidenceHigh
		reason = "Solid performance with some variance"
	case avg >= 75:
		lo, hi = avg-6, avg+5
		confidence = ConfidenceMedium
		reason = "Good standing, finals may shift the outcome"
	case avg >= 65:
		lo, hi = avg-7, avg+6
		confidence = ConfidenceMedium
		reason = "Mixed results, outcome depends on the remaining work"
	default:
		lo, hi = avg-8, avg+8
		confidence = ConfidenceMedium
		reason = "Below-average performance, wide range of outcomes"
	}

	prediction := Prediction{
		Min:            clampPct(math.Round(lo)),
		Max:            clampPct(math.Round(hi)),
		Confidence:     confidence,
		SimilarCourses: []SimilarCourse{},
		UsedAI:         false,
		Reason:         reason,
	}
	prediction.Confidence = rangeConfidence(prediction.Min, prediction.Max, avg)
	return prediction
}

// rangeConfidence grades a fallback range by how tight it is and how close
// its midpoint sits to the observed average.
func rangeConfidence(min, max, currentAvg float64) string {
	width := max - min
	mid := (min + max) / 2
	drift := math.Abs(mid - currentAvg)

	switch {
	case width <= 6 && drift <= 5:
		return ConfidenceHigh
	case width <= 12 || drift <= 10:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func clampPct(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
