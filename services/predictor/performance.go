package predictor

import (
	"github.com/salmamehrez85/UniMate/model"
)

// CurrentPerformance computes a course's current performance percentage from
// its non-final assessments. Returns nil when no gradable assessment exists,
// which callers must treat as "no data yet", not as 0%.
//
// When at least one assessment carries a positive weight the result is the
// weight-normalized average over the weighted assessments; unweighted entries
// contribute nothing in that mode. Otherwise it is the simple arithmetic mean
// of the assessment percentages. The result is not clamped here.
func CurrentPerformance(assessments []model.Assessment) *float64 {
	graded := make([]model.Assessment, 0, len(assessments))
	for _, a := range assessments {
		if a.Type == model.AssessmentFinal {
			continue
		}
		if a.Score == nil || a.MaxScore == nil || *a.MaxScore <= 0 {
			continue
		}
		graded = append(graded, a)
	}

	if len(graded) == 0 {
		return nil
	}

	weighted := false
	for _, a := range graded {
		if a.Weight != nil && *a.Weight > 0 {
			weighted = true
			break
		}
	}

	var result float64
	if weighted {
		var weightedSum, totalWeight float64
		for _, a := range graded {
			if a.Weight == nil {
				continue
			}
			pct := (*a.Score / *a.MaxScore) * 100
			weightedSum += pct * *a.Weight
			totalWeight += *a.Weight
		}
		result = weightedSum / totalWeight
	} else {
		var sum float64
		for _, a := range graded {
			sum += (*a.Score / *a.MaxScore) * 100
		}
		result = sum / float64(len(graded))
	}

	return &result
}
