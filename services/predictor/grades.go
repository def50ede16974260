package predictor

import (
	"strconv"
	"strings"
)

// gradeScale maps percentage thresholds to grade points. Comparison is >=,
// first match wins, anything below 60 earns 0.0.
var gradeScale = []struct {
	threshold float64
	points    float64
}{
	{90, 4.0},
	{85, 3.7},
	{80, 3.3},
	{75, 3.0},
	{70, 2.7},
	{65, 2.3},
	{60, 2.0},
}

// GradePoints converts a percentage to grade points on the fixed scale.
// Total over all real inputs; no rounding is applied to the input.
func GradePoints(percentage float64) float64 {
	for _, step := range gradeScale {
		if percentage >= step.threshold {
			return step.points
		}
	}
	return 0.0
}

// ParseCredits parses the string-encoded credits field, defaulting to 3 when
// the value is missing or unparseable.
func ParseCredits(credits string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(credits), 64)
	if err != nil || value <= 0 {
		return 3
	}
	return value
}
