package predictor

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/salmamehrez85/UniMate/model"
)

// GPARange is a min/max GPA pair.
type GPARange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// GPABreakdown summarizes what went into a GPA computation.
type GPABreakdown struct {
	CompletedCourses int     `json:"completedCourses"`
	ActiveCourses    int     `json:"activeCourses"`
	TotalCredits     float64 `json:"totalCredits"`
}

// CoursePrediction pairs an active course with its prediction.
type CoursePrediction struct {
	CourseID           uint       `json:"courseId"`
	CourseName         string     `json:"courseName"`
	CourseCode         string     `json:"courseCode"`
	CurrentPerformance *float64   `json:"currentPerformance"`
	Prediction         Prediction `json:"prediction"`
	Credits            float64    `json:"credits"`
}

// GPASummary is the predicted-gpa endpoint payload.
type GPASummary struct {
	CurrentGPA              float64            `json:"currentGPA"`
	PredictedGPA            GPARange           `json:"predictedGPA"`
	Breakdown               GPABreakdown       `json:"breakdown"`
	ActiveCoursePredictions []CoursePrediction `json:"activeCoursePredictions"`
}

// TrendPoint is one semester entry of the GPA trend series.
type TrendPoint struct {
	Semester    string  `json:"semester"`
	GPA         float64 `json:"gpa"`
	IsPredicted bool    `json:"isPredicted"`
}

// GPATrendResult is the gpa-trend endpoint payload.
type GPATrendResult struct {
	OverallGPA                float64      `json:"overallGPA"`
	TotalCredits              float64      `json:"totalCredits"`
	GPATrend                  []TrendPoint `json:"gpaTrend"`
	TotalSemesters            int          `json:"totalSemesters"`
	HasActiveCoursePrediction bool         `json:"hasActiveCoursePrediction"`
}

// seasonOrder fixes the chronological order of seasons within a year.
var seasonOrder = map[string]int{
	"winter": 0,
	"spring": 1,
	"summer": 2,
	"fall":   3,
}

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

// SplitCourses partitions a user's courses into completed and active sets.
func SplitCourses(courses []model.Course) (completed, active []model.Course) {
	for _, c := range courses {
		if c.IsOldCourse {
			completed = append(completed, c)
		} else {
			active = append(active, c)
		}
	}
	return completed, active
}

// PredictActiveCourses runs the prediction engine over every active course,
// sequentially. One prediction per course; LLM calls are awaited in turn, by
// design, to stay under the provider's rate limits.
func (s *Service) PredictActiveCourses(ctx context.Context, active, completed []model.Course) []CoursePrediction {
	predictions := make([]CoursePrediction, 0, len(active))
	for i := range active {
		course := &active[i]
		predictions = append(predictions, CoursePrediction{
			CourseID:           course.ID,
			CourseName:         course.Name,
			CourseCode:         course.Code,
			CurrentPerformance: CurrentPerformance(course.Assessments),
			Prediction:         s.PredictCourse(ctx, course, completed),
			Credits:            ParseCredits(course.Credits),
		})
	}
	return predictions
}

// PredictedGPA computes the current GPA over completed courses and a
// predicted GPA range that blends the completed contribution with every
// active course's predicted min and max.
func (s *Service) PredictedGPA(ctx context.Context, courses []model.Course) GPASummary {
	completed, active := SplitCourses(courses)
	predictions := s.PredictActiveCourses(ctx, active, completed)
	return BuildGPASummary(completed, predictions)
}

// BuildGPASummary is the deterministic aggregation step, separated from the
// prediction calls so it can be driven directly in tests.
func BuildGPASummary(completed []model.Course, predictions []CoursePrediction) GPASummary {
	var completedPoints, completedCredits float64
	contributing := 0

	for _, c := range completed {
		finalPct, ok := c.ResolveFinalGrade()
		if !ok {
			continue
		}
		credits := ParseCredits(c.Credits)
		completedPoints += GradePoints(finalPct) * credits
		completedCredits += credits
		contributing++
	}

	currentGPA := 0.0
	if completedCredits > 0 {
		currentGPA = completedPoints / completedCredits
	}

	minPoints, maxPoints := completedPoints, completedPoints
	totalCredits := completedCredits
	for _, p := range predictions {
		minPoints += GradePoints(p.Prediction.Min) * p.Credits
		maxPoints += GradePoints(p.Prediction.Max) * p.Credits
		totalCredits += p.Credits
	}

	predicted := GPARange{Min: currentGPA, Max: currentGPA}
	if totalCredits > 0 {
		predicted = GPARange{
			Min: round2(minPoints / totalCredits),
			Max: round2(maxPoints / totalCredits),
		}
	}

	if predictions == nil {
		predictions = []CoursePrediction{}
	}

	return GPASummary{
		CurrentGPA:   round2(currentGPA),
		PredictedGPA: predicted,
		Breakdown: GPABreakdown{
			CompletedCourses: contributing,
			ActiveCourses:    len(predictions),
			TotalCredits:     totalCredits,
		},
		ActiveCoursePredictions: predictions,
	}
}

// GPATrend builds the chronological per-semester GPA series for a user,
// appending a projected point for the current semester when active courses
// exist.
func (s *Service) GPATrend(ctx context.Context, courses []model.Course) GPATrendResult {
	completed, active := SplitCourses(courses)
	predictions := s.PredictActiveCourses(ctx, active, completed)
	return BuildGPATrend(completed, predictions, s.now())
}

// BuildGPATrend groups completed courses by semester (deriving one from the
// creation date when absent), computes per-semester GPAs, appends the
// projected point and sorts the series chronologically.
func BuildGPATrend(completed []model.Course, predictions []CoursePrediction, now time.Time) GPATrendResult {
	type bucket struct {
		points  float64
		credits float64
	}
	buckets := make(map[string]*bucket)

	var overallPoints, overallCredits float64

	for _, c := range completed {
		finalPct, ok := c.ResolveFinalGrade()
		if !ok {
			continue
		}
		credits := ParseCredits(c.Credits)
		points := GradePoints(finalPct) * credits

		semester := strings.TrimSpace(c.Semester)
		if semester == "" {
			semester = DeriveSemester(c.CreatedAt)
		}

		b, exists := buckets[semester]
		if !exists {
			b = &bucket{}
			buckets[semester] = b
		}
		b.points += points
		b.credits += credits

		overallPoints += points
		overallCredits += credits
	}

	trend := make([]TrendPoint, 0, len(buckets)+1)
	for semester, b := range buckets {
		trend = append(trend, TrendPoint{
			Semester: semester,
			GPA:      round2(b.points / b.credits),
		})
	}
	completedSemesters := len(trend)

	hasPrediction := false
	if len(predictions) > 0 {
		summary := BuildGPASummary(completed, predictions)
		trend = append(trend, TrendPoint{
			Semester:    fmt.Sprintf("%s (Projected)", DeriveSemester(now)),
			GPA:         summary.PredictedGPA.Min,
			IsPredicted: true,
		})
		hasPrediction = true
	}

	sort.SliceStable(trend, func(i, j int) bool {
		yi, si := parseSemesterLabel(trend[i].Semester)
		yj, sj := parseSemesterLabel(trend[j].Semester)
		if yi != yj {
			return yi < yj
		}
		return si < sj
	})

	overallGPA := 0.0
	if overallCredits > 0 {
		overallGPA = round2(overallPoints / overallCredits)
	}

	return GPATrendResult{
		OverallGPA:                overallGPA,
		TotalCredits:              overallCredits,
		GPATrend:                  trend,
		TotalSemesters:            completedSemesters,
		HasActiveCoursePrediction: hasPrediction,
	}
}

// DeriveSemester maps a date to a canonical semester label:
// January-April is Winter, May-August is Summer, September-December is Fall.
func DeriveSemester(t time.Time) string {
	season := "Fall"
	switch {
	case t.Month() <= 4:
		season = "Winter"
	case t.Month() <= 8:
		season = "Summer"
	}
	return fmt.Sprintf("%s %d", season, t.Year())
}

// parseSemesterLabel extracts the sort key (year, season rank) from a label
// like "Fall 2024" or "Summer 2025 (Projected)". Unparseable labels sort
// first.
func parseSemesterLabel(label string) (int, int) {
	year := 0
	if m := yearPattern.FindStringSubmatch(label); m != nil {
		year, _ = strconv.Atoi(m[1])
	}

	rank := 0
	fields := strings.Fields(strings.ToLower(label))
	if len(fields) > 0 {
		if r, ok := seasonOrder[fields[0]]; ok {
			rank = r
		}
	}
	return year, rank
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
