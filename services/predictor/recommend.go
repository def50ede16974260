package predictor

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/salmamehrez85/UniMate/model"
)

// Recommendation statuses
const (
	StatusGreen  = "green"
	StatusYellow = "yellow"
	StatusRed    = "red"
)

// Recommendation is the per-course advice surfaced on the dashboard.
type Recommendation struct {
	CourseCode       string `json:"courseCode"`
	CourseName       string `json:"courseName"`
	Status           string `json:"status"` // green, yellow, red
	SummaryAdvice    string `json:"summaryAdvice"`
	DetailedAnalysis string `json:"detailedAnalysis"`
}

// pendingDeadline is an upcoming (or overdue) obligation: an open task or an
// incomplete project phase with a due date.
type pendingDeadline struct {
	Title string
	Due   time.Time
}

// courseContext is what the advice generation sees about one course.
type courseContext struct {
	performance      *float64
	completedTasks   int
	pendingTasks     int
	pendingDeadlines []pendingDeadline
	recentResults    []string
}

type adviceResponse struct {
	Status           string `json:"status"`
	SummaryAdvice    string `json:"summary_advice"`
	DetailedAnalysis string `json:"detailed_analysis"`
}

var adviceSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"status": map[string]interface{}{
			"type":        "string",
			"enum":        []string{StatusGreen, StatusYellow, StatusRed},
			"description": "Overall course health",
		},
		"summary_advice": map[string]interface{}{
			"type":        "string",
			"description": "One or two sentences of actionable advice",
		},
		"detailed_analysis": map[string]interface{}{
			"type":        "string",
			"description": "A short paragraph analyzing the course state",
		},
	},
	"required": []string{"status", "summary_advice", "detailed_analysis"},
}

// Recommendations composes advice for every active course. Runs as an
// independent pipeline: it never calls the prediction engine.
func (s *Service) Recommendations(ctx context.Context, courses []model.Course) []Recommendation {
	_, active := SplitCourses(courses)

	recommendations := make([]Recommendation, 0, len(active))
	for i := range active {
		recommendations = append(recommendations, s.recommendCourse(ctx, &active[i]))
	}
	return recommendations
}

func (s *Service) recommendCourse(ctx context.Context, course *model.Course) Recommendation {
	cctx := buildCourseContext(course, s.now())

	if s.generator != nil {
		if rec, err := s.recommendWithAI(ctx, course, cctx); err == nil {
			return rec
		} else {
			log.Printf("AI recommendation failed for course %q, using fallback: %v", course.Code, err)
		}
	}

	return fallbackRecommendation(course, cctx, s.now())
}

func (s *Service) recommendWithAI(ctx context.Context, course *model.Course, cctx courseContext) (Recommendation, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Course: %s (%s)\n", course.Name, course.Code)
	if cctx.performance != nil {
		fmt.Fprintf(&sb, "Current performance: %.1f%%\n", *cctx.performance)
	} else {
		sb.WriteString("Current performance: no graded work yet\n")
	}
	fmt.Fprintf(&sb, "Tasks: %d completed, %d pending\n", cctx.completedTasks, cctx.pendingTasks)

	if len(cctx.pendingDeadlines) > 0 {
		sb.WriteString("Pending deadlines:\n")
		for _, d := range cctx.pendingDeadlines {
			fmt.Fprintf(&sb, "- %q due %s\n", d.Title, d.Due.Format("2006-01-02"))
		}
	} else {
		sb.WriteString("Pending deadlines: none\n")
	}

	if len(cctx.recentResults) > 0 {
		sb.WriteString("Recent assessments:\n")
		for _, r := range cctx.recentResults {
			fmt.Fprintf(&sb, "- %s\n", r)
		}
	}

	sb.WriteString(`
Task: Assess this course and return:
- status: "green" (on track), "yellow" (needs attention) or "red" (at risk)
- summary_advice: 1-2 sentences of concrete, actionable advice
- detailed_analysis: a short paragraph explaining the assessment

When a pending deadline exists, cite at least one of them by its exact name.`)

	var advice adviceResponse
	if err := s.callStructured(ctx,
		"You are an academic coach who gives students concise, practical advice about their courses.",
		sb.String(), "course_advice", adviceSchema, &advice); err != nil {
		return Recommendation{}, err
	}

	switch advice.Status {
	case StatusGreen, StatusYellow, StatusRed:
	default:
		return Recommendation{}, fmt.Errorf("malformed advice status %q", advice.Status)
	}
	if advice.SummaryAdvice == "" {
		return Recommendation{}, fmt.Errorf("empty advice text")
	}

	return Recommendation{
		CourseCode:       course.Code,
		CourseName:       course.Name,
		Status:           advice.Status,
		SummaryAdvice:    advice.SummaryAdvice,
		DetailedAnalysis: advice.DetailedAnalysis,
	}, nil
}

// fallbackRecommendation is the deterministic decision table keyed on
// performance bands, with advice text citing the nearest pending deadline.
func fallbackRecommendation(course *model.Course, cctx courseContext, now time.Time) Recommendation {
	var status, summary, detail string

	switch {
	case cctx.performance == nil:
		status = StatusYellow
		summary = "No graded work yet. Keep up with the coursework so the first assessments go well."
		detail = fmt.Sprintf("%s has no recorded assessment results, so there is nothing to judge performance on yet.", course.Name)
	case *cctx.performance >= 80:
		status = StatusGreen
		summary = fmt.Sprintf("You're averaging %.0f%% in %s. Keep doing what you're doing.", *cctx.performance, course.Name)
		detail = fmt.Sprintf("Performance in %s is strong at %.1f%% across %d pending and %d completed tasks.",
			course.Name, *cctx.performance, cctx.pendingTasks, cctx.completedTasks)
	case *cctx.performance >= 60:
		status = StatusYellow
		summary = fmt.Sprintf("Your %s average is %.0f%%. A focused push on the next assessment could lift it.", course.Name, *cctx.performance)
		detail = fmt.Sprintf("Performance in %s sits at %.1f%%, close enough to slip with a weak result.",
			course.Name, *cctx.performance)
	default:
		status = StatusRed
		summary = fmt.Sprintf("Your %s average is %.0f%%. Prioritize this course now.", course.Name, *cctx.performance)
		detail = fmt.Sprintf("Performance in %s is at %.1f%%, which puts the final grade at risk without immediate attention.",
			course.Name, *cctx.performance)
	}

	if len(cctx.pendingDeadlines) > 0 {
		next := cctx.pendingDeadlines[0]
		if next.Due.Before(now) {
			summary += fmt.Sprintf(" %q is OVERDUE (was due %s), deal with it first.", next.Title, next.Due.Format("Jan 2"))
		} else {
			summary += fmt.Sprintf(" Next up: %q, due %s.", next.Title, next.Due.Format("Jan 2"))
		}
	}

	return Recommendation{
		CourseCode:       course.Code,
		CourseName:       course.Name,
		Status:           status,
		SummaryAdvice:    summary,
		DetailedAnalysis: detail,
	}
}

// buildCourseContext derives the advice inputs from the course document:
// task counts, the three nearest pending deadlines (open tasks plus
// incomplete phases), and the latest assessment results.
func buildCourseContext(course *model.Course, now time.Time) courseContext {
	cctx := courseContext{
		performance: CurrentPerformance(course.Assessments),
	}

	var deadlines []pendingDeadline
	for _, t := range course.Tasks {
		if t.Status == model.TaskDone {
			cctx.completedTasks++
			continue
		}
		cctx.pendingTasks++
		if t.DueDate != nil {
			deadlines = append(deadlines, pendingDeadline{Title: t.Title, Due: *t.DueDate})
		}
	}

	for _, p := range course.Phases {
		if p.Incomplete() && p.DueDate != nil {
			deadlines = append(deadlines, pendingDeadline{Title: p.Title, Due: *p.DueDate})
		}
	}

	sort.SliceStable(deadlines, func(i, j int) bool {
		return deadlines[i].Due.Before(deadlines[j].Due)
	})
	if len(deadlines) > 3 {
		deadlines = deadlines[:3]
	}
	cctx.pendingDeadlines = deadlines

	// Newest assessments first, capped at three
	assessments := make([]model.Assessment, 0, len(course.Assessments))
	for _, a := range course.Assessments {
		if a.Score != nil && a.MaxScore != nil && *a.MaxScore > 0 {
			assessments = append(assessments, a)
		}
	}
	sort.SliceStable(assessments, func(i, j int) bool {
		di, dj := assessments[i].Date, assessments[j].Date
		if di == nil || dj == nil {
			return dj == nil && di != nil
		}
		return di.After(*dj)
	})
	for i, a := range assessments {
		if i == 3 {
			break
		}
		cctx.recentResults = append(cctx.recentResults,
			fmt.Sprintf("%s (%s): %.0f/%.0f", a.Title, a.Type, *a.Score, *a.MaxScore))
	}

	return cctx
}
