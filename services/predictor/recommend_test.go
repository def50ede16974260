package predictor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/salmamehrez85/UniMate/model"
)

func tptr(t time.Time) *time.Time { return &t }

func TestFallbackRecommendationStatusBands(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		performance *float64
		want        string
	}{
		{"no data", nil, StatusYellow},
		{"strong", fptr(85), StatusGreen},
		{"boundary green", fptr(80), StatusGreen},
		{"middling", fptr(70), StatusYellow},
		{"boundary yellow", fptr(60), StatusYellow},
		{"at risk", fptr(55), StatusRed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			course := model.Course{Code: "CS101", Name: "Intro to Programming"}
			cctx := courseContext{performance: tc.performance}

			got := fallbackRecommendation(&course, cctx, now)
			if got.Status != tc.want {
				t.Errorf("expected status %s, got %s", tc.want, got.Status)
			}
			if got.SummaryAdvice == "" || got.DetailedAnalysis == "" {
				t.Error("advice text must never be empty")
			}
		})
	}
}

func TestFallbackRecommendationCitesOverdueDeadline(t *testing.T) {
	now := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	course := model.Course{Code: "CS101", Name: "Intro to Programming"}
	cctx := courseContext{
		performance: fptr(55),
		pendingDeadlines: []pendingDeadline{
			{Title: "Assignment 2", Due: time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)},
		},
	}

	got := fallbackRecommendation(&course, cctx, now)

	if got.Status != StatusRed {
		t.Errorf("expected red status at 55%%, got %s", got.Status)
	}
	if !strings.Contains(got.SummaryAdvice, "Assignment 2") {
		t.Errorf("advice must cite the deadline by name: %q", got.SummaryAdvice)
	}
	if !strings.Contains(got.SummaryAdvice, "OVERDUE") {
		t.Errorf("a past-due deadline must be flagged as overdue: %q", got.SummaryAdvice)
	}
}

func TestFallbackRecommendationUpcomingDeadline(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	course := model.Course{Code: "CS101", Name: "Intro to Programming"}
	cctx := courseContext{
		performance: fptr(85),
		pendingDeadlines: []pendingDeadline{
			{Title: "Lab 4", Due: time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC)},
		},
	}

	got := fallbackRecommendation(&course, cctx, now)

	if !strings.Contains(got.SummaryAdvice, "Lab 4") {
		t.Errorf("advice must cite the deadline by name: %q", got.SummaryAdvice)
	}
	if strings.Contains(got.SummaryAdvice, "OVERDUE") {
		t.Errorf("a future deadline is not overdue: %q", got.SummaryAdvice)
	}
}

func TestBuildCourseContextDeadlines(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	day := func(d int) *time.Time { return tptr(time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)) }

	course := model.Course{
		Code: "CS101",
		Name: "Intro to Programming",
		Tasks: []model.Task{
			{Title: "Done task", Status: model.TaskDone, DueDate: day(2)},
			{Title: "Task C", Status: model.TaskTodo, DueDate: day(20)},
			{Title: "Task A", Status: model.TaskTodo, DueDate: day(3)},
			{Title: "Undated task", Status: model.TaskDoing},
		},
		Phases: []model.Phase{
			{
				Title:   "Phase B",
				DueDate: day(10),
				Requirements: []model.Requirement{
					{Text: "write report", Completed: false},
				},
			},
			{
				Title:   "Finished phase",
				DueDate: day(1),
				Requirements: []model.Requirement{
					{Text: "all done", Completed: true},
				},
			},
		},
	}

	cctx := buildCourseContext(&course, now)

	if cctx.completedTasks != 1 {
		t.Errorf("expected 1 completed task, got %d", cctx.completedTasks)
	}
	if cctx.pendingTasks != 3 {
		t.Errorf("expected 3 pending tasks, got %d", cctx.pendingTasks)
	}

	// Completed work contributes no deadlines; the rest sort by due date.
	want := []string{"Task A", "Phase B", "Task C"}
	if len(cctx.pendingDeadlines) != len(want) {
		t.Fatalf("expected %d deadlines, got %d", len(want), len(cctx.pendingDeadlines))
	}
	for i, title := range want {
		if cctx.pendingDeadlines[i].Title != title {
			t.Errorf("deadline %d: expected %q, got %q", i, title, cctx.pendingDeadlines[i].Title)
		}
	}
}

func TestBuildCourseContextRecentResults(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	day := func(d int) *time.Time { return tptr(time.Date(2025, time.February, d, 0, 0, 0, 0, time.UTC)) }

	course := model.Course{
		Code: "CS101",
		Name: "Intro to Programming",
		Assessments: []model.Assessment{
			{Title: "Quiz 1", Type: model.AssessmentQuiz, Score: fptr(8), MaxScore: fptr(10), Date: day(1)},
			{Title: "Quiz 2", Type: model.AssessmentQuiz, Score: fptr(9), MaxScore: fptr(10), Date: day(8)},
			{Title: "Quiz 3", Type: model.AssessmentQuiz, Score: fptr(7), MaxScore: fptr(10), Date: day(15)},
			{Title: "Quiz 4", Type: model.AssessmentQuiz, Score: fptr(6), MaxScore: fptr(10), Date: day(22)},
			{Title: "Ungraded", Type: model.AssessmentQuiz},
		},
	}

	cctx := buildCourseContext(&course, now)

	if len(cctx.recentResults) != 3 {
		t.Fatalf("expected the 3 most recent results, got %d", len(cctx.recentResults))
	}
	if !strings.Contains(cctx.recentResults[0], "Quiz 4") {
		t.Errorf("newest result should come first, got %q", cctx.recentResults[0])
	}
}

func TestRecommendationsSkipCompletedCourses(t *testing.T) {
	s := NewService(Config{})

	courses := []model.Course{
		{Code: "CS101", Name: "Intro to Programming", IsOldCourse: true, FinalGrade: fptr(90)},
		{Code: "CS201", Name: "Data Structures"},
	}

	got := s.Recommendations(context.Background(), courses)

	if len(got) != 1 {
		t.Fatalf("expected advice for the active course only, got %d entries", len(got))
	}
	if got[0].CourseCode != "CS201" {
		t.Errorf("expected CS201, got %s", got[0].CourseCode)
	}
}

func TestRecommendCourseFallsBackOnAIError(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{}} // no advice response canned
	s := testService(gen)

	course := model.Course{
		Code: "CS101",
		Name: "Intro to Programming",
		Assessments: []model.Assessment{
			assessment(model.AssessmentQuiz, 9, 10),
		},
	}

	got := s.recommendCourse(context.Background(), &course)

	if got.Status != StatusGreen {
		t.Errorf("expected the rule-based green status at 90%%, got %s", got.Status)
	}
	if got.SummaryAdvice == "" {
		t.Error("fallback advice must not be empty")
	}
}

func TestRecommendCourseRejectsMalformedStatus(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{
		"course_advice": `{"status":"purple","summary_advice":"do things","detailed_analysis":"text"}`,
	}}
	s := testService(gen)

	course := model.Course{
		Code: "CS101",
		Name: "Intro to Programming",
		Assessments: []model.Assessment{
			assessment(model.AssessmentQuiz, 9, 10),
		},
	}

	got := s.recommendCourse(context.Background(), &course)

	// An out-of-enum status from the model must land on the fallback.
	if got.Status != StatusGreen {
		t.Errorf("expected fallback green status, got %s", got.Status)
	}
}
