package predictor

import (
	"testing"
	"time"

	"github.com/salmamehrez85/UniMate/model"
)

func gradedCourse(code, name, semester, credits string, finalGrade float64) model.Course {
	return model.Course{
		Code:        code,
		Name:        name,
		Semester:    semester,
		Credits:     credits,
		IsOldCourse: true,
		FinalGrade:  fptr(finalGrade),
	}
}

func TestBuildGPASummarySingleCourse(t *testing.T) {
	completed := []model.Course{gradedCourse("CS101", "Intro to Programming", "Fall 2024", "4", 92)}

	got := BuildGPASummary(completed, nil)

	if got.CurrentGPA != 4.0 {
		t.Errorf("expected current GPA 4.0, got %v", got.CurrentGPA)
	}
	if got.PredictedGPA.Min != 4.0 || got.PredictedGPA.Max != 4.0 {
		t.Errorf("no active courses, predicted GPA should equal current, got %+v", got.PredictedGPA)
	}
	if got.Breakdown.CompletedCourses != 1 || got.Breakdown.ActiveCourses != 0 {
		t.Errorf("unexpected breakdown %+v", got.Breakdown)
	}
	if got.Breakdown.TotalCredits != 4 {
		t.Errorf("expected 4 total credits, got %v", got.Breakdown.TotalCredits)
	}
	if got.ActiveCoursePredictions == nil {
		t.Error("activeCoursePredictions must serialize as [], not null")
	}
}

func TestBuildGPASummaryBlendsPredictions(t *testing.T) {
	completed := []model.Course{gradedCourse("CS101", "Intro to Programming", "Fall 2024", "4", 92)}
	predictions := []CoursePrediction{{
		CourseCode: "CS201",
		CourseName: "Data Structures",
		Credits:    4,
		Prediction: Prediction{Min: 75, Max: 91, Confidence: ConfidenceMedium},
	}}

	got := BuildGPASummary(completed, predictions)

	// Completed: 4.0 * 4 credits. Predicted course: 3.0 at the min
	// (75%), 4.0 at the max (91%), over 8 total credits.
	if got.CurrentGPA != 4.0 {
		t.Errorf("expected current GPA 4.0, got %v", got.CurrentGPA)
	}
	if got.PredictedGPA.Min != 3.5 {
		t.Errorf("expected predicted min 3.5, got %v", got.PredictedGPA.Min)
	}
	if got.PredictedGPA.Max != 4.0 {
		t.Errorf("expected predicted max 4.0, got %v", got.PredictedGPA.Max)
	}
	if got.Breakdown.TotalCredits != 8 {
		t.Errorf("expected 8 total credits, got %v", got.Breakdown.TotalCredits)
	}
}

func TestBuildGPASummarySkipsUnresolvableCourses(t *testing.T) {
	completed := []model.Course{
		gradedCourse("CS101", "Intro to Programming", "Fall 2024", "3", 80),
		{Code: "CS999", Name: "Mystery", IsOldCourse: true, Credits: "3"}, // no final grade anywhere
	}

	got := BuildGPASummary(completed, nil)

	if got.Breakdown.CompletedCourses != 1 {
		t.Errorf("course without a resolvable final grade must not count, got %d", got.Breakdown.CompletedCourses)
	}
	if got.CurrentGPA != 3.3 {
		t.Errorf("expected GPA 3.3, got %v", got.CurrentGPA)
	}
}

func TestBuildGPASummaryEmpty(t *testing.T) {
	got := BuildGPASummary(nil, nil)
	if got.CurrentGPA != 0 || got.PredictedGPA.Min != 0 || got.PredictedGPA.Max != 0 {
		t.Errorf("empty input should produce zeroed GPAs, got %+v", got)
	}
}

func TestBuildGPATrendSortsChronologically(t *testing.T) {
	completed := []model.Course{
		gradedCourse("CS103", "Operating Systems", "Fall 2024", "3", 85),
		gradedCourse("CS101", "Intro to Programming", "Spring 2024", "3", 92),
		gradedCourse("CS201", "Data Structures", "Winter 2025", "3", 78),
	}

	got := BuildGPATrend(completed, nil, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))

	want := []string{"Spring 2024", "Fall 2024", "Winter 2025"}
	if len(got.GPATrend) != len(want) {
		t.Fatalf("expected %d trend points, got %d", len(want), len(got.GPATrend))
	}
	for i, label := range want {
		if got.GPATrend[i].Semester != label {
			t.Errorf("position %d: expected %q, got %q", i, label, got.GPATrend[i].Semester)
		}
		if got.GPATrend[i].IsPredicted {
			t.Errorf("%q is a completed semester, not a projection", label)
		}
	}
	if got.TotalSemesters != 3 {
		t.Errorf("expected 3 semesters, got %d", got.TotalSemesters)
	}
	if got.HasActiveCoursePrediction {
		t.Error("no predictions were supplied")
	}
}

func TestBuildGPATrendProjectedPoint(t *testing.T) {
	completed := []model.Course{gradedCourse("CS101", "Intro to Programming", "Fall 2024", "4", 92)}
	predictions := []CoursePrediction{{
		CourseCode: "CS201",
		Credits:    4,
		Prediction: Prediction{Min: 75, Max: 91},
	}}
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	got := BuildGPATrend(completed, predictions, now)

	if !got.HasActiveCoursePrediction {
		t.Fatal("expected an active course prediction")
	}
	last := got.GPATrend[len(got.GPATrend)-1]
	if last.Semester != "Summer 2025 (Projected)" {
		t.Errorf("expected projected label for the current semester, got %q", last.Semester)
	}
	if !last.IsPredicted {
		t.Error("projected point must be flagged")
	}
	// Conservative: the projection uses the predicted minimum (3.5 here).
	if last.GPA != 3.5 {
		t.Errorf("expected projected GPA 3.5, got %v", last.GPA)
	}
	// The projected point never counts as a completed semester.
	if got.TotalSemesters != 1 {
		t.Errorf("expected 1 completed semester, got %d", got.TotalSemesters)
	}
}

func TestBuildGPATrendDerivesMissingSemester(t *testing.T) {
	course := gradedCourse("CS101", "Intro to Programming", "", "3", 88)
	course.CreatedAt = time.Date(2024, time.October, 10, 0, 0, 0, 0, time.UTC)

	got := BuildGPATrend([]model.Course{course}, nil, time.Now())

	if len(got.GPATrend) != 1 {
		t.Fatalf("expected 1 trend point, got %d", len(got.GPATrend))
	}
	if got.GPATrend[0].Semester != "Fall 2024" {
		t.Errorf("expected semester derived from creation date, got %q", got.GPATrend[0].Semester)
	}
}

func TestDeriveSemester(t *testing.T) {
	cases := []struct {
		month time.Month
		want  string
	}{
		{time.January, "Winter 2025"},
		{time.April, "Winter 2025"},
		{time.May, "Summer 2025"},
		{time.August, "Summer 2025"},
		{time.September, "Fall 2025"},
		{time.December, "Fall 2025"},
	}
	for _, tc := range cases {
		date := time.Date(2025, tc.month, 15, 0, 0, 0, 0, time.UTC)
		if got := DeriveSemester(date); got != tc.want {
			t.Errorf("DeriveSemester(%s) = %q, want %q", tc.month, got, tc.want)
		}
	}
}

func TestSplitCourses(t *testing.T) {
	courses := []model.Course{
		{Code: "CS101", IsOldCourse: true},
		{Code: "CS201"},
		{Code: "CS301"},
	}

	completed, active := SplitCourses(courses)
	if len(completed) != 1 || completed[0].Code != "CS101" {
		t.Errorf("unexpected completed set %+v", completed)
	}
	if len(active) != 2 {
		t.Errorf("expected 2 active courses, got %d", len(active))
	}
}
