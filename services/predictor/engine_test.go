package predictor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/salmamehrez85/UniMate/model"
)

const profileJSON = `{"domain_tags":["Programming"],"main_topics":["Algorithms","Data Structures"],"skills":["Go"],"difficulty":"Intermediate","assessment_style":"Mixed"}`

// fakeGenerator serves canned responses keyed by schema name.
type fakeGenerator struct {
	responses map[string]string
	err       error
	calls     int
}

func (f *fakeGenerator) GenerateStructured(ctx context.Context, systemPrompt, userPrompt, schemaName string, schema map[string]interface{}) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	resp, ok := f.responses[schemaName]
	if !ok {
		return "", fmt.Errorf("no canned response for schema %q", schemaName)
	}
	return resp, nil
}

func testService(g TextGenerator) *Service {
	return NewService(Config{
		Generator:        g,
		PaceDelay:        time.Nanosecond,
		RateLimitBackoff: time.Nanosecond,
	})
}

func activeCourse(code, name string, assessments ...model.Assessment) model.Course {
	return model.Course{Code: code, Name: name, Assessments: assessments}
}

func completedCourse(code, name string, finalGrade float64) model.Course {
	return model.Course{Code: code, Name: name, IsOldCourse: true, FinalGrade: fptr(finalGrade)}
}

func TestPredictCourseZeroSimilarity(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{
		"course_profile": profileJSON,
		"similarity_ranking": `{"ranked_past_courses":[
			{"courseId":"CS101","similarity_score":0,"reason":"nothing in common"}]}`,
	}}
	s := testService(gen)

	course := activeCourse("CS301", "Compilers", assessment(model.AssessmentQuiz, 75, 100))
	past := []model.Course{completedCourse("CS101", "Intro to Programming", 90)}

	got := s.PredictCourse(context.Background(), &course, past)

	if !got.UsedAI {
		t.Fatal("expected the AI path to run")
	}
	// All-zero similarity pins the prediction to the current average.
	if got.Min != 72 || got.Max != 78 {
		t.Errorf("expected range [72, 78], got [%v, %v]", got.Min, got.Max)
	}
	if got.Confidence != ConfidenceLow {
		t.Errorf("expected Low confidence, got %s", got.Confidence)
	}
}

func TestPredictCourseWeightedBlend(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{
		"course_profile": profileJSON,
		"similarity_ranking": `{"ranked_past_courses":[
			{"courseId":"CS101","similarity_score":1.0,"reason":"same skill set"}]}`,
	}}
	s := testService(gen)

	course := activeCourse("CS301", "Compilers", assessment(model.AssessmentQuiz, 80, 100))

	// Pre-final average 80, final 90: the course historically finished 10
	// points above its running average.
	past := activeCourse("CS101", "Intro to Programming", assessment(model.AssessmentQuiz, 80, 100))
	past.IsOldCourse = true
	past.FinalGrade = fptr(90)

	got := s.PredictCourse(context.Background(), &course, []model.Course{past})

	if !got.UsedAI {
		t.Fatal("expected the AI path to run")
	}
	// predicted = 0.5*(80 + 10) + 0.5*90 = 90
	if got.Min != 87 || got.Max != 93 {
		t.Errorf("expected range [87, 93], got [%v, %v]", got.Min, got.Max)
	}
	if got.Confidence != ConfidenceMedium {
		t.Errorf("total similarity 1.0 should yield Medium, got %s", got.Confidence)
	}
	if len(got.SimilarCourses) != 1 || got.SimilarCourses[0].Name != "Intro to Programming" {
		t.Errorf("expected the ranked course to be surfaced by name, got %+v", got.SimilarCourses)
	}
}

func TestPredictCourseHighConfidence(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{
		"course_profile": profileJSON,
		"similarity_ranking": `{"ranked_past_courses":[
			{"courseId":"CS101","similarity_score":0.9,"reason":"overlapping topics"},
			{"courseId":"CS102","similarity_score":0.8,"reason":"same domain"}]}`,
	}}
	s := testService(gen)

	course := activeCourse("CS301", "Compilers", assessment(model.AssessmentQuiz, 80, 100))
	past := []model.Course{
		completedCourse("CS101", "Intro to Programming", 85),
		completedCourse("CS102", "Discrete Math", 80),
	}

	got := s.PredictCourse(context.Background(), &course, past)

	if got.Confidence != ConfidenceHigh {
		t.Errorf("total similarity 1.7 should yield High, got %s", got.Confidence)
	}
}

func TestPredictCourseDegradedOnError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("backend down")}
	s := testService(gen)

	course := activeCourse("CS301", "Compilers", assessment(model.AssessmentQuiz, 70, 100))
	past := []model.Course{completedCourse("CS101", "Intro to Programming", 90)}

	got := s.PredictCourse(context.Background(), &course, past)

	if got.UsedAI {
		t.Error("a failed AI path must not be reported as AI-backed")
	}
	if got.Min != 67 || got.Max != 73 {
		t.Errorf("expected a range anchored on current performance [67, 73], got [%v, %v]", got.Min, got.Max)
	}
	if got.Confidence != ConfidenceLow {
		t.Errorf("expected Low confidence, got %s", got.Confidence)
	}
	if got.Reason == "" {
		t.Error("degraded predictions should explain themselves")
	}
}

func TestPredictCourseWithoutGenerator(t *testing.T) {
	s := NewService(Config{})
	if s.AIEnabled() {
		t.Fatal("no generator configured, AIEnabled must be false")
	}

	course := activeCourse("CS301", "Compilers", assessment(model.AssessmentQuiz, 95, 100))
	past := []model.Course{completedCourse("CS101", "Intro to Programming", 90)}

	got := s.PredictCourse(context.Background(), &course, past)

	if got.UsedAI {
		t.Error("expected the rule-based path")
	}
	if got.Min != 92 || got.Max != 97 {
		t.Errorf("expected band [92, 97], got [%v, %v]", got.Min, got.Max)
	}
	if got.Confidence != ConfidenceHigh {
		t.Errorf("expected High confidence, got %s", got.Confidence)
	}
}

func TestFallbackPredictionBands(t *testing.T) {
	cases := []struct {
		name       string
		avg        *float64
		min, max   float64
		confidence string
	}{
		{"no data", nil, 50, 85, ConfidenceLow},
		{"just started", fptr(0), 40, 70, ConfidenceLow},
		{"excellent", fptr(95), 92, 97, ConfidenceHigh},
		{"strong", fptr(87), 83, 90, ConfidenceMedium},
		{"solid", fptr(82), 77, 86, ConfidenceMedium},
		{"good", fptr(77), 71, 82, ConfidenceMedium},
		{"mixed", fptr(70), 63, 76, ConfidenceMedium},
		{"struggling", fptr(50), 42, 58, ConfidenceMedium},
		{"over 100 clamps", fptr(150), 100, 100, ConfidenceMedium},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := fallbackPrediction(tc.avg)
			if got.Min != tc.min || got.Max != tc.max {
				t.Errorf("expected range [%v, %v], got [%v, %v]", tc.min, tc.max, got.Min, got.Max)
			}
			if got.Confidence != tc.confidence {
				t.Errorf("expected %s confidence, got %s", tc.confidence, got.Confidence)
			}
			if got.UsedAI {
				t.Error("fallback predictions must not claim AI")
			}
			if got.Min > got.Max {
				t.Errorf("inverted range [%v, %v]", got.Min, got.Max)
			}
			if got.Min < 0 || got.Max > 100 {
				t.Errorf("range [%v, %v] escapes [0, 100]", got.Min, got.Max)
			}
		})
	}
}

func TestFallbackPredictionCoversAllAverages(t *testing.T) {
	// Every representable average must land in exactly one band and
	// produce a valid clamped range.
	for avg := -20.0; avg <= 120.0; avg += 0.5 {
		got := fallbackPrediction(fptr(avg))
		if got.Min > got.Max {
			t.Fatalf("avg %v: inverted range [%v, %v]", avg, got.Min, got.Max)
		}
		if got.Min < 0 || got.Max > 100 {
			t.Fatalf("avg %v: range [%v, %v] escapes [0, 100]", avg, got.Min, got.Max)
		}
		if got.Reason == "" {
			t.Fatalf("avg %v: missing reason", avg)
		}
	}
}

func TestPredictCourseDeterministic(t *testing.T) {
	responses := map[string]string{
		"course_profile": profileJSON,
		"similarity_ranking": `{"ranked_past_courses":[
			{"courseId":"CS101","similarity_score":0.7,"reason":"shared topics"}]}`,
	}
	s := testService(&fakeGenerator{responses: responses})

	course := activeCourse("CS301", "Compilers", assessment(model.AssessmentQuiz, 80, 100))
	past := []model.Course{completedCourse("CS101", "Intro to Programming", 85)}

	first := s.PredictCourse(context.Background(), &course, past)
	second := s.PredictCourse(context.Background(), &course, past)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs produced different predictions:\n%+v\n%+v", first, second)
	}
}

func TestCallStructuredRetries(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	s := testService(gen)

	var out CourseProfile
	err := s.callStructured(context.Background(), "sys", "user", "course_profile", courseProfileSchema, &out)
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if gen.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", gen.calls)
	}
}
