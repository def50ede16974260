package model

import "testing"

func fptr(v float64) *float64 { return &v }

func TestResolveFinalGradePrefersStoredGrade(t *testing.T) {
	c := Course{
		FinalGrade: fptr(88),
		Assessments: []Assessment{
			{Type: AssessmentFinal, Score: fptr(50), MaxScore: fptr(100)},
		},
	}

	grade, ok := c.ResolveFinalGrade()
	if !ok || grade != 88 {
		t.Errorf("expected stored grade 88, got %v (ok=%v)", grade, ok)
	}
}

func TestResolveFinalGradeFallsBackToAssessment(t *testing.T) {
	c := Course{
		Assessments: []Assessment{
			{Type: AssessmentQuiz, Score: fptr(9), MaxScore: fptr(10)},
			{Type: AssessmentFinal, Score: fptr(45), MaxScore: fptr(50)},
		},
	}

	grade, ok := c.ResolveFinalGrade()
	if !ok || grade != 90 {
		t.Errorf("expected 90 from the final assessment, got %v (ok=%v)", grade, ok)
	}
}

func TestResolveFinalGradeAbsent(t *testing.T) {
	c := Course{
		Assessments: []Assessment{
			{Type: AssessmentQuiz, Score: fptr(9), MaxScore: fptr(10)},
			{Type: AssessmentFinal}, // scheduled but not graded
		},
	}

	if _, ok := c.ResolveFinalGrade(); ok {
		t.Error("expected no resolvable final grade")
	}
}

func TestSyncCompletionMarksCourseCompleted(t *testing.T) {
	c := Course{
		Assessments: []Assessment{
			{Type: AssessmentFinal, Score: fptr(80), MaxScore: fptr(100)},
		},
	}

	if changed := c.SyncCompletion(); !changed {
		t.Error("adding a graded final should flip the course to completed")
	}
	if !c.IsOldCourse {
		t.Error("course should be marked old")
	}
	if c.FinalGrade == nil || *c.FinalGrade != 80 {
		t.Errorf("expected final grade 80, got %v", c.FinalGrade)
	}

	// Second sync with no changes is a no-op.
	if changed := c.SyncCompletion(); changed {
		t.Error("unchanged course reported a transition")
	}
}

func TestSyncCompletionReopensCourse(t *testing.T) {
	c := Course{
		IsOldCourse: true,
		FinalGrade:  fptr(80),
	}

	if changed := c.SyncCompletion(); !changed {
		t.Error("removing the final should reopen the course")
	}
	if c.IsOldCourse || c.FinalGrade != nil {
		t.Errorf("expected an active course with no final grade, got old=%v grade=%v", c.IsOldCourse, c.FinalGrade)
	}
}

func TestSyncCompletionUpdatesRegrade(t *testing.T) {
	c := Course{
		IsOldCourse: true,
		FinalGrade:  fptr(70),
		Assessments: []Assessment{
			{Type: AssessmentFinal, Score: fptr(85), MaxScore: fptr(100)},
		},
	}

	if changed := c.SyncCompletion(); !changed {
		t.Error("a regraded final should register as a change")
	}
	if c.FinalGrade == nil || *c.FinalGrade != 85 {
		t.Errorf("expected updated grade 85, got %v", c.FinalGrade)
	}
}

func TestPhaseIncomplete(t *testing.T) {
	p := Phase{Requirements: []Requirement{{Completed: true}, {Completed: false}}}
	if !p.Incomplete() {
		t.Error("an open requirement should mark the phase incomplete")
	}

	p = Phase{Requirements: []Requirement{{Completed: true}}}
	if p.Incomplete() {
		t.Error("all requirements done, phase should be complete")
	}

	p = Phase{}
	if p.Incomplete() {
		t.Error("a phase with no requirements has nothing open")
	}
}
