package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Assessment types
const (
	AssessmentQuiz       = "quiz"
	AssessmentMidterm    = "midterm"
	AssessmentFinal      = "final"
	AssessmentAssignment = "assignment"
)

// Task statuses
const (
	TaskTodo  = "todo"
	TaskDoing = "doing"
	TaskDone  = "done"
)

// Assessment is a single graded item inside a course.
// Score, MaxScore and Weight are pointers so "not graded yet" is
// distinguishable from an actual zero.
type Assessment struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Type     string     `json:"type"` // quiz, midterm, final, assignment
	Score    *float64   `json:"score,omitempty"`
	MaxScore *float64   `json:"maxScore,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	Weight   *float64   `json:"weight,omitempty"`
}

// Task is a to-do item attached to a course.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	DueTime     string     `json:"dueTime,omitempty"`
	Status      string     `json:"status"`   // todo, doing, done
	Priority    string     `json:"priority"` // low, medium, high
	CreatedAt   time.Time  `json:"createdAt"`
}

// Requirement is a single checklist entry inside a project phase.
type Requirement struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Phase is a project milestone with a checklist of requirements.
type Phase struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	DueDate      *time.Time    `json:"dueDate,omitempty"`
	Requirements []Requirement `json:"requirements"`
}

// Incomplete reports whether any requirement of the phase is still open.
func (p Phase) Incomplete() bool {
	for _, r := range p.Requirements {
		if !r.Completed {
			return true
		}
	}
	return false
}

// Course is one course owned by exactly one user. Assessments, tasks and
// phases are stored as JSONB documents on the course row, mirroring the
// shape the frontend works with.
type Course struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;index" json:"userId"`

	Code        string `gorm:"not null" json:"code"`
	Name        string `gorm:"not null" json:"name"`
	Instructor  string `json:"instructor"`
	Schedule    string `json:"schedule"`
	Credits     string `json:"credits"`  // string-encoded number, parsed with a default of 3
	Semester    string `json:"semester"` // e.g. "Fall 2024"; derived from CreatedAt when empty
	OutlineText string `gorm:"type:text" json:"outlineText"`

	IsOldCourse bool     `gorm:"default:false;index" json:"isOldCourse"`
	FinalGrade  *float64 `json:"finalGrade,omitempty"` // percentage, set when the course completes

	Assessments datatypes.JSONSlice[Assessment] `gorm:"type:jsonb" json:"assessments"`
	Tasks       datatypes.JSONSlice[Task]       `gorm:"type:jsonb" json:"tasks"`
	Phases      datatypes.JSONSlice[Phase]      `gorm:"type:jsonb" json:"phases"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// FinalAssessment returns the first final-type assessment that has both a
// score and a max score, or nil.
func (c *Course) FinalAssessment() *Assessment {
	for i := range c.Assessments {
		a := c.Assessments[i]
		if a.Type == AssessmentFinal && a.Score != nil && a.MaxScore != nil && *a.MaxScore > 0 {
			return &c.Assessments[i]
		}
	}
	return nil
}

// ResolveFinalGrade returns the course's final grade percentage, preferring
// the stored FinalGrade and falling back to the final assessment. The second
// return is false when neither exists.
func (c *Course) ResolveFinalGrade() (float64, bool) {
	if c.FinalGrade != nil {
		return *c.FinalGrade, true
	}
	if fa := c.FinalAssessment(); fa != nil {
		return (*fa.Score / *fa.MaxScore) * 100, true
	}
	return 0, false
}

// SyncCompletion flips the course between active and completed based on the
// presence of a graded final assessment. Adding a final marks the course old
// and records the final grade; removing it reopens the course. Returns true
// when anything changed.
func (c *Course) SyncCompletion() bool {
	fa := c.FinalAssessment()
	if fa != nil {
		grade := (*fa.Score / *fa.MaxScore) * 100
		if c.IsOldCourse && c.FinalGrade != nil && *c.FinalGrade == grade {
			return false
		}
		c.IsOldCourse = true
		c.FinalGrade = &grade
		return true
	}
	if c.IsOldCourse || c.FinalGrade != nil {
		c.IsOldCourse = false
		c.FinalGrade = nil
		return true
	}
	return false
}
