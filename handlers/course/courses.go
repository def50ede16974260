package course

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/salmamehrez85/UniMate/model"
	"github.com/salmamehrez85/UniMate/utils/middleware"
	"github.com/salmamehrez85/UniMate/utils/response"
	"github.com/salmamehrez85/UniMate/utils/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseHandler handles course-related requests. Every operation is scoped
// to the authenticated user; a course is never visible across users.
type CourseHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateCourseRequest represents the request body for creating a course
type CreateCourseRequest struct {
	Code        string `json:"code" validate:"required,min=2,max=50"`
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Instructor  string `json:"instructor" validate:"omitempty,max=255"`
	Schedule    string `json:"schedule" validate:"omitempty,max=255"`
	Credits     string `json:"credits" validate:"omitempty,max=10"`
	Semester    string `json:"semester" validate:"omitempty,max=50"`
	OutlineText string `json:"outlineText" validate:"omitempty,max=50000"`
}

// UpdateCourseRequest represents the request body for updating a course.
// Scalars are pointers so absent fields are untouched; the embedded document
// lists replace the stored ones wholesale.
type UpdateCourseRequest struct {
	Code        *string             `json:"code" validate:"omitempty,min=2,max=50"`
	Name        *string             `json:"name" validate:"omitempty,min=2,max=255"`
	Instructor  *string             `json:"instructor" validate:"omitempty,max=255"`
	Schedule    *string             `json:"schedule" validate:"omitempty,max=255"`
	Credits     *string             `json:"credits" validate:"omitempty,max=10"`
	Semester    *string             `json:"semester" validate:"omitempty,max=50"`
	OutlineText *string             `json:"outlineText" validate:"omitempty,max=50000"`
	IsOldCourse *bool               `json:"isOldCourse"`
	Assessments *[]model.Assessment `json:"assessments"`
	Tasks       *[]model.Task       `json:"tasks"`
	Phases      *[]model.Phase      `json:"phases"`
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var courses []model.Course
	if err := h.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Success(c, fiber.Map{
		"count":   len(courses),
		"courses": courses,
	})
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.findOwned(c.Params("id"), userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	return response.Success(c, course)
}

// CreateCourse handles POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	course := model.Course{
		UserID:      userID,
		Code:        validation.SanitizeString(req.Code),
		Name:        validation.SanitizeString(req.Name),
		Instructor:  validation.SanitizeString(req.Instructor),
		Schedule:    validation.SanitizeString(req.Schedule),
		Credits:     validation.SanitizeString(req.Credits),
		Semester:    validation.SanitizeString(req.Semester),
		OutlineText: req.OutlineText,
		Assessments: datatypes.JSONSlice[model.Assessment]{},
		Tasks:       datatypes.JSONSlice[model.Task]{},
		Phases:      datatypes.JSONSlice[model.Phase]{},
	}

	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, course)
}

// UpdateCourse handles PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	course, err := h.findOwned(c.Params("id"), userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	if req.Code != nil {
		course.Code = validation.SanitizeString(*req.Code)
	}
	if req.Name != nil {
		course.Name = validation.SanitizeString(*req.Name)
	}
	if req.Instructor != nil {
		course.Instructor = validation.SanitizeString(*req.Instructor)
	}
	if req.Schedule != nil {
		course.Schedule = validation.SanitizeString(*req.Schedule)
	}
	if req.Credits != nil {
		course.Credits = validation.SanitizeString(*req.Credits)
	}
	if req.Semester != nil {
		course.Semester = validation.SanitizeString(*req.Semester)
	}
	if req.OutlineText != nil {
		course.OutlineText = *req.OutlineText
	}
	if req.IsOldCourse != nil {
		course.IsOldCourse = *req.IsOldCourse
	}

	if req.Assessments != nil {
		assessments, err := normalizeAssessments(*req.Assessments)
		if err != nil {
			return response.BadRequest(c, err.Error())
		}
		course.Assessments = assessments
	}
	if req.Tasks != nil {
		tasks, err := normalizeTasks(*req.Tasks)
		if err != nil {
			return response.BadRequest(c, err.Error())
		}
		course.Tasks = tasks
	}
	if req.Phases != nil {
		course.Phases = normalizePhases(*req.Phases)
	}

	// Completion follows the assessments: adding a final marks the course
	// completed, removing it reopens the course. Explicit isOldCourse edits
	// above are overridden when a graded final exists.
	course.SyncCompletion()

	if err := h.db.Save(course).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	return response.SuccessWithMessage(c, "Course updated successfully", course)
}

// DeleteCourse handles DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.findOwned(c.Params("id"), userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	if err := h.db.Delete(course).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}

	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}

// findOwned loads a course by id, scoped to its owner
func (h *CourseHandler) findOwned(id string, userID uint) (*model.Course, error) {
	var course model.Course
	err := h.db.Where("id = ? AND user_id = ?", id, userID).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// normalizeAssessments validates embedded assessments and assigns IDs to new
// entries. Score vs maxScore consistency is deliberately not enforced here.
func normalizeAssessments(assessments []model.Assessment) (datatypes.JSONSlice[model.Assessment], error) {
	result := make(datatypes.JSONSlice[model.Assessment], 0, len(assessments))
	for _, a := range assessments {
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		if !validation.OneOf(a.Type,
			model.AssessmentQuiz, model.AssessmentMidterm, model.AssessmentFinal, model.AssessmentAssignment) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid assessment type: "+a.Type)
		}
		result = append(result, a)
	}
	return result, nil
}

func normalizeTasks(tasks []model.Task) (datatypes.JSONSlice[model.Task], error) {
	result := make(datatypes.JSONSlice[model.Task], 0, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		if t.Status == "" {
			t.Status = model.TaskTodo
		}
		if t.Priority == "" {
			t.Priority = "medium"
		}
		if !validation.OneOf(t.Status, model.TaskTodo, model.TaskDoing, model.TaskDone) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid task status: "+t.Status)
		}
		if !validation.OneOf(t.Priority, "low", "medium", "high") {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid task priority: "+t.Priority)
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now()
		}
		result = append(result, t)
	}
	return result, nil
}

func normalizePhases(phases []model.Phase) datatypes.JSONSlice[model.Phase] {
	result := make(datatypes.JSONSlice[model.Phase], 0, len(phases))
	for _, p := range phases {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		for i := range p.Requirements {
			if p.Requirements[i].ID == "" {
				p.Requirements[i].ID = uuid.New().String()
			}
		}
		result = append(result, p)
	}
	return result
}
