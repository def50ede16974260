package performance

import (
	"github.com/gofiber/fiber/v2"
	"github.com/salmamehrez85/UniMate/model"
	"github.com/salmamehrez85/UniMate/services/predictor"
	"github.com/salmamehrez85/UniMate/utils/middleware"
	"github.com/salmamehrez85/UniMate/utils/response"
	"gorm.io/gorm"
)

// PerformanceHandler serves the prediction endpoints: predicted GPA, GPA
// trend and per-course recommendations. All heavy lifting happens in the
// predictor service; the handler only fetches the user's courses and shapes
// the response.
type PerformanceHandler struct {
	db        *gorm.DB
	predictor *predictor.Service
}

// NewPerformanceHandler creates a new performance handler
func NewPerformanceHandler(db *gorm.DB, predictorService *predictor.Service) *PerformanceHandler {
	return &PerformanceHandler{
		db:        db,
		predictor: predictorService,
	}
}

// GetPredictedGPA handles GET /api/v1/courses/predicted-gpa
func (h *PerformanceHandler) GetPredictedGPA(c *fiber.Ctx) error {
	courses, err := h.userCourses(c)
	if err != nil {
		return err
	}

	summary := h.predictor.PredictedGPA(c.Context(), courses)
	return response.Success(c, summary)
}

// GetGPATrend handles GET /api/v1/courses/gpa-trend
func (h *PerformanceHandler) GetGPATrend(c *fiber.Ctx) error {
	courses, err := h.userCourses(c)
	if err != nil {
		return err
	}

	trend := h.predictor.GPATrend(c.Context(), courses)
	return response.Success(c, trend)
}

// GetRecommendations handles GET /api/v1/courses/recommendations
func (h *PerformanceHandler) GetRecommendations(c *fiber.Ctx) error {
	courses, err := h.userCourses(c)
	if err != nil {
		return err
	}

	recommendations := h.predictor.Recommendations(c.Context(), courses)
	return response.Success(c, fiber.Map{
		"data": recommendations,
	})
}

// userCourses fetches every course owned by the authenticated user. The
// error return is already a rendered response.
func (h *PerformanceHandler) userCourses(c *fiber.Ctx) ([]model.Course, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil, response.Unauthorized(c, "User not authenticated")
	}

	var courses []model.Course
	if err := h.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&courses).Error; err != nil {
		return nil, response.InternalServerError(c, "Failed to fetch courses")
	}

	return courses, nil
}
