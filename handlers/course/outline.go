package course

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/salmamehrez85/UniMate/services"
	"github.com/salmamehrez85/UniMate/utils/middleware"
	"github.com/salmamehrez85/UniMate/utils/response"
	"gorm.io/gorm"
)

// maxOutlineSize caps outline uploads at 10 MB
const maxOutlineSize = 10 << 20

// UploadOutline handles POST /api/v1/courses/:id/outline. It accepts a PDF
// course outline, extracts its text and stores it on the course so the
// profiler has something richer than the course name to work with.
func (h *CourseHandler) UploadOutline(c *fiber.Ctx) error {
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

	fileHeader, err := c.FormFile("outline")
	if err != nil {
		return response.BadRequest(c, "Missing outline file")
	}
	if fileHeader.Size > maxOutlineSize {
		return response.BadRequest(c, "Outline file too large (max 10MB)")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}

	extractor := services.NewOutlineExtractor()
	text, err := extractor.ExtractText(content)
	if err != nil {
		return response.BadRequest(c, "Could not extract text from the outline: "+err.Error())
	}

	course.OutlineText = text
	if err := h.db.Save(course).Error; err != nil {
		return response.InternalServerError(c, "Failed to save outline")
	}

	return response.SuccessWithMessage(c, "Outline uploaded successfully", fiber.Map{
		"courseId":   course.ID,
		"characters": len(text),
	})
}
