package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jufeed/feedback-backend/internal/middleware"
	"github.com/jufeed/feedback-backend/internal/model"
	"github.com/jufeed/feedback-backend/internal/response"
	"github.com/jufeed/feedback-backend/internal/service"
	"github.com/jufeed/feedback-backend/internal/validator"
)

// CourseHandler handles course management and listing endpoints.
type CourseHandler struct {
	courseService   *service.CourseService
	feedbackService *service.FeedbackService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService, feedbackService *service.FeedbackService) *CourseHandler {
	return &CourseHandler{courseService: courseService, feedbackService: feedbackService}
}

// List godoc
// GET /api/v1/admin/courses
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courseService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// ListForStudent godoc
// GET /api/v1/student/courses
// Returns the courses for the student's semester, flagging the ones they
// have already evaluated.
func (h *CourseHandler) ListForStudent(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	courses, err := h.courseService.ListForSemester(c.Request.Context(), claims.Semester)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	submittedIDs, err := h.feedbackService.SubmittedCourseIDs(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	submitted := make(map[int]bool, len(submittedIDs))
	for _, id := range submittedIDs {
		submitted[id] = true
	}

	type courseEntry struct {
		model.CourseWithFaculty
		Submitted bool `json:"submitted"`
	}
	entries := make([]courseEntry, 0, len(courses))
	for _, course := range courses {
		entries = append(entries, courseEntry{CourseWithFaculty: course, Submitted: submitted[course.ID]})
	}

	response.Success(c, http.StatusOK, gin.H{"courses": entries})
}

// Create godoc
// POST /api/v1/admin/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req model.SaveCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrFacultyNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// Update godoc
// PUT /api/v1/admin/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SaveCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound), errors.Is(err, service.ErrFacultyNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// Delete godoc
// DELETE /api/v1/admin/courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
