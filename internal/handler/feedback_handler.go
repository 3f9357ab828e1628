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

// FeedbackHandler handles submission and admin review endpoints.
type FeedbackHandler struct {
	feedbackService *service.FeedbackService
	studentService  *service.StudentService
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(feedbackService *service.FeedbackService, studentService *service.StudentService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService, studentService: studentService}
}

// Submit godoc
// POST /api/v1/student/feedback
// Records the student's evaluation of one course. One submission per
// student per course.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SubmitFeedbackRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	feedback, err := h.feedbackService.Submit(c.Request.Context(), student, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrFeedbackAlreadySubmitted):
			response.Fail(c, http.StatusConflict, response.ErrFeedbackAlreadySent)
		case errors.Is(err, service.ErrMissingRequiredAnswers):
			response.Fail(c, http.StatusBadRequest, response.ErrMissingRequiredAnswers)
		case errors.Is(err, service.ErrUnknownQuestionAnswer),
			errors.Is(err, service.ErrInvalidRatingAnswer),
			errors.Is(err, service.ErrFacultyCourseMismatch):
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"feedback": feedback})
}

// List godoc
// GET /api/v1/admin/feedback?page=1&per_page=20&course_id=...
// Returns feedback submissions joined with student, course and faculty
// names, newest first.
func (h *FeedbackHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var courseID *int
	if raw := c.Query("course_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		courseID = &id
	}

	details, total, err := h.feedbackService.ListDetails(c.Request.Context(), courseID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	totalPages := (total + perPage - 1) / perPage
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"feedback": details}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	})
}

// Summary godoc
// GET /api/v1/admin/feedback/summary
// Returns the per-course aggregates maintained by the summary worker.
func (h *FeedbackHandler) Summary(c *gin.Context) {
	summaries, err := h.feedbackService.ListSummaries(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"summaries": summaries})
}

// Delete godoc
// DELETE /api/v1/admin/feedback/:id
func (h *FeedbackHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.feedbackService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrFeedbackNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
