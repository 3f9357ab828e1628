package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jufeed/feedback-backend/internal/model"
	"github.com/jufeed/feedback-backend/internal/response"
	"github.com/jufeed/feedback-backend/internal/service"
	"github.com/jufeed/feedback-backend/internal/validator"
)

// QuestionHandler handles the feedback-question management endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// List godoc
// GET /api/v1/admin/questions
// Returns every question, active or not, ordered by position.
func (h *QuestionHandler) List(c *gin.Context) {
	questions, err := h.questionService.ListAll(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// ListActive godoc
// GET /api/v1/student/questions
// Returns the active questions shown on the feedback form, ordered by position.
func (h *QuestionHandler) ListActive(c *gin.Context) {
	questions, err := h.questionService.ListActive(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// Create godoc
// POST /api/v1/admin/questions
// Inserts a question at the requested position; later questions shift down.
func (h *QuestionHandler) Create(c *gin.Context) {
	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	required := true
	if req.Required != nil {
		required = *req.Required
	}

	q := &model.Question{
		Text:     req.Text,
		Type:     model.QuestionType(req.Type),
		Position: req.Position,
		Required: required,
		Active:   true,
	}

	if err := h.questionService.Create(c.Request.Context(), q); err != nil {
		h.failOrdering(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": q})
}

// Update godoc
// PUT /api/v1/admin/questions/:id
// Rewrites a question's fields; a changed position moves it within the order.
func (h *QuestionHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q := &model.Question{
		ID:       id,
		Text:     req.Text,
		Type:     model.QuestionType(req.Type),
		Position: req.Position,
		Required: *req.Required,
		Active:   *req.Active,
	}

	if err := h.questionService.Update(c.Request.Context(), q); err != nil {
		h.failOrdering(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": q})
}

// Delete godoc
// DELETE /api/v1/admin/questions/:id
// Removes a question; later questions shift up to close the gap.
func (h *QuestionHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		h.failOrdering(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Reorder godoc
// PUT /api/v1/admin/questions/reorder
// Applies a drag-and-drop batch of {id, display_order} pairs. The batch must
// permute the positions the listed questions already hold.
func (h *QuestionHandler) Reorder(c *gin.Context) {
	var req model.ReorderQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.questionService.Reorder(c.Request.Context(), req.Questions); err != nil {
		h.failOrdering(c, err)
		return
	}

	questions, err := h.questionService.ListAll(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// failOrdering maps ordering-engine errors onto HTTP error responses.
func (h *QuestionHandler) failOrdering(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrPositionOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrPositionOutOfRange)
	case errors.Is(err, service.ErrEmptyReorder):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	case errors.Is(err, service.ErrDuplicatePosition):
		response.Fail(c, http.StatusConflict, response.ErrDuplicatePosition)
	case errors.Is(err, service.ErrNotPermutation):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
