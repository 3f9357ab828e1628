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

// FacultyHandler handles faculty management endpoints.
type FacultyHandler struct {
	facultyService *service.FacultyService
}

// NewFacultyHandler creates a new FacultyHandler.
func NewFacultyHandler(facultyService *service.FacultyService) *FacultyHandler {
	return &FacultyHandler{facultyService: facultyService}
}

// List godoc
// GET /api/v1/admin/faculties
func (h *FacultyHandler) List(c *gin.Context) {
	faculties, err := h.facultyService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"faculties": faculties})
}

// Create godoc
// POST /api/v1/admin/faculties
func (h *FacultyHandler) Create(c *gin.Context) {
	var req model.SaveFacultyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	faculty, err := h.facultyService.Create(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"faculty": faculty})
}

// Update godoc
// PUT /api/v1/admin/faculties/:id
func (h *FacultyHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SaveFacultyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	faculty, err := h.facultyService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrFacultyNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"faculty": faculty})
}

// Delete godoc
// DELETE /api/v1/admin/faculties/:id
func (h *FacultyHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.facultyService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrFacultyNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
