package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/iep-planner-api/internal/models"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
	"github.com/noah-isme/iep-planner-api/pkg/response"
)

type profileService interface {
	List(ctx context.Context, search string) ([]models.ProfileSummary, error)
	Get(ctx context.Context, id string) (*models.StudentProfile, error)
	Create(ctx context.Context, profile models.StudentProfile) (*models.StudentProfile, error)
	Update(ctx context.Context, id string, profile models.StudentProfile) (*models.StudentProfile, error)
	Delete(ctx context.Context, id string) error
	UpdateProgress(ctx context.Context, id string, data models.ProgressData) (*models.StudentProfile, error)
	UpdateCalendar(ctx context.Context, id string, data models.CalendarData) (*models.StudentProfile, error)
	UpdateResources(ctx context.Context, id string, data models.ResourceData) (*models.StudentProfile, error)
	UpdateLearningStyle(ctx context.Context, id string, data models.LearningStyleResults) (*models.StudentProfile, error)
	UpdateCultural(ctx context.Context, id string, data models.CulturalData) (*models.StudentProfile, error)
}

// ProfileHandler exposes student profile CRUD and section updates.
type ProfileHandler struct {
	service profileService
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(service profileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// List godoc
// @Summary List student profiles
// @Tags Profiles
// @Produce json
// @Param search query string false "Case-insensitive name filter"
// @Success 200 {object} response.Envelope
// @Router /profile [get]
func (h *ProfileHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items)})
}

// Create godoc
// @Summary Create a student profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param payload body models.StudentProfile true "Student profile"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /profile [post]
func (h *ProfileHandler) Create(c *gin.Context) {
	var req models.StudentProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}
	profile, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, profile)
}

// Get godoc
// @Summary Get a student profile
// @Tags Profiles
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profile/{id} [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// Update godoc
// @Summary Create or replace a student profile
// @Description Sections omitted from the payload keep their stored values.
// @Tags Profiles
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.StudentProfile true "Student profile"
// @Success 200 {object} response.Envelope
// @Router /profile/{id} [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	var req models.StudentProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}
	profile, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// Delete godoc
// @Summary Delete a student profile
// @Tags Profiles
// @Param id path string true "Student ID"
// @Success 204
// @Router /profile/{id} [delete]
func (h *ProfileHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateProgress godoc
// @Summary Replace progress tracking data
// @Tags Profiles
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.ProgressData true "Progress data"
// @Success 200 {object} response.Envelope
// @Router /profile/{id}/progress [put]
func (h *ProfileHandler) UpdateProgress(c *gin.Context) {
	var req models.ProgressData
	if !bindSection(c, &req, "invalid progress payload") {
		return
	}
	h.respond(c)(h.service.UpdateProgress(c.Request.Context(), c.Param("id"), req))
}

// UpdateCalendar godoc
// @Summary Replace calendar data
// @Tags Profiles
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.CalendarData true "Calendar data"
// @Success 200 {object} response.Envelope
// @Router /profile/{id}/calendar [put]
func (h *ProfileHandler) UpdateCalendar(c *gin.Context) {
	var req models.CalendarData
	if !bindSection(c, &req, "invalid calendar payload") {
		return
	}
	h.respond(c)(h.service.UpdateCalendar(c.Request.Context(), c.Param("id"), req))
}

// UpdateResources godoc
// @Summary Replace the saved resource library
// @Tags Profiles
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.ResourceData true "Resource data"
// @Success 200 {object} response.Envelope
// @Router /profile/{id}/resources [put]
func (h *ProfileHandler) UpdateResources(c *gin.Context) {
	var req models.ResourceData
	if !bindSection(c, &req, "invalid resource payload") {
		return
	}
	h.respond(c)(h.service.UpdateResources(c.Request.Context(), c.Param("id"), req))
}

// UpdateLearningStyle godoc
// @Summary Replace learning style assessment results
// @Tags Profiles
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.LearningStyleResults true "Assessment results"
// @Success 200 {object} response.Envelope
// @Router /profile/{id}/learning-style [put]
func (h *ProfileHandler) UpdateLearningStyle(c *gin.Context) {
	var req models.LearningStyleResults
	if !bindSection(c, &req, "invalid learning style payload") {
		return
	}
	h.respond(c)(h.service.UpdateLearningStyle(c.Request.Context(), c.Param("id"), req))
}

// UpdateCultural godoc
// @Summary Replace cultural context
// @Tags Profiles
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.CulturalData true "Cultural data"
// @Success 200 {object} response.Envelope
// @Router /profile/{id}/cultural [put]
func (h *ProfileHandler) UpdateCultural(c *gin.Context) {
	var req models.CulturalData
	if !bindSection(c, &req, "invalid cultural payload") {
		return
	}
	h.respond(c)(h.service.UpdateCultural(c.Request.Context(), c.Param("id"), req))
}

func (h *ProfileHandler) respond(c *gin.Context) func(*models.StudentProfile, error) {
	return func(profile *models.StudentProfile, err error) {
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, profile)
	}
}

func bindSection(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}
