package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/iep-planner-api/internal/middleware"
	"github.com/noah-isme/iep-planner-api/internal/models"
	"github.com/noah-isme/iep-planner-api/internal/service"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
	"github.com/noah-isme/iep-planner-api/pkg/response"
)

type planService interface {
	Generate(ctx context.Context, profile models.StudentProfile) (*models.LearningPlan, error)
	Adapt(ctx context.Context, studentID string, progress *models.ProgressData) (*models.LearningPlan, error)
	LatestPlan(ctx context.Context, studentID string) (*models.LearningPlan, error)
}

type planExporter interface {
	ExportPlan(ctx context.Context, studentID, format string) (*service.ExportFile, error)
}

// PlanHandler exposes plan generation, adaptation and export.
type PlanHandler struct {
	plans    planService
	exporter planExporter
}

// NewPlanHandler builds a PlanHandler.
func NewPlanHandler(plans planService, exporter planExporter) *PlanHandler {
	return &PlanHandler{plans: plans, exporter: exporter}
}

// Generate godoc
// @Summary Generate a 7-day learning plan
// @Description Drafts a plan from the language model, falling back to a template plan when the model is unavailable.
// @Tags Plans
// @Accept json
// @Produce json
// @Param payload body models.StudentProfile true "Student profile"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /plan/generate [post]
func (h *PlanHandler) Generate(c *gin.Context) {
	var profile models.StudentProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}
	plan, err := h.plans.Generate(c.Request.Context(), profile)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetSource(c, string(plan.Source))
	response.JSON(c, http.StatusOK, plan, middleware.ExtractMeta(c))
}

// Adapt godoc
// @Summary Adapt a plan from recorded progress
// @Tags Plans
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param payload body models.ProgressData false "Progress data; stored progress is used when omitted"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /plan/adapt/{studentId} [post]
func (h *PlanHandler) Adapt(c *gin.Context) {
	var progress *models.ProgressData
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		var body models.ProgressData
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid progress payload"))
			return
		}
		progress = &body
	}
	plan, err := h.plans.Adapt(c.Request.Context(), c.Param("studentId"), progress)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetSource(c, string(plan.Source))
	response.JSON(c, http.StatusOK, plan, middleware.ExtractMeta(c))
}

// Latest godoc
// @Summary Get the latest plan of a student
// @Tags Plans
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profile/{id}/plan [get]
func (h *PlanHandler) Latest(c *gin.Context) {
	plan, err := h.plans.LatestPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan)
}

// Export godoc
// @Summary Export the latest plan
// @Tags Plans
// @Produce application/pdf
// @Produce text/csv
// @Param id path string true "Student ID"
// @Param format query string false "pdf (default) or csv"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /profile/{id}/plan/export [get]
func (h *PlanHandler) Export(c *gin.Context) {
	file, err := h.exporter.ExportPlan(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}
