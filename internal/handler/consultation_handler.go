package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/iep-planner-api/internal/models"
	"github.com/noah-isme/iep-planner-api/internal/service"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
	"github.com/noah-isme/iep-planner-api/pkg/response"
)

type consultationService interface {
	List(ctx context.Context, studentID string) ([]models.Consultation, error)
	Create(ctx context.Context, studentID string, req service.ConsultationRequest) (*models.Consultation, error)
	Update(ctx context.Context, studentID, consultationID string, req service.ConsultationUpdate) (*models.Consultation, error)
}

// ConsultationHandler exposes expert consultation requests of a student.
type ConsultationHandler struct {
	service consultationService
}

// NewConsultationHandler builds a ConsultationHandler.
func NewConsultationHandler(service consultationService) *ConsultationHandler {
	return &ConsultationHandler{service: service}
}

// List godoc
// @Summary List consultations
// @Tags Consultations
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /profile/{id}/consultations [get]
func (h *ConsultationHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Create godoc
// @Summary Request a consultation
// @Tags Consultations
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.ConsultationRequest true "Consultation request"
// @Success 201 {object} response.Envelope
// @Router /profile/{id}/consultations [post]
func (h *ConsultationHandler) Create(c *gin.Context) {
	var req service.ConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid consultation payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update a consultation
// @Tags Consultations
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param consultationId path string true "Consultation ID"
// @Param payload body service.ConsultationUpdate true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profile/{id}/consultations/{consultationId} [put]
func (h *ConsultationHandler) Update(c *gin.Context) {
	var req service.ConsultationUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid consultation payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), c.Param("consultationId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}
