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

// PasscodeHeader carries the passcode of a protected share link.
const PasscodeHeader = "X-Share-Passcode"

type shareService interface {
	Issue(ctx context.Context, studentID string, req service.ShareRequest) (*models.ShareLink, error)
	SharedPlan(ctx context.Context, claims *models.ShareClaims, passcode string) (*models.LearningPlan, error)
}

// ShareHandler issues and serves read-only plan links.
type ShareHandler struct {
	service shareService
}

// NewShareHandler builds a ShareHandler.
func NewShareHandler(service shareService) *ShareHandler {
	return &ShareHandler{service: service}
}

// Issue godoc
// @Summary Create a read-only link to the latest plan
// @Tags Sharing
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.ShareRequest false "Optional passcode and lifetime"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profile/{id}/share [post]
func (h *ShareHandler) Issue(c *gin.Context) {
	var req service.ShareRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid share payload"))
			return
		}
	}
	link, err := h.service.Issue(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Shared godoc
// @Summary Read a shared plan
// @Tags Sharing
// @Produce json
// @Param Authorization header string false "Bearer share token"
// @Param token query string false "Share token"
// @Param X-Share-Passcode header string false "Passcode for protected links"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /shared/plan [get]
func (h *ShareHandler) Shared(c *gin.Context) {
	plan, err := h.service.SharedPlan(c.Request.Context(), middleware.ShareClaims(c), c.GetHeader(PasscodeHeader))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan)
}
