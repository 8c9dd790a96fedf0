package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/iep-planner-api/internal/middleware"
	"github.com/noah-isme/iep-planner-api/internal/service"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
	"github.com/noah-isme/iep-planner-api/pkg/response"
)

type resourceService interface {
	SearchResources(ctx context.Context, needs string) service.ResourceList
	SearchStrategies(ctx context.Context, challenge string) service.ResourceList
}

// ResourceHandler exposes resource and strategy search.
type ResourceHandler struct {
	service resourceService
}

// NewResourceHandler builds a ResourceHandler.
func NewResourceHandler(service resourceService) *ResourceHandler {
	return &ResourceHandler{service: service}
}

// Resources godoc
// @Summary Search teaching resources
// @Description Always answers with a list; a fixed list is served when search is unavailable.
// @Tags Resources
// @Produce json
// @Param studentId path string true "Student ID"
// @Param needs query string true "Needs to search for, e.g. ADHD"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /resources/{studentId} [get]
func (h *ResourceHandler) Resources(c *gin.Context) {
	needs := strings.TrimSpace(c.Query("needs"))
	if needs == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "needs query parameter is required"))
		return
	}
	list := h.service.SearchResources(c.Request.Context(), needs)
	middleware.SetSource(c, list.Source)
	middleware.SetMeta(c, "studentId", c.Param("studentId"))
	response.JSON(c, http.StatusOK, list.Resources, middleware.ExtractMeta(c))
}

// Strategies godoc
// @Summary Search teaching strategies
// @Tags Resources
// @Produce json
// @Param challenge path string true "Challenge to search for"
// @Success 200 {object} response.Envelope
// @Router /strategies/{challenge} [get]
func (h *ResourceHandler) Strategies(c *gin.Context) {
	list := h.service.SearchStrategies(c.Request.Context(), c.Param("challenge"))
	middleware.SetSource(c, list.Source)
	response.JSON(c, http.StatusOK, list.Resources, middleware.ExtractMeta(c))
}
