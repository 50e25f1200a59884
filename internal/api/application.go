package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/skillmatch/internal/middleware"
	"github.com/lalith-99/skillmatch/internal/models"
	"go.uber.org/zap"
)

type ApplicationService interface {
	Accept(ctx context.Context, applicationID, ownerID uuid.UUID) (*models.Match, error)
}

type ApplicationHandler struct {
	svc    ApplicationService
	logger *zap.Logger
}

func NewApplicationHandler(svc ApplicationService, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{svc: svc, logger: logger}
}

// Accept handles POST /v1/applications/:id/accept
//
// Returns the newly created match.
func (h *ApplicationHandler) Accept(c *gin.Context) {
	applicationID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	m, err := h.svc.Accept(c.Request.Context(), applicationID, middleware.GetUserID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}
