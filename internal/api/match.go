package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/skillmatch/internal/middleware"
	"github.com/lalith-99/skillmatch/internal/models"
	"github.com/lalith-99/skillmatch/internal/service"
	"go.uber.org/zap"
)

// MatchService is what the handler needs from service.MatchService.
type MatchService interface {
	ReportCompletion(ctx context.Context, matchID, actorID uuid.UUID) (*models.Match, error)
	ConfirmCompletion(ctx context.Context, matchID, actorID uuid.UUID) (*models.Match, error)
	CancelMatch(ctx context.Context, matchID, actorID uuid.UUID, reason *string) (*models.Match, error)
	GetMatch(ctx context.Context, matchID, viewerID uuid.UUID) (*service.MatchView, error)
	ListMatches(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]service.MatchView, error)
}

type MatchHandler struct {
	svc    MatchService
	logger *zap.Logger
}

func NewMatchHandler(svc MatchService, logger *zap.Logger) *MatchHandler {
	return &MatchHandler{svc: svc, logger: logger}
}

// Get handles GET /v1/matches/:id
func (h *MatchHandler) Get(c *gin.Context) {
	matchID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	view, err := h.svc.GetMatch(c.Request.Context(), matchID, middleware.GetUserID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// List handles GET /v1/matches?limit=20&offset=0
func (h *MatchHandler) List(c *gin.Context) {
	limit, offset := 20, 0
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			badRequest(c, "invalid 'limit' parameter")
			return
		}
		limit = min(n, 100)
	}
	if o := c.Query("offset"); o != "" {
		n, err := strconv.Atoi(o)
		if err != nil || n < 0 {
			badRequest(c, "invalid 'offset' parameter")
			return
		}
		offset = n
	}

	views, err := h.svc.ListMatches(c.Request.Context(), middleware.GetUserID(c), limit, offset)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// Report handles POST /v1/matches/:id/report
func (h *MatchHandler) Report(c *gin.Context) {
	matchID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	m, err := h.svc.ReportCompletion(c.Request.Context(), matchID, middleware.GetUserID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Confirm handles POST /v1/matches/:id/confirm
func (h *MatchHandler) Confirm(c *gin.Context) {
	matchID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	m, err := h.svc.ConfirmCompletion(c.Request.Context(), matchID, middleware.GetUserID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type cancelMatchRequest struct {
	Reason *string `json:"reason"`
}

// Cancel handles POST /v1/matches/:id/cancel
//
// The body is optional; an empty body cancels without a reason.
func (h *MatchHandler) Cancel(c *gin.Context) {
	matchID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req cancelMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err.Error())
		return
	}

	m, err := h.svc.CancelMatch(c.Request.Context(), matchID, middleware.GetUserID(c), req.Reason)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
