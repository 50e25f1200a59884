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

type ChatService interface {
	Send(ctx context.Context, matchID, senderID uuid.UUID, body string) (*models.Message, error)
	History(ctx context.Context, matchID, viewerID uuid.UUID, before int64, limit int) ([]models.Message, error)
}

type MessageHandler struct {
	svc    ChatService
	logger *zap.Logger
}

func NewMessageHandler(svc ChatService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{svc: svc, logger: logger}
}

type createMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// Create handles POST /v1/matches/:id/messages
func (h *MessageHandler) Create(c *gin.Context) {
	matchID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	msg, err := h.svc.Send(c.Request.Context(), matchID, middleware.GetUserID(c), req.Body)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// List handles GET /v1/matches/:id/messages?before=123&limit=50
//
// Cursor-based pagination:
//   - "before" = message ID. "Give me messages older than this." 0 = start from latest.
//   - "limit"  = how many to return. Default 50, capped at 100.
func (h *MessageHandler) List(c *gin.Context) {
	matchID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	before, limit, ok := pageParams(c)
	if !ok {
		return
	}

	messages, err := h.svc.History(c.Request.Context(), matchID, middleware.GetUserID(c), before, limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}
