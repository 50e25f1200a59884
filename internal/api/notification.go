package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lalith-99/skillmatch/internal/apperr"
	"github.com/lalith-99/skillmatch/internal/events"
	"github.com/lalith-99/skillmatch/internal/middleware"
	"github.com/lalith-99/skillmatch/internal/repository"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Subscriber is implemented by events.Bus.
type Subscriber interface {
	Subscribe(ctx context.Context, recipientID uuid.UUID) (*events.Subscription, error)
}

type NotificationHandler struct {
	repo     repository.NotificationRepository
	sub      Subscriber
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewNotificationHandler builds the inbox handler. allowedOrigins limits
// which browser origins may open the websocket; empty allows any origin,
// which is only sensible in development.
func NewNotificationHandler(repo repository.NotificationRepository, sub Subscriber, allowedOrigins []string, logger *zap.Logger) *NotificationHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &NotificationHandler{
		repo: repo,
		sub:  sub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
		logger: logger,
	}
}

// List handles GET /v1/notifications?before=123&limit=50
func (h *NotificationHandler) List(c *gin.Context) {
	before, limit, ok := pageParams(c)
	if !ok {
		return
	}

	items, err := h.repo.ListByRecipient(c.Request.Context(), middleware.GetUserID(c), before, limit)
	if err != nil {
		writeError(c, h.logger, apperr.Unavailable("notification.list", err))
		return
	}
	c.JSON(http.StatusOK, items)
}

// MarkRead handles POST /v1/notifications/:id/read
//
// Marking an already-read notification again is a no-op, not an error.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	const op = "notification.read"

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		badRequest(c, "invalid id")
		return
	}

	found, err := h.repo.MarkRead(c.Request.Context(), id, middleware.GetUserID(c), time.Now().UTC())
	if err != nil {
		writeError(c, h.logger, apperr.Unavailable(op, err))
		return
	}
	if !found {
		writeError(c, h.logger, apperr.NotFound(op, "notification not found"))
		return
	}
	c.Status(http.StatusNoContent)
}

// Stream handles GET /v1/notifications/stream (websocket)
//
// The server only writes. Reads exist to process pongs and to notice the
// client going away, which ends the subscription.
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID := middleware.GetUserID(c)

	// Subscribe before upgrading so a Redis failure is still a plain 503.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub, err := h.sub.Subscribe(ctx, userID)
	if err != nil {
		writeError(c, h.logger, apperr.Unavailable("notification.stream", err))
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Info("notification stream opened", zap.Stringer("user_id", userID))
	defer h.logger.Info("notification stream closed", zap.Stringer("user_id", userID))

	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
