package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/skillmatch/internal/middleware"
	"github.com/lalith-99/skillmatch/internal/models"
	"github.com/lalith-99/skillmatch/internal/service"
	"go.uber.org/zap"
)

type ReviewService interface {
	CanSubmitReview(ctx context.Context, matchID, userID uuid.UUID) (bool, error)
	SubmitReview(ctx context.Context, in service.ReviewInput) (*models.Review, error)
	ListReviews(ctx context.Context, matchID, viewerID uuid.UUID) ([]models.Review, error)
}

type ReviewHandler struct {
	svc    ReviewService
	logger *zap.Logger
}

func NewReviewHandler(svc ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{svc: svc, logger: logger}
}

// Eligibility handles GET /v1/matches/:id/reviews/eligibility
func (h *ReviewHandler) Eligibility(c *gin.Context) {
	matchID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	can, err := h.svc.CanSubmitReview(c.Request.Context(), matchID, middleware.GetUserID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"can_submit": can})
}

// submitReviewRequest is the body of POST /v1/matches/:id/reviews. The match
// comes from the path and the reviewer from the token; field rules are
// enforced by the service so every caller gets the same messages.
type submitReviewRequest struct {
	RevieweeID   uuid.UUID      `json:"reviewee_id"`
	ReviewerRole models.Role    `json:"reviewer_role"`
	Badges       []models.Badge `json:"badges"`
	Comment      *string        `json:"comment"`
}

// Submit handles POST /v1/matches/:id/reviews
func (h *ReviewHandler) Submit(c *gin.Context) {
	matchID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	review, err := h.svc.SubmitReview(c.Request.Context(), service.ReviewInput{
		MatchID:      matchID,
		ReviewerID:   middleware.GetUserID(c),
		RevieweeID:   req.RevieweeID,
		ReviewerRole: req.ReviewerRole,
		Badges:       req.Badges,
		Comment:      req.Comment,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// List handles GET /v1/matches/:id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	matchID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	reviews, err := h.svc.ListReviews(c.Request.Context(), matchID, middleware.GetUserID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}
