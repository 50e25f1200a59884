package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/skillmatch/internal/apperr"
	"github.com/lalith-99/skillmatch/internal/middleware"
	"github.com/lalith-99/skillmatch/internal/repository"
	"go.uber.org/zap"
)

type UserHandler struct {
	repo   repository.UserRepository
	logger *zap.Logger
}

func NewUserHandler(repo repository.UserRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{repo: repo, logger: logger}
}

// GetMe handles GET /v1/users/me
//
// The token's subject is the profile id. A valid token without a profile
// row means the provider's signup hook has not run yet, so that is a 404.
func (h *UserHandler) GetMe(c *gin.Context) {
	const op = "user.me"

	profile, err := h.repo.GetByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, h.logger, apperr.Unavailable(op, err))
		return
	}
	if profile == nil {
		writeError(c, h.logger, apperr.NotFound(op, "profile not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"email":   middleware.GetEmail(c),
	})
}
