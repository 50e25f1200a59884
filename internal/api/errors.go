package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/skillmatch/internal/apperr"
	"go.uber.org/zap"
)

// statusFor maps an error kind to its HTTP status. InvalidState and
// AlreadyExists are both conflicts with the current state of the resource.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindInvalidState, apperr.KindAlreadyExists:
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends {"error": msg, "code": kind}. Causes of server-side
// failures are logged here and never sent to the client.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("code", string(kind)),
			zap.Error(err),
		)
	}
	if kind == "" {
		kind = "internal"
	}

	c.JSON(status, gin.H{
		"error": apperr.Message(err),
		"code":  kind,
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "bad_request"})
}

// uuidParam parses a path parameter, answering 400 itself on failure.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads ?before=<id>&limit=<n> for cursor-paginated lists.
// before=0 means "start from the latest". limit is capped at 100.
func pageParams(c *gin.Context) (before int64, limit int, ok bool) {
	var err error
	if b := c.Query("before"); b != "" {
		before, err = strconv.ParseInt(b, 10, 64)
		if err != nil || before < 0 {
			badRequest(c, "invalid 'before' parameter")
			return 0, 0, false
		}
	}

	limit = 50
	if l := c.Query("limit"); l != "" {
		limit, err = strconv.Atoi(l)
		if err != nil || limit < 1 {
			badRequest(c, "invalid 'limit' parameter")
			return 0, 0, false
		}
		if limit > 100 {
			limit = 100
		}
	}
	return before, limit, true
}
