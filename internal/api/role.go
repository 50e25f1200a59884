package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/skillmatch/internal/middleware"
	"github.com/lalith-99/skillmatch/internal/models"
)

// DeriveRole handles GET /v1/roles?post_type=&owner_id=&applicant_id=&viewer_id=
//
// viewer_id defaults to the caller. A viewer who is neither the owner nor
// the applicant gets {"role": null}, not an error.
func DeriveRole(c *gin.Context) {
	postType, err := models.ParsePostType(c.Query("post_type"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	ids := make(map[string]uuid.UUID, 3)
	for _, name := range []string{"owner_id", "applicant_id", "viewer_id"} {
		raw := c.Query(name)
		if raw == "" && name == "viewer_id" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid "+name)
			return
		}
		ids[name] = id
	}
	viewerID, ok := ids["viewer_id"]
	if !ok {
		viewerID = middleware.GetUserID(c)
	}

	role, ok := models.DeriveRole(postType, ids["owner_id"], ids["applicant_id"], viewerID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"role": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role})
}

// ListBadges handles GET /v1/badges?reviewer_role=senpai
//
// Returns the badges a reviewer with that role may hand out.
func ListBadges(c *gin.Context) {
	role := models.Role(c.Query("reviewer_role"))
	if !role.Valid() {
		badRequest(c, "reviewer_role must be senpai or kouhai")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"badges":     models.BadgesFor(role),
		"max_badges": models.MaxReviewBadges,
	})
}
