package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PostType is the canonical post kind. The newer UI vocabulary
// ("support"/"challenge") is folded into these two values by ParsePostType
// and never reaches storage.
type PostType string

const (
	PostTypeTeach PostType = "teach"
	PostTypeLearn PostType = "learn"
)

// ParsePostType accepts both vocabularies: teach≡support, learn≡challenge.
func ParsePostType(s string) (PostType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "teach", "support":
		return PostTypeTeach, nil
	case "learn", "challenge":
		return PostTypeLearn, nil
	}
	return "", fmt.Errorf("unknown post type %q", s)
}

func (t PostType) Valid() bool {
	return t == PostTypeTeach || t == PostTypeLearn
}

type Role string

const (
	RoleSenpai Role = "senpai"
	RoleKouhai Role = "kouhai"
)

func (r Role) Valid() bool {
	return r == RoleSenpai || r == RoleKouhai
}

func (r Role) Opposite() Role {
	if r == RoleSenpai {
		return RoleKouhai
	}
	return RoleSenpai
}

// DeriveRole classifies viewerID within a match.
//
//	teach post: owner is senpai, applicant is kouhai
//	learn post: owner is kouhai, applicant is senpai
//
// The second result is false when viewerID is neither the owner nor the
// applicant, or when postType is not canonical.
func DeriveRole(postType PostType, postOwnerID, applicantID, viewerID uuid.UUID) (Role, bool) {
	var ownerRole Role
	switch postType {
	case PostTypeTeach:
		ownerRole = RoleSenpai
	case PostTypeLearn:
		ownerRole = RoleKouhai
	default:
		return "", false
	}

	switch viewerID {
	case postOwnerID:
		return ownerRole, true
	case applicantID:
		return ownerRole.Opposite(), true
	}
	return "", false
}
