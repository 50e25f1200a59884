package models

// Badge is a praise tag attached to a review.
type Badge string

// Badges praising the learner; handed out by a senpai.
const (
	BadgeEager         Badge = "eager"
	BadgeQuickLearner  Badge = "quick_learner"
	BadgeGoodQuestions Badge = "good_questions"
	BadgeWellPrepared  Badge = "well_prepared"
)

// Badges praising the senpai; handed out by a kouhai.
const (
	BadgeGodSenpai     Badge = "godsenpai"
	BadgeClear         Badge = "clear"
	BadgePatient       Badge = "patient"
	BadgeKnowledgeable Badge = "knowledgeable"
)

// Badges either side may give.
const (
	BadgeHelpful  Badge = "helpful"
	BadgePunctual Badge = "punctual"
	BadgeFriendly Badge = "friendly"
)

const MaxReviewBadges = 3

// badgeAudience records whom a badge describes. An empty Role means common.
var badgeAudience = map[Badge]Role{
	BadgeEager:         RoleKouhai,
	BadgeQuickLearner:  RoleKouhai,
	BadgeGoodQuestions: RoleKouhai,
	BadgeWellPrepared:  RoleKouhai,

	BadgeGodSenpai:     RoleSenpai,
	BadgeClear:         RoleSenpai,
	BadgePatient:       RoleSenpai,
	BadgeKnowledgeable: RoleSenpai,

	BadgeHelpful:  "",
	BadgePunctual: "",
	BadgeFriendly: "",
}

func (b Badge) Known() bool {
	_, ok := badgeAudience[b]
	return ok
}

// AllowedFor reports whether a reviewer holding reviewerRole may give b.
// A reviewer describes the other side, so a senpai gives kouhai-directed
// badges and vice versa.
func (b Badge) AllowedFor(reviewerRole Role) bool {
	audience, ok := badgeAudience[b]
	if !ok {
		return false
	}
	return audience == "" || audience == reviewerRole.Opposite()
}

// BadgesFor lists the vocabulary offered to a reviewer with reviewerRole, in
// a stable order for badge pickers.
func BadgesFor(reviewerRole Role) []Badge {
	ordered := []Badge{
		BadgeEager, BadgeQuickLearner, BadgeGoodQuestions, BadgeWellPrepared,
		BadgeGodSenpai, BadgeClear, BadgePatient, BadgeKnowledgeable,
		BadgeHelpful, BadgePunctual, BadgeFriendly,
	}
	out := make([]Badge, 0, len(ordered))
	for _, b := range ordered {
		if b.AllowedFor(reviewerRole) {
			out = append(out, b)
		}
	}
	return out
}
