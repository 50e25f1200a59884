package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lalith-99/skillmatch/internal/apperr"
	"github.com/lalith-99/skillmatch/internal/events"
	"github.com/lalith-99/skillmatch/internal/models"
	"github.com/lalith-99/skillmatch/internal/repository"
	"go.uber.org/zap"
)

// ReviewInput is everything a reviewer submits. ReviewerRole is sent by the
// client (it picks the badge vocabulary) and checked against DeriveRole.
type ReviewInput struct {
	MatchID      uuid.UUID      `json:"match_id" validate:"required"`
	ReviewerID   uuid.UUID      `json:"reviewer_id" validate:"required"`
	RevieweeID   uuid.UUID      `json:"reviewee_id" validate:"required"`
	ReviewerRole models.Role    `json:"reviewer_role" validate:"required,oneof=senpai kouhai"`
	Badges       []models.Badge `json:"badges" validate:"max=3,unique,dive,required"`
	Comment      *string        `json:"comment" validate:"omitempty,max=500"`
}

type ReviewService struct {
	reviews      repository.ReviewRepository
	matches      repository.MatchRepository
	participants repository.ParticipantRepository
	notifier     notifier
	validate     *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

func NewReviewService(
	reviews repository.ReviewRepository,
	matches repository.MatchRepository,
	participants repository.ParticipantRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:      reviews,
		matches:      matches,
		participants: participants,
		notifier:     notifier{publisher: publisher, logger: logger},
		validate:     newValidator(),
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CanSubmitReview is true when userID took part in a completed match and
// has not reviewed it yet.
func (s *ReviewService) CanSubmitReview(ctx context.Context, matchID, userID uuid.UUID) (bool, error) {
	const op = "review.eligibility"

	mc, err := s.participants.GetMatchContext(ctx, matchID)
	if err != nil {
		return false, apperr.Unavailable(op, err)
	}
	if mc == nil {
		return false, apperr.NotFound(op, "match not found")
	}
	if !mc.HasParticipant(userID) {
		return false, nil
	}

	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return false, apperr.Unavailable(op, err)
	}
	if m == nil {
		return false, apperr.NotFound(op, "match not found")
	}
	if m.Status != models.MatchCompleted {
		return false, nil
	}

	exists, err := s.reviews.Exists(ctx, matchID, userID)
	if err != nil {
		return false, apperr.Unavailable(op, err)
	}
	return !exists, nil
}

// SubmitReview stores the reviewer's single review of their partner.
func (s *ReviewService) SubmitReview(ctx context.Context, in ReviewInput) (*models.Review, error) {
	const op = "review.submit"

	in.Comment = trimOptional(in.Comment)
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.Validation(op, "%s", describeValidation(err))
	}
	for _, b := range in.Badges {
		if !b.Known() {
			return nil, apperr.Validation(op, "unknown badge %q", b)
		}
		if !b.AllowedFor(in.ReviewerRole) {
			return nil, apperr.Validation(op, "badge %q cannot be given by a %s", b, in.ReviewerRole)
		}
	}

	mc, err := s.participants.GetMatchContext(ctx, in.MatchID)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	if mc == nil {
		return nil, apperr.NotFound(op, "match not found")
	}
	role, ok := mc.RoleOf(in.ReviewerID)
	if !ok {
		return nil, apperr.Forbidden(op, "you are not a participant of this match")
	}
	if role != in.ReviewerRole {
		return nil, apperr.Validation(op, "reviewer_role must be %s for this match", role)
	}
	if partner, _ := mc.Partner(in.ReviewerID); partner != in.RevieweeID {
		return nil, apperr.Validation(op, "reviewee_id must be your match partner")
	}

	m, err := s.matches.GetByID(ctx, in.MatchID)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	if m == nil {
		return nil, apperr.NotFound(op, "match not found")
	}
	if m.Status != models.MatchCompleted {
		return nil, apperr.InvalidState(op, "reviews open once the match is completed")
	}

	badges := in.Badges
	if badges == nil {
		badges = []models.Badge{}
	}
	review := &models.Review{
		MatchID:      in.MatchID,
		ReviewerID:   in.ReviewerID,
		RevieweeID:   in.RevieweeID,
		ReviewerRole: in.ReviewerRole,
		Badges:       badges,
		Comment:      in.Comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.AlreadyExists(op, "you already reviewed this match")
		}
		return nil, apperr.Unavailable(op, err)
	}

	s.logger.Info("review submitted",
		zap.Stringer("match_id", in.MatchID),
		zap.Stringer("reviewer_id", in.ReviewerID),
		zap.String("reviewer_role", string(in.ReviewerRole)),
	)
	s.notifier.notify(ctx, events.ReviewReceived, in.MatchID, in.ReviewerID, s.now(), in.RevieweeID)
	return review, nil
}

// ListReviews returns the reviews of a match to its participants.
func (s *ReviewService) ListReviews(ctx context.Context, matchID, viewerID uuid.UUID) ([]models.Review, error) {
	const op = "review.list"

	mc, err := s.participants.GetMatchContext(ctx, matchID)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	if mc == nil {
		return nil, apperr.NotFound(op, "match not found")
	}
	if !mc.HasParticipant(viewerID) {
		return nil, apperr.Forbidden(op, "you are not a participant of this match")
	}

	reviews, err := s.reviews.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	return reviews, nil
}
