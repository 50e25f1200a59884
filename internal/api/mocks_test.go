package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/skillmatch/internal/models"
	"github.com/lalith-99/skillmatch/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockMatchService
type MockMatchService struct {
	mock.Mock
}

func (m *MockMatchService) ReportCompletion(ctx context.Context, matchID, actorID uuid.UUID) (*models.Match, error) {
	args := m.Called(ctx, matchID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}
func (m *MockMatchService) ConfirmCompletion(ctx context.Context, matchID, actorID uuid.UUID) (*models.Match, error) {
	args := m.Called(ctx, matchID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}
func (m *MockMatchService) CancelMatch(ctx context.Context, matchID, actorID uuid.UUID, reason *string) (*models.Match, error) {
	args := m.Called(ctx, matchID, actorID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}
func (m *MockMatchService) GetMatch(ctx context.Context, matchID, viewerID uuid.UUID) (*service.MatchView, error) {
	args := m.Called(ctx, matchID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MatchView), args.Error(1)
}
func (m *MockMatchService) ListMatches(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]service.MatchView, error) {
	args := m.Called(ctx, viewerID, limit, offset)
	return args.Get(0).([]service.MatchView), args.Error(1)
}

// MockReviewService
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) CanSubmitReview(ctx context.Context, matchID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, matchID, userID)
	return args.Bool(0), args.Error(1)
}
func (m *MockReviewService) SubmitReview(ctx context.Context, in service.ReviewInput) (*models.Review, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}
func (m *MockReviewService) ListReviews(ctx context.Context, matchID, viewerID uuid.UUID) ([]models.Review, error) {
	args := m.Called(ctx, matchID, viewerID)
	return args.Get(0).([]models.Review), args.Error(1)
}

// MockChatService
type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Send(ctx context.Context, matchID, senderID uuid.UUID, body string) (*models.Message, error) {
	args := m.Called(ctx, matchID, senderID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}
func (m *MockChatService) History(ctx context.Context, matchID, viewerID uuid.UUID, before int64, limit int) ([]models.Message, error) {
	args := m.Called(ctx, matchID, viewerID, before, limit)
	return args.Get(0).([]models.Message), args.Error(1)
}

// MockApplicationService
type MockApplicationService struct {
	mock.Mock
}

func (m *MockApplicationService) Accept(ctx context.Context, applicationID, ownerID uuid.UUID) (*models.Match, error) {
	args := m.Called(ctx, applicationID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
func (m *MockNotificationRepo) ListByRecipient(ctx context.Context, recipientID uuid.UUID, before int64, limit int) ([]models.Notification, error) {
	args := m.Called(ctx, recipientID, before, limit)
	return args.Get(0).([]models.Notification), args.Error(1)
}
func (m *MockNotificationRepo) MarkRead(ctx context.Context, id int64, recipientID uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, recipientID, at)
	return args.Bool(0), args.Error(1)
}
