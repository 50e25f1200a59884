package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/lalith-99/skillmatch/internal/apperr"
	"github.com/lalith-99/skillmatch/internal/events"
	"github.com/lalith-99/skillmatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completedMatch returns a teach match (owner = senpai) that has been
// reported by the applicant and confirmed by the owner.
func completedMatch(t *testing.T, f *fixture) (matchID, senpai, kouhai uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	matchID, senpai, kouhai = f.store.seedMatch(models.PostTypeTeach)
	_, err := f.matches.ReportCompletion(ctx, matchID, kouhai)
	require.NoError(t, err)
	_, err = f.matches.ConfirmCompletion(ctx, matchID, senpai)
	require.NoError(t, err)
	return matchID, senpai, kouhai
}

func TestReviewService_SubmitOncePerReviewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m1, u1, u2 := completedMatch(t, f)

	review, err := f.reviews.SubmitReview(ctx, ReviewInput{
		MatchID: m1, ReviewerID: u1, RevieweeID: u2,
		ReviewerRole: models.RoleSenpai,
		Badges:       []models.Badge{models.BadgeEager},
		Comment:      ptr("great job"),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, review.ID)
	assert.Equal(t, []models.Badge{models.BadgeEager}, review.Badges)

	_, err = f.reviews.SubmitReview(ctx, ReviewInput{
		MatchID: m1, ReviewerID: u1, RevieweeID: u2,
		ReviewerRole: models.RoleSenpai,
		Badges:       []models.Badge{models.BadgeEager},
		Comment:      ptr("again"),
	})
	assertKind(t, err, apperr.KindAlreadyExists)

	received := f.pub.ofType(events.ReviewReceived)
	require.Len(t, received, 1)
	assert.Equal(t, u2, received[0].RecipientID)
}

func TestReviewService_ThreeBadgesMax(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m1, u1, u2 := completedMatch(t, f)

	_, err := f.reviews.SubmitReview(ctx, ReviewInput{
		MatchID: m1, ReviewerID: u2, RevieweeID: u1,
		ReviewerRole: models.RoleKouhai,
		Badges:       []models.Badge{models.BadgeGodSenpai, models.BadgeClear, models.BadgeHelpful, models.BadgePatient},
	})
	assertKind(t, err, apperr.KindValidation)

	review, err := f.reviews.SubmitReview(ctx, ReviewInput{
		MatchID: m1, ReviewerID: u2, RevieweeID: u1,
		ReviewerRole: models.RoleKouhai,
		Badges:       []models.Badge{models.BadgeGodSenpai, models.BadgeClear, models.BadgeHelpful},
	})
	require.NoError(t, err)
	assert.Len(t, review.Badges, 3)
	assert.Nil(t, review.Comment)
}

func TestReviewService_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(in *ReviewInput, senpai, kouhai uuid.UUID)
		want   apperr.Kind
		msg    string
	}{
		{
			name: "senpai gives a senpai-directed badge",
			mutate: func(in *ReviewInput, _, _ uuid.UUID) {
				in.Badges = []models.Badge{models.BadgeGodSenpai}
			},
			want: apperr.KindValidation,
			msg:  "cannot be given by a senpai",
		},
		{
			name: "unknown badge",
			mutate: func(in *ReviewInput, _, _ uuid.UUID) {
				in.Badges = []models.Badge{"legendary"}
			},
			want: apperr.KindValidation,
		},
		{
			name: "duplicate badges",
			mutate: func(in *ReviewInput, _, _ uuid.UUID) {
				in.Badges = []models.Badge{models.BadgeEager, models.BadgeEager}
			},
			want: apperr.KindValidation,
			msg:  "duplicates",
		},
		{
			name: "comment too long",
			mutate: func(in *ReviewInput, _, _ uuid.UUID) {
				in.Comment = ptr(strings.Repeat("x", 501))
			},
			want: apperr.KindValidation,
			msg:  "at most 500",
		},
		{
			name: "claimed role differs from derived role",
			mutate: func(in *ReviewInput, _, _ uuid.UUID) {
				in.ReviewerRole = models.RoleKouhai
				in.Badges = []models.Badge{models.BadgeHelpful}
			},
			want: apperr.KindValidation,
			msg:  "reviewer_role must be senpai",
		},
		{
			name: "invalid role",
			mutate: func(in *ReviewInput, _, _ uuid.UUID) {
				in.ReviewerRole = "sensei"
			},
			want: apperr.KindValidation,
		},
		{
			name: "reviewing yourself",
			mutate: func(in *ReviewInput, senpai, _ uuid.UUID) {
				in.RevieweeID = senpai
			},
			want: apperr.KindValidation,
			msg:  "match partner",
		},
		{
			name: "reviewer is an outsider",
			mutate: func(in *ReviewInput, _, _ uuid.UUID) {
				in.ReviewerID = uuid.New()
			},
			want: apperr.KindForbidden,
		},
		{
			name: "match does not exist",
			mutate: func(in *ReviewInput, _, _ uuid.UUID) {
				in.MatchID = uuid.New()
			},
			want: apperr.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			matchID, senpai, kouhai := completedMatch(t, f)
			in := ReviewInput{
				MatchID: matchID, ReviewerID: senpai, RevieweeID: kouhai,
				ReviewerRole: models.RoleSenpai,
				Badges:       []models.Badge{models.BadgeEager},
			}
			tt.mutate(&in, senpai, kouhai)

			_, err := f.reviews.SubmitReview(ctx, in)
			assertKind(t, err, tt.want)
			if tt.msg != "" {
				assert.Contains(t, apperr.Message(err), tt.msg)
			}
		})
	}
}

func TestReviewService_RequiresCompletedMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	matchID, senpai, kouhai := f.store.seedMatch(models.PostTypeTeach)

	in := ReviewInput{
		MatchID: matchID, ReviewerID: kouhai, RevieweeID: senpai,
		ReviewerRole: models.RoleKouhai,
		Badges:       []models.Badge{models.BadgePatient},
	}

	_, err := f.reviews.SubmitReview(ctx, in)
	assertKind(t, err, apperr.KindInvalidState)

	// Still closed while the report awaits confirmation, even for the
	// partner who is about to confirm.
	_, err = f.matches.ReportCompletion(ctx, matchID, senpai)
	require.NoError(t, err)
	_, err = f.reviews.SubmitReview(ctx, in)
	assertKind(t, err, apperr.KindInvalidState)

	_, err = f.matches.ConfirmCompletion(ctx, matchID, kouhai)
	require.NoError(t, err)
	_, err = f.reviews.SubmitReview(ctx, in)
	require.NoError(t, err)
}

func TestReviewService_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	matchID, senpai, kouhai := completedMatch(t, f)

	const attempts = 16
	results := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.reviews.SubmitReview(ctx, ReviewInput{
				MatchID: matchID, ReviewerID: kouhai, RevieweeID: senpai,
				ReviewerRole: models.RoleKouhai,
				Badges:       []models.Badge{models.BadgeClear},
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range results {
		if err == nil {
			ok++
			continue
		}
		assertKind(t, err, apperr.KindAlreadyExists)
	}
	assert.Equal(t, 1, ok)

	reviews, err := f.reviews.ListReviews(ctx, matchID, senpai)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestReviewService_CanSubmitReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	active, owner, _ := f.store.seedMatch(models.PostTypeLearn)
	can, err := f.reviews.CanSubmitReview(ctx, active, owner)
	require.NoError(t, err)
	assert.False(t, can, "active match")

	matchID, senpai, kouhai := completedMatch(t, f)
	can, err = f.reviews.CanSubmitReview(ctx, matchID, senpai)
	require.NoError(t, err)
	assert.True(t, can)

	can, err = f.reviews.CanSubmitReview(ctx, matchID, uuid.New())
	require.NoError(t, err)
	assert.False(t, can, "outsider")

	_, err = f.reviews.SubmitReview(ctx, ReviewInput{
		MatchID: matchID, ReviewerID: senpai, RevieweeID: kouhai,
		ReviewerRole: models.RoleSenpai,
	})
	require.NoError(t, err)

	can, err = f.reviews.CanSubmitReview(ctx, matchID, senpai)
	require.NoError(t, err)
	assert.False(t, can, "already reviewed")

	can, err = f.reviews.CanSubmitReview(ctx, matchID, kouhai)
	require.NoError(t, err)
	assert.True(t, can, "partner still may")

	_, err = f.reviews.CanSubmitReview(ctx, uuid.New(), senpai)
	assertKind(t, err, apperr.KindNotFound)
}

func TestReviewService_ListReviewsParticipantsOnly(t *testing.T) {
	f := newFixture(t)
	matchID, _, _ := completedMatch(t, f)

	_, err := f.reviews.ListReviews(context.Background(), matchID, uuid.New())
	assertKind(t, err, apperr.KindForbidden)
}
