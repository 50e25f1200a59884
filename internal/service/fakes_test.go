package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/skillmatch/internal/events"
	"github.com/lalith-99/skillmatch/internal/models"
	"github.com/lalith-99/skillmatch/internal/repository"
)

// memStore is an in-memory stand-in for the Postgres stores. Every Mark*
// method applies the same guard as the SQL WHERE clause under one mutex,
// so concurrent callers race exactly like they would against the database.
type memStore struct {
	mu       sync.Mutex
	matches  map[uuid.UUID]*models.Match
	contexts map[uuid.UUID]*models.MatchContext
	apps     map[uuid.UUID]*models.Application
	posts    map[uuid.UUID]*models.Post
	byApp    map[uuid.UUID]uuid.UUID
	reviews  []models.Review
	messages []models.Message
	nextID   int64

	// beforeWrite, when set, runs once before the next guarded update.
	// Tests use it to let the other participant's write land first.
	beforeWrite func()
	// failWith makes every call fail, simulating an unreachable database.
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		matches:  make(map[uuid.UUID]*models.Match),
		contexts: make(map[uuid.UUID]*models.MatchContext),
		apps:     make(map[uuid.UUID]*models.Application),
		posts:    make(map[uuid.UUID]*models.Post),
		byApp:    make(map[uuid.UUID]uuid.UUID),
	}
}

func ptr[T any](v T) *T { return &v }

// seedMatch creates an active match between a fresh owner and applicant.
func (s *memStore) seedMatch(postType models.PostType) (matchID, owner, applicant uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, applicant = uuid.New(), uuid.New()
	post := &models.Post{ID: uuid.New(), OwnerID: owner, Type: postType, Title: "Go concurrency", Status: models.PostStatusOpen}
	app := &models.Application{ID: uuid.New(), PostID: post.ID, ApplicantID: applicant, Status: models.ApplicationAccepted}
	m := &models.Match{ID: uuid.New(), ApplicationID: app.ID, Status: models.MatchActive, MatchedAt: time.Now().UTC()}

	s.posts[post.ID] = post
	s.apps[app.ID] = app
	s.matches[m.ID] = m
	s.byApp[app.ID] = m.ID
	s.contexts[m.ID] = &models.MatchContext{
		MatchID: m.ID, PostID: post.ID, PostType: postType,
		PostOwnerID: owner, ApplicantID: applicant, PostTitle: post.Title,
	}
	return m.ID, owner, applicant
}

// seedApplication creates a pending application on an open post.
func (s *memStore) seedApplication(postType models.PostType) (appID, owner, applicant uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, applicant = uuid.New(), uuid.New()
	post := &models.Post{ID: uuid.New(), OwnerID: owner, Type: postType, Title: "Pairing on SQL", Status: models.PostStatusOpen}
	app := &models.Application{ID: uuid.New(), PostID: post.ID, ApplicantID: applicant, Status: models.ApplicationPending}
	s.posts[post.ID] = post
	s.apps[app.ID] = app
	return app.ID, owner, applicant
}

func (s *memStore) snapshot(matchID uuid.UUID) models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.matches[matchID]
}

func (s *memStore) hook() {
	s.mu.Lock()
	fn := s.beforeWrite
	s.beforeWrite = nil
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// guarded applies update to the match when guard holds, returning nil, nil
// otherwise, like an UPDATE ... WHERE ... RETURNING that matched no row.
func (s *memStore) guarded(matchID uuid.UUID, guard func(*models.Match) bool, update func(*models.Match)) (*models.Match, error) {
	s.hook()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	m, ok := s.matches[matchID]
	if !ok || !guard(m) {
		return nil, nil
	}
	update(m)
	out := *m
	return &out, nil
}

// MatchRepository

func (s *memStore) GetByID(_ context.Context, matchID uuid.UUID) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	m, ok := s.matches[matchID]
	if !ok {
		return nil, nil
	}
	out := *m
	return &out, nil
}

func (s *memStore) ListByParticipant(_ context.Context, userID uuid.UUID, limit, offset int) ([]models.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := []models.MatchRecord{}
	for id, mc := range s.contexts {
		if mc.HasParticipant(userID) {
			out = append(out, models.MatchRecord{Match: *s.matches[id], Context: *mc})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Match.MatchedAt.After(out[j].Match.MatchedAt) })
	if offset >= len(out) {
		return []models.MatchRecord{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) MarkReported(_ context.Context, matchID, actorID uuid.UUID, at time.Time) (*models.Match, error) {
	return s.guarded(matchID,
		func(m *models.Match) bool { return m.Status == models.MatchActive && m.CompletedBy == nil },
		func(m *models.Match) {
			m.CompletedBy = ptr(actorID)
			m.CompletedAt = ptr(at)
		})
}

func (s *memStore) MarkConfirmed(_ context.Context, matchID, actorID uuid.UUID, at time.Time) (*models.Match, error) {
	return s.guarded(matchID,
		func(m *models.Match) bool {
			return m.Status == models.MatchActive && m.CompletedBy != nil && *m.CompletedBy != actorID && m.ConfirmedBy == nil
		},
		func(m *models.Match) {
			m.ConfirmedBy = ptr(actorID)
			m.ConfirmedAt = ptr(at)
			m.CompletedAt = ptr(at)
			m.Status = models.MatchCompleted
		})
}

func (s *memStore) MarkCancelled(_ context.Context, matchID, actorID uuid.UUID, reason *string, at time.Time) (*models.Match, error) {
	return s.guarded(matchID,
		func(m *models.Match) bool { return m.Status == models.MatchActive },
		func(m *models.Match) {
			m.CancelledBy = ptr(actorID)
			m.CancelledAt = ptr(at)
			m.CancelReason = reason
			m.Status = models.MatchCancelled
		})
}

func (s *memStore) ListAwaitingConfirmation(_ context.Context, reportedBefore time.Time, limit int) ([]models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Match{}
	for _, m := range s.matches {
		if m.Status == models.MatchActive && m.CompletedBy != nil && m.ReminderSentAt == nil &&
			m.CompletedAt.Before(reportedBefore) && len(out) < limit {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *memStore) MarkReminderSent(_ context.Context, matchID uuid.UUID, at time.Time) (bool, error) {
	m, err := s.guarded(matchID,
		func(m *models.Match) bool {
			return m.Status == models.MatchActive && m.CompletedBy != nil && m.ReminderSentAt == nil
		},
		func(m *models.Match) { m.ReminderSentAt = ptr(at) })
	return m != nil, err
}

func (s *memStore) ReleaseReminder(_ context.Context, matchID uuid.UUID, claimedAt time.Time) error {
	_, err := s.guarded(matchID,
		func(m *models.Match) bool { return m.ReminderSentAt != nil && m.ReminderSentAt.Equal(claimedAt) },
		func(m *models.Match) { m.ReminderSentAt = nil })
	return err
}

// ParticipantRepository

func (s *memStore) GetMatchContext(_ context.Context, matchID uuid.UUID) (*models.MatchContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	mc, ok := s.contexts[matchID]
	if !ok {
		return nil, nil
	}
	out := *mc
	return &out, nil
}

func (s *memStore) IsParticipant(_ context.Context, matchID, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	mc, ok := s.contexts[matchID]
	return ok && mc.HasParticipant(userID), nil
}

// ApplicationRepository

func (s *memStore) Accept(_ context.Context, applicationID uuid.UUID, check repository.AcceptCheck) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}

	app, ok := s.apps[applicationID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	post := s.posts[app.PostID]
	appCopy, postCopy := *app, *post
	if err := check(&appCopy, &postCopy); err != nil {
		return nil, err
	}
	if _, exists := s.byApp[app.ID]; exists {
		return nil, fmt.Errorf("insert match: %w", repository.ErrDuplicate)
	}

	app.Status = models.ApplicationAccepted
	m := &models.Match{ID: uuid.New(), ApplicationID: app.ID, Status: models.MatchActive, MatchedAt: time.Now().UTC()}
	s.matches[m.ID] = m
	s.byApp[app.ID] = m.ID
	s.contexts[m.ID] = &models.MatchContext{
		MatchID: m.ID, PostID: post.ID, PostType: post.Type,
		PostOwnerID: post.OwnerID, ApplicantID: app.ApplicantID, PostTitle: post.Title,
	}
	out := *m
	return &out, nil
}

// memReviews is the ReviewRepository view of memStore. The (match,
// reviewer) check and the append happen under one lock, like a UNIQUE
// constraint.
type memReviews struct{ *memStore }

func (r memReviews) Create(_ context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	for _, existing := range r.reviews {
		if existing.MatchID == review.MatchID && existing.ReviewerID == review.ReviewerID {
			return fmt.Errorf("insert review: %w", repository.ErrDuplicate)
		}
	}
	review.ID = uuid.New()
	review.CreatedAt = time.Now().UTC()
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r memReviews) Exists(_ context.Context, matchID, reviewerID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.MatchID == matchID && existing.ReviewerID == reviewerID {
			return true, nil
		}
	}
	return false, nil
}

func (r memReviews) ListByMatch(_ context.Context, matchID uuid.UUID) ([]models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Review{}
	for _, existing := range r.reviews {
		if existing.MatchID == matchID {
			out = append(out, existing)
		}
	}
	return out, nil
}

type memMessages struct{ *memStore }

func (r memMessages) Create(_ context.Context, matchID, senderID uuid.UUID, body string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.nextID++
	msg := models.Message{ID: r.nextID, MatchID: matchID, SenderID: senderID, Body: body, CreatedAt: time.Now().UTC()}
	r.messages = append(r.messages, msg)
	return &msg, nil
}

func (r memMessages) ListByMatch(_ context.Context, matchID uuid.UUID, before int64, limit int) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Message{}
	for i := len(r.messages) - 1; i >= 0 && len(out) < limit; i-- {
		msg := r.messages[i]
		if msg.MatchID == matchID && (before == 0 || msg.ID < before) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (r memMessages) HasAny(_ context.Context, matchID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages {
		if msg.MatchID == matchID {
			return true, nil
		}
	}
	return false, nil
}

// recordingPublisher keeps every event it is handed.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func (p *recordingPublisher) ofType(typ events.Type) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, ev := range p.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

var (
	_ repository.MatchRepository       = (*memStore)(nil)
	_ repository.ParticipantRepository = (*memStore)(nil)
	_ repository.ApplicationRepository = (*memStore)(nil)
	_ repository.ReviewRepository      = memReviews{}
	_ repository.MessageRepository     = memMessages{}
)
