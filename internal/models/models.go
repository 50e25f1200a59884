package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the public part of a user account. Accounts themselves live in
// the hosted auth provider; we only keep what other users get to see.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type PostStatus string

const (
	PostStatusOpen   PostStatus = "open"
	PostStatusClosed PostStatus = "closed"
)

// Post is a "teach" or "learn" request. Only the fields the match protocol
// reads are modelled here; post editing is handled elsewhere.
type Post struct {
	ID            uuid.UUID  `json:"id"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	Type          PostType   `json:"type"`
	Title         string     `json:"title"`
	Status        PostStatus `json:"status"`
	MaxApplicants int        `json:"max_applicants"`
	CreatedAt     time.Time  `json:"created_at"`
}

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationCancelled ApplicationStatus = "cancelled"
)

type Application struct {
	ID          uuid.UUID         `json:"id"`
	PostID      uuid.UUID         `json:"post_id"`
	ApplicantID uuid.UUID         `json:"applicant_id"`
	Message     string            `json:"message"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

type MatchStatus string

const (
	MatchActive    MatchStatus = "active"
	MatchCompleted MatchStatus = "completed"
	MatchCancelled MatchStatus = "cancelled"
)

// Match is the collaboration created when an application is accepted.
//
// The nullable pointer fields mirror nullable columns. Who is senpai and who
// is kouhai is not stored: see DeriveRole.
type Match struct {
	ID            uuid.UUID   `json:"id"`
	ApplicationID uuid.UUID   `json:"application_id"`
	Status        MatchStatus `json:"status"`
	MatchedAt     time.Time   `json:"matched_at"`

	CompletedBy *uuid.UUID `json:"completed_by"`
	CompletedAt *time.Time `json:"completed_at"`
	ConfirmedBy *uuid.UUID `json:"confirmed_by"`
	ConfirmedAt *time.Time `json:"confirmed_at"`

	CancelledBy  *uuid.UUID `json:"cancelled_by"`
	CancelledAt  *time.Time `json:"cancelled_at"`
	CancelReason *string    `json:"cancel_reason"`

	ReminderSentAt *time.Time `json:"-"`
}

// IsTerminal is true once the match can no longer change.
func (m *Match) IsTerminal() bool {
	return m.Status == MatchCompleted || m.Status == MatchCancelled
}

// ReportedBy is true when userID filed the pending completion report.
func (m *Match) ReportedBy(userID uuid.UUID) bool {
	return m.CompletedBy != nil && *m.CompletedBy == userID
}

// MatchContext is the read-only projection of Application → Post that the
// role rules need. It is joined, never stored on the match row.
type MatchContext struct {
	MatchID     uuid.UUID `json:"match_id"`
	PostID      uuid.UUID `json:"post_id"`
	PostType    PostType  `json:"post_type"`
	PostOwnerID uuid.UUID `json:"post_owner_id"`
	ApplicantID uuid.UUID `json:"applicant_id"`
	PostTitle   string    `json:"post_title"`
}

func (c *MatchContext) HasParticipant(userID uuid.UUID) bool {
	return c.PostOwnerID == userID || c.ApplicantID == userID
}

// Partner returns whichever participant is not userID.
func (c *MatchContext) Partner(userID uuid.UUID) (uuid.UUID, bool) {
	switch userID {
	case c.PostOwnerID:
		return c.ApplicantID, true
	case c.ApplicantID:
		return c.PostOwnerID, true
	}
	return uuid.Nil, false
}

// RoleOf derives userID's role in this match.
func (c *MatchContext) RoleOf(userID uuid.UUID) (Role, bool) {
	return DeriveRole(c.PostType, c.PostOwnerID, c.ApplicantID, userID)
}

// MatchRecord pairs a match with its context, as returned by list queries.
type MatchRecord struct {
	Match   Match
	Context MatchContext
}

// Review is one participant's feedback about the other. ReviewerRole is the
// role of the reviewer, not of the person being reviewed.
type Review struct {
	ID           uuid.UUID `json:"id"`
	MatchID      uuid.UUID `json:"match_id"`
	ReviewerID   uuid.UUID `json:"reviewer_id"`
	RevieweeID   uuid.UUID `json:"reviewee_id"`
	ReviewerRole Role      `json:"reviewer_role"`
	Badges       []Badge   `json:"badges"`
	Comment      *string   `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// Message is a chat line inside a match. bigserial IDs double as the
// pagination cursor.
type Message struct {
	ID        int64     `json:"id"`
	MatchID   uuid.UUID `json:"match_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification is an inbox row produced by a lifecycle event.
type Notification struct {
	ID          int64      `json:"id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	ActorID     uuid.UUID  `json:"actor_id"`
	MatchID     uuid.UUID  `json:"match_id"`
	Type        string     `json:"type"`
	ReadAt      *time.Time `json:"read_at"`
	CreatedAt   time.Time  `json:"created_at"`
}
