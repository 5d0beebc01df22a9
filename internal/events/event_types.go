package events

import (
	"time"

	"github.com/ecocampus/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintSubmitted     EventType = "complaint_submitted"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventComplaintVoted         EventType = "complaint_voted"
	EventComplaintVerified      EventType = "complaint_verified"
	EventComplaintDeleted       EventType = "complaint_deleted"
	EventComplaintRestored      EventType = "complaint_restored"
	EventComplaintPurged        EventType = "complaint_purged"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by the lifecycle manager.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintSubmittedPayload payload.
type ComplaintSubmittedPayload struct {
	OwnerID  string `json:"owner_id"`
	Location string `json:"location"`
	IsPublic bool   `json:"is_public"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OwnerID   string                 `json:"owner_id"`
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
}

// ComplaintVotedPayload payload.
type ComplaintVotedPayload struct {
	OwnerID string `json:"owner_id"`
	VoterID string `json:"voter_id"`
	Votes   int    `json:"votes"`
}

// ComplaintVerifiedPayload payload.
type ComplaintVerifiedPayload struct {
	OwnerID   string                    `json:"owner_id"`
	OldResult domain.AuthenticityStatus `json:"old_result"`
	NewResult domain.AuthenticityStatus `json:"new_result"`
	ByAdmin   bool                      `json:"by_admin"`
}
