package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "PENDING"
	ComplaintStatusInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintStatusResolved   ComplaintStatus = "RESOLVED"
)

// AuthenticityStatus is the two-stage spam/legitimacy classification:
// an AI check yields a provisional result, an administrator decision is terminal.
type AuthenticityStatus string

const (
	AuthenticityUnverified      AuthenticityStatus = "UNVERIFIED"
	AuthenticityLikelyAuthentic AuthenticityStatus = "LIKELY_AUTHENTIC"
	AuthenticityPotentialSpam   AuthenticityStatus = "POTENTIAL_SPAM"
	AuthenticityVerified        AuthenticityStatus = "VERIFIED"
	AuthenticitySpam            AuthenticityStatus = "SPAM"
)

// IsTerminal reports whether an administrator already made the final call.
func (a AuthenticityStatus) IsTerminal() bool {
	return a == AuthenticityVerified || a == AuthenticitySpam
}

// Complaint is the aggregate for user-filed waste reports.
type Complaint struct {
	ID                 string
	UserID             string
	UserName           string
	Location           string
	Description        string
	Status             ComplaintStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ResolvedAt         *time.Time
	ImageKey           string
	ImageURL           string
	Votes              int
	IsPublic           bool
	AuthenticityStatus AuthenticityStatus
	DeletedAt          *time.Time
}

// IsDeleted reports whether the complaint sits in the recycle bin.
func (c *Complaint) IsDeleted() bool {
	return c.DeletedAt != nil
}

// IsVotable reports whether the complaint can accept votes at all.
// Voter-identity checks live in the service layer.
func (c *Complaint) IsVotable() bool {
	return c.IsPublic && c.Status != ComplaintStatusResolved && !c.IsDeleted()
}
