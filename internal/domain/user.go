package domain

import "time"

// Role distinguishes end-users from administrators.
type Role string

const (
	RoleUser          Role = "USER"
	RoleAdministrator Role = "ADMINISTRATOR"
)

// Badge enumerates gamification awards.
type Badge string

const (
	BadgeCommunityVoice Badge = "COMMUNITY_VOICE"
	BadgeInfluencer     Badge = "INFLUENCER"
)

// User is the domain model for people filing and triaging complaints.
// Points holds the stored baseline only; engagement points derived from
// votes are computed on read and never written back.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Points       int
	Badges       []Badge
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasBadge reports whether the user already carries the given badge.
func (u *User) HasBadge(b Badge) bool {
	for _, existing := range u.Badges {
		if existing == b {
			return true
		}
	}
	return false
}
