// Package gamification derives leaderboard standings from complaint and vote
// data. Everything is recomputed on read as a pure function of the stored
// collections, so spam markings and deletions affect standings immediately
// without a reconciliation step.
package gamification

import (
	"sort"

	"github.com/ecocampus/complaint-service/internal/domain"
)

// Points and badge thresholds.
const (
	PointsPerVote           = 5
	CommunityVoiceThreshold = 5
	InfluencerThreshold     = 10
)

// Entry is one leaderboard row.
type Entry struct {
	UserID           string         `json:"user_id"`
	Name             string         `json:"name"`
	StoredPoints     int            `json:"stored_points"`
	EngagementPoints int            `json:"engagement_points"`
	DisplayedPoints  int            `json:"displayed_points"`
	TotalVotes       int            `json:"total_votes"`
	Badges           []domain.Badge `json:"badges"`
}

// ComputeLeaderboard derives standings for end-users. Engagement points come
// from votes on public, unresolved, undeleted complaints not marked SPAM;
// stored points are never mutated. Badges are additive: a badge the user
// already carries is kept even when the derived vote total no longer clears
// its threshold. Ties keep the original collection order (stable sort).
func ComputeLeaderboard(users []domain.User, complaints []domain.Complaint) []Entry {
	votesByOwner := make(map[string]int)
	for i := range complaints {
		c := &complaints[i]
		if !countsForEngagement(c) {
			continue
		}
		votesByOwner[c.UserID] += c.Votes
	}

	entries := make([]Entry, 0, len(users))
	for i := range users {
		user := &users[i]
		if user.Role != domain.RoleUser {
			continue
		}
		totalVotes := votesByOwner[user.ID]
		engagement := totalVotes * PointsPerVote
		entries = append(entries, Entry{
			UserID:           user.ID,
			Name:             user.Name,
			StoredPoints:     user.Points,
			EngagementPoints: engagement,
			DisplayedPoints:  user.Points + engagement,
			TotalVotes:       totalVotes,
			Badges:           deriveBadges(user, totalVotes),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DisplayedPoints > entries[j].DisplayedPoints
	})
	return entries
}

func countsForEngagement(c *domain.Complaint) bool {
	return c.IsPublic &&
		c.Status != domain.ComplaintStatusResolved &&
		!c.IsDeleted() &&
		c.AuthenticityStatus != domain.AuthenticitySpam
}

func deriveBadges(user *domain.User, totalVotes int) []domain.Badge {
	badges := append([]domain.Badge{}, user.Badges...)
	if totalVotes >= CommunityVoiceThreshold && !hasBadge(badges, domain.BadgeCommunityVoice) {
		badges = append(badges, domain.BadgeCommunityVoice)
	}
	if totalVotes >= InfluencerThreshold && !hasBadge(badges, domain.BadgeInfluencer) {
		badges = append(badges, domain.BadgeInfluencer)
	}
	return badges
}

func hasBadge(badges []domain.Badge, badge domain.Badge) bool {
	for _, b := range badges {
		if b == badge {
			return true
		}
	}
	return false
}
