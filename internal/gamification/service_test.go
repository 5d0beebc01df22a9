package gamification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecocampus/complaint-service/internal/domain"
	"github.com/ecocampus/complaint-service/internal/repository"
)

func TestLeaderboardWithoutCache(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Users().Create(ctx, &domain.User{ID: "u1", Name: "Dana", Email: "dana@campus.test", Role: domain.RoleUser, Points: 10}))
	require.NoError(t, store.Users().Create(ctx, &domain.User{ID: "u2", Name: "Robin", Email: "robin@campus.test", Role: domain.RoleUser}))
	require.NoError(t, store.Complaints().Create(ctx, &domain.Complaint{
		ID:       "c1",
		UserID:   "u2",
		IsPublic: true,
		Status:   domain.ComplaintStatusPending,
		Votes:    5,
	}))

	svc := NewService(store.Users(), store.Complaints(), nil, 0, nil)

	entries, err := svc.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// 5 votes earn 25 engagement points, beating Dana's stored 10
	assert.Equal(t, "u2", entries[0].UserID)
	assert.Equal(t, 25, entries[0].DisplayedPoints)
	assert.Equal(t, []domain.Badge{domain.BadgeCommunityVoice}, entries[0].Badges)
	assert.Equal(t, "u1", entries[1].UserID)

	// no cache configured; Invalidate is a no-op
	svc.Invalidate(ctx)
}
