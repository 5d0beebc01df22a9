package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecocampus/complaint-service/internal/domain"
)

func seedComplaint(t *testing.T, repo ComplaintRepository, c domain.Complaint) domain.Complaint {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &c))
	return c
}

func TestComplaintListOrderingAndPaging(t *testing.T) {
	store := NewMemoryStore()
	repo := store.Complaints()
	ctx := context.Background()

	first := seedComplaint(t, repo, domain.Complaint{ID: "c1", UserID: "u1", IsPublic: true})
	second := seedComplaint(t, repo, domain.Complaint{ID: "c2", UserID: "u1", IsPublic: true})
	third := seedComplaint(t, repo, domain.Complaint{ID: "c3", UserID: "u2", IsPublic: true})

	all, err := repo.ListWithFilter(ctx, ComplaintFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// most recent first
	assert.Equal(t, third.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
	assert.Equal(t, first.ID, all[2].ID)

	page, err := repo.ListWithFilter(ctx, ComplaintFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, second.ID, page[0].ID)
}

func TestComplaintFilterSemantics(t *testing.T) {
	store := NewMemoryStore()
	repo := store.Complaints()
	ctx := context.Background()
	now := time.Now()

	seedComplaint(t, repo, domain.Complaint{ID: "pub", UserID: "u1", IsPublic: true, Status: domain.ComplaintStatusPending, Description: "broken glass"})
	seedComplaint(t, repo, domain.Complaint{ID: "priv", UserID: "u1", IsPublic: false, Status: domain.ComplaintStatusInProgress})
	seedComplaint(t, repo, domain.Complaint{ID: "gone", UserID: "u2", IsPublic: true, DeletedAt: &now})

	public, err := repo.ListWithFilter(ctx, ComplaintFilter{PublicOnly: true})
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "pub", public[0].ID)

	deleted, err := repo.ListWithFilter(ctx, ComplaintFilter{DeletedOnly: true})
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, "gone", deleted[0].ID)

	owner := "u1"
	mine, err := repo.ListWithFilter(ctx, ComplaintFilter{OwnerID: &owner})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	inProgress, err := repo.ListWithFilter(ctx, ComplaintFilter{Statuses: []domain.ComplaintStatus{domain.ComplaintStatusInProgress}})
	require.NoError(t, err)
	require.Len(t, inProgress, 1)
	assert.Equal(t, "priv", inProgress[0].ID)

	term := "GLASS"
	found, err := repo.ListWithFilter(ctx, ComplaintFilter{SearchTerm: &term})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "pub", found[0].ID)
}

func TestComplaintFilterByPeriod(t *testing.T) {
	store := NewMemoryStore()
	repo := store.Complaints()
	ctx := context.Background()

	march := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)
	april := time.Date(2026, time.April, 3, 0, 0, 0, 0, time.UTC)
	seedComplaint(t, repo, domain.Complaint{ID: "m", UserID: "u1", CreatedAt: march, UpdatedAt: march})
	seedComplaint(t, repo, domain.Complaint{ID: "a", UserID: "u1", CreatedAt: april, UpdatedAt: april})

	year, month := 2026, 3
	result, err := repo.ListWithFilter(ctx, ComplaintFilter{Year: &year, Month: &month})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "m", result[0].ID)
}

func TestMissingRecordsMapToNoRows(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Complaints().GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, pgx.ErrNoRows))

	_, err = store.Users().GetByEmail(ctx, "missing@campus.test")
	assert.True(t, errors.Is(err, pgx.ErrNoRows))

	err = store.Complaints().Delete(ctx, "missing")
	assert.True(t, errors.Is(err, pgx.ErrNoRows))
}

func TestDuplicateEmailRejected(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Users().Create(ctx, &domain.User{ID: "u1", Email: "dana@campus.test"}))
	err := store.Users().Create(ctx, &domain.User{ID: "u2", Email: "dana@campus.test"})
	assert.True(t, errors.Is(err, ErrDuplicateEmail))
}

func TestNotificationMarkReadEnforcesOwnership(t *testing.T) {
	store := NewMemoryStore()
	repo := store.Notifications()
	ctx := context.Background()

	n := &domain.Notification{ID: "n1", UserID: "u1", Message: "complaint resolved"}
	require.NoError(t, repo.Create(ctx, n))

	err := repo.MarkRead(ctx, "n1", "someone-else")
	assert.True(t, errors.Is(err, pgx.ErrNoRows))

	require.NoError(t, repo.MarkRead(ctx, "n1", "u1"))
	list, err := repo.ListByUser(ctx, "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsRead)
}
