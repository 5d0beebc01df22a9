package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecocampus/complaint-service/internal/domain"
)

// wires a complaint service and notification service onto one dispatcher so
// lifecycle events fan out like in production
func newNotifyFixture(t *testing.T) (*fixture, *NotificationService) {
	t.Helper()
	f := newFixture(t)
	notify := NewNotificationService(f.service.dispatcher, f.store.Notifications(), f.store.Users(), nil)
	notify.RegisterHandlers()
	return f, notify
}

func TestSubmissionNotifiesAdministrators(t *testing.T) {
	f, notify := newNotifyFixture(t)
	ctx := context.Background()

	submitPublic(t, f)

	adminInbox, err := notify.ListForUser(ctx, f.admin.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, adminInbox, 1)
	assert.Contains(t, adminInbox[0].Message, "New complaint filed")

	voterInbox, err := notify.ListForUser(ctx, f.voter.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, voterInbox)
}

func TestResolutionNotifiesOwner(t *testing.T) {
	f, notify := newNotifyFixture(t)
	ctx := context.Background()
	complaint := submitPublic(t, f)

	_, err := f.service.SetStatus(ctx, f.admin.ID, complaint.ID, domain.ComplaintStatusInProgress)
	require.NoError(t, err)

	inbox, err := notify.ListForUser(ctx, f.owner.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, inbox)

	_, err = f.service.SetStatus(ctx, f.admin.ID, complaint.ID, domain.ComplaintStatusResolved)
	require.NoError(t, err)

	inbox, err = notify.ListForUser(ctx, f.owner.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Contains(t, inbox[0].Message, "resolved")
}

func TestAdminVerdictNotifiesOwner(t *testing.T) {
	f, notify := newNotifyFixture(t)
	ctx := context.Background()
	complaint := submitPublic(t, f)

	// provisional AI verdicts stay silent
	_, err := f.service.ApplyAIVerification(ctx, f.admin.ID, complaint.ID, domain.AuthenticityLikelyAuthentic)
	require.NoError(t, err)
	inbox, err := notify.ListForUser(ctx, f.owner.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, inbox)

	_, err = f.service.ApplyAdminVerification(ctx, f.admin.ID, complaint.ID, domain.AuthenticitySpam)
	require.NoError(t, err)

	inbox, err = notify.ListForUser(ctx, f.owner.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Contains(t, inbox[0].Message, "spam")
}

func TestMarkAllRead(t *testing.T) {
	f, notify := newNotifyFixture(t)
	ctx := context.Background()
	complaint := submitPublic(t, f)

	_, err := f.service.SetStatus(ctx, f.admin.ID, complaint.ID, domain.ComplaintStatusResolved)
	require.NoError(t, err)
	_, err = f.service.ApplyAdminVerification(ctx, f.admin.ID, complaint.ID, domain.AuthenticityVerified)
	require.NoError(t, err)

	require.NoError(t, notify.MarkAllRead(ctx, f.owner.ID))

	inbox, err := notify.ListForUser(ctx, f.owner.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	for _, n := range inbox {
		assert.True(t, n.IsRead)
	}
}
