package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecocampus/complaint-service/internal/ai"
	"github.com/ecocampus/complaint-service/internal/domain"
	"github.com/ecocampus/complaint-service/internal/events"
	"github.com/ecocampus/complaint-service/internal/repository"
	apperrors "github.com/ecocampus/complaint-service/pkg/util"
)

// stubGateway is a configurable ai.Gateway for tests.
type stubGateway struct {
	authenticityResult domain.AuthenticityStatus
	authenticityErr    error
	geocodeAddress     ai.Address
	geocodeErr         error
	chatReplies        []ai.ChatReply
	chatErr            error
	chatCalls          int
}

func (g *stubGateway) ClassifyImage(_ context.Context, _ ai.ImagePayload) string {
	return "a pile of plastic bottles"
}

func (g *stubGateway) CheckAuthenticity(_ context.Context, _ string, _ *ai.ImagePayload) (domain.AuthenticityStatus, error) {
	if g.authenticityErr != nil {
		return "", g.authenticityErr
	}
	if g.authenticityResult == "" {
		return domain.AuthenticityLikelyAuthentic, nil
	}
	return g.authenticityResult, nil
}

func (g *stubGateway) ReverseGeocode(_ context.Context, _, _ float64) (ai.Address, error) {
	return g.geocodeAddress, g.geocodeErr
}

func (g *stubGateway) Chat(_ context.Context, _ ai.ChatRequest) (ai.ChatReply, error) {
	if g.chatErr != nil {
		return ai.ChatReply{}, g.chatErr
	}
	reply := g.chatReplies[g.chatCalls%len(g.chatReplies)]
	g.chatCalls++
	return reply, nil
}

func (g *stubGateway) Summarize(_ context.Context, _ ai.SummaryRequest) (string, error) {
	return "summary", nil
}

func (g *stubGateway) ComprehensiveReport(_ context.Context, _ ai.ReportRequest) (string, error) {
	return "report", nil
}

type fixture struct {
	service *ComplaintService
	store   *repository.MemoryStore
	gateway *stubGateway
	owner   *domain.User
	voter   *domain.User
	admin   *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	gateway := &stubGateway{}

	f := &fixture{
		store:   store,
		gateway: gateway,
		owner:   seedUser(t, store, "Dana", domain.RoleUser),
		voter:   seedUser(t, store, "Robin", domain.RoleUser),
		admin:   seedUser(t, store, "Sam", domain.RoleAdministrator),
	}
	f.service = NewComplaintService(ComplaintDependencies{
		ComplaintRepo: store.Complaints(),
		UserRepo:      store.Users(),
		HistoryRepo:   store.History(),
		Dispatcher:    events.NewInMemoryDispatcher(),
		Gateway:       gateway,
	})
	return f
}

func seedUser(t *testing.T, store *repository.MemoryStore, name string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:    uuid.NewString(),
		Name:  name,
		Email: name + "@campus.test",
		Role:  role,
	}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func testImage() *ai.ImagePayload {
	return &ai.ImagePayload{MimeType: "image/jpeg", Data: []byte{0xFF, 0xD8, 0xFF}}
}

func submitPublic(t *testing.T, f *fixture) *domain.Complaint {
	t.Helper()
	complaint, err := f.service.Submit(context.Background(), f.owner.ID, SubmitInput{
		Location:    "Library entrance",
		Description: "Overflowing bin next to the west door",
		IsPublic:    true,
		Image:       testImage(),
	})
	require.NoError(t, err)
	return complaint
}

func TestSubmitRequiresPhoto(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Submit(context.Background(), f.owner.ID, SubmitInput{
		Location:    "Cafeteria",
		Description: "Trash on the floor",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestSubmitRequiresDescription(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Submit(context.Background(), f.owner.ID, SubmitInput{
		Location: "Cafeteria",
		Image:    testImage(),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestSubmitPublicPassesAuthenticityCheck(t *testing.T) {
	f := newFixture(t)

	complaint := submitPublic(t, f)
	assert.True(t, complaint.IsPublic)
	assert.Equal(t, domain.AuthenticityLikelyAuthentic, complaint.AuthenticityStatus)
	assert.Equal(t, domain.ComplaintStatusPending, complaint.Status)
	assert.Nil(t, complaint.ResolvedAt)
}

func TestSubmitSpamVerdictForcesPrivate(t *testing.T) {
	f := newFixture(t)
	f.gateway.authenticityResult = domain.AuthenticityPotentialSpam

	complaint := submitPublic(t, f)
	assert.False(t, complaint.IsPublic)
	assert.Equal(t, domain.AuthenticityPotentialSpam, complaint.AuthenticityStatus)
}

func TestSubmitSurvivesGatewayFailure(t *testing.T) {
	f := newFixture(t)
	f.gateway.authenticityErr = errors.New("upstream timeout")

	complaint := submitPublic(t, f)
	assert.False(t, complaint.IsPublic)
	assert.Equal(t, domain.AuthenticityUnverified, complaint.AuthenticityStatus)
}

func TestSubmitPrivateSkipsAuthenticityCheck(t *testing.T) {
	f := newFixture(t)
	f.gateway.authenticityErr = errors.New("should not be called")

	complaint, err := f.service.Submit(context.Background(), f.owner.ID, SubmitInput{
		Location:    "Dorm B",
		Description: "Broken recycling container",
		IsPublic:    false,
		Image:       testImage(),
	})
	require.NoError(t, err)
	assert.False(t, complaint.IsPublic)
	assert.Equal(t, domain.AuthenticityUnverified, complaint.AuthenticityStatus)
}

func TestSubmitResolvesLocationFromCoordinates(t *testing.T) {
	f := newFixture(t)
	f.gateway.geocodeAddress = ai.Address{Address: "12 Campus Way"}
	lat, lng := 50.45012, 30.52341

	complaint, err := f.service.Submit(context.Background(), f.owner.ID, SubmitInput{
		Description: "Litter behind the gym",
		Image:       testImage(),
		Latitude:    &lat,
		Longitude:   &lng,
	})
	require.NoError(t, err)
	assert.Equal(t, "12 Campus Way", complaint.Location)
}

func TestSubmitFallsBackToRawCoordinates(t *testing.T) {
	f := newFixture(t)
	f.gateway.geocodeErr = errors.New("geocoder down")
	lat, lng := 50.45012, 30.52341

	complaint, err := f.service.Submit(context.Background(), f.owner.ID, SubmitInput{
		Description: "Litter behind the gym",
		Image:       testImage(),
		Latitude:    &lat,
		Longitude:   &lng,
	})
	require.NoError(t, err)
	assert.Equal(t, ai.FormatCoordinates(lat, lng), complaint.Location)
}

func TestSetStatusControlsResolvedAt(t *testing.T) {
	f := newFixture(t)
	complaint := submitPublic(t, f)
	ctx := context.Background()

	updated, err := f.service.SetStatus(ctx, f.admin.ID, complaint.ID, domain.ComplaintStatusResolved)
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)

	// regression away from RESOLVED clears the timestamp
	updated, err = f.service.SetStatus(ctx, f.admin.ID, complaint.ID, domain.ComplaintStatusInProgress)
	require.NoError(t, err)
	assert.Nil(t, updated.ResolvedAt)

	_, err = f.service.SetStatus(ctx, f.admin.ID, complaint.ID, "ARCHIVED")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestCastVoteRules(t *testing.T) {
	f := newFixture(t)
	complaint := submitPublic(t, f)
	ctx := context.Background()

	_, err := f.service.CastVote(ctx, f.owner.ID, complaint.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	for want := 1; want <= 3; want++ {
		voted, err := f.service.CastVote(ctx, f.voter.ID, complaint.ID)
		require.NoError(t, err)
		assert.Equal(t, want, voted.Votes)
	}

	_, err = f.service.SetStatus(ctx, f.admin.ID, complaint.ID, domain.ComplaintStatusResolved)
	require.NoError(t, err)

	_, err = f.service.CastVote(ctx, f.voter.ID, complaint.ID)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestCastVoteRejectsPrivateComplaint(t *testing.T) {
	f := newFixture(t)
	complaint, err := f.service.Submit(context.Background(), f.owner.ID, SubmitInput{
		Location:    "Parking lot",
		Description: "Oil spill near bike racks",
		IsPublic:    false,
		Image:       testImage(),
	})
	require.NoError(t, err)

	_, err = f.service.CastVote(context.Background(), f.voter.ID, complaint.ID)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestSoftDeleteRestoreRoundTrip(t *testing.T) {
	f := newFixture(t)
	complaint := submitPublic(t, f)
	ctx := context.Background()

	require.NoError(t, f.service.SoftDelete(ctx, f.admin.ID, complaint.ID))
	// idempotent
	require.NoError(t, f.service.SoftDelete(ctx, f.admin.ID, complaint.ID))

	public, err := f.service.ListPublic(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, public)

	bin, err := f.service.ListBin(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, bin, 1)
	assert.Equal(t, complaint.ID, bin[0].ID)

	require.NoError(t, f.service.Restore(ctx, f.admin.ID, complaint.ID))

	public, err = f.service.ListPublic(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Nil(t, public[0].DeletedAt)
}

func TestDeletedComplaintCannotBeVoted(t *testing.T) {
	f := newFixture(t)
	complaint := submitPublic(t, f)
	ctx := context.Background()

	require.NoError(t, f.service.SoftDelete(ctx, f.admin.ID, complaint.ID))

	_, err := f.service.CastVote(ctx, f.voter.ID, complaint.ID)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestPurgeIsPermanent(t *testing.T) {
	f := newFixture(t)
	complaint := submitPublic(t, f)
	ctx := context.Background()

	require.NoError(t, f.service.SoftDelete(ctx, f.admin.ID, complaint.ID))
	require.NoError(t, f.service.Purge(ctx, f.admin.ID, complaint.ID))

	_, err := f.service.GetByID(ctx, complaint.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	bin, err := f.service.ListBin(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, bin)
}

func TestAIVerificationNeverOverridesTerminal(t *testing.T) {
	f := newFixture(t)
	complaint := submitPublic(t, f)
	ctx := context.Background()

	_, err := f.service.ApplyAdminVerification(ctx, f.admin.ID, complaint.ID, domain.AuthenticityVerified)
	require.NoError(t, err)

	updated, err := f.service.ApplyAIVerification(ctx, f.admin.ID, complaint.ID, domain.AuthenticityPotentialSpam)
	require.NoError(t, err)
	assert.Equal(t, domain.AuthenticityVerified, updated.AuthenticityStatus)
	assert.True(t, updated.IsPublic)
}

func TestAIVerificationSpamVerdictForcesPrivate(t *testing.T) {
	f := newFixture(t)
	complaint := submitPublic(t, f)

	updated, err := f.service.ApplyAIVerification(context.Background(), f.admin.ID, complaint.ID, domain.AuthenticityPotentialSpam)
	require.NoError(t, err)
	assert.Equal(t, domain.AuthenticityPotentialSpam, updated.AuthenticityStatus)
	assert.False(t, updated.IsPublic)
}

func TestAIVerificationRejectsTerminalInput(t *testing.T) {
	f := newFixture(t)
	complaint := submitPublic(t, f)

	_, err := f.service.ApplyAIVerification(context.Background(), f.admin.ID, complaint.ID, domain.AuthenticitySpam)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestAdminVerificationOverridesProvisional(t *testing.T) {
	f := newFixture(t)
	f.gateway.authenticityResult = domain.AuthenticityPotentialSpam
	complaint := submitPublic(t, f)

	updated, err := f.service.ApplyAdminVerification(context.Background(), f.admin.ID, complaint.ID, domain.AuthenticitySpam)
	require.NoError(t, err)
	assert.Equal(t, domain.AuthenticitySpam, updated.AuthenticityStatus)

	_, err = f.service.ApplyAdminVerification(context.Background(), f.admin.ID, complaint.ID, domain.AuthenticityLikelyAuthentic)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestSubmitViaAssistantIsPrivateAndUnverified(t *testing.T) {
	f := newFixture(t)

	complaint, err := f.service.SubmitViaAssistant(context.Background(), f.owner.ID, "Chemistry building", "Hazardous waste left in the hallway")
	require.NoError(t, err)
	assert.False(t, complaint.IsPublic)
	assert.Equal(t, domain.AuthenticityUnverified, complaint.AuthenticityStatus)
	assert.Empty(t, complaint.ImageURL)
}

func TestListHistoryRecordsStatusChanges(t *testing.T) {
	f := newFixture(t)
	complaint := submitPublic(t, f)
	ctx := context.Background()

	_, err := f.service.SetStatus(ctx, f.admin.ID, complaint.ID, domain.ComplaintStatusInProgress)
	require.NoError(t, err)
	require.NoError(t, f.service.SoftDelete(ctx, f.admin.ID, complaint.ID))

	entries, err := f.service.ListHistory(ctx, complaint.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	types := []domain.ComplaintChangeType{entries[0].ChangeType, entries[1].ChangeType}
	assert.Contains(t, types, domain.ChangeTypeStatus)
	assert.Contains(t, types, domain.ChangeTypeDeletion)
}
