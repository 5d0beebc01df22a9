package service

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecocampus/complaint-service/internal/ai"
	"github.com/ecocampus/complaint-service/internal/domain"
	"github.com/ecocampus/complaint-service/internal/events"
	"github.com/ecocampus/complaint-service/internal/objstore"
	"github.com/ecocampus/complaint-service/internal/observability"
	"github.com/ecocampus/complaint-service/internal/repository"
	apperrors "github.com/ecocampus/complaint-service/pkg/util"
)

// ComplaintService is the single authority over the complaint collection;
// every mutation goes through it.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	users      repository.UserRepository
	history    repository.HistoryRepository
	dispatcher events.Dispatcher
	gateway    ai.Gateway
	photos     objstore.PhotoStore
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// ComplaintDependencies bundles collaborators for the service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	UserRepo      repository.UserRepository
	HistoryRepo   repository.HistoryRepository
	Dispatcher    events.Dispatcher
	Gateway       ai.Gateway
	Photos        objstore.PhotoStore
	Metrics       *observability.Metrics
	Logger        *zap.Logger
}

// SubmitInput describes a complaint filing.
type SubmitInput struct {
	Location    string
	Description string
	IsPublic    bool
	Image       *ai.ImagePayload
	Latitude    *float64
	Longitude   *float64
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		gateway:    deps.Gateway,
		photos:     deps.Photos,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Submit files a new complaint. A photo is mandatory. When the filing is
// requested public, an authenticity check runs before the complaint is
// stored; a POTENTIAL_SPAM verdict or a gateway failure forces it private.
// Filing availability always wins over verification.
func (s *ComplaintService) Submit(ctx context.Context, ownerID string, input SubmitInput) (*domain.Complaint, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("description is required", nil)
	}
	if input.Image == nil || len(input.Image.Data) == 0 {
		return nil, apperrors.NewValidationError("a photo is required to file a complaint", nil)
	}

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	location := strings.TrimSpace(input.Location)
	if location == "" {
		if input.Latitude == nil || input.Longitude == nil {
			return nil, apperrors.NewValidationError("location or coordinates are required", nil)
		}
		location = s.resolveLocation(ctx, *input.Latitude, *input.Longitude)
	}

	complaint := &domain.Complaint{
		ID:                 uuid.NewString(),
		UserID:             owner.ID,
		UserName:           owner.Name,
		Location:           location,
		Description:        strings.TrimSpace(input.Description),
		Status:             domain.ComplaintStatusPending,
		Votes:              0,
		IsPublic:           input.IsPublic,
		AuthenticityStatus: domain.AuthenticityUnverified,
	}

	if err := s.storePhoto(ctx, complaint, *input.Image); err != nil {
		return nil, err
	}

	if input.IsPublic {
		result, err := s.gateway.CheckAuthenticity(ctx, complaint.Description, input.Image)
		switch {
		case err != nil:
			// verification unavailable: keep the complaint, default to private
			s.logger.Warn("authenticity check failed on submission", zap.Error(err))
			complaint.IsPublic = false
		case result == domain.AuthenticityPotentialSpam:
			complaint.AuthenticityStatus = result
			complaint.IsPublic = false
		default:
			complaint.AuthenticityStatus = result
		}
	}

	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.metrics.RecordComplaintOp("submit")
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintSubmitted,
		ComplaintID: complaint.ID,
		Actor:       events.Actor{UserID: owner.ID, Role: owner.Role},
		Payload: events.ComplaintSubmittedPayload{
			OwnerID:  owner.ID,
			Location: complaint.Location,
			IsPublic: complaint.IsPublic,
		},
	})
	return complaint, nil
}

// SubmitViaAssistant files a complaint on the user's behalf from a chat tool
// call. No photo travels through the assistant, so the complaint is stored
// private and unverified until the owner or an administrator follows up.
func (s *ComplaintService) SubmitViaAssistant(ctx context.Context, ownerID, location, description string) (*domain.Complaint, error) {
	if strings.TrimSpace(description) == "" {
		return nil, apperrors.NewValidationError("description is required", nil)
	}
	if strings.TrimSpace(location) == "" {
		return nil, apperrors.NewValidationError("location is required", nil)
	}

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	complaint := &domain.Complaint{
		ID:                 uuid.NewString(),
		UserID:             owner.ID,
		UserName:           owner.Name,
		Location:           strings.TrimSpace(location),
		Description:        strings.TrimSpace(description),
		Status:             domain.ComplaintStatusPending,
		IsPublic:           false,
		AuthenticityStatus: domain.AuthenticityUnverified,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.metrics.RecordComplaintOp("submit_via_assistant")
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintSubmitted,
		ComplaintID: complaint.ID,
		Actor:       events.Actor{UserID: owner.ID, Role: owner.Role},
		Payload: events.ComplaintSubmittedPayload{
			OwnerID:  owner.ID,
			Location: complaint.Location,
			IsPublic: false,
		},
	})
	return complaint, nil
}

// CastVote increments the vote counter. The preconditions are enforced here,
// not only in the UI: the complaint must be public, unresolved and not
// deleted, and the voter must not own it. Voter de-duplication is
// intentionally not modeled.
func (s *ComplaintService) CastVote(ctx context.Context, voterID, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if complaint.UserID == voterID {
		return nil, apperrors.NewForbidden("cannot vote on your own complaint")
	}
	if !complaint.IsVotable() {
		return nil, apperrors.NewConflict("complaint cannot accept votes", nil)
	}

	complaint.Votes++
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.metrics.RecordVote()
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintVoted,
		ComplaintID: complaint.ID,
		Actor:       events.Actor{UserID: voterID, Role: domain.RoleUser},
		Payload: events.ComplaintVotedPayload{
			OwnerID: complaint.UserID,
			VoterID: voterID,
			Votes:   complaint.Votes,
		},
	})
	return complaint, nil
}

// SetStatus moves a complaint through its lifecycle. ResolvedAt is set
// exactly when the status becomes RESOLVED and cleared whenever it is not;
// regressing away from RESOLVED is allowed.
func (s *ComplaintService) SetStatus(ctx context.Context, actorID string, complaintID string, newStatus domain.ComplaintStatus) (*domain.Complaint, error) {
	switch newStatus {
	case domain.ComplaintStatusPending, domain.ComplaintStatusInProgress, domain.ComplaintStatusResolved:
	default:
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}

	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	oldStatus := complaint.Status
	complaint.Status = newStatus
	if newStatus == domain.ComplaintStatusResolved {
		if complaint.ResolvedAt == nil {
			now := time.Now()
			complaint.ResolvedAt = &now
		}
	} else {
		complaint.ResolvedAt = nil
	}

	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.metrics.RecordComplaintOp("set_status")
	s.recordChange(ctx, actorID, complaint.ID, domain.ChangeTypeStatus,
		map[string]any{"status": oldStatus},
		map[string]any{"status": newStatus})
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: complaint.ID,
		Actor:       events.Actor{UserID: actorID, Role: domain.RoleAdministrator},
		Payload: events.ComplaintStatusChangedPayload{
			OwnerID:   complaint.UserID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return complaint, nil
}

// SoftDelete moves a complaint to the recycle bin. Idempotent.
func (s *ComplaintService) SoftDelete(ctx context.Context, actorID, complaintID string) error {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if complaint.IsDeleted() {
		return nil
	}
	now := time.Now()
	complaint.DeletedAt = &now
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return apperrors.MapError(err)
	}
	s.metrics.RecordComplaintOp("soft_delete")
	s.recordChange(ctx, actorID, complaint.ID, domain.ChangeTypeDeletion,
		map[string]any{"deleted": false}, map[string]any{"deleted": true})
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintDeleted,
		ComplaintID: complaint.ID,
		Actor:       events.Actor{UserID: actorID, Role: domain.RoleAdministrator},
	})
	return nil
}

// Restore takes a complaint out of the recycle bin, leaving every other
// field untouched.
func (s *ComplaintService) Restore(ctx context.Context, actorID, complaintID string) error {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !complaint.IsDeleted() {
		return nil
	}
	complaint.DeletedAt = nil
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return apperrors.MapError(err)
	}
	s.metrics.RecordComplaintOp("restore")
	s.recordChange(ctx, actorID, complaint.ID, domain.ChangeTypeDeletion,
		map[string]any{"deleted": true}, map[string]any{"deleted": false})
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintRestored,
		ComplaintID: complaint.ID,
		Actor:       events.Actor{UserID: actorID, Role: domain.RoleAdministrator},
	})
	return nil
}

// Purge removes a complaint permanently, photo included. Irreversible; the
// caller must have obtained explicit confirmation.
func (s *ComplaintService) Purge(ctx context.Context, actorID, complaintID string) error {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.complaints.Delete(ctx, complaintID); err != nil {
		return apperrors.MapError(err)
	}
	if s.photos != nil {
		if err := s.photos.Delete(ctx, complaint.ImageKey); err != nil {
			s.logger.Warn("failed to delete complaint photo", zap.String("key", complaint.ImageKey), zap.Error(err))
		}
	}
	s.metrics.RecordComplaintOp("purge")
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintPurged,
		ComplaintID: complaintID,
		Actor:       events.Actor{UserID: actorID, Role: domain.RoleAdministrator},
	})
	return nil
}

// RunAIVerification performs the admin-triggered authenticity check and
// applies its provisional result.
func (s *ComplaintService) RunAIVerification(ctx context.Context, actorID, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	var image *ai.ImagePayload
	if complaint.ImageURL != "" {
		image = decodeInlineImage(complaint.ImageURL)
	}
	result, err := s.gateway.CheckAuthenticity(ctx, complaint.Description, image)
	if err != nil {
		return nil, apperrors.NewDomainError("AI_UNAVAILABLE", "authenticity check unavailable", 503, nil)
	}
	return s.ApplyAIVerification(ctx, actorID, complaintID, result)
}

// ApplyAIVerification stores a provisional AI verdict. Terminal admin
// decisions are never overwritten by repeated checks. A POTENTIAL_SPAM
// verdict forces a public complaint private.
func (s *ComplaintService) ApplyAIVerification(ctx context.Context, actorID, complaintID string, result domain.AuthenticityStatus) (*domain.Complaint, error) {
	if result != domain.AuthenticityLikelyAuthentic && result != domain.AuthenticityPotentialSpam {
		return nil, apperrors.NewValidationError("AI verification result must be provisional", map[string]any{"result": result})
	}
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if complaint.AuthenticityStatus.IsTerminal() {
		return complaint, nil
	}

	old := complaint.AuthenticityStatus
	complaint.AuthenticityStatus = result
	if result == domain.AuthenticityPotentialSpam && complaint.IsPublic {
		complaint.IsPublic = false
	}
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.metrics.RecordComplaintOp("ai_verification")
	s.recordChange(ctx, actorID, complaint.ID, domain.ChangeTypeAuthenticity,
		map[string]any{"authenticity": old}, map[string]any{"authenticity": result})
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintVerified,
		ComplaintID: complaint.ID,
		Actor:       events.Actor{UserID: actorID, Role: domain.RoleAdministrator},
		Payload: events.ComplaintVerifiedPayload{
			OwnerID:   complaint.UserID,
			OldResult: old,
			NewResult: result,
			ByAdmin:   false,
		},
	})
	return complaint, nil
}

// ApplyAdminVerification stores the terminal administrator decision,
// overwriting any provisional verdict.
func (s *ComplaintService) ApplyAdminVerification(ctx context.Context, actorID, complaintID string, result domain.AuthenticityStatus) (*domain.Complaint, error) {
	if result != domain.AuthenticityVerified && result != domain.AuthenticitySpam {
		return nil, apperrors.NewValidationError("admin verification result must be terminal", map[string]any{"result": result})
	}
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	old := complaint.AuthenticityStatus
	complaint.AuthenticityStatus = result
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.metrics.RecordComplaintOp("admin_verification")
	s.recordChange(ctx, actorID, complaint.ID, domain.ChangeTypeAuthenticity,
		map[string]any{"authenticity": old}, map[string]any{"authenticity": result})
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintVerified,
		ComplaintID: complaint.ID,
		Actor:       events.Actor{UserID: actorID, Role: domain.RoleAdministrator},
		Payload: events.ComplaintVerifiedPayload{
			OwnerID:   complaint.UserID,
			OldResult: old,
			NewResult: result,
			ByAdmin:   true,
		},
	})
	return complaint, nil
}

// GetByID fetches a single complaint.
func (s *ComplaintService) GetByID(ctx context.Context, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaint, nil
}

// ListPublic returns the public, non-deleted feed, most recent first.
func (s *ComplaintService) ListPublic(ctx context.Context, limit, offset int) ([]domain.Complaint, error) {
	return s.list(ctx, repository.ComplaintFilter{
		PublicOnly: true,
		Limit:      limit,
		Offset:     offset,
	})
}

// ListByOwner returns a user's own complaints, deleted ones excluded.
func (s *ComplaintService) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Complaint, error) {
	return s.list(ctx, repository.ComplaintFilter{
		OwnerID: &ownerID,
		Limit:   limit,
		Offset:  offset,
	})
}

// ListAll returns every non-deleted complaint for administrators.
func (s *ComplaintService) ListAll(ctx context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	return s.list(ctx, filter)
}

// ListBin returns soft-deleted complaints awaiting restore or purge.
func (s *ComplaintService) ListBin(ctx context.Context, limit, offset int) ([]domain.Complaint, error) {
	return s.list(ctx, repository.ComplaintFilter{
		DeletedOnly: true,
		Limit:       limit,
		Offset:      offset,
	})
}

// ListHistory returns the audit trail of a complaint.
func (s *ComplaintService) ListHistory(ctx context.Context, complaintID string, limit, offset int) ([]domain.ComplaintHistory, error) {
	if s.history == nil {
		return []domain.ComplaintHistory{}, nil
	}
	entries, err := s.history.ListByComplaint(ctx, complaintID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *ComplaintService) list(ctx context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	result, err := s.complaints.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if result == nil {
		result = []domain.Complaint{}
	}
	return result, nil
}

func (s *ComplaintService) resolveLocation(ctx context.Context, lat, lng float64) string {
	addr, err := s.gateway.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		s.logger.Warn("reverse geocoding failed, using raw coordinates", zap.Error(err))
		return ai.FormatCoordinates(lat, lng)
	}
	return addr.Address
}

func (s *ComplaintService) storePhoto(ctx context.Context, complaint *domain.Complaint, image ai.ImagePayload) error {
	if err := objstore.ValidatePhoto(image.Data, image.MimeType); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	if s.photos != nil && s.photos.Enabled() {
		key, err := s.photos.Upload(ctx, image.Data, image.MimeType)
		if err != nil {
			return apperrors.MapError(err)
		}
		complaint.ImageKey = key
		return nil
	}
	// no object store configured: keep the photo inline on the record
	complaint.ImageURL = "data:" + image.MimeType + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
	return nil
}

func (s *ComplaintService) recordChange(ctx context.Context, actorID, complaintID string, changeType domain.ComplaintChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	entry := &domain.ComplaintHistory{
		ID:          uuid.NewString(),
		ComplaintID: complaintID,
		ChangedByID: &actorID,
		ChangeType:  changeType,
		OldValue:    oldValue,
		NewValue:    newValue,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record history entry", zap.Error(err))
	}
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func decodeInlineImage(dataURL string) *ai.ImagePayload {
	const marker = ";base64,"
	idx := strings.Index(dataURL, marker)
	if !strings.HasPrefix(dataURL, "data:") || idx < 0 {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(dataURL[idx+len(marker):])
	if err != nil {
		return nil
	}
	return &ai.ImagePayload{
		MimeType: dataURL[len("data:"):idx],
		Data:     data,
	}
}
