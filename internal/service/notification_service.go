package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecocampus/complaint-service/internal/domain"
	"github.com/ecocampus/complaint-service/internal/events"
	"github.com/ecocampus/complaint-service/internal/repository"
	apperrors "github.com/ecocampus/complaint-service/pkg/util"
)

// NotificationService materializes notification records from domain events.
// Notification creation is a side effect of lifecycle operations; it never
// blocks or fails them.
type NotificationService struct {
	dispatcher    events.Dispatcher
	notifications repository.NotificationRepository
	users         repository.UserRepository
	logger        *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifications repository.NotificationRepository, users repository.UserRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher:    dispatcher,
		notifications: notifications,
		users:         users,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventComplaintSubmitted, n.handleSubmitted)
	n.dispatcher.Subscribe(events.EventComplaintStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventComplaintVerified, n.handleVerified)
}

// ListForUser returns a user's notifications, newest first.
func (n *NotificationService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	result, err := n.notifications.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = []domain.Notification{}
	}
	return result, nil
}

// MarkRead marks one of the user's own notifications as read.
func (n *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if err := n.notifications.MarkRead(ctx, id, userID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// MarkAllRead marks all of a user's notifications as read.
func (n *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return n.notifications.MarkAllRead(ctx, userID)
}

// handleSubmitted notifies administrators about new filings.
func (n *NotificationService) handleSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintSubmittedPayload)
	if !ok {
		return nil
	}
	users, err := n.users.List(ctx)
	if err != nil {
		n.logger.Warn("cannot list users for admin notification", zap.Error(err))
		return nil
	}
	message := fmt.Sprintf("New complaint filed at %s", payload.Location)
	for i := range users {
		if users[i].Role != domain.RoleAdministrator {
			continue
		}
		n.create(ctx, users[i].ID, message)
	}
	return nil
}

// handleStatusChanged notifies the owner when their complaint is resolved.
func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintStatusChangedPayload)
	if !ok {
		return nil
	}
	if payload.NewStatus != domain.ComplaintStatusResolved {
		return nil
	}
	n.create(ctx, payload.OwnerID, "Your complaint has been resolved. Thank you for reporting!")
	return nil
}

// handleVerified notifies the owner about terminal admin decisions.
func (n *NotificationService) handleVerified(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintVerifiedPayload)
	if !ok || !payload.ByAdmin {
		return nil
	}
	var message string
	switch payload.NewResult {
	case domain.AuthenticityVerified:
		message = "Your complaint was reviewed and verified as authentic."
	case domain.AuthenticitySpam:
		message = "Your complaint was reviewed and marked as spam."
	default:
		return nil
	}
	n.create(ctx, payload.OwnerID, message)
	return nil
}

func (n *NotificationService) create(ctx context.Context, userID, message string) {
	notification := &domain.Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Message: message,
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Warn("failed to create notification", zap.String("user_id", userID), zap.Error(err))
	}
}
