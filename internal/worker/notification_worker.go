package worker

import (
	"github.com/ecocampus/complaint-service/internal/service"
)

// StartNotificationWorker subscribes the notification service to domain
// events so lifecycle changes fan out to users.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
