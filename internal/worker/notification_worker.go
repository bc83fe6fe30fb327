package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/chat-registration/internal/service"
)

// StartNotificationWorker registers the registration event handlers.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		logger.Warn("notification service not configured; registration events are dropped")
		return
	}
	notificationService.RegisterHandlers()
	logger.Info("notification handlers registered")
}
