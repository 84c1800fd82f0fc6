package worker

import (
	"go.uber.org/zap"

	"github.com/helpdesk-ops/ticket-assignment/internal/events"
	"github.com/helpdesk-ops/ticket-assignment/internal/service"
)

// StartEventWorkers subscribes the outbound consumers of assignment events:
// the pub/sub forwarder and the e-mail notifier. Either may be nil.
func StartEventWorkers(dispatcher events.Dispatcher, forwarder *events.ChannelForwarder, notifications *service.NotificationService, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if forwarder != nil {
		forwarder.Register(dispatcher)
		logger.Info("assignment events forwarded to pub/sub")
	}
	if notifications != nil {
		notifications.RegisterHandlers()
		logger.Info("assignment notifications enabled")
	}
}
