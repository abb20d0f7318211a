package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/poscore/backend/internal/application/notification"
)

// LogNotifier writes notifications to the structured log. It is the
// default sink when no Redis endpoint is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements notification.Notifier
func (n *LogNotifier) Notify(_ context.Context, msg notification.Message) error {
	fields := []zap.Field{
		zap.String("topic", msg.Topic),
		zap.String("tenant_id", msg.TenantID),
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
	}
	if len(msg.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", msg.Metadata))
	}
	n.logger.Info("notification", fields...)
	return nil
}

var _ notification.Notifier = (*LogNotifier)(nil)
