package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/poscore/backend/internal/domain/shared"
	"github.com/poscore/backend/internal/infrastructure/logger"
)

// LoggingHandler writes an audit line for every domain event
type LoggingHandler struct {
	logger *zap.Logger
}

// NewLoggingHandler creates a new LoggingHandler
func NewLoggingHandler(logger *zap.Logger) *LoggingHandler {
	return &LoggingHandler{logger: logger.Named("events")}
}

// EventTypes returns an empty slice; the handler receives every event
func (h *LoggingHandler) EventTypes() []string {
	return nil
}

// Handle logs the event envelope, correlated with the active trace
func (h *LoggingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	logger.WithTraceContext(ctx, h.logger).Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

var _ shared.EventHandler = (*LoggingHandler)(nil)
