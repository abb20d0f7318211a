package event

import (
	"context"

	"github.com/poscore/backend/internal/domain/cashledger"
	"github.com/poscore/backend/internal/domain/inventory"
	"github.com/poscore/backend/internal/domain/shared"
	"github.com/poscore/backend/internal/domain/transfer"
	"github.com/poscore/backend/internal/infrastructure/telemetry"
)

// MetricsHandler feeds business counters from domain events so services
// stay free of instrumentation concerns.
type MetricsHandler struct {
	metrics *telemetry.InventoryMetrics
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(metrics *telemetry.InventoryMetrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// EventTypes returns the event types this handler consumes
func (h *MetricsHandler) EventTypes() []string {
	return []string{
		inventory.EventTypeLedgerEntryAppended,
		transfer.EventTypeTransferSent,
		transfer.EventTypeTransferReceived,
		cashledger.EventTypeCashEntryAppended,
	}
}

// Handle increments the counter matching the event
func (h *MetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *inventory.LedgerEntryAppendedEvent:
		h.metrics.LedgerEntryAppended(ctx, e.EntryKind)
	case *transfer.TransferSentEvent:
		h.metrics.TransferSent(ctx)
	case *transfer.TransferReceivedEvent:
		status := "partial"
		if e.Full {
			status = "full"
		}
		h.metrics.TransferReceived(ctx, status)
	case *cashledger.CashEntryAppendedEvent:
		h.metrics.CashEntryAppended(ctx, e.EntryKind)
	}
	return nil
}

var _ shared.EventHandler = (*MetricsHandler)(nil)
