package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// InventoryMetrics tracks the business counters of the stock ledger:
// entries appended, transfers moved through the pipeline, and commands
// rejected for insufficient stock or cash.
type InventoryMetrics struct {
	logger *zap.Logger

	ledgerEntriesTotal     *Counter
	transfersSentTotal     *Counter
	transfersReceivedTotal *Counter
	insufficientStockTotal *Counter
	cashEntriesTotal       *Counter
	lowStockGauge          *Gauge
}

// NewInventoryMetrics creates the inventory counter set on the given meter
func NewInventoryMetrics(meter metric.Meter, logger *zap.Logger) (*InventoryMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &InventoryMetrics{logger: logger}

	var err error
	if m.ledgerEntriesTotal, err = NewCounter(meter,
		"inventory.ledger.entries.total",
		"Total ledger entries appended",
		"{entry}"); err != nil {
		return nil, err
	}
	if m.transfersSentTotal, err = NewCounter(meter,
		"inventory.transfers.sent.total",
		"Total transfers sent",
		"{transfer}"); err != nil {
		return nil, err
	}
	if m.transfersReceivedTotal, err = NewCounter(meter,
		"inventory.transfers.received.total",
		"Total transfers received, by final status",
		"{transfer}"); err != nil {
		return nil, err
	}
	if m.insufficientStockTotal, err = NewCounter(meter,
		"inventory.insufficient_stock.total",
		"Commands rejected because stock or cash did not cover them",
		"{rejection}"); err != nil {
		return nil, err
	}
	if m.cashEntriesTotal, err = NewCounter(meter,
		"cash.ledger.entries.total",
		"Total cash ledger entries appended",
		"{entry}"); err != nil {
		return nil, err
	}
	if m.lowStockGauge, err = NewGauge(meter,
		"inventory.low_stock.products",
		"Products currently below their reorder level",
		"{product}"); err != nil {
		return nil, err
	}

	return m, nil
}

// LedgerEntryAppended records one appended stock ledger entry
func (m *InventoryMetrics) LedgerEntryAppended(ctx context.Context, entryType string) {
	m.ledgerEntriesTotal.Inc(ctx, AttrEntryType.String(entryType))
}

// TransferSent records one sent transfer
func (m *InventoryMetrics) TransferSent(ctx context.Context) {
	m.transfersSentTotal.Inc(ctx)
}

// TransferReceived records one received transfer with its outcome
// (RECEIVED or PARTIAL)
func (m *InventoryMetrics) TransferReceived(ctx context.Context, status string) {
	m.transfersReceivedTotal.Inc(ctx, AttrStatus.String(status))
}

// InsufficientStock records one rejected command
func (m *InventoryMetrics) InsufficientStock(ctx context.Context) {
	m.insufficientStockTotal.Inc(ctx)
}

// CashEntryAppended records one appended cash ledger entry
func (m *InventoryMetrics) CashEntryAppended(ctx context.Context, entryType string) {
	m.cashEntriesTotal.Inc(ctx, AttrEntryType.String(entryType))
}

// LowStockCount records the current number of products below their
// reorder level at one location
func (m *InventoryMetrics) LowStockCount(ctx context.Context, locationID string, count int64) {
	m.lowStockGauge.Record(ctx, count, AttrLocationID.String(locationID))
}
