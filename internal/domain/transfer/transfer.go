package transfer

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poscore/backend/internal/domain/location"
	"github.com/poscore/backend/internal/domain/shared"
)

// Status represents the status of a stock transfer
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSent      Status = "SENT"
	StatusReceived  Status = "RECEIVED"
	StatusPartial   Status = "PARTIAL"
	StatusDisputed  Status = "DISPUTED"
	StatusClosed    Status = "CLOSED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is a valid transfer status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusReceived, StatusPartial,
		StatusDisputed, StatusClosed, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusSent || target == StatusCancelled
	case StatusSent:
		return target == StatusReceived || target == StatusPartial || target == StatusDisputed
	case StatusReceived:
		return target == StatusClosed
	case StatusPartial:
		return target == StatusDisputed
	case StatusDisputed:
		return target == StatusClosed
	case StatusClosed, StatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true if no further transitions are possible
func (s Status) IsTerminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

// Item is a line of a transfer. BatchID optionally names the source
// batch the line draws from; lines without one model unbatched stock.
// QuantityRequested is fixed while the transfer is a draft,
// QuantitySent is stamped at send time and QuantityReceived at receipt.
type Item struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	TransferID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName       string          `gorm:"type:varchar(200);not null"`
	ProductSKU        string          `gorm:"type:varchar(64);not null"`
	BatchID           *uuid.UUID      `gorm:"type:uuid;index"`
	QuantityRequested decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	QuantitySent      decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	QuantityReceived  decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Notes             string          `gorm:"type:varchar(500)"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "transfer_items"
}

// NewItem creates a new transfer line item
func NewItem(transferID, productID uuid.UUID, productName, productSKU string, quantity decimal.Decimal, batchID *uuid.UUID, notes string) (*Item, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	now := time.Now()
	return &Item{
		ID:                uuid.New(),
		TransferID:        transferID,
		ProductID:         productID,
		ProductName:       productName,
		ProductSKU:        productSKU,
		BatchID:           batchID,
		QuantityRequested: quantity,
		QuantitySent:      decimal.Zero,
		QuantityReceived:  decimal.Zero,
		UnitCost:          decimal.Zero,
		Notes:             notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// sameBatch reports whether the line draws from the given batch
func (i *Item) sameBatch(batchID *uuid.UUID) bool {
	if i.BatchID == nil || batchID == nil {
		return i.BatchID == nil && batchID == nil
	}
	return *i.BatchID == *batchID
}

// Discrepancy returns sent minus received
func (i *Item) Discrepancy() decimal.Decimal {
	return i.QuantitySent.Sub(i.QuantityReceived)
}

// Transfer moves stock between two locations. It is the aggregate root
// of the transfer state machine: stock leaves the source when the
// transfer is sent and arrives at the destination per the quantities
// confirmed at receipt. The two sides may disagree; the discrepancy is
// recorded on the transfer and resolved through dispute and close, not
// by rewriting ledger history.
type Transfer struct {
	shared.TenantAggregateRoot
	TransferNumber  string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_transfer_tenant_number,priority:2"`
	SourceID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	DestinationID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status          Status     `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Notes           string     `gorm:"type:varchar(1000)"`
	DisputeReason   string     `gorm:"type:varchar(1000)"`
	ResolutionNotes string     `gorm:"type:varchar(1000)"`
	SentAt          *time.Time `gorm:""`
	ReceivedAt      *time.Time `gorm:""`
	ClosedAt        *time.Time `gorm:""`
	SentBy          *uuid.UUID `gorm:"type:uuid"`
	ReceivedBy      *uuid.UUID `gorm:"type:uuid"`
	Items           []Item     `gorm:"foreignKey:TransferID"`
}

// TableName returns the table name for GORM
func (Transfer) TableName() string {
	return "stock_transfers"
}

// NewTransfer creates a draft transfer between two locations. The
// direction must be legal for the location types: production ships to
// stores, stores ships to shops or back to production, shops return to
// stores.
func NewTransfer(
	tenantID uuid.UUID,
	transferNumber string,
	source, destination *location.Location,
) (*Transfer, error) {
	if strings.TrimSpace(transferNumber) == "" {
		return nil, shared.NewDomainError("INVALID_TRANSFER_NUMBER", "Transfer number cannot be empty")
	}
	if source == nil || destination == nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Source and destination are required")
	}
	if source.ID == destination.ID {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Source and destination cannot be the same location")
	}
	if source.TenantID != tenantID || destination.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	if !source.IsActive {
		return nil, shared.NewDomainError("INACTIVE_LOCATION", "Source location is inactive")
	}
	if !destination.IsActive {
		return nil, shared.NewDomainError("INACTIVE_LOCATION", "Destination location is inactive")
	}
	if !source.Type.CanTransferTo(destination.Type) {
		return nil, shared.NewDomainError("INVALID_DIRECTION",
			"Transfers from "+source.Type.String()+" to "+destination.Type.String()+" are not allowed")
	}

	transfer := &Transfer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		TransferNumber:      transferNumber,
		SourceID:            source.ID,
		DestinationID:       destination.ID,
		Status:              StatusDraft,
		Items:               make([]Item, 0),
	}

	transfer.AddDomainEvent(NewTransferCreatedEvent(transfer))

	return transfer, nil
}

// AddItem adds a line item. Only draft transfers can be edited.
func (t *Transfer) AddItem(productID uuid.UUID, productName, productSKU string, quantity decimal.Decimal, batchID *uuid.UUID, notes string) error {
	if t.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Can only add items to draft transfers")
	}

	for i := range t.Items {
		if t.Items[i].ProductID == productID && t.Items[i].sameBatch(batchID) {
			// Same product from the same batch folds into one line
			t.Items[i].QuantityRequested = t.Items[i].QuantityRequested.Add(quantity)
			t.Items[i].UpdatedAt = time.Now()
			t.UpdatedAt = time.Now()
			t.IncrementVersion()
			return nil
		}
	}

	item, err := NewItem(t.ID, productID, productName, productSKU, quantity, batchID, notes)
	if err != nil {
		return err
	}

	t.Items = append(t.Items, *item)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// UpdateItemQuantity changes the planned quantity of a draft line
func (t *Transfer) UpdateItemQuantity(itemID uuid.UUID, quantity decimal.Decimal) error {
	if t.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Can only update items on draft transfers")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	for i := range t.Items {
		if t.Items[i].ID == itemID {
			t.Items[i].QuantityRequested = quantity
			t.Items[i].UpdatedAt = time.Now()
			t.UpdatedAt = time.Now()
			t.IncrementVersion()
			return nil
		}
	}

	return shared.ErrNotFound
}

// RemoveItem removes a line item from a draft transfer
func (t *Transfer) RemoveItem(itemID uuid.UUID) error {
	if t.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Can only remove items from draft transfers")
	}

	for i := range t.Items {
		if t.Items[i].ID == itemID {
			t.Items = append(t.Items[:i], t.Items[i+1:]...)
			t.UpdatedAt = time.Now()
			t.IncrementVersion()
			return nil
		}
	}

	return shared.ErrNotFound
}

// Send commits the transfer. Every line's sent quantity is fixed to
// what was requested, and stock is deducted from the source as of this
// moment; the caller records the ledger entries in the same
// transaction.
func (t *Transfer) Send(actorID uuid.UUID, now time.Time) error {
	if !t.Status.CanTransitionTo(StatusSent) {
		return shared.NewDomainError("INVALID_STATE", "Transfer cannot be sent from status "+t.Status.String())
	}
	if len(t.Items) == 0 {
		return shared.NewDomainError("EMPTY_TRANSFER", "Transfer must have at least one item")
	}

	for i := range t.Items {
		t.Items[i].QuantitySent = t.Items[i].QuantityRequested
		t.Items[i].UpdatedAt = now
	}

	t.Status = StatusSent
	t.SentAt = &now
	t.SentBy = &actorID
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferSentEvent(t))

	return nil
}

// Receipt is the quantity confirmed for one line at the destination
type Receipt struct {
	ItemID   uuid.UUID
	Quantity decimal.Decimal
}

// Receive confirms arrival at the destination. Lines without a receipt
// default to the sent quantity; received quantities may not exceed
// what was sent. Full receipt moves the transfer to RECEIVED, anything
// less to PARTIAL. The caller records TRANSFER_IN ledger entries for
// the received quantities in the same transaction.
func (t *Transfer) Receive(actorID uuid.UUID, receipts []Receipt, now time.Time) error {
	if t.Status != StatusSent {
		return shared.NewDomainError("INVALID_STATE", "Transfer cannot be received from status "+t.Status.String())
	}

	byItem := make(map[uuid.UUID]decimal.Decimal, len(receipts))
	for _, r := range receipts {
		if r.Quantity.IsNegative() {
			return shared.NewDomainError("INVALID_QUANTITY", "Received quantity cannot be negative")
		}
		byItem[r.ItemID] = r.Quantity
	}

	for i := range t.Items {
		qty, ok := byItem[t.Items[i].ID]
		if !ok {
			continue
		}
		if qty.GreaterThan(t.Items[i].QuantitySent) {
			return shared.NewDomainError("INVALID_QUANTITY", "Received quantity cannot exceed sent quantity")
		}
		delete(byItem, t.Items[i].ID)
	}
	if len(byItem) > 0 {
		return shared.ErrNotFound
	}

	full := true
	for i := range t.Items {
		qty := t.Items[i].QuantitySent
		for _, r := range receipts {
			if r.ItemID == t.Items[i].ID {
				qty = r.Quantity
			}
		}
		t.Items[i].QuantityReceived = qty
		t.Items[i].UpdatedAt = now
		if !qty.Equal(t.Items[i].QuantitySent) {
			full = false
		}
	}

	if full {
		t.Status = StatusReceived
	} else {
		t.Status = StatusPartial
	}
	t.ReceivedAt = &now
	t.ReceivedBy = &actorID
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferReceivedEvent(t, full))

	return nil
}

// Dispute flags a sent or partially received transfer for
// investigation. Disputing has no ledger effect; the entries written
// at send and receive stand.
func (t *Transfer) Dispute(reason string, now time.Time) error {
	if !t.Status.CanTransitionTo(StatusDisputed) {
		return shared.NewDomainError("INVALID_STATE", "Transfer cannot be disputed from status "+t.Status.String())
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Dispute reason is required")
	}

	t.Status = StatusDisputed
	t.DisputeReason = reason
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferDisputedEvent(t))

	return nil
}

// Close finalizes the transfer, recording how any dispute was
// resolved. Closing with an outstanding discrepancy does not adjust
// stock; any write-off is a separate, explicit adjustment.
func (t *Transfer) Close(notes string, now time.Time) error {
	if !t.Status.CanTransitionTo(StatusClosed) {
		return shared.NewDomainError("INVALID_STATE", "Transfer cannot be closed from status "+t.Status.String())
	}

	t.Status = StatusClosed
	t.ResolutionNotes = strings.TrimSpace(notes)
	t.ClosedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferClosedEvent(t))

	return nil
}

// Cancel abandons a draft transfer. Nothing has moved yet, so there is
// no ledger effect.
func (t *Transfer) Cancel(now time.Time) error {
	if !t.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", "Only draft transfers can be cancelled")
	}

	t.Status = StatusCancelled
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferCancelledEvent(t))

	return nil
}

// TotalSent returns the sum of sent quantities across lines
func (t *Transfer) TotalSent() decimal.Decimal {
	total := decimal.Zero
	for i := range t.Items {
		total = total.Add(t.Items[i].QuantitySent)
	}
	return total
}

// TotalReceived returns the sum of received quantities across lines
func (t *Transfer) TotalReceived() decimal.Decimal {
	total := decimal.Zero
	for i := range t.Items {
		total = total.Add(t.Items[i].QuantityReceived)
	}
	return total
}

// HasDiscrepancy returns true if any line was short at receipt
func (t *Transfer) HasDiscrepancy() bool {
	for i := range t.Items {
		if !t.Items[i].Discrepancy().IsZero() {
			return true
		}
	}
	return false
}
