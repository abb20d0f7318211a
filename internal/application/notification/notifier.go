package notification

import "context"

// Message is an operational notification fanned out to interested
// channels: low stock alerts, incoming transfers, dispute flags.
type Message struct {
	Topic    string            `json:"topic"`
	TenantID string            `json:"tenant_id"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Topics
const (
	TopicLowStock         = "inventory.low_stock"
	TopicBatchExpiring    = "inventory.batch_expiring"
	TopicTransferIncoming = "transfer.incoming"
	TopicTransferDisputed = "transfer.disputed"
	TopicRequestPending   = "request.pending"
)

// Notifier delivers operational notifications. Delivery is best
// effort; business transactions never fail on notifier errors.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// NoOpNotifier discards all notifications
type NoOpNotifier struct{}

// Notify implements Notifier
func (NoOpNotifier) Notify(context.Context, Message) error { return nil }

var _ Notifier = NoOpNotifier{}
