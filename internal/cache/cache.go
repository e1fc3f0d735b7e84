package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Receipt records which channels confirmed delivery for one event.
type Receipt struct {
	SMSDelivered   bool
	EmailDelivered bool
	SentAt         time.Time
}

// ReceiptCache keeps a short-lived record of delivered events for
// operator diagnostics. Writes are best-effort.
type ReceiptCache interface {
	StoreDelivered(ctx context.Context, eventID uuid.UUID, r Receipt) error
}
