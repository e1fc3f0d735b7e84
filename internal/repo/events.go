package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/syedrazahussain/celebratemate/internal/model"
)

// EventRepository is the store surface the dispatcher needs: due-window
// selection, the conditional sent marker, and operator listings.
type EventRepository interface {
	// DueBetween returns events whose scheduled (date, time) falls in
	// [from, to) and that have no sent marker, joined with the owning
	// user's sender fields. Both bounds are wall-clock times in the
	// dispatcher's configured zone.
	DueBetween(ctx context.Context, from, to time.Time) ([]model.DueEvent, error)

	// MarkSent sets the sent marker, but only if it is still unset. A
	// second call for the same event is a no-op, never an overwrite.
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error

	ListPending(ctx context.Context, limit, offset int) ([]model.Event, error)
	ListSent(ctx context.Context, limit, offset int) ([]model.Event, error)
}
