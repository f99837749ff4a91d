package slot

import (
	"context"
	"time"
)

// Repository contains the DB reads needed by the service. Slots are written
// by administrative tooling only.
type Repository interface {
	// ListAvailable returns available slots starting after now, ordered by
	// date then time.
	ListAvailable(ctx context.Context, now time.Time) ([]Slot, error)

	// IsAvailable reports whether the exact date/time is still bookable.
	IsAvailable(ctx context.Context, date time.Time, timeOfDay time.Duration, now time.Time) (bool, error)
}
