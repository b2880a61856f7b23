package listing

import (
	"time"

	"foodshare-backend/internal/model"
)

// MarkCompleted moves a reserved listing to completed. Only the owner or the
// reserving party may complete it.
func MarkCompleted(l *model.Listing, actorID string, now time.Time) error {
	if l.Status != model.ListingReserved {
		return model.ErrInvalidTransition
	}
	if actorID != l.OwnerID && actorID != l.ReservedBy {
		return model.ErrForbidden
	}
	l.Status = model.ListingCompleted
	completedAt := now
	l.CompletedAt = &completedAt
	return nil
}

// MarkExpired moves a listing past its expiry date or pickup window into the
// expired state. Returns false when nothing changed, which makes repeated
// sweeps of the same listing a no-op. Expiry takes precedence over an
// unfulfilled reservation; the slot is not reopened.
func MarkExpired(l *model.Listing, now time.Time) bool {
	if l.Status.Terminal() {
		return false
	}
	if now.Before(l.ExpiryDate) && now.Before(l.PickupEnd) {
		return false
	}
	l.Status = model.ListingExpired
	for i := range l.Queue {
		switch l.Queue[i].Status {
		case model.RequestPending, model.RequestAccepted:
			l.Queue[i].Status = model.RequestExpired
		}
	}
	return true
}
