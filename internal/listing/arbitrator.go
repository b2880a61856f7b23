package listing

import (
	"time"

	"github.com/google/uuid"

	"foodshare-backend/internal/model"
)

// Decision is the outcome of a reservation attempt.
type Decision struct {
	Accepted bool
	// AlreadyReserved is set when the requester already holds the
	// reservation; the listing was not modified and nothing needs saving.
	AlreadyReserved bool
	Listing         *model.Listing
}

// AttemptReserve decides the outcome of a reservation attempt against the
// listing's current state. It mutates only the passed-in aggregate and never
// touches the store; the caller persists the result.
//
// First come first served, no waitlist: the first request appended to an
// available listing wins and locks it. Later requests are appended as
// rejected so the queue keeps a record of every attempt.
func AttemptReserve(l *model.Listing, requesterID string, now time.Time) (Decision, error) {
	// A repeat request from the current holder returns the existing
	// acceptance instead of a rejection.
	if l.Status == model.ListingReserved && l.ReservedBy == requesterID {
		return Decision{Accepted: true, AlreadyReserved: true, Listing: l}, nil
	}

	if l.Status != model.ListingAvailable {
		return Decision{}, model.ErrNotAvailable
	}
	if !now.Before(l.ExpiryDate) || !now.Before(l.PickupEnd) {
		// Past expiry but not yet swept: same outcome as swept.
		return Decision{}, model.ErrNotAvailable
	}

	entry := model.ReservationRequest{
		ID:          uuid.NewString(),
		ListingID:   l.ID,
		RequesterID: requesterID,
		Position:    len(l.Queue) + 1,
		RequestedAt: now,
		Status:      model.RequestPending,
	}
	l.Queue = append(l.Queue, entry)

	if len(l.Queue) == 1 {
		l.Queue[0].Status = model.RequestAccepted
		l.Status = model.ListingReserved
		l.ReservedBy = requesterID
		reservedAt := now
		l.ReservedAt = &reservedAt
		return Decision{Accepted: true, Listing: l}, nil
	}

	l.Queue[len(l.Queue)-1].Status = model.RequestRejected
	return Decision{Accepted: false, Listing: l}, nil
}
