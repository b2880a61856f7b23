package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodshare-backend/internal/model"
)

func freshListing(now time.Time) *model.Listing {
	return &model.Listing{
		ID:          "listing-1",
		OwnerID:     "donor-1",
		Title:       "Surplus bread",
		Quantity:    10,
		Unit:        "loaves",
		Category:    "bakery",
		ExpiryDate:  now.Add(24 * time.Hour),
		PickupStart: now.Add(time.Hour),
		PickupEnd:   now.Add(12 * time.Hour),
		Status:      model.ListingAvailable,
		Version:     1,
	}
}

func TestAttemptReserve_FirstRequesterWins(t *testing.T) {
	now := time.Now().UTC()
	l := freshListing(now)

	decision, err := AttemptReserve(l, "seeker-a", now)
	require.NoError(t, err)

	assert.True(t, decision.Accepted)
	assert.False(t, decision.AlreadyReserved)
	assert.Equal(t, model.ListingReserved, l.Status)
	assert.Equal(t, "seeker-a", l.ReservedBy)
	require.NotNil(t, l.ReservedAt)
	assert.Equal(t, now, *l.ReservedAt)

	require.Len(t, l.Queue, 1)
	assert.Equal(t, model.RequestAccepted, l.Queue[0].Status)
	assert.Equal(t, "seeker-a", l.Queue[0].RequesterID)
	assert.Equal(t, 1, l.Queue[0].Position)
}

func TestAttemptReserve_SecondRequesterRejected(t *testing.T) {
	now := time.Now().UTC()
	l := freshListing(now)

	_, err := AttemptReserve(l, "seeker-a", now)
	require.NoError(t, err)

	_, err = AttemptReserve(l, "seeker-b", now.Add(time.Second))
	assert.ErrorIs(t, err, model.ErrNotAvailable)

	// The loser leaves no trace and the winner's state is untouched.
	assert.Equal(t, model.ListingReserved, l.Status)
	assert.Equal(t, "seeker-a", l.ReservedBy)
	assert.Len(t, l.Queue, 1)
}

func TestAttemptReserve_RaceWindowAppendsRejectedEntry(t *testing.T) {
	// A stale aggregate can look available while already carrying a queue
	// entry. The later arrival must be recorded as rejected, not promoted.
	now := time.Now().UTC()
	l := freshListing(now)
	l.Queue = []model.ReservationRequest{{
		ID:          "req-1",
		ListingID:   l.ID,
		RequesterID: "seeker-a",
		Position:    1,
		RequestedAt: now,
		Status:      model.RequestAccepted,
	}}

	decision, err := AttemptReserve(l, "seeker-b", now.Add(time.Millisecond))
	require.NoError(t, err)

	assert.False(t, decision.Accepted)
	require.Len(t, l.Queue, 2)
	assert.Equal(t, model.RequestRejected, l.Queue[1].Status)
	assert.Equal(t, 2, l.Queue[1].Position)
	// The earlier entry is never reordered or demoted.
	assert.Equal(t, model.RequestAccepted, l.Queue[0].Status)
}

func TestAttemptReserve_RepeatFromHolderIsIdempotent(t *testing.T) {
	now := time.Now().UTC()
	l := freshListing(now)

	_, err := AttemptReserve(l, "seeker-a", now)
	require.NoError(t, err)

	decision, err := AttemptReserve(l, "seeker-a", now.Add(time.Minute))
	require.NoError(t, err)

	assert.True(t, decision.Accepted)
	assert.True(t, decision.AlreadyReserved)
	assert.Len(t, l.Queue, 1, "no duplicate queue entry for the holder")
	assert.Equal(t, now, *l.ReservedAt, "original acceptance time kept")
}

func TestAttemptReserve_PastExpiryRejected(t *testing.T) {
	now := time.Now().UTC()
	l := freshListing(now)
	l.ExpiryDate = now.Add(-time.Minute)

	_, err := AttemptReserve(l, "seeker-a", now)
	assert.ErrorIs(t, err, model.ErrNotAvailable)
	assert.Empty(t, l.Queue)
	assert.Equal(t, model.ListingAvailable, l.Status)
}

func TestAttemptReserve_PastPickupWindowRejected(t *testing.T) {
	now := time.Now().UTC()
	l := freshListing(now)
	l.PickupEnd = now.Add(-time.Minute)

	_, err := AttemptReserve(l, "seeker-a", now)
	assert.ErrorIs(t, err, model.ErrNotAvailable)
}

func TestAttemptReserve_TerminalStatesRejected(t *testing.T) {
	now := time.Now().UTC()
	for _, status := range []model.ListingStatus{model.ListingCompleted, model.ListingExpired} {
		l := freshListing(now)
		l.Status = status

		_, err := AttemptReserve(l, "seeker-a", now)
		assert.ErrorIs(t, err, model.ErrNotAvailable, "status %s", status)
	}
}

func TestAttemptReserve_FCFSOrdering(t *testing.T) {
	// Serialized requests with increasing timestamps: the first caller wins,
	// every later caller is turned away.
	now := time.Now().UTC()
	l := freshListing(now)

	winners := 0
	for i, requester := range []string{"seeker-1", "seeker-2", "seeker-3", "seeker-4"} {
		decision, err := AttemptReserve(l, requester, now.Add(time.Duration(i)*time.Second))
		if err == nil && decision.Accepted {
			winners++
		}
	}

	assert.Equal(t, 1, winners)
	assert.Equal(t, "seeker-1", l.ReservedBy)
	assert.Equal(t, "seeker-1", l.Queue[0].RequesterID)
}
