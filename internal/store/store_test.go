package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"foodshare-backend/internal/db"
	"foodshare-backend/internal/model"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(testDB))
	t.Cleanup(func() {
		sqlDB, _ := testDB.DB()
		sqlDB.Close()
	})
	return NewGormStore(testDB)
}

func seedListing(t *testing.T, s Store, id string, status model.ListingStatus, expiry time.Time) *model.Listing {
	t.Helper()
	now := time.Now().UTC()
	l := &model.Listing{
		ID:          id,
		OwnerID:     "donor-1",
		Title:       "Surplus vegetables",
		Quantity:    3,
		Unit:        "kg",
		Category:    "vegetables",
		ExpiryDate:  expiry,
		PickupStart: now.Add(-time.Hour),
		PickupEnd:   expiry,
		Status:      status,
		Version:     1,
		CreatedAt:   now,
	}
	require.NoError(t, s.CreateListing(context.Background(), l))
	return l
}

func TestGetListing_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetListing(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSaveListing_VersionCheck(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	l := seedListing(t, s, "l1", model.ListingAvailable, time.Now().UTC().Add(24*time.Hour))

	// Save against the loaded version succeeds and bumps it.
	l.Status = model.ListingReserved
	l.ReservedBy = "seeker-a"
	require.NoError(t, s.SaveListing(ctx, l, 1))
	assert.Equal(t, int64(2), l.Version)

	loaded, err := s.GetListing(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Version)
	assert.Equal(t, model.ListingReserved, loaded.Status)

	// A writer holding the stale version loses.
	stale := *loaded
	stale.Status = model.ListingCompleted
	err = s.SaveListing(ctx, &stale, 1)
	assert.ErrorIs(t, err, model.ErrVersionConflict)

	reloaded, err := s.GetListing(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, model.ListingReserved, reloaded.Status, "losing write must not apply")
}

func TestSaveListing_PersistsQueueInArrivalOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	l := seedListing(t, s, "l1", model.ListingAvailable, now.Add(24*time.Hour))

	l.Queue = append(l.Queue,
		model.ReservationRequest{
			ID: "r1", ListingID: l.ID, RequesterID: "seeker-a",
			Position: 1, RequestedAt: now, Status: model.RequestAccepted,
		},
		model.ReservationRequest{
			ID: "r2", ListingID: l.ID, RequesterID: "seeker-b",
			Position: 2, RequestedAt: now.Add(time.Second), Status: model.RequestRejected,
		},
	)
	l.Status = model.ListingReserved
	l.ReservedBy = "seeker-a"
	require.NoError(t, s.SaveListing(ctx, l, 1))

	loaded, err := s.GetListing(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, loaded.Queue, 2)
	assert.Equal(t, "seeker-a", loaded.Queue[0].RequesterID)
	assert.Equal(t, model.RequestAccepted, loaded.Queue[0].Status)
	assert.Equal(t, "seeker-b", loaded.Queue[1].RequesterID)
	assert.Equal(t, model.RequestRejected, loaded.Queue[1].Status)

	// A later save only mutates entry statuses, never removes entries.
	loaded.Queue[0].Status = model.RequestExpired
	loaded.Status = model.ListingExpired
	require.NoError(t, s.SaveListing(ctx, loaded, 2))

	reloaded, err := s.GetListing(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, reloaded.Queue, 2)
	assert.Equal(t, model.RequestExpired, reloaded.Queue[0].Status)
}

func TestFindExpirable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedListing(t, s, "past-available", model.ListingAvailable, now.Add(-time.Hour))
	seedListing(t, s, "past-reserved", model.ListingReserved, now.Add(-time.Minute))
	seedListing(t, s, "past-completed", model.ListingCompleted, now.Add(-time.Hour))
	seedListing(t, s, "past-expired", model.ListingExpired, now.Add(-time.Hour))
	seedListing(t, s, "future", model.ListingAvailable, now.Add(24*time.Hour))

	ids, err := s.FindExpirable(ctx, now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"past-available", "past-reserved"}, ids)
}

func TestListAvailable_FiltersStatusAndExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedListing(t, s, "open", model.ListingAvailable, now.Add(24*time.Hour))
	seedListing(t, s, "reserved", model.ListingReserved, now.Add(24*time.Hour))
	// Past expiry but not swept yet; must not be offered to browsers.
	seedListing(t, s, "stale", model.ListingAvailable, now.Add(-time.Hour))

	listings, err := s.ListAvailable(ctx, now)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "open", listings[0].ID)
}

func TestListByOwnerAndRequester(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	l := seedListing(t, s, "l1", model.ListingAvailable, now.Add(24*time.Hour))
	seedListing(t, s, "l2", model.ListingAvailable, now.Add(24*time.Hour))

	l.Queue = append(l.Queue, model.ReservationRequest{
		ID: "r1", ListingID: l.ID, RequesterID: "seeker-a",
		Position: 1, RequestedAt: now, Status: model.RequestAccepted,
	})
	l.Status = model.ListingReserved
	l.ReservedBy = "seeker-a"
	require.NoError(t, s.SaveListing(ctx, l, 1))

	owned, err := s.ListByOwner(ctx, "donor-1")
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	requests, err := s.ListRequestsByRequester(ctx, "seeker-a")
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "l1", requests[0].ListingID)

	none, err := s.ListRequestsByRequester(ctx, "seeker-z")
	require.NoError(t, err)
	assert.Empty(t, none)
}
