package listing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"foodshare-backend/internal/clock"
	"foodshare-backend/internal/model"
	"foodshare-backend/internal/store"
)

// Emitter delivers notification events. Delivery is best-effort and must
// never block or fail the listing operation that triggered it.
type Emitter interface {
	Emit(n model.Notification)
}

// maxSaveRetries bounds how often a lost optimistic-concurrency race is
// retried before surfacing ErrVersionConflict.
const maxSaveRetries = 3

// Service is the listing lifecycle controller and the sole writer of listing
// state. Every mutation runs as load -> decide -> save under a per-listing
// lock, with an optimistic version check at save time.
type Service struct {
	store   store.Store
	emitter Emitter
	clock   clock.Clock
	locks   *lockTable
}

// NewService creates a lifecycle controller.
func NewService(s store.Store, emitter Emitter, clk clock.Clock) *Service {
	return &Service{
		store:   s,
		emitter: emitter,
		clock:   clk,
		locks:   newLockTable(),
	}
}

// CreateListingInput carries the descriptive attributes for a new listing.
type CreateListingInput struct {
	Title           string
	Description     string
	Quantity        int
	Unit            string
	Category        string
	PriceType       model.PriceType
	OriginalPrice   float64
	DiscountedPrice float64
	ExpiryDate      time.Time
	PickupStart     time.Time
	PickupEnd       time.Time
	Street          string
	City            string
}

func (in *CreateListingInput) validate(now time.Time) error {
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", model.ErrValidation)
	}
	if in.Unit == "" {
		return fmt.Errorf("%w: unit is required", model.ErrValidation)
	}
	validCategory := false
	for _, c := range model.ValidCategories {
		if in.Category == c {
			validCategory = true
			break
		}
	}
	if !validCategory {
		return fmt.Errorf("%w: unknown category %q", model.ErrValidation, in.Category)
	}
	if in.ExpiryDate.IsZero() || !in.ExpiryDate.After(now) {
		return fmt.Errorf("%w: expiry date must be in the future", model.ErrValidation)
	}
	if in.PickupStart.IsZero() || in.PickupEnd.IsZero() {
		return fmt.Errorf("%w: pickup window is required", model.ErrValidation)
	}
	if !in.PickupEnd.After(in.PickupStart) {
		return fmt.Errorf("%w: pickup window end must be after start", model.ErrValidation)
	}
	switch in.PriceType {
	case "", model.PriceFree:
	case model.PriceDiscounted:
		if in.DiscountedPrice <= 0 || in.OriginalPrice <= 0 {
			return fmt.Errorf("%w: discounted listings need both prices", model.ErrValidation)
		}
		if in.DiscountedPrice >= in.OriginalPrice {
			return fmt.Errorf("%w: discounted price must be below original price", model.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown price type %q", model.ErrValidation, in.PriceType)
	}
	return nil
}

// CreateListing validates the input and persists a fresh available listing
// with an empty reservation queue.
func (s *Service) CreateListing(ctx context.Context, ownerID string, in CreateListingInput) (*model.Listing, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", model.ErrValidation)
	}
	now := s.clock.Now()
	if err := in.validate(now); err != nil {
		return nil, err
	}

	priceType := in.PriceType
	if priceType == "" {
		priceType = model.PriceFree
	}

	l := &model.Listing{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		Title:           in.Title,
		Description:     in.Description,
		Quantity:        in.Quantity,
		Unit:            in.Unit,
		Category:        in.Category,
		PriceType:       priceType,
		OriginalPrice:   in.OriginalPrice,
		DiscountedPrice: in.DiscountedPrice,
		ExpiryDate:      in.ExpiryDate,
		PickupStart:     in.PickupStart,
		PickupEnd:       in.PickupEnd,
		Street:          in.Street,
		City:            in.City,
		Status:          model.ListingAvailable,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateListing(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Reserve runs one reservation attempt. The per-listing lock serializes
// racing callers in this process; the version check on save catches writers
// elsewhere, in which case the whole load-arbitrate-save is retried.
func (s *Service) Reserve(ctx context.Context, listingID, requesterID string) (Decision, error) {
	if requesterID == "" {
		return Decision{}, fmt.Errorf("%w: requester is required", model.ErrValidation)
	}

	lock := s.locks.get(listingID)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		l, err := s.store.GetListing(ctx, listingID)
		if err != nil {
			return Decision{}, err
		}

		now := s.clock.Now()
		decision, err := AttemptReserve(l, requesterID, now)
		if err != nil {
			return Decision{}, err
		}

		if decision.AlreadyReserved {
			// Nothing changed; return the existing acceptance without
			// saving or re-notifying.
			return decision, nil
		}

		if err := s.store.SaveListing(ctx, l, l.Version); err != nil {
			if errors.Is(err, model.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return Decision{}, err
		}

		s.emitReservationOutcome(decision, requesterID, l, now)
		return decision, nil
	}
	return Decision{}, lastErr
}

func (s *Service) emitReservationOutcome(decision Decision, requesterID string, l *model.Listing, now time.Time) {
	if decision.Accepted {
		s.emit(model.Notification{
			RecipientID: requesterID,
			Kind:        model.KindReservationAccepted,
			ListingID:   l.ID,
			Message:     fmt.Sprintf("Your reservation for %q was accepted", l.Title),
			CreatedAt:   now,
		})
		s.emit(model.Notification{
			RecipientID: l.OwnerID,
			Kind:        model.KindListingStatusChanged,
			ListingID:   l.ID,
			Message:     fmt.Sprintf("Your listing %q has been reserved", l.Title),
			CreatedAt:   now,
		})
		return
	}
	s.emit(model.Notification{
		RecipientID: requesterID,
		Kind:        model.KindReservationRejected,
		ListingID:   l.ID,
		Message:     fmt.Sprintf("Listing %q is no longer available", l.Title),
		CreatedAt:   now,
	})
}

// Complete marks a reserved listing as picked up. Allowed for the owner and
// the reserving party only.
func (s *Service) Complete(ctx context.Context, listingID, actorID string) (*model.Listing, error) {
	lock := s.locks.get(listingID)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		l, err := s.store.GetListing(ctx, listingID)
		if err != nil {
			return nil, err
		}

		now := s.clock.Now()
		if err := MarkCompleted(l, actorID, now); err != nil {
			return nil, err
		}

		if err := s.store.SaveListing(ctx, l, l.Version); err != nil {
			if errors.Is(err, model.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}

		s.emit(model.Notification{
			RecipientID: l.OwnerID,
			Kind:        model.KindListingStatusChanged,
			ListingID:   l.ID,
			Message:     fmt.Sprintf("Listing %q has been completed", l.Title),
			CreatedAt:   now,
		})
		if l.ReservedBy != "" && l.ReservedBy != actorID {
			s.emit(model.Notification{
				RecipientID: l.ReservedBy,
				Kind:        model.KindListingStatusChanged,
				ListingID:   l.ID,
				Message:     fmt.Sprintf("Listing %q has been completed", l.Title),
				CreatedAt:   now,
			})
		}
		return l, nil
	}
	return nil, lastErr
}

// ExpireDue transitions every listing past its expiry date or pickup window
// into the expired state and returns how many changed. Listings already
// terminal are left untouched, so repeated runs are no-ops.
func (s *Service) ExpireDue(ctx context.Context) (int, error) {
	ids, err := s.store.FindExpirable(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		changed, err := s.expireOne(ctx, id)
		if err != nil {
			log.Printf("Error expiring listing %s: %v", id, err)
			continue
		}
		if changed {
			expired++
		}
	}
	return expired, nil
}

func (s *Service) expireOne(ctx context.Context, listingID string) (bool, error) {
	lock := s.locks.get(listingID)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		l, err := s.store.GetListing(ctx, listingID)
		if err != nil {
			return false, err
		}

		now := s.clock.Now()
		if !MarkExpired(l, now) {
			return false, nil
		}

		if err := s.store.SaveListing(ctx, l, l.Version); err != nil {
			if errors.Is(err, model.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return false, err
		}

		s.emit(model.Notification{
			RecipientID: l.OwnerID,
			Kind:        model.KindListingStatusChanged,
			ListingID:   l.ID,
			Message:     fmt.Sprintf("Your listing %q has expired", l.Title),
			CreatedAt:   now,
		})
		if l.ReservedBy != "" {
			s.emit(model.Notification{
				RecipientID: l.ReservedBy,
				Kind:        model.KindListingStatusChanged,
				ListingID:   l.ID,
				Message:     fmt.Sprintf("Reserved listing %q expired before pickup", l.Title),
				CreatedAt:   now,
			})
		}
		return true, nil
	}
	return false, lastErr
}

func (s *Service) emit(n model.Notification) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(n)
}
