package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodshare-backend/internal/model"
)

// Store defines the interface for all database operations the lifecycle
// controller and sweeper need.
type Store interface {
	CreateListing(ctx context.Context, l *model.Listing) error
	GetListing(ctx context.Context, id string) (*model.Listing, error)
	SaveListing(ctx context.Context, l *model.Listing, expectedVersion int64) error
	FindExpirable(ctx context.Context, now time.Time) ([]string, error)
	ListAvailable(ctx context.Context, now time.Time) ([]model.Listing, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error)
	ListRequestsByRequester(ctx context.Context, requesterID string) ([]model.ReservationRequest, error)
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) CreateListing(ctx context.Context, l *model.Listing) error {
	if err := s.db.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("failed to create listing %s: %w", l.ID, err)
	}
	return nil
}

// GetListing loads the listing aggregate with its reservation queue in
// arrival order.
func (s *gormStore) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	var l model.Listing
	err := s.db.WithContext(ctx).
		Preload("Queue", func(db *gorm.DB) *gorm.DB {
			return db.Order("reservation_requests.position ASC")
		}).
		First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load listing %s: %w", id, err)
	}
	return &l, nil
}

// SaveListing persists the aggregate with an optimistic version check. The
// listing row update is guarded by the version the caller loaded; a losing
// concurrent writer gets ErrVersionConflict and must reload and retry.
func (s *gormStore) SaveListing(ctx context.Context, l *model.Listing, expectedVersion int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Listing{}).
			Where("id = ? AND version = ?", l.ID, expectedVersion).
			Updates(map[string]any{
				"status":       l.Status,
				"reserved_by":  l.ReservedBy,
				"reserved_at":  l.ReservedAt,
				"completed_at": l.CompletedAt,
				"version":      expectedVersion + 1,
				"updated_at":   time.Now().UTC(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update listing %s: %w", l.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return model.ErrVersionConflict
		}

		if len(l.Queue) > 0 {
			// Existing entries only ever change status; new entries are
			// appended. One upsert covers both.
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
			}).Create(&l.Queue).Error; err != nil {
				return fmt.Errorf("failed to save reservation queue for listing %s: %w", l.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.Version = expectedVersion + 1
	return nil
}

// FindExpirable returns ids of non-terminal listings whose expiry date or
// pickup window end has passed.
func (s *gormStore) FindExpirable(ctx context.Context, now time.Time) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&model.Listing{}).
		Where("status IN ?", []model.ListingStatus{model.ListingAvailable, model.ListingReserved}).
		Where("expiry_date <= ? OR pickup_end <= ?", now, now).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expirable listings: %w", err)
	}
	return ids, nil
}

// ListAvailable returns listings open for reservation, newest first. Listings
// past expiry that the sweeper has not visited yet are filtered out.
func (s *gormStore) ListAvailable(ctx context.Context, now time.Time) ([]model.Listing, error) {
	var listings []model.Listing
	err := s.db.WithContext(ctx).
		Where("status = ?", model.ListingAvailable).
		Where("expiry_date > ?", now).
		Order("created_at DESC").
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list available listings: %w", err)
	}
	return listings, nil
}

func (s *gormStore) ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	var listings []model.Listing
	err := s.db.WithContext(ctx).
		Preload("Queue", func(db *gorm.DB) *gorm.DB {
			return db.Order("reservation_requests.position ASC")
		}).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list listings for owner %s: %w", ownerID, err)
	}
	return listings, nil
}

func (s *gormStore) ListRequestsByRequester(ctx context.Context, requesterID string) ([]model.ReservationRequest, error) {
	var requests []model.ReservationRequest
	err := s.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("requested_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list requests for requester %s: %w", requesterID, err)
	}
	return requests, nil
}
