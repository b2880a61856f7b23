package model

import "time"

// ListingStatus is the lifecycle state of a food listing.
type ListingStatus string

const (
	ListingAvailable ListingStatus = "available"
	ListingReserved  ListingStatus = "reserved"
	ListingCompleted ListingStatus = "completed"
	ListingExpired   ListingStatus = "expired"
)

// Terminal reports whether no further status transition is permitted.
func (s ListingStatus) Terminal() bool {
	return s == ListingCompleted || s == ListingExpired
}

// PriceType distinguishes free donations from discounted sales.
type PriceType string

const (
	PriceFree       PriceType = "free"
	PriceDiscounted PriceType = "discounted"
)

// Listing represents a donor-posted quantity of food available for reservation.
//
// Version is the optimistic-concurrency token: every save checks and bumps it,
// so two concurrent writers cannot both commit against the same snapshot.
type Listing struct {
	ID              string        `gorm:"primaryKey;size:36" json:"id"`
	OwnerID         string        `gorm:"index;size:36;not null" json:"ownerId"`
	Title           string        `gorm:"size:256;not null" json:"title"`
	Description     string        `gorm:"size:2048" json:"description"`
	Quantity        int           `gorm:"not null" json:"quantity"`
	Unit            string        `gorm:"size:32;not null" json:"unit"`
	Category        string        `gorm:"size:32;not null" json:"category"`
	PriceType       PriceType     `gorm:"size:16;not null;default:free" json:"priceType"`
	OriginalPrice   float64       `json:"originalPrice,omitempty"`
	DiscountedPrice float64       `json:"discountedPrice,omitempty"`
	ExpiryDate      time.Time     `gorm:"index;not null" json:"expiryDate"`
	PickupStart     time.Time     `gorm:"not null" json:"pickupStart"`
	PickupEnd       time.Time     `gorm:"not null" json:"pickupEnd"`
	Street          string        `gorm:"size:256" json:"street,omitempty"`
	City            string        `gorm:"size:128" json:"city,omitempty"`
	Status          ListingStatus `gorm:"index;size:16;not null;default:available" json:"status"`
	ReservedBy      string        `gorm:"size:36" json:"reservedBy,omitempty"`
	ReservedAt      *time.Time    `json:"reservedAt,omitempty"`
	CompletedAt     *time.Time    `json:"completedAt,omitempty"`
	Version         int64         `gorm:"not null;default:1" json:"-"`
	CreatedAt       time.Time     `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time     `gorm:"not null" json:"updatedAt"`

	// Associations. Queue order is arrival order; entries are appended and
	// have their status mutated, never removed or reordered.
	Queue []ReservationRequest `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"reservationQueue"`
}

// ValidCategories mirrors the categories accepted at listing creation.
var ValidCategories = []string{"vegetables", "fruits", "grains", "prepared", "bakery", "other"}
