package model

import "time"

// NotificationKind classifies a notification event.
type NotificationKind string

const (
	KindReservationAccepted  NotificationKind = "reservation_accepted"
	KindReservationRejected  NotificationKind = "reservation_rejected"
	KindListingStatusChanged NotificationKind = "listing_status_changed"
)

// Notification is the persisted feed entry behind a delivered event.
type Notification struct {
	ID          string           `gorm:"primaryKey;size:36" json:"id"`
	RecipientID string           `gorm:"index;size:36;not null" json:"recipientId"`
	Kind        NotificationKind `gorm:"size:32;not null" json:"kind"`
	ListingID   string           `gorm:"size:36" json:"listingId"`
	Message     string           `gorm:"size:512;not null" json:"message"`
	Read        bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time        `gorm:"not null" json:"createdAt"`
}
