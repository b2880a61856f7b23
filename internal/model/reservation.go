package model

import "time"

// RequestStatus is the state of a single reservation attempt.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
	RequestExpired  RequestStatus = "expired"
)

// ReservationRequest is one seeker's attempt to claim a listing. Position is
// assigned at append time and fixes the first-come-first-served order even
// when RequestedAt timestamps collide.
type ReservationRequest struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id"`
	ListingID   string        `gorm:"index;size:36;not null" json:"listingId"`
	RequesterID string        `gorm:"index;size:36;not null" json:"requesterId"`
	Position    int           `gorm:"not null" json:"position"`
	RequestedAt time.Time     `gorm:"not null" json:"requestedAt"`
	Status      RequestStatus `gorm:"size:16;not null" json:"status"`
	CreatedAt   time.Time     `gorm:"not null" json:"-"`
	UpdatedAt   time.Time     `gorm:"not null" json:"-"`
}
