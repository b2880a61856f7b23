package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"foodshare-backend/internal/listing"
	"foodshare-backend/internal/model"
)

type createListingRequest struct {
	Title           string    `json:"title" binding:"required"`
	Description     string    `json:"description"`
	Quantity        int       `json:"quantity" binding:"required"`
	Unit            string    `json:"unit" binding:"required"`
	Category        string    `json:"category" binding:"required"`
	PriceType       string    `json:"priceType"`
	OriginalPrice   float64   `json:"originalPrice"`
	DiscountedPrice float64   `json:"discountedPrice"`
	ExpiryDate      time.Time `json:"expiryDate" binding:"required"`
	PickupStart     time.Time `json:"pickupStart" binding:"required"`
	PickupEnd       time.Time `json:"pickupEnd" binding:"required"`
	Street          string    `json:"street"`
	City            string    `json:"city"`
}

// CreateListing handles POST /api/listings.
func (h *Handler) CreateListing(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}

	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	l, err := h.listings.CreateListing(c.Request.Context(), ownerID, listing.CreateListingInput{
		Title:           req.Title,
		Description:     req.Description,
		Quantity:        req.Quantity,
		Unit:            req.Unit,
		Category:        req.Category,
		PriceType:       model.PriceType(req.PriceType),
		OriginalPrice:   req.OriginalPrice,
		DiscountedPrice: req.DiscountedPrice,
		ExpiryDate:      req.ExpiryDate,
		PickupStart:     req.PickupStart,
		PickupEnd:       req.PickupEnd,
		Street:          req.Street,
		City:            req.City,
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, l)
}

// GetListings handles GET /api/listings, returning available listings
// newest first.
func (h *Handler) GetListings(c *gin.Context) {
	listings, err := h.store.ListAvailable(c.Request.Context(), time.Now().UTC())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve listings"})
		return
	}
	c.JSON(http.StatusOK, listings)
}

// GetMyListings handles GET /api/my/listings.
func (h *Handler) GetMyListings(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}

	listings, err := h.store.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve listings"})
		return
	}
	c.JSON(http.StatusOK, listings)
}

// GetListing handles GET /api/listings/:id.
func (h *Handler) GetListing(c *gin.Context) {
	l, err := h.store.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// ReserveListing handles POST /api/listings/:id/reserve.
func (h *Handler) ReserveListing(c *gin.Context) {
	requesterID, ok := callerID(c)
	if !ok {
		return
	}

	decision, err := h.listings.Reserve(c.Request.Context(), c.Param("id"), requesterID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accepted": decision.Accepted,
		"listing":  decision.Listing,
	})
}

// CompleteListing handles POST /api/listings/:id/complete.
func (h *Handler) CompleteListing(c *gin.Context) {
	actorID, ok := callerID(c)
	if !ok {
		return
	}

	l, err := h.listings.Complete(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// GetMyReservations handles GET /api/my/reservations, returning the
// caller's reservation requests across listings, newest first.
func (h *Handler) GetMyReservations(c *gin.Context) {
	requesterID, ok := callerID(c)
	if !ok {
		return
	}

	requests, err := h.store.ListRequestsByRequester(c.Request.Context(), requesterID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reservations"})
		return
	}
	c.JSON(http.StatusOK, requests)
}
