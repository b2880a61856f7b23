package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"foodshare-backend/internal/listing"
	"foodshare-backend/internal/model"
	"foodshare-backend/internal/store"
)

// userIDHeader carries the already-authenticated caller identity. The
// service does not authenticate; the fronting proxy does.
const userIDHeader = "X-User-ID"

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	listings *listing.Service
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, listings *listing.Service, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:    s,
		listings: listings,
		webpush:  webpushOptions,
	}
}

// callerID extracts the authenticated identity, aborting with 401 when the
// header is missing.
func callerID(c *gin.Context) (string, bool) {
	id := c.GetHeader(userIDHeader)
	if id == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + userIDHeader + " header"})
		return "", false
	}
	return id, true
}

// abortWithDomainError maps domain errors to HTTP status codes.
func abortWithDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrNotAvailable):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrInvalidTransition):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrVersionConflict):
		// Retries inside the lifecycle controller are exhausted; the
		// caller should repeat the whole request.
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "please retry"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
