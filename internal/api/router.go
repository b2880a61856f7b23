package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"foodshare-backend/internal/listing"
	"foodshare-backend/internal/mw"
	"foodshare-backend/internal/store"
)

// RouterOptions tunes the middleware applied to the API group.
type RouterOptions struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
	RequestIPHeader string
}

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, listings *listing.Service, webpushOptions *webpush.Options, opts RouterOptions) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, listings, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(opts.RateLimitPerSec), opts.RateLimitBurst, opts.RequestIPHeader)

	cacheStore := cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	caching := mw.Cache(cacheStore, opts.CacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/listings", handler.CreateListing)
		api.GET("/listings", caching, handler.GetListings)
		api.GET("/listings/:id", handler.GetListing)
		api.POST("/listings/:id/reserve", handler.ReserveListing)
		api.POST("/listings/:id/complete", handler.CompleteListing)

		api.GET("/my/listings", handler.GetMyListings)
		api.GET("/my/reservations", handler.GetMyReservations)

		api.GET("/notifications", handler.GetNotifications)
		api.POST("/notifications/:id/read", handler.MarkNotificationRead)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
