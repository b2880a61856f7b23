package sweeper

import (
	"context"
	"log"
	"time"

	"foodshare-backend/config"
	"foodshare-backend/internal/listing"
)

// Service periodically scans for listings past their expiry date or pickup
// window and moves them to the expired state through the lifecycle
// controller, so sweeps and in-flight reservations share the same
// per-listing serialization.
type Service struct {
	cfg      *config.Config
	listings *listing.Service
}

// NewService creates a new sweeper service.
func NewService(cfg *config.Config, listings *listing.Service) *Service {
	return &Service{cfg: cfg, listings: listings}
}

// Run starts the sweep loop and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Sweeper.Enabled {
		log.Println("Expiry sweeper is disabled. Not starting.")
		return
	}
	log.Println("Starting expiry sweeper...")

	s.SweepOnce(ctx)

	timer := time.NewTimer(s.cfg.Sweeper.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Expiry sweeper shutting down.")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
			timer.Reset(s.cfg.Sweeper.Interval)
		}
	}
}

// SweepOnce performs a single expiry scan.
func (s *Service) SweepOnce(ctx context.Context) {
	expired, err := s.listings.ExpireDue(ctx)
	if err != nil {
		log.Printf("Error during expiry sweep: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("Expiry sweep transitioned %d listings", expired)
	}
}
