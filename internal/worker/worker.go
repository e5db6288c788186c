// Package worker runs the background sweep that fails card orders whose
// payment never settled. The gateway normally reports expired sessions over
// the webhook; the sweeper is the safety net for deliveries that never
// arrive.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/awadhalla/souq/internal/domain"
	"github.com/awadhalla/souq/internal/service"
)

// Config holds sweeper configuration
type Config struct {
	// PollInterval is how often to scan for stale orders
	PollInterval time.Duration

	// MaxAge is how long a card order may stay pending before it is
	// marked failed
	MaxAge time.Duration

	// BatchSize caps how many orders one sweep handles
	BatchSize int
}

// Sweeper marks abandoned card checkouts as failed.
type Sweeper struct {
	config Config
	orders service.OrderService
	logger *slog.Logger
	now    func() time.Time
}

// NewSweeper creates a new Sweeper.
func NewSweeper(orders service.OrderService, config Config, logger *slog.Logger) *Sweeper {
	if config.PollInterval == 0 {
		config.PollInterval = 10 * time.Minute
	}
	if config.MaxAge == 0 {
		config.MaxAge = 24 * time.Hour
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}
	return &Sweeper{
		config: config,
		orders: orders,
		logger: logger,
		now:    time.Now,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info("order sweeper starting",
		"poll_interval", s.config.PollInterval,
		"max_age", s.config.MaxAge,
	)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("order sweeper shutting down")
			return ctx.Err()
		case <-ticker.C:
			if n := s.Sweep(ctx); n > 0 {
				s.logger.Info("expired stale card orders", "count", n)
			}
		}
	}
}

// Sweep fails pending card orders older than MaxAge and returns how many it
// touched. Cash orders stay pending; they settle on delivery.
func (s *Sweeper) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.config.MaxAge)
	stale, _, err := s.orders.History(ctx, domain.OrderFilter{
		PaymentStatus: domain.PaymentStatusPending,
		To:            &cutoff,
	}, domain.Page{Size: s.config.BatchSize})
	if err != nil {
		s.logger.Error("stale order scan failed", "error", err)
		return 0
	}

	expired := 0
	for i := range stale {
		order := &stale[i]
		if order.PaymentMethod != domain.PaymentMethodCard || order.Cancelled() {
			continue
		}
		if _, err := s.orders.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusFailed); err != nil {
			s.logger.Error("failed to expire order", "order_id", order.ID, "error", err)
			continue
		}
		expired++
	}
	return expired
}
