package services

import (
	"context"
	"soundsocial/internal/logger"
	"sync"
	"time"
)

// RateGateService serializes outbound dispatch to the metadata provider.
// All callers share one gate, so the total request rate stays bounded no
// matter how many requests are in flight. Each caller reserves the next
// free dispatch slot under the lock, then waits for it outside the lock so
// waiting callers can still be cancelled.
type RateGateService struct {
	mu     sync.Mutex
	delay  time.Duration
	nextAt time.Time
	log    logger.Logger
}

func NewRateGateService(delay time.Duration) *RateGateService {
	return &RateGateService{
		delay: delay,
		log:   logger.New("RateGateService"),
	}
}

// Wait blocks until this caller's dispatch slot arrives or ctx is done.
func (g *RateGateService) Wait(ctx context.Context) error {
	log := g.log.Function("Wait")

	g.mu.Lock()
	now := time.Now()
	slot := g.nextAt
	if slot.Before(now) {
		slot = now
	}
	g.nextAt = slot.Add(g.delay)
	g.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return nil
	}

	log.Debug("waiting for dispatch slot", "wait", wait)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// Delay returns the configured inter-request spacing.
func (g *RateGateService) Delay() time.Duration {
	return g.delay
}
