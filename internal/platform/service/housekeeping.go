package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/metagate-hq/platform/internal/platform/store"
)

// DefaultHousekeepingInterval is how often expired single-use tokens are
// swept out of the accounts table.
const DefaultHousekeepingInterval = time.Hour

// HousekeepingService periodically clears expired verification and reset
// tokens. Expiry is already enforced at consumption time, so the sweep is
// hygiene, not correctness: it keeps dead fingerprints from lingering.
type HousekeepingService struct {
	store    store.Store
	log      *slog.Logger
	interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewHousekeepingService(st store.Store, log *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = DefaultHousekeepingInterval
	}
	return &HousekeepingService{
		store:    st,
		log:      log,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background sweep loop. Call Stop to end it.
func (s *HousekeepingService) Start() {
	go s.run()
}

// Stop signals the loop to exit and waits for the in-flight sweep to finish.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// One sweep at startup so a long interval does not delay the first
	// cleanup after a restart.
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.store.Accounts().ClearExpiredTokens(ctx, time.Now().UTC())
	if err != nil {
		s.log.ErrorContext(ctx, "token sweep failed", slog.Any("error", err))
		return
	}
	if n > 0 {
		s.log.InfoContext(ctx, "expired tokens cleared", slog.Int64("count", n))
	}
}
