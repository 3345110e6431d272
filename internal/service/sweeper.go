package service

import (
	"context"
	"log"
	"time"

	"github.com/festpass/ticketing/internal/monitoring"
)

// ClaimSweeper periodically releases units still reserved by receivables
// that stayed pending past the claim TTL, finalizing those receivables as
// failed. This is the reconciliation pass for checkouts whose payment
// never reached a definitive outcome; the same release also runs lazily
// inside every allocation, so the ticker only matters during idle periods.
type ClaimSweeper struct {
	ledger   LedgerStore
	interval time.Duration
}

// NewClaimSweeper builds a sweeper running every interval; intervals <= 0
// default to one minute.
func NewClaimSweeper(ledger LedgerStore, interval time.Duration) *ClaimSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ClaimSweeper{ledger: ledger, interval: interval}
}

// Run blocks, sweeping on every tick until the context is cancelled.
// Intended to be launched as a goroutine from main.
func (s *ClaimSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := s.SweepOnce(ctx); err != nil {
				log.Printf("claim-sweeper: sweep failed: %v", err)
			}
		}
	}
}

// SweepOnce releases claims expired as of now and reports how many units
// and receivables were affected.
func (s *ClaimSweeper) SweepOnce(ctx context.Context) (int, int, error) {
	cutoff := time.Now().UTC().Add(-s.ledger.ClaimTTL())
	units, recs, err := s.ledger.ReleaseExpiredClaims(ctx, cutoff)
	if err != nil {
		return 0, 0, err
	}
	if units > 0 {
		monitoring.ClaimsReleasedTotal.Add(float64(units))
		log.Printf("claim-sweeper: released %d units from %d expired transactions", units, recs)
	}
	return units, recs, nil
}
