package service

import (
	"context"
	"time"

	"fundflow/internal/core/domain"
	"fundflow/internal/core/ports"
	"fundflow/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SweeperConfig controls the reconciliation sweep.
type SweeperConfig struct {
	Interval  time.Duration
	MinAge    time.Duration
	BatchSize int
}

// Sweeper periodically re-queries providers for transactions whose gateway call is still
// outstanding: unconfirmed dispatches and callbacks that never arrived.
type Sweeper struct {
	txRepo  ports.TransactionRepository
	status  ports.StatusService
	cfg     SweeperConfig
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

func NewSweeper(txRepo ports.TransactionRepository, status ports.StatusService, cfg SweeperConfig, m *metrics.Metrics, log zerolog.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.MinAge <= 0 {
		cfg.MinAge = 5 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Sweeper{txRepo: txRepo, status: status, cfg: cfg, metrics: m, log: log, now: time.Now}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.cfg.Interval).Dur("min_age", s.cfg.MinAge).Msg("reconciliation sweeper started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("reconciliation sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass and returns the per-transaction results.
func (s *Sweeper) Sweep(ctx context.Context) []ports.RefreshResult {
	stale, err := s.txRepo.ListInFlight(ctx, s.now().Add(-s.cfg.MinAge), s.cfg.BatchSize)
	if err != nil {
		s.metrics.SweepRun("error")
		s.log.Error().Err(err).Msg("sweep: listing in-flight transactions failed")
		return nil
	}
	if len(stale) == 0 {
		s.metrics.SweepRun("empty")
		return nil
	}

	ids := make([]uuid.UUID, len(stale))
	for i := range stale {
		ids[i] = stale[i].ID
	}
	results := s.status.BulkRefresh(ctx, ids, domain.ActorSweeper)

	counts := make(map[ports.RefreshOutcome]int)
	for _, r := range results {
		counts[r.Outcome]++
		s.metrics.SweepRefreshed(string(r.Outcome))
		if r.Outcome == ports.OutcomeError {
			s.log.Warn().Str("tx_id", r.TransactionID.String()).Str("error", r.Error).Msg("sweep: refresh failed")
		}
	}
	s.metrics.SweepRun("ok")
	s.log.Info().
		Int("checked", len(results)).
		Int("applied", counts[ports.OutcomeApplied]).
		Int("errors", counts[ports.OutcomeError]).
		Msg("sweep finished")
	return results
}
