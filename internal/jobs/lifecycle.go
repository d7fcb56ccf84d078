// Package jobs holds the background workers that run beside the HTTP server.
//
// The lifecycle sweeper settles campaigns whose aggregation deadline has
// passed: committed total at or above target moves the campaign to SUCCESS,
// anything short moves it to FAILED and the refund-all batch runs
// immediately under a system-generated idempotency key. Every write goes
// through the same services the admin API uses, so the sweeper gets the same
// transition guards, ledger invariants, and idempotency protection.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alpmera/campaign-backend/internal/domain"
	"github.com/alpmera/campaign-backend/internal/repo"
	"github.com/alpmera/campaign-backend/internal/services"
)

// LifecycleSweeper periodically settles expired AGGREGATION campaigns.
type LifecycleSweeper struct {
	DB        *gorm.DB
	Campaigns *services.CampaignService
	Outcomes  *services.OutcomeService
	// Interval between sweeps. Values <= 0 fall back to two minutes.
	Interval time.Duration
}

// Run blocks, sweeping every Interval until ctx is cancelled. Call it from
// its own goroutine.
func (s *LifecycleSweeper) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = 2 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("campaign lifecycle sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("campaign lifecycle sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep settles every AGGREGATION campaign whose deadline has passed. Errors
// on one campaign are logged and do not stop the rest; an unfinished
// campaign is picked up again on the next tick.
func (s *LifecycleSweeper) Sweep(ctx context.Context) {
	expired, err := repo.ListExpiredAggregating(ctx, s.DB, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("lifecycle sweep: listing expired campaigns failed")
		return
	}

	for _, c := range expired {
		if ctx.Err() != nil {
			return
		}
		if err := s.settle(ctx, &c); err != nil {
			log.Error().Err(err).Str("campaign_id", c.ID).Msg("lifecycle sweep: campaign settlement failed")
		}
	}
}

// settle decides the outcome for one expired campaign and applies it.
func (s *LifecycleSweeper) settle(ctx context.Context, c *domain.Campaign) error {
	_, committed, err := repo.CampaignCommitmentStats(ctx, s.DB, c.ID)
	if err != nil {
		return err
	}
	total, err := decimal.NewFromString(committed)
	if err != nil {
		return err
	}

	target := domain.StateFailed
	if total.GreaterThanOrEqual(c.TargetAmount) {
		target = domain.StateSuccess
	}

	reason := "aggregation deadline reached: committed " + total.StringFixed(2) +
		" of target " + c.TargetAmount.StringFixed(2)
	_, err = s.Campaigns.Transition(ctx, c.ID, target, reason, domain.ActorDeadlineAutomation)
	var inv *services.InvalidTransitionError
	if errors.As(err, &inv) {
		// Another sweep or an operator moved it first; nothing to do here.
		return nil
	}
	if err != nil {
		return err
	}

	log.Info().
		Str("campaign_id", c.ID).
		Str("to_state", string(target)).
		Str("committed", total.StringFixed(2)).
		Str("target", c.TargetAmount.StringFixed(2)).
		Msg("expired campaign settled")

	if target != domain.StateFailed {
		return nil
	}

	// FAILED campaigns get their refunds immediately. The key is derived
	// from the campaign id, so a crash between ticks replays cleanly and a
	// partially refunded campaign converges on the next run.
	res, err := s.Outcomes.ExecuteWithReason(ctx, c.ID, services.OutcomeRefund,
		domain.ActorDeadlineAutomation, "deadline-refund-"+c.ID, domain.ReasonDeadlineRefund)
	if err != nil {
		return err
	}
	log.Info().
		Str("campaign_id", c.ID).
		Int("processed", res.Processed).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Str("final_balance", res.FinalBalance).
		Bool("idempotent", res.Idempotent).
		Msg("automatic refund batch completed")
	return nil
}
