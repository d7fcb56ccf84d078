// Package services – OutcomeService
//
// This file implements the admin batch executor that settles every LOCKED
// commitment under a campaign after a terminal transition: refund-all for
// FAILED campaigns, release-all for RELEASED ones.
//
// Two layers of idempotency compose here:
//   - key-based: the whole batch result is cached in the idempotency store,
//     so a retry with the same key replays the snapshot and touches nothing;
//   - item-based: a commitment that is no longer LOCKED when reached is
//     counted as skipped, so a retry with a different key after a partial
//     failure still converges to the correct end state without a global lock.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/alpmera/campaign-backend/internal/domain"
	"github.com/alpmera/campaign-backend/internal/observability"
	"github.com/alpmera/campaign-backend/internal/repo"
)

// OutcomeKind selects which terminal settlement a batch performs.
type OutcomeKind string

const (
	// OutcomeRefund settles a FAILED campaign by refunding every LOCKED commitment.
	OutcomeRefund OutcomeKind = "refund"
	// OutcomeRelease settles a RELEASED campaign by releasing every LOCKED commitment.
	OutcomeRelease OutcomeKind = "release"
)

// outcomeSpec binds an OutcomeKind to its required campaign state, ledger
// semantics, and response message.
type outcomeSpec struct {
	requiredState domain.CampaignState
	scope         func(campaignID string) string
	settle        func(es *EscrowService, ctx context.Context, commitmentID, actor, reason string) error
	reason        string
	message       string
}

var outcomeSpecs = map[OutcomeKind]outcomeSpec{
	OutcomeRefund: {
		requiredState: domain.StateFailed,
		scope:         ScopeRefund,
		settle:        (*EscrowService).Refund,
		reason:        domain.ReasonCampaignFailed,
		message:       "Refunds processed successfully",
	},
	OutcomeRelease: {
		requiredState: domain.StateReleased,
		scope:         ScopeRelease,
		settle:        (*EscrowService).Release,
		reason:        domain.ReasonAdminRelease,
		message:       "Funds released successfully",
	},
}

// OutcomeResult is the aggregate outcome of one batch run. Identical JSON is
// produced for the first execution and every replay; only the transport-level
// idempotent flag differs.
type OutcomeResult struct {
	Message      string `json:"message"`
	Processed    int    `json:"processed"`
	Skipped      int    `json:"skipped"`
	Failed       int    `json:"failed"`
	FinalBalance string `json:"finalBalance"`

	// Idempotent is true when this result was served from the idempotency
	// store rather than freshly computed. Never part of the stored snapshot.
	Idempotent bool `json:"-"`
}

// OutcomeService orchestrates campaign-level settlements.
type OutcomeService struct {
	DB     *gorm.DB
	Escrow *EscrowService
	// IdempotencyTTL bounds how long a batch key can be replayed.
	IdempotencyTTL time.Duration
}

// Execute runs the batch for campaignID under the caller-supplied
// idempotency key. Per-item failures are counted and logged, never fatal to
// the batch; client cancellation stops further items but never interrupts an
// item already being settled.
func (s *OutcomeService) Execute(ctx context.Context, campaignID string, kind OutcomeKind, actor, key string) (*OutcomeResult, error) {
	return s.execute(ctx, campaignID, kind, actor, key, "")
}

// ExecuteWithReason is Execute with the per-entry ledger reason overridden;
// the deadline sweeper uses it so automated refunds are distinguishable from
// operator-initiated ones in the audit trail.
func (s *OutcomeService) ExecuteWithReason(ctx context.Context, campaignID string, kind OutcomeKind, actor, key, reason string) (*OutcomeResult, error) {
	return s.execute(ctx, campaignID, kind, actor, key, reason)
}

func (s *OutcomeService) execute(ctx context.Context, campaignID string, kind OutcomeKind, actor, key, reasonOverride string) (*OutcomeResult, error) {
	tr := otel.Tracer("services/OutcomeService")
	ctx, span := tr.Start(ctx, "Execute",
		trace.WithAttributes(
			attribute.String("campaign.id", campaignID),
			attribute.String("outcome.kind", string(kind)),
		),
	)
	defer span.End()

	spec, ok := outcomeSpecs[kind]
	if !ok {
		return nil, errors.New("unknown outcome kind")
	}
	reason := spec.reason
	if reasonOverride != "" {
		reason = reasonOverride
	}

	scope := spec.scope(campaignID)
	hash := requestHash(string(kind), campaignID, actor)
	now := time.Now().UTC()

	if rec, err := repo.GetIdempotency(ctx, s.DB, scope, key, now); err == nil {
		return replayOutcome(rec, hash)
	}

	campaign, err := repo.GetCampaign(ctx, s.DB, campaignID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	if campaign.State != spec.requiredState {
		return nil, &OutcomeStateError{Current: campaign.State, Required: spec.requiredState}
	}

	commitments, err := repo.ListCommitments(ctx, s.DB, campaignID)
	if err != nil {
		return nil, err
	}
	balance, err := s.Escrow.Balance(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	result := &OutcomeResult{Message: spec.message}
	for _, c := range commitments {
		// Cancellation gate: finish nothing mid-flight, start nothing new.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if c.Status != domain.CommitmentLocked {
			result.Skipped++
			observability.BatchItems.WithLabelValues(string(kind), "skipped").Inc()
			continue
		}

		if balance.LessThan(c.Amount) {
			// The ledger can never go negative; count the item as failed
			// and keep it LOCKED for operator investigation.
			log.Error().
				Str("campaign_id", campaignID).
				Str("commitment_id", c.ID).
				Str("balance", balance.StringFixed(2)).
				Str("amount", c.Amount.StringFixed(2)).
				Msg("escrow balance invariant violation")
			result.Failed++
			observability.BatchItems.WithLabelValues(string(kind), "failed").Inc()
			continue
		}

		switch err := spec.settle(s.Escrow, ctx, c.ID, actor, reason); {
		case err == nil:
			balance = balance.Sub(c.Amount)
			result.Processed++
			observability.BatchItems.WithLabelValues(string(kind), "processed").Inc()
		case errors.Is(err, ErrCommitmentNotLocked):
			// A concurrent or earlier partial run settled it first.
			result.Skipped++
			observability.BatchItems.WithLabelValues(string(kind), "skipped").Inc()
		default:
			log.Error().
				Err(err).
				Str("campaign_id", campaignID).
				Str("commitment_id", c.ID).
				Str("outcome", string(kind)).
				Msg("commitment settlement failed")
			result.Failed++
			observability.BatchItems.WithLabelValues(string(kind), "failed").Inc()
		}
	}
	result.FinalBalance = balance.StringFixed(2)

	snapshot, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	_, err = repo.CreateIdempotency(ctx, s.DB, scope, key, hash, string(snapshot), result.Processed, result.Skipped, s.IdempotencyTTL)
	if errors.Is(err, repo.ErrDuplicate) {
		// Raced another request with the same key; its snapshot wins.
		rec, lookupErr := repo.GetIdempotency(ctx, s.DB, scope, key, now)
		if lookupErr != nil {
			return nil, lookupErr
		}
		return replayOutcome(rec, hash)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// replayOutcome decodes a stored batch snapshot after verifying the request
// hash matches the original recording.
func replayOutcome(rec *domain.IdempotencyRecord, hash string) (*OutcomeResult, error) {
	if rec.RequestHash != hash {
		return nil, ErrIdempotencyConflict
	}
	var result OutcomeResult
	if err := json.Unmarshal([]byte(rec.Response), &result); err != nil {
		return nil, err
	}
	result.Idempotent = true
	return &result, nil
}
