// Package services – CommitmentService
//
// This file implements commitment creation (the escrow lock) and the public
// and account-scoped lookups. The commitment insert, its LOCK ledger entry,
// and the idempotency record commit in a single transaction: a retried
// request either replays the stored commitment or finds no trace of the
// failed attempt.
//
// The committed amount is always computed server-side as quantity × unit
// price; a client-supplied amount is never trusted.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/alpmera/campaign-backend/internal/domain"
	"github.com/alpmera/campaign-backend/internal/repo"
)

// CommitmentService implements the participant-facing escrow lock flow.
type CommitmentService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Escrow writes the LOCK ledger entry inside the commitment transaction.
	Escrow *EscrowService
	// IdempotencyTTL bounds how long a commitment key can be replayed.
	IdempotencyTTL time.Duration
}

// CommitInput carries the participant-supplied fields for a commitment.
type CommitInput struct {
	ParticipantName  string
	ParticipantEmail string
	Quantity         int
	// ParticipantID links the commitment to an authenticated account when
	// one is present; anonymous commitments can be linked later.
	ParticipantID *string
}

// Commit creates a commitment against an AGGREGATION campaign under
// idempotency-key protection.
//
// Returns (commitment, replayed, err). When replayed is true the commitment
// was decoded from the stored response snapshot of an earlier request with
// the same key, and no side effects ran.
func (s *CommitmentService) Commit(ctx context.Context, campaignID, idempotencyKey string, in CommitInput) (*domain.Commitment, bool, error) {
	tr := otel.Tracer("services/CommitmentService")
	ctx, span := tr.Start(ctx, "Commit",
		trace.WithAttributes(
			attribute.String("campaign.id", campaignID),
			attribute.Int("commitment.quantity", in.Quantity),
		),
	)
	defer span.End()

	campaign, err := repo.GetCampaign(ctx, s.DB, campaignID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, false, ErrCampaignNotFound
		}
		return nil, false, err
	}
	if campaign.State != domain.StateAggregation {
		return nil, false, ErrCampaignNotAccepting
	}

	in.ParticipantName = strings.TrimSpace(in.ParticipantName)
	in.ParticipantEmail = strings.ToLower(strings.TrimSpace(in.ParticipantEmail))
	if in.ParticipantName == "" || in.ParticipantEmail == "" {
		return nil, false, errors.New("participant name and email are required")
	}
	if in.Quantity < 1 {
		return nil, false, errors.New("quantity must be at least 1")
	}

	amount := campaign.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
	if amount.LessThan(campaign.MinCommitment) {
		return nil, false, &BoundsError{Limit: campaign.MinCommitment, Below: true}
	}
	if campaign.MaxCommitment.Valid && amount.GreaterThan(campaign.MaxCommitment.Decimal) {
		return nil, false, &BoundsError{Limit: campaign.MaxCommitment.Decimal}
	}

	scope := ScopeCommitmentLock(campaignID)
	hash := requestHash(in.ParticipantEmail, in.ParticipantName, strconv.Itoa(in.Quantity))
	now := time.Now().UTC()

	// Fast path: the key already completed.
	if rec, err := repo.GetIdempotency(ctx, s.DB, scope, idempotencyKey, now); err == nil {
		return s.replay(rec, hash)
	}

	c := &domain.Commitment{
		CampaignID:       campaignID,
		ParticipantID:    in.ParticipantID,
		ParticipantName:  in.ParticipantName,
		ParticipantEmail: in.ParticipantEmail,
		Quantity:         in.Quantity,
		Amount:           amount,
	}

	// Commitment row, LOCK entry, and idempotency record land atomically:
	// either all three exist or none does.
	txCtx := context.WithoutCancel(ctx)
	err = s.DB.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateCommitment(txCtx, tx, c); err != nil {
			return err
		}
		if err := s.Escrow.Lock(txCtx, tx, c, in.ParticipantEmail); err != nil {
			return err
		}
		snapshot, err := json.Marshal(c)
		if err != nil {
			return err
		}
		_, err = repo.CreateIdempotency(txCtx, tx, scope, idempotencyKey, hash, string(snapshot), 1, 0, s.IdempotencyTTL)
		return err
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// A concurrent request with the same key won; serve its snapshot.
		rec, lookupErr := repo.GetIdempotency(ctx, s.DB, scope, idempotencyKey, now)
		if lookupErr != nil {
			return nil, false, lookupErr
		}
		return s.replay(rec, hash)
	}
	if err != nil {
		return nil, false, err
	}
	return c, false, nil
}

// replay decodes the stored commitment snapshot after verifying the request
// hash matches the original.
func (s *CommitmentService) replay(rec *domain.IdempotencyRecord, hash string) (*domain.Commitment, bool, error) {
	if rec.RequestHash != hash {
		return nil, false, ErrIdempotencyConflict
	}
	var c domain.Commitment
	if err := json.Unmarshal([]byte(rec.Response), &c); err != nil {
		return nil, false, err
	}
	return &c, true, nil
}

// ByReference returns a commitment and its campaign by public reference
// number. Unknown references yield ErrCommitmentNotFound without revealing
// whether the reference ever existed.
func (s *CommitmentService) ByReference(ctx context.Context, reference string) (*domain.Commitment, *domain.Campaign, error) {
	c, err := repo.GetCommitmentByReference(ctx, s.DB, strings.ToUpper(strings.TrimSpace(reference)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrCommitmentNotFound
		}
		return nil, nil, err
	}
	campaign, err := repo.GetCampaign(ctx, s.DB, c.CampaignID)
	if err != nil {
		return nil, nil, err
	}
	return c, campaign, nil
}

// ForParticipant returns only the commitments owned by the given participant
// email. Handlers must pass the authenticated caller's identity, never a
// client-chosen value from the request body.
func (s *CommitmentService) ForParticipant(ctx context.Context, email string) ([]domain.Commitment, error) {
	return repo.ListCommitmentsByEmail(ctx, s.DB, strings.ToLower(strings.TrimSpace(email)))
}

// CampaignStats returns the participant count and the exact committed sum
// for a campaign, used on campaign listings.
func (s *CommitmentService) CampaignStats(ctx context.Context, campaignID string) (participants int64, committed string, err error) {
	return repo.CampaignCommitmentStats(ctx, s.DB, campaignID)
}

// ForCampaign returns every commitment under a campaign (admin view).
func (s *CommitmentService) ForCampaign(ctx context.Context, campaignID string) ([]domain.Commitment, error) {
	if _, err := repo.GetCampaign(ctx, s.DB, campaignID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return repo.ListCommitments(ctx, s.DB, campaignID)
}
