// Package services – EscrowService
//
// This file implements the escrow ledger operations. The ledger is
// append-only; the commitment's Status column is the O(1) guard that keeps a
// commitment from ever carrying more than one terminal entry. Both the guard
// and the append happen inside one transaction, so either the status flips
// and the entry exists, or neither.
package services

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alpmera/campaign-backend/internal/domain"
	"github.com/alpmera/campaign-backend/internal/observability"
	"github.com/alpmera/campaign-backend/internal/repo"
)

// EscrowService provides the three fund movements: lock at commitment
// creation, and refund or release at campaign outcome. It is safe for
// concurrent use; all coordination goes through the database.
type EscrowService struct {
	// DB is the GORM handle used when an operation opens its own transaction.
	DB *gorm.DB
}

// Lock appends the LOCK entry for a freshly created commitment. It must be
// called with the same transaction handle that inserted the commitment, so
// the commitment and its LOCK entry are atomic.
func (s *EscrowService) Lock(ctx context.Context, tx *gorm.DB, c *domain.Commitment, actor string) error {
	err := repo.AppendEscrowEntry(ctx, tx, &domain.EscrowEntry{
		CommitmentID: c.ID,
		CampaignID:   c.CampaignID,
		EntryType:    domain.EntryLock,
		Amount:       c.Amount,
		Actor:        actor,
		Reason:       domain.ReasonCommitmentCreated,
	})
	if err != nil {
		return err
	}
	observability.EscrowEntries.WithLabelValues(string(domain.EntryLock)).Inc()
	return nil
}

// Refund moves a LOCKED commitment to REFUNDED and appends the REFUND entry.
// Returns ErrCommitmentNotLocked when the commitment already reached a
// terminal status, and ErrCommitmentNotFound when it does not exist.
func (s *EscrowService) Refund(ctx context.Context, commitmentID, actor, reason string) error {
	return s.settle(ctx, commitmentID, domain.CommitmentRefunded, domain.EntryRefund, actor, reason)
}

// Release moves a LOCKED commitment to RELEASED and appends the RELEASE
// entry. Same error semantics as Refund.
func (s *EscrowService) Release(ctx context.Context, commitmentID, actor, reason string) error {
	return s.settle(ctx, commitmentID, domain.CommitmentReleased, domain.EntryRelease, actor, reason)
}

// settle performs the guarded terminal write. The refund/release amount
// always equals the original LOCK amount; partial settlements do not exist
// in this subsystem.
//
// The transaction runs on a detached context: once a commitment's terminal
// write begins it commits or rolls back as a unit, regardless of client-side
// cancellation.
func (s *EscrowService) settle(ctx context.Context, commitmentID string, status domain.CommitmentStatus, entryType domain.EscrowEntryType, actor, reason string) error {
	txCtx := context.WithoutCancel(ctx)
	err := s.DB.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		c, err := repo.GetCommitment(txCtx, tx, commitmentID)
		if err != nil {
			if err == repo.ErrNotFound {
				return ErrCommitmentNotFound
			}
			return err
		}

		// Guarded read-modify-write: only one writer can flip LOCKED.
		flipped, err := repo.MarkCommitmentTerminal(txCtx, tx, commitmentID, status)
		if err != nil {
			return err
		}
		if !flipped {
			return ErrCommitmentNotLocked
		}

		return repo.AppendEscrowEntry(txCtx, tx, &domain.EscrowEntry{
			CommitmentID: c.ID,
			CampaignID:   c.CampaignID,
			EntryType:    entryType,
			Amount:       c.Amount,
			Actor:        actor,
			Reason:       reason,
		})
	})
	if err != nil {
		return err
	}
	observability.EscrowEntries.WithLabelValues(string(entryType)).Inc()
	return nil
}

// Balance derives the funds currently held in escrow for a campaign.
func (s *EscrowService) Balance(ctx context.Context, campaignID string) (decimal.Decimal, error) {
	return repo.CampaignEscrowBalance(ctx, s.DB, campaignID)
}

// Ledger returns the campaign's audit trail, newest first. A limit <= 0
// returns every entry.
func (s *EscrowService) Ledger(ctx context.Context, campaignID string, limit int) ([]domain.EscrowEntry, error) {
	return repo.ListEscrowEntries(ctx, s.DB, campaignID, limit)
}
