// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the escrow ledger repository. The
// ledger is insert-only: there is no update or delete path, and balances are
// derived by folding entries rather than stored.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alpmera/campaign-backend/internal/domain"
)

// AppendEscrowEntry inserts one immutable ledger entry. Callers must run it
// inside the same transaction as the commitment mutation it records.
func AppendEscrowEntry(ctx context.Context, db *gorm.DB, e *domain.EscrowEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(e).Error
}

// ListEscrowEntries returns the ledger for a campaign, newest first, for
// audit display. A limit <= 0 returns every entry.
func ListEscrowEntries(ctx context.Context, db *gorm.DB, campaignID string, limit int) ([]domain.EscrowEntry, error) {
	q := db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.EscrowEntry
	err := q.Find(&out).Error
	return out, err
}

// ListCommitmentEntries returns the ledger chain for one commitment in
// causal order: the LOCK first, then at most one terminal entry.
func ListCommitmentEntries(ctx context.Context, db *gorm.DB, commitmentID string) ([]domain.EscrowEntry, error) {
	var out []domain.EscrowEntry
	err := db.WithContext(ctx).
		Where("commitment_id = ?", commitmentID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// CampaignEscrowBalance derives the funds currently held for a campaign:
// the sum of LOCK amounts minus every REFUND and RELEASE. The fold runs in
// Go over exact decimals; SQLite's numeric SUM would round-trip through
// floating point.
func CampaignEscrowBalance(ctx context.Context, db *gorm.DB, campaignID string) (decimal.Decimal, error) {
	var rows []struct {
		EntryType domain.EscrowEntryType
		Amount    decimal.Decimal
	}
	err := db.WithContext(ctx).
		Model(&domain.EscrowEntry{}).
		Select("entry_type", "amount").
		Where("campaign_id = ?", campaignID).
		Scan(&rows).Error
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, r := range rows {
		if r.EntryType == domain.EntryLock {
			balance = balance.Add(r.Amount)
		} else {
			balance = balance.Sub(r.Amount)
		}
	}
	return balance, nil
}
