// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Commitment
// model, including the guarded status update that enforces the
// LOCKED-exactly-once invariant at row granularity.
package repo

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alpmera/campaign-backend/internal/domain"
)

// referenceAlphabet excludes visually ambiguous characters (I, O, 0, 1).
const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewReferenceNumber generates an opaque public handle of the form
// ALM-XXXX-XXXX. Uniqueness is enforced by the DB index; the keyspace
// (32^8) makes collisions negligible at this system's scale.
func NewReferenceNumber() string {
	buf := make([]byte, 0, 14)
	buf = append(buf, "ALM-"...)
	for i := 0; i < 9; i++ {
		if i == 4 {
			buf = append(buf, '-')
			continue
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceAlphabet))))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken.
			panic(err)
		}
		buf = append(buf, referenceAlphabet[n.Int64()])
	}
	return string(buf)
}

// CreateCommitment inserts a commitment row in LOCKED status with a freshly
// generated UUID and reference number. Callers are expected to run this
// inside the same transaction as the LOCK ledger append.
func CreateCommitment(ctx context.Context, db *gorm.DB, c *domain.Commitment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.ReferenceNumber == "" {
		c.ReferenceNumber = NewReferenceNumber()
	}
	c.Status = domain.CommitmentLocked
	c.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(c).Error
}

// GetCommitment fetches a commitment by ID, or ErrNotFound.
func GetCommitment(ctx context.Context, db *gorm.DB, id string) (*domain.Commitment, error) {
	var c domain.Commitment
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCommitmentByReference fetches a commitment by its public reference
// number, or ErrNotFound. Unknown references are indistinguishable from
// forbidden ones by design.
func GetCommitmentByReference(ctx context.Context, db *gorm.DB, reference string) (*domain.Commitment, error) {
	var c domain.Commitment
	if err := db.WithContext(ctx).Where("reference_number = ?", reference).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCommitments returns all commitments under a campaign, oldest first.
// Batch processing iterates this list; ordering is incidental, not a
// guarantee.
func ListCommitments(ctx context.Context, db *gorm.DB, campaignID string) ([]domain.Commitment, error) {
	var out []domain.Commitment
	err := db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// ListCommitmentsByEmail returns the commitments owned by one participant,
// newest first. Account endpoints must never widen this filter.
func ListCommitmentsByEmail(ctx context.Context, db *gorm.DB, email string) ([]domain.Commitment, error) {
	var out []domain.Commitment
	err := db.WithContext(ctx).
		Where("participant_email = ?", email).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// MarkCommitmentTerminal moves a commitment from LOCKED to the given terminal
// status. The UPDATE is guarded on the current status, so of two racing
// writers exactly one observes rowsAffected == 1. It returns (false, nil)
// when the row was not in LOCKED status anymore — callers treat that as
// "already processed, skip".
func MarkCommitmentTerminal(ctx context.Context, db *gorm.DB, id string, status domain.CommitmentStatus) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Commitment{}).
		Where("id = ? AND status = ?", id, domain.CommitmentLocked).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CommitmentsStats returns aggregate metadata for a participant's
// commitments: total rows and the greatest UpdatedAt. Used for ETag
// generation on the account listing.
func CommitmentsStats(ctx context.Context, db *gorm.DB, email string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Commitment{}).Where("participant_email = ?", email)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Latest updated_at (avoid MAX() -> TEXT in SQLite).
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// CampaignCommitmentStats returns the participant count and the sum of all
// commitment amounts for a campaign. The sum is computed in Go over decimal
// values rather than in SQL, to keep money arithmetic exact.
func CampaignCommitmentStats(ctx context.Context, db *gorm.DB, campaignID string) (participants int64, committed string, err error) {
	rows, err := ListCommitments(ctx, db, campaignID)
	if err != nil {
		return 0, "0", err
	}
	total := decimal.Zero
	for _, c := range rows {
		total = total.Add(c.Amount)
	}
	return int64(len(rows)), total.StringFixed(2), nil
}
