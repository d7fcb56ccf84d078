package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EscrowEntryType is the closed set of ledger entry kinds. For one commitment
// the ledger holds exactly one LOCK, followed by at most one of REFUND or
// RELEASE.
type EscrowEntryType string

const (
	// EntryLock records funds entering escrow at commitment creation.
	EntryLock EscrowEntryType = "LOCK"
	// EntryRefund records funds leaving escrow back to the participant.
	EntryRefund EscrowEntryType = "REFUND"
	// EntryRelease records funds leaving escrow toward the supplier.
	EntryRelease EscrowEntryType = "RELEASE"
)

// EscrowEntry is one immutable fund-movement record. The table is append-only:
// entries are never updated or deleted, and there is no UpdatedAt column. The
// commitment's Status field is the O(1) fast-path guard; this table is the
// durable audit source of truth.
type EscrowEntry struct {
	ID           string          `json:"id"            gorm:"type:char(36);primaryKey"`
	CommitmentID string          `json:"commitment_id" gorm:"type:char(36);not null;index"`
	CampaignID   string          `json:"campaign_id"   gorm:"type:char(36);not null;index:idx_campaign_ledger,priority:1"`
	EntryType    EscrowEntryType `json:"entry_type"    gorm:"type:varchar(16);not null"`
	Amount       decimal.Decimal `json:"amount"        gorm:"type:decimal(12,2);not null"`
	Actor        string          `json:"actor"         gorm:"type:varchar(128);not null"`
	Reason       string          `json:"reason"        gorm:"type:varchar(64);not null"`
	CreatedAt    time.Time       `json:"created_at"    gorm:"index:idx_campaign_ledger,priority:2"`

	Commitment Commitment `json:"-" gorm:"foreignKey:CommitmentID;references:ID;constraint:OnUpdate:CASCADE"`
}

// TableName returns the database table name for EscrowEntry.
func (EscrowEntry) TableName() string { return "escrow_ledger" }

// Ledger reason codes, recorded verbatim on entries.
const (
	ReasonCommitmentCreated = "commitment_created"
	ReasonCampaignFailed    = "campaign_failed_refund"
	ReasonAdminRelease      = "admin_release"
	ReasonDeadlineRefund    = "deadline_automation_refund"
)
