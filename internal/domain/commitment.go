package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommitmentStatus is the closed set of states for a participant pledge.
// A commitment starts LOCKED and moves exactly once to either REFUNDED or
// RELEASED, never both.
type CommitmentStatus string

const (
	// CommitmentLocked means funds are held in escrow.
	CommitmentLocked CommitmentStatus = "LOCKED"
	// CommitmentRefunded means funds were returned to the participant. Terminal.
	CommitmentRefunded CommitmentStatus = "REFUNDED"
	// CommitmentReleased means funds were released to the supplier. Terminal.
	CommitmentReleased CommitmentStatus = "RELEASED"
)

// Terminal reports whether the status permits no further fund movement.
func (s CommitmentStatus) Terminal() bool {
	return s == CommitmentRefunded || s == CommitmentReleased
}

// Commitment represents one participant's pledge of funds toward a campaign.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - CampaignID: owning campaign; indexed for batch processing.
//   - ParticipantID: optional account reference; commitments created
//     anonymously can be linked to an account later.
//   - ParticipantEmail: used for account-scoped listing; indexed.
//   - Amount: computed server-side as Quantity × campaign UnitPrice.
//   - Status: LOCKED until the campaign reaches a terminal outcome.
//   - ReferenceNumber: opaque public handle (ALM-XXXX-XXXX) for status lookup.
type Commitment struct {
	ID               string           `json:"id"                gorm:"type:char(36);primaryKey"`
	CampaignID       string           `json:"campaign_id"       gorm:"type:char(36);not null;index:idx_campaign_commitments,priority:1"`
	ParticipantID    *string          `json:"participant_id,omitempty" gorm:"type:char(36)"`
	ParticipantName  string           `json:"participant_name"  gorm:"type:varchar(255);not null"`
	ParticipantEmail string           `json:"participant_email" gorm:"type:varchar(255);not null;index"`
	Quantity         int              `json:"quantity"          gorm:"not null;check:quantity > 0"`
	Amount           decimal.Decimal  `json:"amount"            gorm:"type:decimal(12,2);not null"`
	Status           CommitmentStatus `json:"status"            gorm:"type:varchar(16);not null;default:'LOCKED';index:idx_campaign_commitments,priority:2"`
	ReferenceNumber  string           `json:"reference_number"  gorm:"type:varchar(16);not null;uniqueIndex"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`

	// Campaign is the parent campaign. Commitments are never deleted, so no
	// cascade is configured beyond key updates.
	Campaign Campaign `json:"-" gorm:"foreignKey:CampaignID;references:ID;constraint:OnUpdate:CASCADE"`
}

// TableName returns the database table name for Commitment.
func (Commitment) TableName() string { return "commitments" }
