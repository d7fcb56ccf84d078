// Package domain defines the persistence models for campaigns, commitments,
// and the escrow ledger. These types are mapped with GORM and form the core
// data layer of the collective-buying backend.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CampaignState is the closed set of lifecycle states a campaign can occupy.
// A campaign only ever moves forward along the transition table; FAILED and
// RELEASED are terminal.
type CampaignState string

const (
	// StateAggregation is the initial state: the campaign accepts commitments.
	StateAggregation CampaignState = "AGGREGATION"
	// StateSuccess means the funding target was met before the deadline.
	StateSuccess CampaignState = "SUCCESS"
	// StateFailed means the campaign missed its target. Terminal.
	StateFailed CampaignState = "FAILED"
	// StateFulfillment means the supplier is fulfilling a successful campaign.
	StateFulfillment CampaignState = "FULFILLMENT"
	// StateReleased means fulfillment completed and escrow may be released. Terminal.
	StateReleased CampaignState = "RELEASED"
)

// stateTransitions is the full transition table. Every state has an entry,
// so CanTransitionTo is a total function over CampaignState.
var stateTransitions = map[CampaignState][]CampaignState{
	StateAggregation: {StateSuccess, StateFailed},
	StateSuccess:     {StateFulfillment},
	StateFulfillment: {StateReleased},
	StateFailed:      {},
	StateReleased:    {},
}

// Known reports whether s is one of the enumerated campaign states.
func (s CampaignState) Known() bool {
	_, ok := stateTransitions[s]
	return ok
}

// Terminal reports whether s has no outgoing transitions.
func (s CampaignState) Terminal() bool {
	return len(stateTransitions[s]) == 0 && s.Known()
}

// CanTransitionTo reports whether the table allows moving from s to next.
func (s CampaignState) CanTransitionTo(next CampaignState) bool {
	for _, allowed := range stateTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedNext returns a copy of the states reachable from s in one step.
func (s CampaignState) AllowedNext() []CampaignState {
	return append([]CampaignState(nil), stateTransitions[s]...)
}

// ActorDeadlineAutomation is recorded on transitions and ledger entries
// produced by the deadline sweeper rather than a human operator.
const ActorDeadlineAutomation = "SYSTEM_DEADLINE_AUTOMATION"

// Campaign represents one collective-buying effort. Funds committed against
// it are tracked per commitment in the escrow ledger; the campaign row only
// carries the lifecycle state and the pricing/target parameters.
//
// Campaigns are never deleted: terminal rows remain as historical records.
type Campaign struct {
	ID                  string              `json:"id"                   gorm:"type:char(36);primaryKey"`
	Title               string              `json:"title"                gorm:"type:varchar(255);not null"`
	Description         string              `json:"description"          gorm:"type:text;not null"`
	TargetAmount        decimal.Decimal     `json:"target_amount"        gorm:"type:decimal(12,2);not null"`
	MinCommitment       decimal.Decimal     `json:"min_commitment"       gorm:"type:decimal(12,2);not null"`
	MaxCommitment       decimal.NullDecimal `json:"max_commitment"       gorm:"type:decimal(12,2)"`
	UnitPrice           decimal.Decimal     `json:"unit_price"           gorm:"type:decimal(12,2);not null"`
	State               CampaignState       `json:"state"                gorm:"type:varchar(16);not null;default:'AGGREGATION';index"`
	AggregationDeadline time.Time           `json:"aggregation_deadline" gorm:"not null;index"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// TableName returns the database table name for Campaign.
func (Campaign) TableName() string { return "campaigns" }

// StateTransition is an immutable history record of one campaign state
// change. Rows are append-only: they feed the public campaign timeline and
// the admin audit trail, but are otherwise inert to the ledger.
type StateTransition struct {
	ID         string        `json:"id"          gorm:"type:char(36);primaryKey"`
	CampaignID string        `json:"campaign_id" gorm:"type:char(36);not null;index:idx_campaign_transitions,priority:1"`
	FromState  CampaignState `json:"from_state"  gorm:"type:varchar(16);not null"`
	ToState    CampaignState `json:"to_state"    gorm:"type:varchar(16);not null"`
	Actor      string        `json:"actor"       gorm:"type:varchar(128);not null"`
	Reason     string        `json:"reason"      gorm:"type:text"`
	CreatedAt  time.Time     `json:"created_at"  gorm:"index:idx_campaign_transitions,priority:2"`

	// Campaign is the parent row; history is kept even for terminal campaigns.
	Campaign Campaign `json:"-" gorm:"foreignKey:CampaignID;references:ID;constraint:OnUpdate:CASCADE"`
}

// TableName returns the database table name for StateTransition.
func (StateTransition) TableName() string { return "state_transitions" }
