package domain

import "time"

// IdempotencyRecord stores the outcome of a previously processed mutating
// request, keyed by (scope, key). The scope binds the key to one operation on
// one resource ("refund:<campaign-id>", "commitment_lock:<campaign-id>"), so
// the same client key cannot collide across operations or campaigns.
//
// A record is written at most once, on first successful completion. Replays
// return the stored Response snapshot verbatim; reuse of a key with a
// different RequestHash is a conflict, never a silent merge.
type IdempotencyRecord struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	Scope       string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_scope_key,priority:1"`
	Key         string    `gorm:"type:varchar(200);not null;uniqueIndex:ux_scope_key,priority:2"`
	RequestHash string    `gorm:"type:char(64);not null"`
	Response    string    `gorm:"type:text;not null"`
	Processed   int       `gorm:"not null;default:0"`
	Skipped     int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	ExpiresAt   time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (IdempotencyRecord) TableName() string { return "idempotency_records" }
