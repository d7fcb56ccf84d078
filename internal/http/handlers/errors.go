// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable: clients branch on them for
// programmatic error handling while the message stays human-readable. Generic
// codes mirror HTTP status semantics; domain-specific codes carry business
// outcomes a status alone cannot express (an invalid state transition is a
// 409, but so is a reused idempotency key with a different payload).
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeInvalidTransition   = "invalid_state_transition"
	ErrCodeCampaignNotAccepting = "campaign_not_accepting"
	ErrCodeCommitmentBounds    = "commitment_bounds"
	ErrCodeIdempotencyConflict = "idempotency_conflict"
	ErrCodeInvalidState        = "invalid_campaign_state"
)
