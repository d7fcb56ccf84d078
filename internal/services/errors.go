// Package services defines the business logic for the campaign lifecycle,
// commitments, the escrow ledger, and admin batch outcomes. This file
// centralizes service-level error values so they can be consistently
// returned by service methods and checked by callers.
//
// Translation into HTTP status codes is performed at the handler layer.
package services

import (
	"errors"
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/shopspring/decimal"

	"github.com/alpmera/campaign-backend/internal/domain"
)

var (
	// ErrCampaignNotFound indicates that the requested campaign does not exist.
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrCommitmentNotFound indicates that the requested commitment does not
	// exist or is not visible to the caller. Public lookups never distinguish
	// the two cases.
	ErrCommitmentNotFound = errors.New("commitment not found")

	// ErrCampaignNotAccepting is returned when a commitment is attempted
	// against a campaign that is no longer in AGGREGATION state.
	ErrCampaignNotAccepting = errors.New("campaign is not accepting commitments")

	// ErrCommitmentNotLocked is returned when a terminal ledger write is
	// attempted on a commitment that already has a REFUND or RELEASE entry.
	ErrCommitmentNotLocked = errors.New("commitment is not in LOCKED status")

	// ErrIdempotencyConflict is returned when an idempotency key is reused
	// with a different payload than originally recorded.
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")

	// ErrUnknownState is returned when a transition targets a state outside
	// the enumerated set.
	ErrUnknownState = errors.New("unknown campaign state")
)

// ValidationError reports admin input that failed campaign validation. The
// message is safe to return to the caller verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// errValidation is a shorthand constructor used by Create.
func errValidation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError reports a lifecycle transition outside the allowed
// set for the campaign's current state. Handlers surface From/To as context
// fields in the error body.
type InvalidTransitionError struct {
	From domain.CampaignState
	To   domain.CampaignState
}

func (e *InvalidTransitionError) Error() string {
	allowed := e.From.AllowedNext()
	if len(allowed) == 0 {
		return fmt.Sprintf("invalid transition from terminal state %s to %s", e.From, e.To)
	}
	return fmt.Sprintf("invalid transition from %s to %s (allowed: %v)", e.From, e.To, allowed)
}

// OutcomeStateError reports a batch outcome requested against a campaign
// that is not in the state the outcome requires (refund-all needs FAILED,
// release-all needs RELEASED).
type OutcomeStateError struct {
	Current  domain.CampaignState
	Required domain.CampaignState
}

func (e *OutcomeStateError) Error() string {
	return fmt.Sprintf("campaign is in state %s; operation requires %s", e.Current, e.Required)
}

// BoundsError reports a commitment amount outside the campaign's configured
// per-participant limits.
type BoundsError struct {
	Limit decimal.Decimal
	Below bool // amount fell below the minimum rather than above the maximum
}

func (e *BoundsError) Error() string {
	if e.Below {
		return fmt.Sprintf("minimum commitment is %s", formatUSD(e.Limit))
	}
	return fmt.Sprintf("maximum commitment is %s", formatUSD(e.Limit))
}

// usdPrinter renders en-US currency strings for user-facing bound errors.
var usdPrinter = message.NewPrinter(language.AmericanEnglish)

// formatUSD renders a decimal amount as a localized USD string.
func formatUSD(d decimal.Decimal) string {
	f, _ := d.Float64()
	return usdPrinter.Sprintf("%v", currency.NarrowSymbol(currency.USD.Amount(f)))
}
