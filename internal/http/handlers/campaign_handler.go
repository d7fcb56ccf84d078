// Campaign HTTP handlers.
//
// Public REST endpoints for campaign resources:
//   - GET /campaigns               (list with commitment stats)
//   - GET /campaigns/{id}          (detail with derived escrow balance)
//   - GET /campaigns/{id}/timeline (state transition history)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate service errors into the shared envelope.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alpmera/campaign-backend/internal/domain"
	"github.com/alpmera/campaign-backend/internal/services"
	"github.com/alpmera/campaign-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// CampaignService defines campaign lifecycle operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use and honor the
// provided context.
type CampaignService interface {
	// Create validates and persists a campaign in AGGREGATION state.
	Create(ctx context.Context, in services.CreateCampaignInput) (*domain.Campaign, error)
	// Get returns one campaign by id.
	Get(ctx context.Context, id string) (*domain.Campaign, error)
	// List returns all campaigns, newest first.
	List(ctx context.Context) ([]domain.Campaign, error)
	// Timeline returns the campaign's transition history, oldest first.
	Timeline(ctx context.Context, id string) ([]domain.StateTransition, error)
	// Transition moves the campaign to target, recording actor and reason.
	Transition(ctx context.Context, id string, target domain.CampaignState, reason, actor string) (*domain.Campaign, error)
}

// CommitmentService defines commitment operations consumed by HTTP handlers.
type CommitmentService interface {
	// Commit creates a commitment under idempotency-key protection.
	Commit(ctx context.Context, campaignID, idempotencyKey string, in services.CommitInput) (*domain.Commitment, bool, error)
	// ByReference resolves a commitment and its campaign by reference number.
	ByReference(ctx context.Context, reference string) (*domain.Commitment, *domain.Campaign, error)
	// ForParticipant returns the caller's commitments only.
	ForParticipant(ctx context.Context, email string) ([]domain.Commitment, error)
	// ForCampaign returns every commitment under a campaign.
	ForCampaign(ctx context.Context, campaignID string) ([]domain.Commitment, error)
	// CampaignStats returns participant count and exact committed sum.
	CampaignStats(ctx context.Context, campaignID string) (int64, string, error)
}

// OutcomeService defines the admin batch settlements.
type OutcomeService interface {
	// Execute runs refund-all or release-all under an idempotency key.
	Execute(ctx context.Context, campaignID string, kind services.OutcomeKind, actor, key string) (*services.OutcomeResult, error)
}

// EscrowService exposes ledger reads consumed by HTTP handlers.
type EscrowService interface {
	// Balance derives the campaign's escrow balance from the ledger.
	Balance(ctx context.Context, campaignID string) (decimal.Decimal, error)
	// Ledger returns the campaign's escrow entries, newest first; a limit
	// <= 0 returns every entry.
	Ledger(ctx context.Context, campaignID string, limit int) ([]domain.EscrowEntry, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for campaigns, commitments, and the
// admin settlement surface. It depends on service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	campaigns   CampaignService
	commitments CommitmentService
	outcomes    OutcomeService
	escrow      EscrowService
}

// New constructs a Handlers instance bound to the given services.
func New(campaigns CampaignService, commitments CommitmentService, outcomes OutcomeService, escrow EscrowService) *Handlers {
	return &Handlers{
		campaigns:   campaigns,
		commitments: commitments,
		outcomes:    outcomes,
		escrow:      escrow,
	}
}

//
// DTOs
//

// CampaignSummary is a campaign with aggregate commitment stats, returned by
// the list endpoint.
type CampaignSummary struct {
	domain.Campaign
	Participants    int64  `json:"participants"`
	CommittedAmount string `json:"committed_amount" example:"1500.00"`
}

// CampaignDetail is a campaign with its derived escrow balance.
type CampaignDetail struct {
	domain.Campaign
	EscrowBalance string `json:"escrow_balance" example:"1500.00"`
}

//
// Handlers
//

// ListCampaigns godoc
// @ID          listCampaigns
// @Summary     List campaigns
// @Description Returns all campaigns, newest first, with participant counts and committed totals.
// @Tags        Campaigns
// @Produce     json
//
// @Success     200  {array}   handlers.CampaignSummary
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /campaigns [get]
func (h *Handlers) ListCampaigns(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.campaigns.List(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list campaigns")
		return
	}

	out := make([]CampaignSummary, 0, len(items))
	for _, cp := range items {
		participants, committed, err := h.commitments.CampaignStats(ctx, cp.ID)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not compute campaign stats")
			return
		}
		out = append(out, CampaignSummary{
			Campaign:        cp,
			Participants:    participants,
			CommittedAmount: committed,
		})
	}
	ok(c, http.StatusOK, out)
}

// GetCampaign godoc
// @ID          getCampaign
// @Summary     Get a campaign
// @Description Returns a single campaign with its derived escrow balance.
// @Tags        Campaigns
// @Produce     json
//
// @Param       id  path  string  true  "Campaign ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.CampaignDetail
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Campaign not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /campaigns/{id} [get]
func (h *Handlers) GetCampaign(c *gin.Context) {
	id, okID := campaignID(c)
	if !okID {
		return
	}
	ctx := c.Request.Context()

	cp, err := h.campaigns.Get(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrCampaignNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "campaign not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load campaign")
		return
	}

	balance, err := h.escrow.Balance(ctx, id)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not derive escrow balance")
		return
	}

	ok(c, http.StatusOK, CampaignDetail{
		Campaign:      *cp,
		EscrowBalance: balance.StringFixed(2),
	})
}

// CampaignTimeline godoc
// @ID          campaignTimeline
// @Summary     Campaign transition history
// @Description Returns the campaign's state transitions in chronological order.
// @Tags        Campaigns
// @Produce     json
//
// @Param       id  path  string  true  "Campaign ID (UUID)"  format(uuid)
//
// @Success     200  {array}   domain.StateTransition
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Campaign not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /campaigns/{id}/timeline [get]
func (h *Handlers) CampaignTimeline(c *gin.Context) {
	id, okID := campaignID(c)
	if !okID {
		return
	}

	ts, err := h.campaigns.Timeline(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCampaignNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "campaign not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load timeline")
		return
	}
	ok(c, http.StatusOK, ts)
}

// clampLimit parses the optional ?limit query parameter and bounds it to
// [0, maxListLimit]; 0 means no limit.
func clampLimit(c *gin.Context) int {
	const maxListLimit = 1000
	n := utils.AtoiDefault(c.Query("limit"), 0)
	if n < 0 {
		return 0
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}

// campaignID validates the :id path parameter. On failure it writes the 400
// itself and returns ok=false.
func campaignID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "campaign id must be a UUID")
		return "", false
	}
	return id, true
}
