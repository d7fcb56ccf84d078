// Admin HTTP handlers.
//
// Operator endpoints mounted under /admin behind the X-Admin-Token
// middleware:
//   - POST /admin/campaigns                  (create)
//   - POST /admin/campaigns/{id}/transition  (state machine move)
//   - POST /admin/campaigns/{id}/refund      (refund-all batch; key required)
//   - POST /admin/campaigns/{id}/release     (release-all batch; key required)
//   - GET  /admin/campaigns/{id}/ledger      (escrow audit trail + balance)
//   - GET  /admin/campaigns/{id}/commitments (all commitments for a campaign)
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alpmera/campaign-backend/internal/domain"
	"github.com/alpmera/campaign-backend/internal/http/middleware"
	"github.com/alpmera/campaign-backend/internal/services"
)

//
// DTOs
//

// CreateCampaignRequest is the JSON payload for creating a campaign. All
// monetary fields are decimal strings; floats are rejected at the type level.
type CreateCampaignRequest struct {
	Title               string    `json:"title"               binding:"required,min=1,max=255" example:"Espresso machines, bulk order"`
	Description         string    `json:"description"         binding:"required" example:"Group buy of 50 units at wholesale price"`
	TargetAmount        string    `json:"targetAmount"        binding:"required" example:"10000.00"`
	MinCommitment       string    `json:"minCommitment"       binding:"required" example:"100.00"`
	MaxCommitment       string    `json:"maxCommitment"       example:"2000.00"`
	UnitPrice           string    `json:"unitPrice"           binding:"required" example:"200.00"`
	AggregationDeadline time.Time `json:"aggregationDeadline" binding:"required" example:"2026-10-01T00:00:00Z"`
}

// TransitionRequest is the JSON payload for an admin state transition.
type TransitionRequest struct {
	TargetState   string `json:"targetState"   binding:"required" example:"SUCCESS"`
	Reason        string `json:"reason"        example:"target reached ahead of deadline"`
	AdminUsername string `json:"adminUsername" binding:"required,min=1,max=128" example:"ops.lead"`
}

// OutcomeResponse is the batch settlement envelope. The stored snapshot
// excludes _idempotent; only the transport layer sets it.
type OutcomeResponse struct {
	services.OutcomeResult
	Idempotent bool `json:"_idempotent"`
}

// LedgerResponse is the campaign audit trail with its derived balance.
type LedgerResponse struct {
	Entries []domain.EscrowEntry `json:"entries"`
	Balance string               `json:"balance" example:"1500.00"`
}

//
// Handlers
//

// CreateCampaign godoc
// @ID          createCampaign
// @Summary     Create a campaign
// @Description Creates a campaign in AGGREGATION state. Monetary fields are decimal strings; the deadline must be in the future.
// @Tags        Admin
// @Accept      json
// @Produce     json
//
// @Param       X-Admin-Token  header  string  true  "Admin token"
// @Param       body           body    handlers.CreateCampaignRequest  true  "Campaign payload"
//
// @Success     201  {object}  domain.Campaign
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/campaigns [post]
func (h *Handlers) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	cp, err := h.campaigns.Create(c.Request.Context(), services.CreateCampaignInput{
		Title:               req.Title,
		Description:         req.Description,
		TargetAmount:        req.TargetAmount,
		MinCommitment:       req.MinCommitment,
		MaxCommitment:       req.MaxCommitment,
		UnitPrice:           req.UnitPrice,
		AggregationDeadline: req.AggregationDeadline,
	})
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, verr.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not create campaign")
		return
	}
	ok(c, http.StatusCreated, cp)
}

// TransitionCampaign godoc
// @ID          transitionCampaign
// @Summary     Transition a campaign
// @Description Moves a campaign to targetState if the transition table allows it. Invalid moves answer 409 with current and attempted state in the context fields.
// @Tags        Admin
// @Accept      json
// @Produce     json
//
// @Param       X-Admin-Token  header  string  true  "Admin token"
// @Param       id             path    string  true  "Campaign ID (UUID)"  format(uuid)
// @Param       body           body    handlers.TransitionRequest  true  "Transition payload"
//
// @Success     200  {object}  domain.Campaign
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse "Campaign not found"
// @Failure     409  {object}  handlers.ErrorResponse "Invalid state transition"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/campaigns/{id}/transition [post]
func (h *Handlers) TransitionCampaign(c *gin.Context) {
	id, okID := campaignID(c)
	if !okID {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: targetState and adminUsername are required")
		return
	}

	target := domain.CampaignState(strings.ToUpper(strings.TrimSpace(req.TargetState)))
	cp, err := h.campaigns.Transition(c.Request.Context(), id, target, req.Reason, req.AdminUsername)
	if err != nil {
		var inv *services.InvalidTransitionError
		switch {
		case errors.Is(err, services.ErrCampaignNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "campaign not found")
		case errors.Is(err, services.ErrUnknownState):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown target state")
		case errors.As(err, &inv):
			failWith(c, http.StatusConflict, ErrCodeInvalidTransition, inv.Error(), map[string]string{
				"currentState":   string(inv.From),
				"attemptedState": string(inv.To),
			})
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not transition campaign")
		}
		return
	}
	ok(c, http.StatusOK, cp)
}

// RefundCampaign godoc
// @ID          refundCampaign
// @Summary     Refund all LOCKED commitments
// @Description Runs the refund-all batch for a FAILED campaign. Requires an Idempotency-Key; replays return the stored result with _idempotent=true.
// @Tags        Admin
// @Produce     json
//
// @Param       X-Admin-Token    header  string  true  "Admin token"
// @Param       Idempotency-Key  header  string  true  "Client-chosen idempotency key"
// @Param       id               path    string  true  "Campaign ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.OutcomeResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request / missing key"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse "Campaign not found"
// @Failure     409  {object}  handlers.ErrorResponse "Wrong state / key conflict"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/campaigns/{id}/refund [post]
func (h *Handlers) RefundCampaign(c *gin.Context) {
	h.runOutcome(c, services.OutcomeRefund)
}

// ReleaseCampaign godoc
// @ID          releaseCampaign
// @Summary     Release all LOCKED commitments
// @Description Runs the release-all batch for a RELEASED campaign. Requires an Idempotency-Key; replays return the stored result with _idempotent=true.
// @Tags        Admin
// @Produce     json
//
// @Param       X-Admin-Token    header  string  true  "Admin token"
// @Param       Idempotency-Key  header  string  true  "Client-chosen idempotency key"
// @Param       id               path    string  true  "Campaign ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.OutcomeResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request / missing key"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse "Campaign not found"
// @Failure     409  {object}  handlers.ErrorResponse "Wrong state / key conflict"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/campaigns/{id}/release [post]
func (h *Handlers) ReleaseCampaign(c *gin.Context) {
	h.runOutcome(c, services.OutcomeRelease)
}

// runOutcome executes a batch settlement and maps its errors. The acting
// admin is taken from the X-Admin-Username header when present so the ledger
// records a person, not just "admin".
func (h *Handlers) runOutcome(c *gin.Context, kind services.OutcomeKind) {
	id, okID := campaignID(c)
	if !okID {
		return
	}
	key, hasKey := middleware.GetIdempotencyKey(c)
	if !hasKey {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Idempotency-Key header is required")
		return
	}
	actor := strings.TrimSpace(c.GetHeader("X-Admin-Username"))
	if actor == "" {
		actor = "admin"
	}

	res, err := h.outcomes.Execute(c.Request.Context(), id, kind, actor, key)
	if err != nil {
		var stateErr *services.OutcomeStateError
		switch {
		case errors.Is(err, services.ErrCampaignNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "campaign not found")
		case errors.Is(err, services.ErrIdempotencyConflict):
			fail(c, http.StatusConflict, ErrCodeIdempotencyConflict, "idempotency key was already used with a different request")
		case errors.As(err, &stateErr):
			failWith(c, http.StatusConflict, ErrCodeInvalidState, stateErr.Error(), map[string]string{
				"currentState":  string(stateErr.Current),
				"requiredState": string(stateErr.Required),
			})
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "settlement batch failed")
		}
		return
	}

	ok(c, http.StatusOK, OutcomeResponse{OutcomeResult: *res, Idempotent: res.Idempotent})
}

// CampaignLedger godoc
// @ID          campaignLedger
// @Summary     Campaign escrow ledger
// @Description Returns the campaign's escrow entries newest first plus the derived balance.
// @Tags        Admin
// @Produce     json
//
// @Param       X-Admin-Token  header  string  true   "Admin token"
// @Param       id             path    string  true   "Campaign ID (UUID)"  format(uuid)
// @Param       limit          query   int     false  "Maximum entries to return (0 = all)"  minimum(0) maximum(1000)
//
// @Success     200  {object}  handlers.LedgerResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse "Campaign not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/campaigns/{id}/ledger [get]
func (h *Handlers) CampaignLedger(c *gin.Context) {
	id, okID := campaignID(c)
	if !okID {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.campaigns.Get(ctx, id); err != nil {
		if errors.Is(err, services.ErrCampaignNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "campaign not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load campaign")
		return
	}

	entries, err := h.escrow.Ledger(ctx, id, clampLimit(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load ledger")
		return
	}
	balance, err := h.escrow.Balance(ctx, id)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not derive balance")
		return
	}

	ok(c, http.StatusOK, LedgerResponse{Entries: entries, Balance: balance.StringFixed(2)})
}

// CampaignCommitments godoc
// @ID          campaignCommitments
// @Summary     List a campaign's commitments
// @Description Returns every commitment under the campaign, newest first.
// @Tags        Admin
// @Produce     json
//
// @Param       X-Admin-Token  header  string  true  "Admin token"
// @Param       id             path    string  true  "Campaign ID (UUID)"  format(uuid)
//
// @Success     200  {array}   domain.Commitment
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse "Campaign not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/campaigns/{id}/commitments [get]
func (h *Handlers) CampaignCommitments(c *gin.Context) {
	id, okID := campaignID(c)
	if !okID {
		return
	}

	items, err := h.commitments.ForCampaign(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCampaignNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "campaign not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list commitments")
		return
	}
	ok(c, http.StatusOK, items)
}
