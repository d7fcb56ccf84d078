// Commitment HTTP handlers.
//
// Endpoints:
//   - POST /campaigns/{id}/commit   (lock funds; Idempotency-Key required)
//   - GET  /commitments/{reference} (public status lookup)
//   - GET  /account/commitments     (caller's commitments)
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alpmera/campaign-backend/internal/domain"
	"github.com/alpmera/campaign-backend/internal/http/middleware"
	"github.com/alpmera/campaign-backend/internal/repo"
	"github.com/alpmera/campaign-backend/internal/services"
)

//
// DTOs
//

// CommitRequest is the JSON payload for committing to a campaign. The amount
// is never client-supplied; it is derived server-side from quantity and the
// campaign's unit price.
type CommitRequest struct {
	ParticipantName  string `json:"participantName"  binding:"required,min=1,max=255" example:"Ada Lovelace"`
	ParticipantEmail string `json:"participantEmail" binding:"required,email" example:"ada@example.com"`
	Quantity         int    `json:"quantity"         binding:"required,min=1" example:"3"`
}

// CommitResponse wraps the created (or replayed) commitment. The _idempotent
// flag is transport metadata only; it never enters the stored snapshot.
type CommitResponse struct {
	domain.Commitment
	Idempotent bool `json:"_idempotent"`
}

// CommitmentStatusResponse is the public lookup view: the commitment plus a
// compact campaign summary. No other participant's rows are ever included.
type CommitmentStatusResponse struct {
	Commitment domain.Commitment        `json:"commitment"`
	Campaign   CommitmentCampaignSummary `json:"campaign"`
}

// CommitmentCampaignSummary is the campaign subset shown on a public
// commitment lookup.
type CommitmentCampaignSummary struct {
	ID    string               `json:"id"`
	Title string               `json:"title"`
	State domain.CampaignState `json:"state"`
}

//
// Handlers
//

// Commit godoc
// @ID          commitToCampaign
// @Summary     Commit funds to a campaign
// @Description Creates a LOCKED commitment and its escrow LOCK entry atomically. Requires an Idempotency-Key header; replays return the original commitment with _idempotent=true.
// @Tags        Commitments
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  true  "Client-chosen idempotency key"
// @Param       id               path    string  true  "Campaign ID (UUID)"  format(uuid)
// @Param       body             body    handlers.CommitRequest  true  "Commitment payload"
//
// @Success     201  {object}  handlers.CommitResponse
// @Success     200  {object}  handlers.CommitResponse "Idempotent replay"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request / missing key"
// @Failure     404  {object}  handlers.ErrorResponse "Campaign not found"
// @Failure     409  {object}  handlers.ErrorResponse "Not accepting / key conflict"
// @Failure     422  {object}  handlers.ErrorResponse "Commitment bounds violated"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /campaigns/{id}/commit [post]
func (h *Handlers) Commit(c *gin.Context) {
	id, okID := campaignID(c)
	if !okID {
		return
	}
	key, hasKey := middleware.GetIdempotencyKey(c)
	if !hasKey {
		// RequireIdempotencyKey should have rejected already; belt and braces
		// for routes wired without it.
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Idempotency-Key header is required")
		return
	}

	var req CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: participantName, participantEmail and quantity >= 1 are required")
		return
	}

	commitment, replayed, err := h.commitments.Commit(c.Request.Context(), id, key, services.CommitInput{
		ParticipantName:  strings.TrimSpace(req.ParticipantName),
		ParticipantEmail: req.ParticipantEmail,
		Quantity:         req.Quantity,
	})
	if err != nil {
		h.commitError(c, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	ok(c, status, CommitResponse{Commitment: *commitment, Idempotent: replayed})
}

// commitError maps service errors from Commit to HTTP responses.
func (h *Handlers) commitError(c *gin.Context, err error) {
	var bounds *services.BoundsError
	switch {
	case errors.Is(err, services.ErrCampaignNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "campaign not found")
	case errors.Is(err, services.ErrCampaignNotAccepting):
		fail(c, http.StatusConflict, ErrCodeCampaignNotAccepting, "campaign is not accepting commitments")
	case errors.Is(err, services.ErrIdempotencyConflict):
		fail(c, http.StatusConflict, ErrCodeIdempotencyConflict, "idempotency key was already used with a different request")
	case errors.As(err, &bounds):
		fail(c, http.StatusUnprocessableEntity, ErrCodeCommitmentBounds, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not create commitment")
	}
}

// CommitmentByReference godoc
// @ID          commitmentByReference
// @Summary     Look up a commitment by reference number
// @Description Public status lookup. Returns the commitment and a compact campaign summary; unknown references are a plain 404.
// @Tags        Commitments
// @Produce     json
//
// @Param       reference  path  string  true  "Reference number"  example(ALM-7K2M-9PQ4)
//
// @Success     200  {object}  handlers.CommitmentStatusResponse
// @Failure     404  {object}  handlers.ErrorResponse "Unknown reference"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /commitments/{reference} [get]
func (h *Handlers) CommitmentByReference(c *gin.Context) {
	ref := strings.ToUpper(strings.TrimSpace(c.Param("reference")))

	commitment, campaign, err := h.commitments.ByReference(c.Request.Context(), ref)
	if err != nil {
		if errors.Is(err, services.ErrCommitmentNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "commitment not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load commitment")
		return
	}

	ok(c, http.StatusOK, CommitmentStatusResponse{
		Commitment: *commitment,
		Campaign: CommitmentCampaignSummary{
			ID:    campaign.ID,
			Title: campaign.Title,
			State: campaign.State,
		},
	})
}

// MyCommitments godoc
// @ID          myCommitments
// @Summary     List the caller's commitments
// @Description Returns only the commitments belonging to the authenticated participant email. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Account
// @Produce     json
//
// @Param       X-Participant-Email  header  string  true   "Authenticated participant email"
// @Param       If-None-Match        header  string  false  "Return 304 if ETag matches"
//
// @Success     200  {array}   domain.Commitment
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse "Missing participant header"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /account/commitments [get]
func (h *Handlers) MyCommitments(c *gin.Context) {
	email := middleware.ParticipantEmail(c)
	if email == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "X-Participant-Email header is required")
		return
	}
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if svc, isConcrete := h.commitments.(*services.CommitmentService); isConcrete {
		count, maxTS, err := repo.CommitmentsStats(ctx, svc.DB, strings.ToLower(strings.TrimSpace(email)))
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"commitments:%s:%d:%d"`, email, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.commitments.ForParticipant(ctx, email)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list commitments")
		return
	}
	ok(c, http.StatusOK, items)
}
