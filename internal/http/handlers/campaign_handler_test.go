package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/alpmera/campaign-backend/internal/domain"
	"github.com/alpmera/campaign-backend/internal/services"
)

const testCampaignID = "11111111-1111-4111-8111-111111111111"

// ---- configurable stubs shared by the handler tests ----

type stubCampaigns struct {
	create     func(ctx context.Context, in services.CreateCampaignInput) (*domain.Campaign, error)
	get        func(ctx context.Context, id string) (*domain.Campaign, error)
	list       func(ctx context.Context) ([]domain.Campaign, error)
	timeline   func(ctx context.Context, id string) ([]domain.StateTransition, error)
	transition func(ctx context.Context, id string, target domain.CampaignState, reason, actor string) (*domain.Campaign, error)
}

func (s stubCampaigns) Create(ctx context.Context, in services.CreateCampaignInput) (*domain.Campaign, error) {
	if s.create != nil {
		return s.create(ctx, in)
	}
	return &domain.Campaign{}, nil
}

func (s stubCampaigns) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &domain.Campaign{ID: id}, nil
}

func (s stubCampaigns) List(ctx context.Context) ([]domain.Campaign, error) {
	if s.list != nil {
		return s.list(ctx)
	}
	return nil, nil
}

func (s stubCampaigns) Timeline(ctx context.Context, id string) ([]domain.StateTransition, error) {
	if s.timeline != nil {
		return s.timeline(ctx, id)
	}
	return nil, nil
}

func (s stubCampaigns) Transition(ctx context.Context, id string, target domain.CampaignState, reason, actor string) (*domain.Campaign, error) {
	if s.transition != nil {
		return s.transition(ctx, id, target, reason, actor)
	}
	return &domain.Campaign{ID: id, State: target}, nil
}

type stubCommitments struct {
	commit         func(ctx context.Context, campaignID, key string, in services.CommitInput) (*domain.Commitment, bool, error)
	byReference    func(ctx context.Context, reference string) (*domain.Commitment, *domain.Campaign, error)
	forParticipant func(ctx context.Context, email string) ([]domain.Commitment, error)
	forCampaign    func(ctx context.Context, campaignID string) ([]domain.Commitment, error)
	stats          func(ctx context.Context, campaignID string) (int64, string, error)
}

func (s stubCommitments) Commit(ctx context.Context, campaignID, key string, in services.CommitInput) (*domain.Commitment, bool, error) {
	if s.commit != nil {
		return s.commit(ctx, campaignID, key, in)
	}
	return &domain.Commitment{}, false, nil
}

func (s stubCommitments) ByReference(ctx context.Context, reference string) (*domain.Commitment, *domain.Campaign, error) {
	if s.byReference != nil {
		return s.byReference(ctx, reference)
	}
	return &domain.Commitment{}, &domain.Campaign{}, nil
}

func (s stubCommitments) ForParticipant(ctx context.Context, email string) ([]domain.Commitment, error) {
	if s.forParticipant != nil {
		return s.forParticipant(ctx, email)
	}
	return nil, nil
}

func (s stubCommitments) ForCampaign(ctx context.Context, campaignID string) ([]domain.Commitment, error) {
	if s.forCampaign != nil {
		return s.forCampaign(ctx, campaignID)
	}
	return nil, nil
}

func (s stubCommitments) CampaignStats(ctx context.Context, campaignID string) (int64, string, error) {
	if s.stats != nil {
		return s.stats(ctx, campaignID)
	}
	return 0, "0.00", nil
}

type stubOutcomes struct {
	execute func(ctx context.Context, campaignID string, kind services.OutcomeKind, actor, key string) (*services.OutcomeResult, error)
}

func (s stubOutcomes) Execute(ctx context.Context, campaignID string, kind services.OutcomeKind, actor, key string) (*services.OutcomeResult, error) {
	if s.execute != nil {
		return s.execute(ctx, campaignID, kind, actor, key)
	}
	return &services.OutcomeResult{}, nil
}

type stubEscrow struct {
	balance func(ctx context.Context, campaignID string) (decimal.Decimal, error)
	ledger  func(ctx context.Context, campaignID string, limit int) ([]domain.EscrowEntry, error)
}

func (s stubEscrow) Balance(ctx context.Context, campaignID string) (decimal.Decimal, error) {
	if s.balance != nil {
		return s.balance(ctx, campaignID)
	}
	return decimal.Zero, nil
}

func (s stubEscrow) Ledger(ctx context.Context, campaignID string, limit int) ([]domain.EscrowEntry, error) {
	if s.ledger != nil {
		return s.ledger(ctx, campaignID, limit)
	}
	return nil, nil
}

func newTestHandlers(campaigns CampaignService, commitments CommitmentService, outcomes OutcomeService, escrow EscrowService) *Handlers {
	if campaigns == nil {
		campaigns = stubCampaigns{}
	}
	if commitments == nil {
		commitments = stubCommitments{}
	}
	if outcomes == nil {
		outcomes = stubOutcomes{}
	}
	if escrow == nil {
		escrow = stubEscrow{}
	}
	return New(campaigns, commitments, outcomes, escrow)
}

// ---- tests ----

func TestListCampaigns_MergesStats(t *testing.T) {
	gin.SetMode(gin.TestMode)

	campaigns := stubCampaigns{list: func(context.Context) ([]domain.Campaign, error) {
		return []domain.Campaign{
			{ID: "c-1", Title: "First", State: domain.StateAggregation},
			{ID: "c-2", Title: "Second", State: domain.StateFailed},
		}, nil
	}}
	commitments := stubCommitments{stats: func(_ context.Context, id string) (int64, string, error) {
		if id == "c-1" {
			return 3, "450.00", nil
		}
		return 0, "0.00", nil
	}}
	h := newTestHandlers(campaigns, commitments, nil, nil)

	r := gin.New()
	r.GET("/campaigns", h.ListCampaigns)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/campaigns", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var out []CampaignSummary
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].Participants != 3 || out[0].CommittedAmount != "450.00" {
		t.Fatalf("first summary = %+v", out[0])
	}
	if out[1].Participants != 0 || out[1].CommittedAmount != "0.00" {
		t.Fatalf("second summary = %+v", out[1])
	}
}

func TestGetCampaign_IncludesEscrowBalance(t *testing.T) {
	gin.SetMode(gin.TestMode)

	campaigns := stubCampaigns{get: func(_ context.Context, id string) (*domain.Campaign, error) {
		return &domain.Campaign{ID: id, Title: "Bulk espresso", State: domain.StateSuccess}, nil
	}}
	escrow := stubEscrow{balance: func(context.Context, string) (decimal.Decimal, error) {
		return decimal.RequireFromString("1500.5"), nil
	}}
	h := newTestHandlers(campaigns, nil, nil, escrow)

	r := gin.New()
	r.GET("/campaigns/:id", h.GetCampaign)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/campaigns/"+testCampaignID, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var out CampaignDetail
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.EscrowBalance != "1500.50" {
		t.Fatalf("escrow_balance = %q, want 1500.50", out.EscrowBalance)
	}
	if out.Title != "Bulk espresso" {
		t.Fatalf("title = %q", out.Title)
	}
}

func TestGetCampaign_RejectsNonUUID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	campaigns := stubCampaigns{get: func(context.Context, string) (*domain.Campaign, error) {
		t.Fatal("service must not be called for a malformed id")
		return nil, nil
	}}
	h := newTestHandlers(campaigns, nil, nil, nil)

	r := gin.New()
	r.GET("/campaigns/:id", h.GetCampaign)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/campaigns/not-a-uuid", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v", err)
	}
	if er.Code != ErrCodeBadRequest {
		t.Fatalf("code = %q", er.Code)
	}
}

func TestGetCampaign_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	campaigns := stubCampaigns{get: func(context.Context, string) (*domain.Campaign, error) {
		return nil, services.ErrCampaignNotFound
	}}
	h := newTestHandlers(campaigns, nil, nil, nil)

	r := gin.New()
	r.GET("/campaigns/:id", h.GetCampaign)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/campaigns/"+testCampaignID, nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestCampaignTimeline(t *testing.T) {
	gin.SetMode(gin.TestMode)

	campaigns := stubCampaigns{timeline: func(_ context.Context, id string) ([]domain.StateTransition, error) {
		return []domain.StateTransition{
			{CampaignID: id, FromState: domain.StateAggregation, ToState: domain.StateSuccess, Actor: "ops.lead"},
		}, nil
	}}
	h := newTestHandlers(campaigns, nil, nil, nil)

	r := gin.New()
	r.GET("/campaigns/:id/timeline", h.CampaignTimeline)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/campaigns/"+testCampaignID+"/timeline", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out []domain.StateTransition
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(out) != 1 || out[0].ToState != domain.StateSuccess {
		t.Fatalf("timeline = %+v", out)
	}
}

func Test_clampLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query string
		want  int
	}{
		{"", 0},
		{"limit=50", 50},
		{"limit=-3", 0},
		{"limit=9999", 1000},
		{"limit=abc", 0},
	}
	for _, tc := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/x?"+tc.query, nil)
		if got := clampLimit(c); got != tc.want {
			t.Fatalf("clampLimit(%q) = %d, want %d", tc.query, got, tc.want)
		}
	}
}
