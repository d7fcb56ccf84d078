// Package services – CampaignService
//
// This file implements the CampaignService, which owns the campaign
// lifecycle state machine. Transitions are validated against the closed
// transition table in the domain package and applied with an optimistic
// compare-and-swap on the campaign row, so two concurrent transition
// requests cannot both succeed. Every applied transition appends an
// immutable history record that feeds the public timeline and the admin
// audit trail.
//
// The state machine moves no money itself; refunds and releases are the
// OutcomeService's job, triggered after a transition into FAILED or RELEASED.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alpmera/campaign-backend/internal/domain"
	"github.com/alpmera/campaign-backend/internal/observability"
	"github.com/alpmera/campaign-backend/internal/repo"
)

// CampaignService provides campaign creation, lookup, and lifecycle
// transitions.
type CampaignService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewCampaignService constructs a CampaignService.
func NewCampaignService(db *gorm.DB) *CampaignService {
	return &CampaignService{DB: db}
}

// CreateCampaignInput carries the admin-supplied campaign parameters.
type CreateCampaignInput struct {
	Title               string
	Description         string
	TargetAmount        string
	MinCommitment       string
	MaxCommitment       string // optional
	UnitPrice           string
	AggregationDeadline time.Time
}

// Create validates and persists a new campaign in AGGREGATION state.
// Monetary fields are parsed as exact decimals; binary floating point never
// enters the system.
func (s *CampaignService) Create(ctx context.Context, in CreateCampaignInput) (*domain.Campaign, error) {
	c := &domain.Campaign{
		Title:               strings.TrimSpace(in.Title),
		Description:         strings.TrimSpace(in.Description),
		AggregationDeadline: in.AggregationDeadline.UTC(),
	}
	if c.Title == "" {
		return nil, errValidation("title is required")
	}
	if !in.AggregationDeadline.After(time.Now()) {
		return nil, errValidation("aggregation deadline must be in the future")
	}

	var err error
	if c.TargetAmount, err = parsePositiveAmount(in.TargetAmount, "target amount"); err != nil {
		return nil, err
	}
	if c.MinCommitment, err = parsePositiveAmount(in.MinCommitment, "minimum commitment"); err != nil {
		return nil, err
	}
	if c.UnitPrice, err = parsePositiveAmount(in.UnitPrice, "unit price"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.MaxCommitment) != "" {
		max, err := parsePositiveAmount(in.MaxCommitment, "maximum commitment")
		if err != nil {
			return nil, err
		}
		if max.LessThan(c.MinCommitment) {
			return nil, errValidation("maximum commitment must not be below the minimum")
		}
		c.MaxCommitment.Decimal, c.MaxCommitment.Valid = max, true
	}

	if err := repo.CreateCampaign(ctx, s.DB, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get fetches a campaign by ID, or ErrCampaignNotFound.
func (s *CampaignService) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	c, err := repo.GetCampaign(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCampaignNotFound
	}
	return c, err
}

// List returns all campaigns, newest first.
func (s *CampaignService) List(ctx context.Context) ([]domain.Campaign, error) {
	return repo.ListCampaigns(ctx, s.DB)
}

// Timeline returns a campaign's transition history in chronological order.
func (s *CampaignService) Timeline(ctx context.Context, id string) ([]domain.StateTransition, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return repo.ListStateTransitions(ctx, s.DB, id)
}

// Transition moves a campaign to target if the transition table allows it
// from the current state. The state flip and the history append commit
// atomically; a concurrent transition that wins the compare-and-swap causes
// this call to fail with InvalidTransitionError against the fresh state.
func (s *CampaignService) Transition(ctx context.Context, id string, target domain.CampaignState, reason, actor string) (*domain.Campaign, error) {
	if !target.Known() {
		return nil, ErrUnknownState
	}

	var out *domain.Campaign
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := repo.GetCampaign(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrCampaignNotFound
			}
			return err
		}

		if !c.State.CanTransitionTo(target) {
			return &InvalidTransitionError{From: c.State, To: target}
		}

		if err := repo.CompareAndSwapState(ctx, tx, id, c.State, target); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				// Lost the race: a concurrent request moved the campaign
				// between our read and the guarded update.
				return &InvalidTransitionError{From: c.State, To: target}
			}
			return err
		}

		if _, err := repo.AppendStateTransition(ctx, tx, id, c.State, target, actor, reason); err != nil {
			return err
		}

		c.State = target
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.CampaignTransitions.WithLabelValues(string(target)).Inc()
	return out, nil
}

// parsePositiveAmount parses a decimal string and rejects zero or negative
// values. The name parameter feeds the validation message.
func parsePositiveAmount(raw, name string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, errValidation("%s must be a decimal number", name)
	}
	if !d.IsPositive() {
		return decimal.Zero, errValidation("%s must be positive", name)
	}
	return d, nil
}
