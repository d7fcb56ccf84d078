// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Campaign
// model and its transition history.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only CRUD persistence and query composition.
//
// Error semantics:
//   - When a campaign is not found, functions return ErrNotFound
//     (an alias of gorm.ErrRecordNotFound).
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alpmera/campaign-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across the service layer.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateCampaign inserts a new campaign row in AGGREGATION state.
func CreateCampaign(ctx context.Context, db *gorm.DB, c *domain.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.State = domain.StateAggregation
	c.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(c).Error
}

// GetCampaign fetches a single campaign by ID, or ErrNotFound if missing.
func GetCampaign(ctx context.Context, db *gorm.DB, id string) (*domain.Campaign, error) {
	var c domain.Campaign
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCampaigns returns all campaigns ordered by creation time descending.
func ListCampaigns(ctx context.Context, db *gorm.DB) ([]domain.Campaign, error) {
	var out []domain.Campaign
	err := db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

// ListExpiredAggregating returns AGGREGATION campaigns whose deadline has
// passed as of now. Used by the lifecycle sweeper.
func ListExpiredAggregating(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.Campaign, error) {
	var out []domain.Campaign
	err := db.WithContext(ctx).
		Where("state = ? AND aggregation_deadline <= ?", domain.StateAggregation, now).
		Find(&out).Error
	return out, err
}

// CompareAndSwapState moves a campaign from one state to another with an
// optimistic guard: the UPDATE only applies while the row is still in the
// expected from state. It returns ErrNotFound when zero rows were affected,
// which means either the campaign does not exist or a concurrent transition
// won the race.
func CompareAndSwapState(ctx context.Context, db *gorm.DB, id string, from, to domain.CampaignState) error {
	res := db.WithContext(ctx).
		Model(&domain.Campaign{}).
		Where("id = ? AND state = ?", id, from).
		Update("state", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendStateTransition inserts one immutable transition-history record.
func AppendStateTransition(ctx context.Context, db *gorm.DB, campaignID string, from, to domain.CampaignState, actor, reason string) (*domain.StateTransition, error) {
	rec := &domain.StateTransition{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		FromState:  from,
		ToState:    to,
		Actor:      actor,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// ListStateTransitions returns the transition history for a campaign in
// chronological order.
func ListStateTransitions(ctx context.Context, db *gorm.DB, campaignID string) ([]domain.StateTransition, error) {
	var out []domain.StateTransition
	err := db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}
