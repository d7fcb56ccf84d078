package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alpmera/campaign-backend/internal/domain"
	"github.com/alpmera/campaign-backend/internal/repo"
)

// newServiceDB opens a throwaway SQLite database with the schema migrated.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("svc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// newStack wires the full service graph over one database.
func newStack(db *gorm.DB) (*CampaignService, *CommitmentService, *OutcomeService, *EscrowService) {
	escrow := &EscrowService{DB: db}
	campaigns := NewCampaignService(db)
	commitments := &CommitmentService{DB: db, Escrow: escrow, IdempotencyTTL: time.Hour}
	outcomes := &OutcomeService{DB: db, Escrow: escrow, IdempotencyTTL: time.Hour}
	return campaigns, commitments, outcomes, escrow
}

// mkCampaign creates a standard test campaign: unit price 100, min 100,
// max 500, target 1000, deadline one day out.
func mkCampaign(t *testing.T, campaigns *CampaignService) *domain.Campaign {
	t.Helper()
	c, err := campaigns.Create(context.Background(), CreateCampaignInput{
		Title:               "Test campaign",
		Description:         "group buy",
		TargetAmount:        "1000.00",
		MinCommitment:       "100.00",
		MaxCommitment:       "500.00",
		UnitPrice:           "100.00",
		AggregationDeadline: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create campaign: %v", err)
	}
	return c
}

// mkCommitment locks quantity units for the given participant.
func mkCommitment(t *testing.T, commitments *CommitmentService, campaignID, email string, qty int) *domain.Commitment {
	t.Helper()
	c, replayed, err := commitments.Commit(context.Background(), campaignID, "key-"+email+fmt.Sprint(qty), CommitInput{
		ParticipantName:  "Participant " + email,
		ParticipantEmail: email,
		Quantity:         qty,
	})
	if err != nil {
		t.Fatalf("Commit(%s): %v", email, err)
	}
	if replayed {
		t.Fatalf("fresh commit for %s reported as replay", email)
	}
	return c
}

// moveTo walks the campaign through the allowed transition chain until it
// reaches target.
func moveTo(t *testing.T, campaigns *CampaignService, id string, target domain.CampaignState) {
	t.Helper()
	chains := map[domain.CampaignState][]domain.CampaignState{
		domain.StateSuccess:     {domain.StateSuccess},
		domain.StateFailed:      {domain.StateFailed},
		domain.StateFulfillment: {domain.StateSuccess, domain.StateFulfillment},
		domain.StateReleased:    {domain.StateSuccess, domain.StateFulfillment, domain.StateReleased},
	}
	for _, step := range chains[target] {
		if _, err := campaigns.Transition(context.Background(), id, step, "test setup", "ops.test"); err != nil {
			t.Fatalf("Transition to %s: %v", step, err)
		}
	}
}
