package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alpmera/campaign-backend/internal/domain"
	"github.com/alpmera/campaign-backend/internal/repo"
)

func TestCommit_CreatesCommitmentLedgerAndRecordAtomically(t *testing.T) {
	db := newServiceDB(t)
	campaigns, commitments, _, escrow := newStack(db)
	ctx := context.Background()
	campaign := mkCampaign(t, campaigns)

	c, replayed, err := commitments.Commit(ctx, campaign.ID, "k1", CommitInput{
		ParticipantName:  "Ada",
		ParticipantEmail: "ADA@Example.com ",
		Quantity:         3,
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if replayed {
		t.Fatal("fresh commit reported as replay")
	}
	if c.Amount.StringFixed(2) != "300.00" {
		t.Fatalf("amount = %s, want 300.00 (3 x 100.00)", c.Amount.StringFixed(2))
	}
	if c.ParticipantEmail != "ada@example.com" {
		t.Fatalf("email not normalized: %q", c.ParticipantEmail)
	}
	if c.Status != domain.CommitmentLocked {
		t.Fatalf("status = %s, want LOCKED", c.Status)
	}

	// Exactly one LOCK entry, and the balance equals the amount.
	entries, err := repo.ListCommitmentEntries(ctx, db, c.ID)
	if err != nil {
		t.Fatalf("ListCommitmentEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].EntryType != domain.EntryLock {
		t.Fatalf("ledger chain = %+v, want a single LOCK", entries)
	}
	if entries[0].Reason != domain.ReasonCommitmentCreated {
		t.Fatalf("reason = %s, want %s", entries[0].Reason, domain.ReasonCommitmentCreated)
	}
	balance, err := escrow.Balance(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if balance.StringFixed(2) != "300.00" {
		t.Fatalf("balance = %s, want 300.00", balance.StringFixed(2))
	}
}

func TestCommit_ReplaySameKeyNoNewSideEffects(t *testing.T) {
	db := newServiceDB(t)
	campaigns, commitments, _, _ := newStack(db)
	ctx := context.Background()
	campaign := mkCampaign(t, campaigns)

	in := CommitInput{ParticipantName: "Ada", ParticipantEmail: "ada@example.com", Quantity: 2}
	first, _, err := commitments.Commit(ctx, campaign.ID, "k1", in)
	if err != nil {
		t.Fatalf("first Commit: %v", err)
	}

	second, replayed, err := commitments.Commit(ctx, campaign.ID, "k1", in)
	if err != nil {
		t.Fatalf("replay Commit: %v", err)
	}
	if !replayed {
		t.Fatal("expected replay")
	}
	if second.ID != first.ID || second.ReferenceNumber != first.ReferenceNumber {
		t.Fatalf("replay returned a different commitment: %+v vs %+v", second, first)
	}

	var rows []domain.Commitment
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("count commitments: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("commitment rows = %d, want 1", len(rows))
	}
	var entries []domain.EscrowEntry
	if err := db.Find(&entries).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ledger rows = %d, want 1 (replay must not double-lock)", len(entries))
	}
}

func TestCommit_SameKeyDifferentPayloadConflicts(t *testing.T) {
	db := newServiceDB(t)
	campaigns, commitments, _, _ := newStack(db)
	ctx := context.Background()
	campaign := mkCampaign(t, campaigns)

	if _, _, err := commitments.Commit(ctx, campaign.ID, "k1", CommitInput{
		ParticipantName: "Ada", ParticipantEmail: "ada@example.com", Quantity: 2,
	}); err != nil {
		t.Fatalf("first Commit: %v", err)
	}

	_, _, err := commitments.Commit(ctx, campaign.ID, "k1", CommitInput{
		ParticipantName: "Ada", ParticipantEmail: "ada@example.com", Quantity: 4,
	})
	if !errors.Is(err, ErrIdempotencyConflict) {
		t.Fatalf("err = %v, want ErrIdempotencyConflict", err)
	}
}

func TestCommit_RejectsOutsideAggregation(t *testing.T) {
	db := newServiceDB(t)
	campaigns, commitments, _, _ := newStack(db)
	ctx := context.Background()
	campaign := mkCampaign(t, campaigns)
	moveTo(t, campaigns, campaign.ID, domain.StateSuccess)

	_, _, err := commitments.Commit(ctx, campaign.ID, "k1", CommitInput{
		ParticipantName: "Ada", ParticipantEmail: "ada@example.com", Quantity: 1,
	})
	if !errors.Is(err, ErrCampaignNotAccepting) {
		t.Fatalf("err = %v, want ErrCampaignNotAccepting", err)
	}
}

func TestCommit_Bounds(t *testing.T) {
	db := newServiceDB(t)
	campaigns, commitments, _, _ := newStack(db)
	ctx := context.Background()

	// min 100, max 500, unit price 100: only quantities 1..5 are valid and
	// the min can only trip with a cheaper unit price.
	cheap, err := campaigns.Create(ctx, CreateCampaignInput{
		Title:               "cheap units",
		Description:         "d",
		TargetAmount:        "1000.00",
		MinCommitment:       "100.00",
		MaxCommitment:       "500.00",
		UnitPrice:           "30.00",
		AggregationDeadline: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, _, err = commitments.Commit(ctx, cheap.ID, "k-low", CommitInput{
		ParticipantName: "Ada", ParticipantEmail: "ada@example.com", Quantity: 2, // 60 < 100
	})
	var bounds *BoundsError
	if !errors.As(err, &bounds) || !bounds.Below {
		t.Fatalf("err = %v, want BoundsError{Below: true}", err)
	}

	_, _, err = commitments.Commit(ctx, cheap.ID, "k-high", CommitInput{
		ParticipantName: "Ada", ParticipantEmail: "ada@example.com", Quantity: 20, // 600 > 500
	})
	bounds = nil
	if !errors.As(err, &bounds) || bounds.Below {
		t.Fatalf("err = %v, want BoundsError above max", err)
	}

	// A failed bounds check must leave nothing behind.
	var rows []domain.Commitment
	if err := db.Where("campaign_id = ?", cheap.ID).Find(&rows).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("bounds failure persisted %d commitments", len(rows))
	}
}

func TestCommit_UnknownCampaign(t *testing.T) {
	db := newServiceDB(t)
	_, commitments, _, _ := newStack(db)

	_, _, err := commitments.Commit(context.Background(), "missing", "k1", CommitInput{
		ParticipantName: "Ada", ParticipantEmail: "ada@example.com", Quantity: 1,
	})
	if !errors.Is(err, ErrCampaignNotFound) {
		t.Fatalf("err = %v, want ErrCampaignNotFound", err)
	}
}

func TestByReference_UnknownIsNotFound(t *testing.T) {
	db := newServiceDB(t)
	campaigns, commitments, _, _ := newStack(db)
	ctx := context.Background()
	campaign := mkCampaign(t, campaigns)
	c := mkCommitment(t, commitments, campaign.ID, "ada@example.com", 2)

	got, gotCampaign, err := commitments.ByReference(ctx, "  "+c.ReferenceNumber+" ")
	if err != nil {
		t.Fatalf("ByReference: %v", err)
	}
	if got.ID != c.ID || gotCampaign.ID != campaign.ID {
		t.Fatalf("lookup mismatch: %+v / %+v", got, gotCampaign)
	}

	if _, _, err := commitments.ByReference(ctx, "ALM-XXXX-XXXX"); !errors.Is(err, ErrCommitmentNotFound) {
		t.Fatalf("unknown reference err = %v, want ErrCommitmentNotFound", err)
	}
}

func TestForParticipant_OnlyOwnRows(t *testing.T) {
	db := newServiceDB(t)
	campaigns, commitments, _, _ := newStack(db)
	campaign := mkCampaign(t, campaigns)

	mkCommitment(t, commitments, campaign.ID, "ada@example.com", 1)
	mkCommitment(t, commitments, campaign.ID, "grace@example.com", 2)

	mine, err := commitments.ForParticipant(context.Background(), " Ada@Example.COM ")
	if err != nil {
		t.Fatalf("ForParticipant: %v", err)
	}
	if len(mine) != 1 || mine[0].ParticipantEmail != "ada@example.com" {
		t.Fatalf("got %+v, want exactly ada's commitment", mine)
	}
}
