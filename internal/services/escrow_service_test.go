package services

import (
	"context"
	"errors"
	"testing"

	"github.com/alpmera/campaign-backend/internal/domain"
	"github.com/alpmera/campaign-backend/internal/repo"
)

func TestRefund_SettlesExactlyOnce(t *testing.T) {
	db := newServiceDB(t)
	campaigns, commitments, _, escrow := newStack(db)
	ctx := context.Background()
	campaign := mkCampaign(t, campaigns)
	c := mkCommitment(t, commitments, campaign.ID, "ada@example.com", 2)

	if err := escrow.Refund(ctx, c.ID, "ops.lead", domain.ReasonCampaignFailed); err != nil {
		t.Fatalf("Refund: %v", err)
	}

	got, err := repo.GetCommitment(ctx, db, c.ID)
	if err != nil {
		t.Fatalf("GetCommitment: %v", err)
	}
	if got.Status != domain.CommitmentRefunded {
		t.Fatalf("status = %s, want REFUNDED", got.Status)
	}

	chain, err := repo.ListCommitmentEntries(ctx, db, c.ID)
	if err != nil {
		t.Fatalf("ListCommitmentEntries: %v", err)
	}
	if len(chain) != 2 || chain[1].EntryType != domain.EntryRefund {
		t.Fatalf("chain = %+v, want LOCK then REFUND", chain)
	}
	if !chain[1].Amount.Equal(c.Amount) {
		t.Fatalf("refund amount = %s, want %s", chain[1].Amount, c.Amount)
	}

	balance, err := escrow.Balance(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if !balance.IsZero() {
		t.Fatalf("balance = %s, want 0", balance)
	}

	// Second settlement attempt of either kind loses the guarded update.
	if err := escrow.Refund(ctx, c.ID, "ops.lead", domain.ReasonCampaignFailed); !errors.Is(err, ErrCommitmentNotLocked) {
		t.Fatalf("double refund err = %v, want ErrCommitmentNotLocked", err)
	}
	if err := escrow.Release(ctx, c.ID, "ops.lead", domain.ReasonAdminRelease); !errors.Is(err, ErrCommitmentNotLocked) {
		t.Fatalf("refund-then-release err = %v, want ErrCommitmentNotLocked", err)
	}

	// And the ledger stayed at two entries.
	chain, _ = repo.ListCommitmentEntries(ctx, db, c.ID)
	if len(chain) != 2 {
		t.Fatalf("chain grew to %d entries on failed settlements", len(chain))
	}
}

func TestRelease_WritesReleaseEntry(t *testing.T) {
	db := newServiceDB(t)
	campaigns, commitments, _, escrow := newStack(db)
	ctx := context.Background()
	campaign := mkCampaign(t, campaigns)
	c := mkCommitment(t, commitments, campaign.ID, "ada@example.com", 3)

	if err := escrow.Release(ctx, c.ID, "ops.lead", domain.ReasonAdminRelease); err != nil {
		t.Fatalf("Release: %v", err)
	}

	got, err := repo.GetCommitment(ctx, db, c.ID)
	if err != nil {
		t.Fatalf("GetCommitment: %v", err)
	}
	if got.Status != domain.CommitmentReleased {
		t.Fatalf("status = %s, want RELEASED", got.Status)
	}

	chain, _ := repo.ListCommitmentEntries(ctx, db, c.ID)
	if len(chain) != 2 || chain[1].EntryType != domain.EntryRelease {
		t.Fatalf("chain = %+v, want LOCK then RELEASE", chain)
	}
	if chain[1].Actor != "ops.lead" || chain[1].Reason != domain.ReasonAdminRelease {
		t.Fatalf("entry attribution = %s/%s", chain[1].Actor, chain[1].Reason)
	}
}

func TestSettle_UnknownCommitment(t *testing.T) {
	db := newServiceDB(t)
	_, _, _, escrow := newStack(db)

	err := escrow.Refund(context.Background(), "missing", "ops", domain.ReasonCampaignFailed)
	if !errors.Is(err, ErrCommitmentNotFound) {
		t.Fatalf("err = %v, want ErrCommitmentNotFound", err)
	}
}
