package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/splitpal/splitpal/internal/models"
	"github.com/splitpal/splitpal/internal/storage"
)

func TestGetPairwiseBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	if _, err := env.ledger.CreateExpense(ctx, alice.ID, equalInput(alice.ID, 3000, alice.ID, bob.ID)); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	in := SettlementInput{PaidBy: bob.ID, ReceivedBy: alice.ID, Amount: models.Cents(500)}
	if _, err := env.ledger.CreateSettlement(ctx, bob.ID, in); err != nil {
		t.Fatalf("CreateSettlement() error = %v", err)
	}

	balance, err := env.reports.GetPairwiseBalance(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("GetPairwiseBalance() error = %v", err)
	}
	if balance.Balance.Cents != 1000 {
		t.Errorf("Balance = %d, want 1000", balance.Balance.Cents)
	}
	if balance.Counterpart.ID != bob.ID {
		t.Errorf("Counterpart = %+v, want bob", balance.Counterpart)
	}
	if len(balance.Expenses) != 1 || len(balance.Settlements) != 1 {
		t.Errorf("got %d expenses and %d settlements, want 1 and 1",
			len(balance.Expenses), len(balance.Settlements))
	}

	// The mirror view is the exact negation.
	mirror, err := env.reports.GetPairwiseBalance(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetPairwiseBalance() error = %v", err)
	}
	if mirror.Balance.Cents != -1000 {
		t.Errorf("mirror Balance = %d, want -1000", mirror.Balance.Cents)
	}
}

func TestGetPairwiseBalanceExcludesThirdParties(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	// A three-person non-group expense is in scope for every pair of its
	// participants; the pairwise figure must count only the counterpart's
	// share.
	if _, err := env.ledger.CreateExpense(ctx, alice.ID, equalInput(alice.ID, 3000, alice.ID, bob.ID, carol.ID)); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	balance, err := env.reports.GetPairwiseBalance(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("GetPairwiseBalance() error = %v", err)
	}
	if balance.Balance.Cents != 1000 {
		t.Errorf("Balance vs bob = %d, want 1000", balance.Balance.Cents)
	}

	mirror, err := env.reports.GetPairwiseBalance(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetPairwiseBalance() error = %v", err)
	}
	if mirror.Balance.Cents != -1000 {
		t.Errorf("mirror Balance = %d, want -1000", mirror.Balance.Cents)
	}
}

func TestGetPairwiseBalanceUnknownCounterpart(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	_, err := env.reports.GetPairwiseBalance(context.Background(), alice.ID, "ghost")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGetPairwiseBalanceNoSharedRecords(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	balance, err := env.reports.GetPairwiseBalance(context.Background(), alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("GetPairwiseBalance() error = %v", err)
	}
	if balance.Balance.Cents != 0 {
		t.Errorf("Balance = %d, want 0", balance.Balance.Cents)
	}
}

func TestGetGroupBalancesRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	mallory := env.createUser(t, "mallory")

	group, err := env.ledger.CreateGroup(ctx, alice.ID, "Flat", "", []string{bob.ID})
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	if _, err := env.reports.GetGroupBalances(ctx, group.ID, mallory.ID); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("non-member view = %v, want ErrNotAllowed", err)
	}

	in := equalInput(alice.ID, 2000, alice.ID, bob.ID)
	in.GroupID = group.ID
	if _, err := env.ledger.CreateExpense(ctx, alice.ID, in); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	balances, err := env.reports.GetGroupBalances(ctx, group.ID, bob.ID)
	if err != nil {
		t.Fatalf("GetGroupBalances() error = %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("got %d member balances, want 2", len(balances))
	}
	var total int64
	for _, b := range balances {
		total += b.TotalBalance.Cents
		if b.Name == "" {
			t.Errorf("member %s missing profile enrichment", b.ID)
		}
	}
	if total != 0 {
		t.Errorf("member totals sum to %d, want 0", total)
	}
}

func TestGetGroupDetail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	mallory := env.createUser(t, "mallory")

	group, err := env.ledger.CreateGroup(ctx, alice.ID, "Flat", "", []string{bob.ID})
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	in := equalInput(alice.ID, 2000, alice.ID, bob.ID)
	in.GroupID = group.ID
	if _, err := env.ledger.CreateExpense(ctx, alice.ID, in); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	if _, err := env.reports.GetGroupDetail(ctx, group.ID, mallory.ID); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("non-member view = %v, want ErrNotAllowed", err)
	}

	detail, err := env.reports.GetGroupDetail(ctx, group.ID, bob.ID)
	if err != nil {
		t.Fatalf("GetGroupDetail() error = %v", err)
	}
	if detail.Name != "Flat" {
		t.Errorf("Name = %q, want Flat", detail.Name)
	}
	if len(detail.MemberProfiles) != 2 {
		t.Errorf("got %d member profiles, want 2", len(detail.MemberProfiles))
	}
	if len(detail.Expenses) != 1 || len(detail.Settlements) != 0 {
		t.Errorf("got %d expenses and %d settlements, want 1 and 0",
			len(detail.Expenses), len(detail.Settlements))
	}
	if len(detail.Balances) != 2 {
		t.Errorf("got %d balances, want 2", len(detail.Balances))
	}
}

func TestListGroupsIncludesViewerBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	group, err := env.ledger.CreateGroup(ctx, alice.ID, "Flat", "", []string{bob.ID})
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	in := equalInput(alice.ID, 2000, alice.ID, bob.ID)
	in.GroupID = group.ID
	if _, err := env.ledger.CreateExpense(ctx, alice.ID, in); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	summaries, err := env.reports.ListGroups(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListGroups() error = %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d groups, want 1", len(summaries))
	}
	if summaries[0].Balance.Cents != 1000 {
		t.Errorf("group balance = %d, want 1000", summaries[0].Balance.Cents)
	}
}

func TestGetDashboardCrossChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	// Alice is owed 1000 by bob and owes carol 250.
	if _, err := env.ledger.CreateExpense(ctx, alice.ID, equalInput(alice.ID, 2000, alice.ID, bob.ID)); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if _, err := env.ledger.CreateExpense(ctx, alice.ID, equalInput(carol.ID, 500, alice.ID, carol.ID)); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	dashboard, err := env.reports.GetDashboard(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetDashboard() error = %v", err)
	}
	if dashboard.YouAreOwed.Cents != 1000 {
		t.Errorf("YouAreOwed = %d, want 1000", dashboard.YouAreOwed.Cents)
	}
	if dashboard.YouOwe.Cents != 250 {
		t.Errorf("YouOwe = %d, want 250", dashboard.YouOwe.Cents)
	}
	if dashboard.TotalBalance.Cents != 750 {
		t.Errorf("TotalBalance = %d, want 750", dashboard.TotalBalance.Cents)
	}
	if got := dashboard.YouAreOwed.Sub(dashboard.YouOwe); got != dashboard.TotalBalance {
		t.Errorf("totals do not reconcile: %+v", dashboard)
	}
	if len(dashboard.OweDetails.YouAreOwedBy) != 1 || dashboard.OweDetails.YouAreOwedBy[0].ID != bob.ID {
		t.Errorf("YouAreOwedBy = %+v, want bob", dashboard.OweDetails.YouAreOwedBy)
	}
	if len(dashboard.OweDetails.YouOwe) != 1 || dashboard.OweDetails.YouOwe[0].ID != carol.ID {
		t.Errorf("YouOwe detail = %+v, want carol", dashboard.OweDetails.YouOwe)
	}
}

func TestGetMonthlySpending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	in := equalInput(alice.ID, 3000, alice.ID, bob.ID)
	in.Date = time.Date(2025, time.April, 5, 0, 0, 0, 0, time.UTC).Unix()
	if _, err := env.ledger.CreateExpense(ctx, alice.ID, in); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	summary, err := env.reports.GetMonthlySpending(ctx, alice.ID, 2025)
	if err != nil {
		t.Fatalf("GetMonthlySpending() error = %v", err)
	}
	if len(summary.Months) != 12 {
		t.Fatalf("got %d months, want 12", len(summary.Months))
	}
	if got := summary.Months[3].Total.Cents; got != 1500 {
		t.Errorf("april total = %d, want own share 1500", got)
	}
	if summary.Total.Cents != 1500 {
		t.Errorf("Total = %d, want 1500", summary.Total.Cents)
	}
}

func TestGetContacts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	env.createUser(t, "stranger")

	if _, err := env.ledger.CreateExpense(ctx, alice.ID, equalInput(alice.ID, 1000, alice.ID, bob.ID)); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if _, err := env.ledger.CreateGroup(ctx, alice.ID, "Flat", "", nil); err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	contacts, err := env.reports.GetContacts(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetContacts() error = %v", err)
	}
	if len(contacts.Users) != 1 || contacts.Users[0].ID != bob.ID {
		t.Errorf("Users = %+v, want just bob", contacts.Users)
	}
	if len(contacts.Groups) != 1 {
		t.Errorf("Groups = %+v, want the flat", contacts.Groups)
	}
}
