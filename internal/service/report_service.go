package service

import (
	"context"
	"fmt"

	"github.com/splitpal/splitpal/internal/calculator"
	"github.com/splitpal/splitpal/internal/directory"
	"github.com/splitpal/splitpal/internal/models"
	"github.com/splitpal/splitpal/internal/storage"
)

// ReportService builds the user-facing balance views. Every view is
// recomputed from stored records on each call; no balance is ever cached, so
// reads can run fully in parallel and never desynchronize from the ledger.
type ReportService struct {
	store     storage.Store
	directory directory.Directory
}

// NewReportService creates the read-model service.
func NewReportService(store storage.Store, dir directory.Directory) *ReportService {
	return &ReportService{store: store, directory: dir}
}

// CounterpartAmount is a balance entry enriched with the counterpart's
// profile for display.
type CounterpartAmount struct {
	models.Profile
	Amount models.Money `json:"amount"`
}

// PairwiseBalance is the one-on-one view between the viewer and a single
// counterpart: the signed net balance plus the records behind it.
type PairwiseBalance struct {
	Counterpart models.Profile      `json:"counterpart"`
	Balance     models.Money        `json:"balance"`
	Expenses    []models.Expense    `json:"expenses"`
	Settlements []models.Settlement `json:"settlements"`
}

// GetPairwiseBalance folds the non-group records shared by the viewer and
// the counterpart. An unknown counterpart id is a not-found error; no shared
// records is simply a zero balance.
func (s *ReportService) GetPairwiseBalance(ctx context.Context, viewerID, counterpartID string) (*PairwiseBalance, error) {
	counterpart, err := s.directory.Lookup(ctx, counterpartID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesBetween(ctx, viewerID, counterpartID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlementsBetween(ctx, viewerID, counterpartID)
	if err != nil {
		return nil, err
	}

	view := calculator.Aggregate(viewerID, expenses, settlements)
	return &PairwiseBalance{
		Counterpart: counterpart,
		Balance:     view.Against(counterpartID),
		Expenses:    expenses,
		Settlements: settlements,
	}, nil
}

// MemberBalanceView is one group member's position, enriched with their
// profile.
type MemberBalanceView struct {
	models.Profile
	TotalBalance models.Money          `json:"totalBalance"`
	Owes         []calculator.Transfer `json:"owes"`
	OwedBy       []calculator.Transfer `json:"owedBy"`
}

// GetGroupBalances computes every member's balance versus every other member
// of the group in one pass. The viewer must belong to the group.
func (s *ReportService) GetGroupBalances(ctx context.Context, groupID, viewerID string) ([]MemberBalanceView, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(viewerID) {
		return nil, fmt.Errorf("%w: you must be a member of this group", ErrNotAllowed)
	}

	expenses, err := s.store.ListExpensesForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlementsForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances := calculator.GroupBalances(group.MemberIDs(), expenses, settlements)
	views := make([]MemberBalanceView, len(balances))
	for i, b := range balances {
		profile, err := s.directory.Lookup(ctx, b.UserID)
		if err != nil {
			return nil, err
		}
		views[i] = MemberBalanceView{
			Profile:      profile,
			TotalBalance: b.TotalBalance,
			Owes:         b.Owes,
			OwedBy:       b.OwedBy,
		}
	}
	return views, nil
}

// GroupDetail is the full view of one group: its profile-enriched members,
// the records behind the balances, and every member's position.
type GroupDetail struct {
	models.Group
	MemberProfiles []models.Profile    `json:"memberProfiles"`
	Expenses       []models.Expense    `json:"expenses"`
	Settlements    []models.Settlement `json:"settlements"`
	Balances       []MemberBalanceView `json:"balances"`
}

// GetGroupDetail returns the group with its records and member balances. The
// viewer must belong to the group.
func (s *ReportService) GetGroupDetail(ctx context.Context, groupID, viewerID string) (*GroupDetail, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(viewerID) {
		return nil, fmt.Errorf("%w: you must be a member of this group", ErrNotAllowed)
	}

	expenses, err := s.store.ListExpensesForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlementsForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	profiles := make([]models.Profile, len(group.Members))
	for i, m := range group.Members {
		profile, err := s.directory.Lookup(ctx, m.UserID)
		if err != nil {
			return nil, err
		}
		profiles[i] = profile
	}

	balances, err := s.GetGroupBalances(ctx, groupID, viewerID)
	if err != nil {
		return nil, err
	}

	return &GroupDetail{
		Group:          *group,
		MemberProfiles: profiles,
		Expenses:       expenses,
		Settlements:    settlements,
		Balances:       balances,
	}, nil
}

// GroupSummary is one row of the viewer's group list: the group plus the
// viewer's net balance within it.
type GroupSummary struct {
	models.Group
	Balance models.Money `json:"balance"`
}

// ListGroups returns the viewer's groups with their net balance per group.
func (s *ReportService) ListGroups(ctx context.Context, viewerID string) ([]GroupSummary, error) {
	groups, err := s.store.ListGroupsForUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	summaries := make([]GroupSummary, len(groups))
	for i, g := range groups {
		expenses, err := s.store.ListExpensesForGroup(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		settlements, err := s.store.ListSettlementsForGroup(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		view := calculator.Aggregate(viewerID, expenses, settlements)
		summaries[i] = GroupSummary{Group: g, Balance: view.TotalBalance}
	}
	return summaries, nil
}

// OweDetails breaks the dashboard totals down per counterpart.
type OweDetails struct {
	YouOwe       []CounterpartAmount `json:"youOwe"`
	YouAreOwedBy []CounterpartAmount `json:"youAreOwedBy"`
}

// Dashboard is the global-scope rollup for the viewer.
type Dashboard struct {
	TotalBalance models.Money `json:"totalBalance"`
	YouOwe       models.Money `json:"youOwe"`
	YouAreOwed   models.Money `json:"youAreOwed"`
	OweDetails   OweDetails   `json:"oweDetails"`
}

// GetDashboard folds every record the viewer participates in, across all
// groups and one-on-one contexts, into the dashboard totals.
func (s *ReportService) GetDashboard(ctx context.Context, viewerID string) (*Dashboard, error) {
	expenses, err := s.store.ListExpensesForUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlementsForUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	view := calculator.Aggregate(viewerID, expenses, settlements)

	dashboard := &Dashboard{
		TotalBalance: view.TotalBalance,
		OweDetails: OweDetails{
			YouOwe:       []CounterpartAmount{},
			YouAreOwedBy: []CounterpartAmount{},
		},
	}
	for _, entry := range view.OwedToViewer {
		profile, err := s.directory.Lookup(ctx, entry.UserID)
		if err != nil {
			return nil, err
		}
		dashboard.YouAreOwed = dashboard.YouAreOwed.Add(entry.Amount)
		dashboard.OweDetails.YouAreOwedBy = append(dashboard.OweDetails.YouAreOwedBy,
			CounterpartAmount{Profile: profile, Amount: entry.Amount})
	}
	for _, entry := range view.ViewerOwes {
		profile, err := s.directory.Lookup(ctx, entry.UserID)
		if err != nil {
			return nil, err
		}
		dashboard.YouOwe = dashboard.YouOwe.Add(entry.Amount)
		dashboard.OweDetails.YouOwe = append(dashboard.OweDetails.YouOwe,
			CounterpartAmount{Profile: profile, Amount: entry.Amount})
	}
	return dashboard, nil
}

// GetMonthlySpending buckets the viewer's own share of expenses by calendar
// month of the given year. All twelve months are present; quiet months carry
// zero.
func (s *ReportService) GetMonthlySpending(ctx context.Context, viewerID string, year int) (calculator.SpendingSummary, error) {
	expenses, err := s.store.ListExpensesForUser(ctx, viewerID)
	if err != nil {
		return calculator.SpendingSummary{}, err
	}
	return calculator.Spending(viewerID, year, expenses), nil
}

// Contacts lists the people and groups the viewer shares records with.
type Contacts struct {
	Users  []models.Profile `json:"users"`
	Groups []models.Group   `json:"groups"`
}

// GetContacts returns the viewer's one-on-one counterparts and groups.
func (s *ReportService) GetContacts(ctx context.Context, viewerID string) (*Contacts, error) {
	ids, err := s.store.ListCounterparts(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	users := make([]models.Profile, 0, len(ids))
	for _, id := range ids {
		profile, err := s.directory.Lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		users = append(users, profile)
	}

	groups, err := s.store.ListGroupsForUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return &Contacts{Users: users, Groups: groups}, nil
}
