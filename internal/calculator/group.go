package calculator

import (
	"sort"

	"github.com/splitpal/splitpal/internal/models"
)

// Transfer is one directed leg of a member's group balance.
type Transfer struct {
	UserID string       `json:"userId"`
	Amount models.Money `json:"amount"`
}

// MemberBalance is one group member's position versus everyone else in the
// group: a signed total plus the per-counterpart breakdown in both
// directions.
type MemberBalance struct {
	UserID       string       `json:"userId"`
	TotalBalance models.Money `json:"totalBalance"`
	Owes         []Transfer   `json:"owes"`
	OwedBy       []Transfer   `json:"owedBy"`
}

// GroupBalances computes every member's balance versus every other member in
// a single pass over the group's records, rather than re-aggregating once per
// member. It accumulates a pair matrix owed[a][b] (how much b owes a), then
// nets each unordered pair and assigns the positive direction. Pairs that net
// to zero and self-pairs are omitted.
func GroupBalances(memberIDs []string, expenses []models.Expense, settlements []models.Settlement) []MemberBalance {
	owed := make(map[string]map[string]int64, len(memberIDs))
	credit := func(creditor, debtor string, cents int64) {
		if creditor == debtor {
			return
		}
		m := owed[creditor]
		if m == nil {
			m = make(map[string]int64)
			owed[creditor] = m
		}
		m[debtor] += cents
	}

	for _, e := range expenses {
		for _, s := range e.Splits {
			if s.UserID != e.PaidBy {
				credit(e.PaidBy, s.UserID, s.Amount.Cents)
			}
		}
	}
	for _, s := range settlements {
		// Paying down a debt is the inverse of being credited for an
		// expense.
		credit(s.ReceivedBy, s.PaidBy, -s.Amount.Cents)
	}

	index := make(map[string]int, len(memberIDs))
	balances := make([]MemberBalance, len(memberIDs))
	for i, id := range memberIDs {
		index[id] = i
		balances[i] = MemberBalance{UserID: id, Owes: []Transfer{}, OwedBy: []Transfer{}}
	}

	for i, a := range memberIDs {
		for _, b := range memberIDs[i+1:] {
			net := owed[a][b] - owed[b][a] // >0: b owes a
			if net == 0 {
				continue
			}
			creditor, debtor, cents := a, b, net
			if net < 0 {
				creditor, debtor, cents = b, a, -net
			}
			ci, di := index[creditor], index[debtor]
			balances[ci].OwedBy = append(balances[ci].OwedBy, Transfer{UserID: debtor, Amount: models.Cents(cents)})
			balances[ci].TotalBalance.Cents += cents
			balances[di].Owes = append(balances[di].Owes, Transfer{UserID: creditor, Amount: models.Cents(cents)})
			balances[di].TotalBalance.Cents -= cents
		}
	}

	for i := range balances {
		sortTransfers(balances[i].Owes)
		sortTransfers(balances[i].OwedBy)
	}
	return balances
}

func sortTransfers(ts []Transfer) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Amount.Cents != ts[j].Amount.Cents {
			return ts[i].Amount.Cents > ts[j].Amount.Cents
		}
		return ts[i].UserID < ts[j].UserID
	})
}
