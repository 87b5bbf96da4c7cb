package calculator

import (
	"sort"

	"github.com/splitpal/splitpal/internal/models"
)

// BalanceEntry is one counterpart's net amount in a balance view. The amount
// is always positive; which list the entry sits in carries the direction.
type BalanceEntry struct {
	UserID string       `json:"userId"`
	Amount models.Money `json:"amount"`
}

// BalanceView is the viewer-centric result of folding a scope's records.
// TotalBalance is signed: positive means the viewer is owed money overall.
type BalanceView struct {
	OwedToViewer []BalanceEntry `json:"owedToViewer"`
	ViewerOwes   []BalanceEntry `json:"viewerOwes"`
	TotalBalance models.Money   `json:"totalBalance"`
}

// Aggregate folds the given expenses and settlements into the viewer's net
// balance per counterpart. The caller selects the scope by choosing which
// records to pass in; records the viewer has no part in contribute nothing.
//
// Per expense, the payer's position rises by the sum of everyone else's
// splits and each non-payer's position falls by their own split; both facets
// are applied from the single record, so an expense is never half-counted.
// A settlement raises the payer's position against the receiver, mirroring
// an expense payment.
//
// Empty input yields an all-zero view, never an error.
func Aggregate(viewerID string, expenses []models.Expense, settlements []models.Settlement) BalanceView {
	net := make(map[string]int64)

	for _, e := range expenses {
		if e.PaidBy == viewerID {
			for _, s := range e.Splits {
				if s.UserID != viewerID {
					net[s.UserID] += s.Amount.Cents
				}
			}
			continue
		}
		if s, ok := e.SplitFor(viewerID); ok {
			net[e.PaidBy] -= s.Amount.Cents
		}
	}

	for _, s := range settlements {
		switch viewerID {
		case s.PaidBy:
			net[s.ReceivedBy] += s.Amount.Cents
		case s.ReceivedBy:
			net[s.PaidBy] -= s.Amount.Cents
		}
	}

	return viewOf(net)
}

// Against returns the viewer's signed net balance versus one counterpart,
// zero when the counterpart has no entry. TotalBalance spans every
// counterpart in the folded records; a one-on-one figure must come from here,
// or third parties sharing an expense with the pair would leak into it.
func (v BalanceView) Against(userID string) models.Money {
	for _, e := range v.OwedToViewer {
		if e.UserID == userID {
			return e.Amount
		}
	}
	for _, e := range v.ViewerOwes {
		if e.UserID == userID {
			return e.Amount.Neg()
		}
	}
	return models.Money{}
}

// viewOf partitions the signed per-counterpart map into the two display
// lists, dropping zero balances, and computes the signed total.
func viewOf(net map[string]int64) BalanceView {
	view := BalanceView{
		OwedToViewer: []BalanceEntry{},
		ViewerOwes:   []BalanceEntry{},
	}
	var total int64
	for userID, cents := range net {
		total += cents
		switch {
		case cents > 0:
			view.OwedToViewer = append(view.OwedToViewer, BalanceEntry{UserID: userID, Amount: models.Cents(cents)})
		case cents < 0:
			view.ViewerOwes = append(view.ViewerOwes, BalanceEntry{UserID: userID, Amount: models.Cents(-cents)})
		}
	}
	sortEntries(view.OwedToViewer)
	sortEntries(view.ViewerOwes)
	view.TotalBalance = models.Cents(total)
	return view
}

// sortEntries orders by amount descending, then user ID ascending, so views
// are deterministic for display and tests.
func sortEntries(entries []BalanceEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Amount.Cents != entries[j].Amount.Cents {
			return entries[i].Amount.Cents > entries[j].Amount.Cents
		}
		return entries[i].UserID < entries[j].UserID
	})
}
