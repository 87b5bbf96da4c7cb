package calculator

import (
	"time"

	"github.com/splitpal/splitpal/internal/models"
)

// MonthlySpend is one month's total of the viewer's own share of expenses.
// Month is 1-12; months without activity carry a zero total, never go
// missing.
type MonthlySpend struct {
	Month int          `json:"month"`
	Total models.Money `json:"total"`
}

// SpendingSummary is the viewer's spend for one calendar year.
type SpendingSummary struct {
	Year   int            `json:"year"`
	Months []MonthlySpend `json:"months"`
	Total  models.Money   `json:"total"`
}

// Spending buckets the viewer's own split of each expense (not the full
// expense amount) by calendar month of the expense date, for the given
// year. Expenses the viewer has no split in contribute nothing.
func Spending(viewerID string, year int, expenses []models.Expense) SpendingSummary {
	summary := SpendingSummary{Year: year, Months: make([]MonthlySpend, 12)}
	for i := range summary.Months {
		summary.Months[i].Month = i + 1
	}

	for _, e := range expenses {
		date := time.Unix(e.Date, 0).UTC()
		if date.Year() != year {
			continue
		}
		share, ok := e.SplitFor(viewerID)
		if !ok {
			continue
		}
		m := int(date.Month()) - 1
		summary.Months[m].Total.Cents += share.Amount.Cents
		summary.Total.Cents += share.Amount.Cents
	}
	return summary
}
