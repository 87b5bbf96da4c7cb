// Package calculator implements the pure ledger math: split derivation,
// balance aggregation, group balance matrices, and spending rollups. Nothing
// here touches storage or performs I/O; every function is safe to call
// concurrently.
package calculator

import (
	"math"

	"github.com/splitpal/splitpal/internal/models"
)

// Participant is one party to an expense being split. Percentage is consulted
// for percentage splits and Amount for exact splits; both are ignored
// otherwise.
type Participant struct {
	UserID     string
	Percentage float64
	Amount     models.Money
}

// percentToleranceBps is how far the supplied percentages may stray from 100,
// in basis points. The comparison happens on integer basis points so float
// accumulation error cannot push an input sitting exactly at the boundary
// (e.g. three times 33.33) over it.
const percentToleranceBps = 1

// ComputeSplits derives the validated allocation of amount across the
// participants. The payer's entry is flagged paid. The participant order is
// significant: leftover cents from equal and percentage splits are assigned
// one at a time to the earliest-supplied participants, so identical inputs
// always produce identical allocations.
func ComputeSplits(amount models.Money, splitType models.SplitType, participants []Participant, payerID string) ([]models.Split, error) {
	if amount.Cents <= 0 {
		return nil, models.ErrAmountNotPositive
	}
	if len(participants) == 0 {
		return nil, models.ErrNoParticipants
	}

	seen := make(map[string]bool, len(participants))
	payerFound := false
	for _, p := range participants {
		if seen[p.UserID] {
			return nil, models.ErrDuplicateUser
		}
		seen[p.UserID] = true
		if p.UserID == payerID {
			payerFound = true
		}
	}
	if !payerFound {
		return nil, models.ErrPayerNotParticipant
	}

	var shares []int64
	var err error
	switch splitType {
	case models.SplitEqual:
		shares = equalShares(amount.Cents, len(participants))
	case models.SplitPercentage:
		shares, err = percentageShares(amount.Cents, participants)
	case models.SplitExact:
		shares, err = exactShares(amount.Cents, participants)
	default:
		return nil, models.Invalidf("unknown split type %q", splitType)
	}
	if err != nil {
		return nil, err
	}

	splits := make([]models.Split, len(participants))
	for i, p := range participants {
		splits[i] = models.Split{
			UserID: p.UserID,
			Amount: models.Cents(shares[i]),
			Paid:   p.UserID == payerID,
		}
	}
	return splits, nil
}

// equalShares divides cents evenly across n participants. The integer base
// share leaves a remainder strictly less than n cents, handed out one cent at
// a time from the front of the list.
func equalShares(cents int64, n int) []int64 {
	base := cents / int64(n)
	remainder := cents - base*int64(n)

	shares := make([]int64, n)
	for i := range shares {
		shares[i] = base
		if int64(i) < remainder {
			shares[i]++
		}
	}
	return shares
}

// percentageShares apportions cents by the supplied percentages, which must
// sum to 100 within tolerance. Each raw share is floored to a cent and the
// rounding residual is redistributed like an equal split's remainder.
func percentageShares(cents int64, participants []Participant) ([]int64, error) {
	var totalBps int64
	for _, p := range participants {
		if p.Percentage < 0 {
			return nil, models.Invalidf("negative percentage for %s", p.UserID)
		}
		totalBps += int64(math.Round(p.Percentage * 100))
	}
	if diff := totalBps - 10000; diff > percentToleranceBps || diff < -percentToleranceBps {
		return nil, models.Invalidf("percentages sum to %.2f, want 100", float64(totalBps)/100)
	}

	shares := make([]int64, len(participants))
	var allocated int64
	for i, p := range participants {
		shares[i] = int64(math.Floor(float64(cents) * p.Percentage / 100))
		allocated += shares[i]
	}
	for i := 0; allocated < cents; i++ {
		shares[i%len(shares)]++
		allocated++
	}
	// A percentage total fractionally above 100 can overshoot; claw the
	// excess back from the end of the list.
	for i := len(shares) - 1; allocated > cents; i-- {
		if i < 0 {
			i = len(shares) - 1
		}
		if shares[i] > 0 {
			shares[i]--
			allocated--
		}
	}
	return shares, nil
}

// exactShares validates caller-supplied amounts against the total; it
// performs no computation of its own.
func exactShares(cents int64, participants []Participant) ([]int64, error) {
	shares := make([]int64, len(participants))
	var sum int64
	for i, p := range participants {
		if p.Amount.Cents < 0 {
			return nil, models.Invalidf("negative amount for %s", p.UserID)
		}
		shares[i] = p.Amount.Cents
		sum += p.Amount.Cents
	}
	if diff := sum - cents; diff > 1 || diff < -1 {
		return nil, models.ErrSplitsDoNotAddUp
	}
	return shares, nil
}
