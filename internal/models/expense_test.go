package models

import (
	"errors"
	"testing"
)

func validExpense() *Expense {
	return &Expense{
		Description: "Dinner",
		Amount:      Cents(3000),
		Date:        1700000000,
		PaidBy:      "alice",
		CreatedBy:   "alice",
		SplitType:   SplitEqual,
		Splits: []Split{
			{UserID: "alice", Amount: Cents(1500), Paid: true},
			{UserID: "bob", Amount: Cents(1500)},
		},
	}
}

func TestExpenseValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Expense)
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(e *Expense) {},
		},
		{
			name:    "zero amount",
			mutate:  func(e *Expense) { e.Amount = Cents(0) },
			wantErr: ErrAmountNotPositive,
		},
		{
			name:    "empty description",
			mutate:  func(e *Expense) { e.Description = "" },
			wantErr: ErrEmptyDescription,
		},
		{
			name:    "missing date",
			mutate:  func(e *Expense) { e.Date = 0 },
			wantErr: ErrMissingDate,
		},
		{
			name:    "no splits",
			mutate:  func(e *Expense) { e.Splits = nil },
			wantErr: ErrNoParticipants,
		},
		{
			name: "duplicate split user",
			mutate: func(e *Expense) {
				e.Splits = []Split{
					{UserID: "alice", Amount: Cents(1500), Paid: true},
					{UserID: "alice", Amount: Cents(1500)},
				}
			},
			wantErr: ErrDuplicateUser,
		},
		{
			name: "payer missing from splits",
			mutate: func(e *Expense) {
				e.Splits = []Split{
					{UserID: "bob", Amount: Cents(3000)},
				}
			},
			wantErr: ErrPayerNotParticipant,
		},
		{
			name: "splits do not reconcile",
			mutate: func(e *Expense) {
				e.Splits[0].Amount = Cents(1000)
			},
			wantErr: ErrSplitsDoNotAddUp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validExpense()
			tt.mutate(e)
			err := e.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpenseValidateTolerance(t *testing.T) {
	// Sums one cent off either way still reconcile.
	for _, delta := range []int64{-1, 0, 1} {
		e := validExpense()
		e.Splits[1].Amount = Cents(1500 + delta)
		if err := e.Validate(); err != nil {
			t.Errorf("delta %d: Validate() error = %v, want nil", delta, err)
		}
	}
}

func TestExpenseValidatePaidFlag(t *testing.T) {
	e := validExpense()
	e.Splits[0].Paid = false
	if err := e.Validate(); err == nil {
		t.Error("Validate() should reject an unmarked payer split")
	}

	e = validExpense()
	e.Splits[1].Paid = true
	if err := e.Validate(); err == nil {
		t.Error("Validate() should reject a paid flag on a non-payer")
	}
}

func TestExpenseValidateUnknownSplitType(t *testing.T) {
	e := validExpense()
	e.SplitType = SplitType("weighted")
	var validation *ValidationError
	if err := e.Validate(); !errors.As(err, &validation) {
		t.Errorf("Validate() error = %v, want a validation error", err)
	}
}

func TestSplitFor(t *testing.T) {
	e := validExpense()
	if s, ok := e.SplitFor("bob"); !ok || s.Amount.Cents != 1500 {
		t.Errorf("SplitFor(bob) = %+v, %v", s, ok)
	}
	if _, ok := e.SplitFor("mallory"); ok {
		t.Error("SplitFor should not find a non-participant")
	}
}
