package models

import (
	"errors"
	"testing"
)

func TestSettlementValidate(t *testing.T) {
	valid := Settlement{
		PaidBy:     "bob",
		ReceivedBy: "alice",
		Amount:     Cents(1000),
		Date:       1700000000,
	}

	tests := []struct {
		name    string
		mutate  func(*Settlement)
		wantErr error
	}{
		{name: "valid", mutate: func(s *Settlement) {}},
		{
			name:    "zero amount",
			mutate:  func(s *Settlement) { s.Amount = Cents(0) },
			wantErr: ErrAmountNotPositive,
		},
		{
			name:    "negative amount",
			mutate:  func(s *Settlement) { s.Amount = Cents(-500) },
			wantErr: ErrAmountNotPositive,
		},
		{
			name:    "self settlement",
			mutate:  func(s *Settlement) { s.ReceivedBy = "bob" },
			wantErr: ErrSelfSettlement,
		},
		{
			name:    "missing date",
			mutate:  func(s *Settlement) { s.Date = 0 },
			wantErr: ErrMissingDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
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

func TestSettlementValidateMissingParties(t *testing.T) {
	s := Settlement{Amount: Cents(100), Date: 1700000000, PaidBy: "bob"}
	var validation *ValidationError
	if err := s.Validate(); !errors.As(err, &validation) {
		t.Errorf("Validate() error = %v, want a validation error", err)
	}
}
