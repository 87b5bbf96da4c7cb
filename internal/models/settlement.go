package models

// Settlement represents a direct payment between two users that reduces an
// existing balance, independent of any expense.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// GroupID tags the settlement to a group; empty for one-on-one payments.
	GroupID string `json:"groupId,omitempty"`

	// PaidBy is the user who handed over the money (debtor settling up).
	PaidBy string `json:"paidBy"`

	// ReceivedBy is the user who received the payment.
	ReceivedBy string `json:"receivedBy"`

	// Amount is the payment amount; always positive.
	Amount Money `json:"amount"`

	// Date is the Unix timestamp of when the payment happened.
	Date int64 `json:"date"`

	// Note is an optional description.
	Note string `json:"note,omitempty"`

	// CreatedBy is the user who recorded the settlement.
	CreatedBy string `json:"createdBy"`

	// CreatedAt is the Unix timestamp when the record was persisted.
	CreatedAt int64 `json:"createdAt"`
}

// Validate enforces the settlement invariants.
func (s *Settlement) Validate() error {
	if s.Amount.Cents <= 0 {
		return ErrAmountNotPositive
	}
	if s.PaidBy == "" || s.ReceivedBy == "" {
		return Invalidf("payer and receiver required")
	}
	if s.PaidBy == s.ReceivedBy {
		return ErrSelfSettlement
	}
	if s.Date == 0 {
		return ErrMissingDate
	}
	return nil
}
