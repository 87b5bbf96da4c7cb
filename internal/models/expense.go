package models

// SplitType selects how an expense amount is apportioned among participants.
type SplitType string

const (
	// SplitEqual divides the amount evenly; leftover cents go to the
	// earliest-supplied participants so the shares always reconcile.
	SplitEqual SplitType = "equal"

	// SplitPercentage apportions by caller-supplied percentages that must
	// sum to 100.
	SplitPercentage SplitType = "percentage"

	// SplitExact takes caller-supplied amounts verbatim; they must sum to
	// the expense amount.
	SplitExact SplitType = "exact"
)

// Valid reports whether t is a known split type.
func (t SplitType) Valid() bool {
	switch t {
	case SplitEqual, SplitPercentage, SplitExact:
		return true
	}
	return false
}

// Split is one participant's assigned share of an expense. Paid is true
// exactly for the entry whose UserID matches the expense payer.
type Split struct {
	UserID string `json:"userId"`
	Amount Money  `json:"amount"`
	Paid   bool   `json:"paid"`
}

// Expense is a shared cost paid by one participant and split among all of
// them. GroupID is empty for one-on-one expenses.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// Description is the human-readable label, e.g. "Dinner".
	Description string `json:"description"`

	// Amount is the full expense amount.
	Amount Money `json:"amount"`

	// Category is a free-form spending category, e.g. "food".
	Category string `json:"category,omitempty"`

	// Date is the Unix timestamp of when the expense occurred.
	Date int64 `json:"date"`

	// GroupID tags the expense to a group; empty for personal expenses.
	GroupID string `json:"groupId,omitempty"`

	// PaidBy is the participant who fronted the money.
	PaidBy string `json:"paidBy"`

	// CreatedBy is the user who recorded the expense. Only the creator or
	// the payer may delete it.
	CreatedBy string `json:"createdBy"`

	// SplitType is the rule the splits were derived with.
	SplitType SplitType `json:"splitType"`

	// Splits is the validated allocation of Amount across participants.
	Splits []Split `json:"splits"`

	// CreatedAt is the Unix timestamp when the record was persisted.
	CreatedAt int64 `json:"createdAt"`
}

// reconcileTolerance is the absolute tolerance, in cents, within which split
// sums are considered equal to the expense amount.
const reconcileTolerance = 1

// Validate enforces the expense invariants: positive amount, known split
// type, non-empty duplicate-free splits that sum to the amount within one
// cent, and the paid flag set exactly on the payer's entry.
func (e *Expense) Validate() error {
	if e.Amount.Cents <= 0 {
		return ErrAmountNotPositive
	}
	if e.Description == "" {
		return ErrEmptyDescription
	}
	if e.Date == 0 {
		return ErrMissingDate
	}
	if !e.SplitType.Valid() {
		return Invalidf("unknown split type %q", e.SplitType)
	}
	if len(e.Splits) == 0 {
		return ErrNoParticipants
	}

	seen := make(map[string]bool, len(e.Splits))
	var sum int64
	payerSeen := false
	for _, s := range e.Splits {
		if seen[s.UserID] {
			return ErrDuplicateUser
		}
		seen[s.UserID] = true
		if s.Amount.Cents < 0 {
			return Invalidf("split for %s is negative", s.UserID)
		}
		sum += s.Amount.Cents
		if s.UserID == e.PaidBy {
			payerSeen = true
			if !s.Paid {
				return Invalidf("payer's split must be marked paid")
			}
		} else if s.Paid {
			return Invalidf("non-payer split marked paid")
		}
	}
	if !payerSeen {
		return ErrPayerNotParticipant
	}
	if diff := sum - e.Amount.Cents; diff > reconcileTolerance || diff < -reconcileTolerance {
		return ErrSplitsDoNotAddUp
	}
	return nil
}

// SplitFor returns the split entry for the given user, if any.
func (e *Expense) SplitFor(userID string) (Split, bool) {
	for _, s := range e.Splits {
		if s.UserID == userID {
			return s, true
		}
	}
	return Split{}, false
}
