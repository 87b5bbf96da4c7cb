package notify

import (
	"encoding/json"
	"time"
)

// Event kinds used as AMQP routing keys.
const (
	KindExpenseCreated    = "expense.created"
	KindSettlementCreated = "settlement.created"
)

// Envelope wraps every published event with its kind and emit time, so the
// notifier worker can dispatch without sniffing payloads.
type Envelope struct {
	Kind      string          `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// ExpenseCreated carries enough for the worker to compose an email; the
// worker resolves names and addresses through the directory.
type ExpenseCreated struct {
	ExpenseID    string   `json:"expenseId"`
	Description  string   `json:"description"`
	Amount       string   `json:"amount"`
	GroupID      string   `json:"groupId,omitempty"`
	PaidBy       string   `json:"paidBy"`
	Participants []string `json:"participants"`
}

// SettlementCreated announces a recorded payment between two users.
type SettlementCreated struct {
	SettlementID string `json:"settlementId"`
	Amount       string `json:"amount"`
	GroupID      string `json:"groupId,omitempty"`
	PaidBy       string `json:"paidBy"`
	ReceivedBy   string `json:"receivedBy"`
}

func envelope(kind string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Kind: kind, Timestamp: time.Now(), Payload: raw})
}

// DecodeEnvelope parses a published message body.
func DecodeEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}
