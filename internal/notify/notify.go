// Package notify publishes ledger events for out-of-band delivery (email).
// Publishing is fire-and-forget: failures are logged by callers and never
// affect the write path.
package notify

import "context"

// Publisher emits ledger events to whatever transport is configured.
type Publisher interface {
	PublishExpenseCreated(ctx context.Context, event ExpenseCreated) error
	PublishSettlementCreated(ctx context.Context, event SettlementCreated) error
	Close() error
}

// Noop discards all events; used in tests and AMQP-less deployments.
type Noop struct{}

func (Noop) PublishExpenseCreated(context.Context, ExpenseCreated) error       { return nil }
func (Noop) PublishSettlementCreated(context.Context, SettlementCreated) error { return nil }
func (Noop) Close() error                                                      { return nil }
