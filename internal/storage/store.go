// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"
	"errors"

	"github.com/splitpal/splitpal/internal/models"
)

// ErrNotFound is returned when a referenced record does not exist. A repeat
// delete of the same id reports it too; deletion is never a silent no-op.
var ErrNotFound = errors.New("record not found")

// Store defines the persistence operations the ledger relies on. Writes must
// be atomic: an expense is persisted with all its splits or not at all, and
// the next read after any write reflects it. Balances are never stored; they
// are recomputed from these records on every read.
//
// The scope listings mirror the three balance scopes: Between (non-group
// records shared by exactly two users), ForGroup, and ForUser (everything the
// user participates in, across groups and one-on-one).
type Store interface {
	// Expenses
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, id string) (*models.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	ListExpensesBetween(ctx context.Context, userA, userB string) ([]models.Expense, error)
	ListExpensesForGroup(ctx context.Context, groupID string) ([]models.Expense, error)
	ListExpensesForUser(ctx context.Context, userID string) ([]models.Expense, error)

	// Settlements
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, id string) (*models.Settlement, error)
	DeleteSettlement(ctx context.Context, id string) error
	ListSettlementsBetween(ctx context.Context, userA, userB string) ([]models.Settlement, error)
	ListSettlementsForGroup(ctx context.Context, groupID string) ([]models.Settlement, error)
	ListSettlementsForUser(ctx context.Context, userID string) ([]models.Settlement, error)

	// Groups
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error)
	AddGroupMembers(ctx context.Context, groupID string, members []models.GroupMember) error

	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SearchUsers(ctx context.Context, query, excludeID string) ([]models.User, error)
	ListCounterparts(ctx context.Context, userID string) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}
