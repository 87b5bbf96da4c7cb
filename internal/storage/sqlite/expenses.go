package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitpal/splitpal/internal/models"
	"github.com/splitpal/splitpal/internal/storage"
)

// CreateExpense persists an expense and all its splits in one transaction,
// so no reader ever observes a partially written split set.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount_cents, category, date, group_id, paid_by, created_by, split_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.Description, expense.Amount.Cents, nullable(expense.Category),
		expense.Date, nullable(expense.GroupID), expense.PaidBy, expense.CreatedBy,
		string(expense.SplitType), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, split := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expense_splits (expense_id, user_id, amount_cents, paid, position)
			 VALUES (?, ?, ?, ?, ?)`,
			expense.ID, split.UserID, split.Amount.Cents, boolToInt(split.Paid), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its splits in the order
// they were supplied at creation.
func (s *SQLiteStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	expense := &models.Expense{}
	var category, groupID sql.NullString
	var splitType string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, description, amount_cents, category, date, group_id, paid_by, created_by, split_type, created_at
		 FROM expenses WHERE id = ?`,
		id,
	).Scan(&expense.ID, &expense.Description, &expense.Amount.Cents, &category,
		&expense.Date, &groupID, &expense.PaidBy, &expense.CreatedBy, &splitType, &expense.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	expense.Category = category.String
	expense.GroupID = groupID.String
	expense.SplitType = models.SplitType(splitType)

	expense.Splits, err = s.loadSplits(ctx, expense.ID)
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// DeleteExpense removes the expense and its splits. Deleting an id that does
// not exist (including a second delete of the same id) is ErrNotFound.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// ListExpensesBetween returns the non-group expenses where both users appear
// among the splits.
func (s *SQLiteStore) ListExpensesBetween(ctx context.Context, userA, userB string) ([]models.Expense, error) {
	return s.listExpenses(ctx,
		`SELECT e.id FROM expenses e
		 WHERE e.group_id IS NULL
		   AND EXISTS (SELECT 1 FROM expense_splits WHERE expense_id = e.id AND user_id = ?)
		   AND EXISTS (SELECT 1 FROM expense_splits WHERE expense_id = e.id AND user_id = ?)
		 ORDER BY e.date DESC, e.id`,
		userA, userB,
	)
}

// ListExpensesForGroup returns every expense tagged with the group.
func (s *SQLiteStore) ListExpensesForGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	return s.listExpenses(ctx,
		`SELECT id FROM expenses WHERE group_id = ? ORDER BY date DESC, id`,
		groupID,
	)
}

// ListExpensesForUser returns every expense the user participates in, across
// all groups and one-on-one contexts.
func (s *SQLiteStore) ListExpensesForUser(ctx context.Context, userID string) ([]models.Expense, error) {
	return s.listExpenses(ctx,
		`SELECT e.id FROM expenses e
		 WHERE EXISTS (SELECT 1 FROM expense_splits WHERE expense_id = e.id AND user_id = ?)
		 ORDER BY e.date DESC, e.id`,
		userID,
	)
}

func (s *SQLiteStore) listExpenses(ctx context.Context, idQuery string, args ...any) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, idQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan expense id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	expenses := make([]models.Expense, 0, len(ids))
	for _, id := range ids {
		e, err := s.GetExpense(ctx, id)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, nil
}

func (s *SQLiteStore) loadSplits(ctx context.Context, expenseID string) ([]models.Split, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, amount_cents, paid FROM expense_splits
		 WHERE expense_id = ? ORDER BY position`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var split models.Split
		var paid int
		if err := rows.Scan(&split.UserID, &split.Amount.Cents, &paid); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		split.Paid = paid != 0
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
