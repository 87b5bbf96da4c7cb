package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/splitpal/splitpal/internal/models"
	"github.com/splitpal/splitpal/internal/storage"
)

const userColumns = "id, name, email, avatar_url, password_hash, created_at"

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		user.ID, user.Name, user.Email, nullable(user.AvatarURL), user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id), id)
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email), email)
}

// SearchUsers finds users whose name or email contains the query, excluding
// the given user id. Matching is case-insensitive.
func (s *SQLiteStore) SearchUsers(ctx context.Context, query, excludeID string) ([]models.User, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE id != ? AND (name LIKE ? COLLATE NOCASE OR email LIKE ? COLLATE NOCASE)
		 ORDER BY name, id LIMIT 20`,
		excludeID, pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		var avatar sql.NullString
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &avatar, &user.PasswordHash, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.AvatarURL = avatar.String
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// ListCounterparts returns the distinct users the given user has shared
// non-group expenses or settlements with, ordered by id.
func (s *SQLiteStore) ListCounterparts(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT other.user_id
		 FROM expense_splits mine
		 JOIN expenses e ON e.id = mine.expense_id AND e.group_id IS NULL
		 JOIN expense_splits other ON other.expense_id = mine.expense_id AND other.user_id != mine.user_id
		 WHERE mine.user_id = ?
		 UNION
		 SELECT DISTINCT CASE WHEN paid_by = ? THEN received_by ELSE paid_by END
		 FROM settlements
		 WHERE group_id IS NULL AND (paid_by = ? OR received_by = ?)
		 ORDER BY 1`,
		userID, userID, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list counterparts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan counterpart: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate counterparts: %w", err)
	}
	return ids, nil
}

func (s *SQLiteStore) scanUser(row *sql.Row, key string) (*models.User, error) {
	user := &models.User{}
	var avatar sql.NullString
	err := row.Scan(&user.ID, &user.Name, &user.Email, &avatar, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.AvatarURL = avatar.String
	return user, nil
}
