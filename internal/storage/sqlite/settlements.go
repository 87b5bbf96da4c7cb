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

// CreateSettlement persists a new settlement.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (id, group_id, paid_by, received_by, amount_cents, date, note, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, nullable(settlement.GroupID), settlement.PaidBy, settlement.ReceivedBy,
		settlement.Amount.Cents, settlement.Date, nullable(settlement.Note),
		settlement.CreatedBy, settlement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, id string) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var groupID, note sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, paid_by, received_by, amount_cents, date, note, created_by, created_at
		 FROM settlements WHERE id = ?`,
		id,
	).Scan(&settlement.ID, &groupID, &settlement.PaidBy, &settlement.ReceivedBy,
		&settlement.Amount.Cents, &settlement.Date, &note, &settlement.CreatedBy, &settlement.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("settlement %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	settlement.GroupID = groupID.String
	settlement.Note = note.String
	return settlement, nil
}

// DeleteSettlement removes the settlement; a missing id is ErrNotFound.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("settlement %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// ListSettlementsBetween returns the non-group settlements between the two
// users, in either direction.
func (s *SQLiteStore) ListSettlementsBetween(ctx context.Context, userA, userB string) ([]models.Settlement, error) {
	return s.listSettlements(ctx,
		`SELECT id, group_id, paid_by, received_by, amount_cents, date, note, created_by, created_at
		 FROM settlements
		 WHERE group_id IS NULL
		   AND ((paid_by = ? AND received_by = ?) OR (paid_by = ? AND received_by = ?))
		 ORDER BY date DESC, id`,
		userA, userB, userB, userA,
	)
}

// ListSettlementsForGroup returns every settlement tagged with the group.
func (s *SQLiteStore) ListSettlementsForGroup(ctx context.Context, groupID string) ([]models.Settlement, error) {
	return s.listSettlements(ctx,
		`SELECT id, group_id, paid_by, received_by, amount_cents, date, note, created_by, created_at
		 FROM settlements WHERE group_id = ? ORDER BY date DESC, id`,
		groupID,
	)
}

// ListSettlementsForUser returns every settlement the user paid or received.
func (s *SQLiteStore) ListSettlementsForUser(ctx context.Context, userID string) ([]models.Settlement, error) {
	return s.listSettlements(ctx,
		`SELECT id, group_id, paid_by, received_by, amount_cents, date, note, created_by, created_at
		 FROM settlements WHERE paid_by = ? OR received_by = ? ORDER BY date DESC, id`,
		userID, userID,
	)
}

func (s *SQLiteStore) listSettlements(ctx context.Context, query string, args ...any) ([]models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	settlements := []models.Settlement{}
	for rows.Next() {
		var settlement models.Settlement
		var groupID, note sql.NullString
		if err := rows.Scan(&settlement.ID, &groupID, &settlement.PaidBy, &settlement.ReceivedBy,
			&settlement.Amount.Cents, &settlement.Date, &note, &settlement.CreatedBy, &settlement.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlement.GroupID = groupID.String
		settlement.Note = note.String
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}
