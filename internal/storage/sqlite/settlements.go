package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/suisplit/internal/models"
	"github.com/mmynk/suisplit/internal/storage"
)

const settlementColumns = "id, group_id, from_address, to_address, amount, created_at, note"

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	var note sql.NullString
	if settlement.Note != "" {
		note = sql.NullString{String: settlement.Note, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (`+settlementColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.GroupID, settlement.From, settlement.To,
		settlement.Amount, settlement.CreatedAt, note,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = ?`,
		settlementID,
	)

	settlement, err := scanSettlement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: settlement %s", storage.ErrNotFound, settlementID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	return settlement, nil
}

// ListSettlementsByGroup retrieves all settlements for a group.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE group_id = ? ORDER BY created_at DESC, rowid DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by group: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// DeleteSettlement removes a settlement by ID.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, settlementID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", settlementID)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: settlement %s", storage.ErrNotFound, settlementID)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var note sql.NullString

	if err := row.Scan(&settlement.ID, &settlement.GroupID, &settlement.From, &settlement.To,
		&settlement.Amount, &settlement.CreatedAt, &note); err != nil {
		return nil, err
	}
	if note.Valid {
		settlement.Note = note.String
	}

	return settlement, nil
}
