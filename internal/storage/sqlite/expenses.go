package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/suisplit/internal/models"
)

// CreateExpense persists a new expense and its ordered participant list.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate IDs if not set
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
		`INSERT INTO expenses (id, group_id, description, amount, payer, merchant, category, date, settled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Description, expense.Amount, expense.Payer,
		expense.Merchant, expense.Category, expense.Date, expense.Settled, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	// Positions keep the original order, duplicates included.
	for i, participant := range expense.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, position, participant) VALUES (?, ?, ?)",
			expense.ID, i, participant,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListExpensesByGroup retrieves a group's expenses, oldest first, with participants.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, description, amount, payer, merchant, category, date, settled, created_at
		 FROM expenses WHERE group_id = ? ORDER BY created_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	index := make(map[string]int)
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.Payer,
			&e.Merchant, &e.Category, &e.Date, &e.Settled, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		index[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	// Load all participants for the group in one query
	participantRows, err := s.db.QueryContext(ctx,
		`SELECT p.expense_id, p.participant
		 FROM expense_participants p JOIN expenses e ON e.id = p.expense_id
		 WHERE e.group_id = ? ORDER BY p.expense_id, p.position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer participantRows.Close()

	for participantRows.Next() {
		var expenseID, participant string
		if err := participantRows.Scan(&expenseID, &participant); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if i, ok := index[expenseID]; ok {
			expenses[i].Participants = append(expenses[i].Participants, participant)
		}
	}
	if err := participantRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return expenses, nil
}
