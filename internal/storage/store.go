// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/suisplit/internal/models"
)

// ErrNotFound is wrapped by stores when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for the local expense ledger.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateGroup persists a new group. The group.ID and CreatedAt fields are populated if empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by its ID. Wraps ErrNotFound if missing.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns all groups, newest first.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// CreateExpense persists a new expense in its group.
	// The expense.ID and CreatedAt fields are populated if empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpensesByGroup returns a group's expenses in the order they were recorded.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)

	// CreateSettlement persists a new settlement.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves a settlement by ID. Wraps ErrNotFound if missing.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlementsByGroup returns a group's settlements, newest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// DeleteSettlement removes a settlement. Wraps ErrNotFound if missing.
	DeleteSettlement(ctx context.Context, settlementID string) error

	// Close releases any resources held by the store.
	Close() error
}
