// Package ledger is the boundary between ledger backends and the balance calculator.
// It turns loosely typed expense records into validated models.Expense values and defines
// the interfaces ledger backends implement.
package ledger

import (
	"context"
	"errors"

	"github.com/mmynk/suisplit/internal/models"
)

var (
	// ErrInputShape means the expense list itself is malformed (not a JSON array).
	// This is a contract violation by the backend, not a data-quality issue.
	ErrInputShape = errors.New("ledger: expense list is not an array of records")

	// ErrGroupNotFound is returned by backends when the requested group does not exist.
	ErrGroupNotFound = errors.New("ledger: group not found")
)

// Backend supplies a group's expenses.
type Backend interface {
	// Name identifies the backend in logs and metrics (e.g. "sqlite", "sui").
	Name() string

	// FetchExpenses returns the valid expenses recorded for a group.
	// Records that fail validation are dropped, not returned as errors.
	FetchExpenses(ctx context.Context, groupID string) ([]models.Expense, error)
}

// Auditor is implemented by backends that can also report which records they dropped.
type Auditor interface {
	FetchExpensesAudited(ctx context.Context, groupID string) ([]models.Expense, Report, error)
}

// Settler records settlements against a group's ledger.
type Settler interface {
	// SubmitSettlement persists a settlement. The settlement ID and CreatedAt are populated.
	SubmitSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlements returns the settlements recorded for a group.
	ListSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error)
}
