package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/suisplit/internal/ledger"
	"github.com/mmynk/suisplit/internal/metrics"
	"github.com/mmynk/suisplit/internal/models"
	"github.com/mmynk/suisplit/internal/storage"
)

var (
	_ ledger.Backend = (*SQLiteStore)(nil)
	_ ledger.Settler = (*SQLiteStore)(nil)
)

// Name implements ledger.Backend.
func (s *SQLiteStore) Name() string {
	return "sqlite"
}

// FetchExpenses implements ledger.Backend over the local expenses table.
// Rows were validated on insert, but the calculator still filters anything invalid.
func (s *SQLiteStore) FetchExpenses(ctx context.Context, groupID string) ([]models.Expense, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		metrics.LedgerFetches.WithLabelValues(s.Name(), "error").Inc()
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ledger.ErrGroupNotFound, groupID)
		}
		return nil, err
	}

	expenses, err := s.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		metrics.LedgerFetches.WithLabelValues(s.Name(), "error").Inc()
		return nil, err
	}

	metrics.LedgerFetches.WithLabelValues(s.Name(), "ok").Inc()
	return expenses, nil
}

// SubmitSettlement implements ledger.Settler.
func (s *SQLiteStore) SubmitSettlement(ctx context.Context, settlement *models.Settlement) error {
	return s.CreateSettlement(ctx, settlement)
}

// ListSettlements implements ledger.Settler.
func (s *SQLiteStore) ListSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	return s.ListSettlementsByGroup(ctx, groupID)
}
