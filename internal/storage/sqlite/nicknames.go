package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/suisplit/internal/nickname"
)

// Nicknames is the SQLite-backed nickname.Store, sharing the ledger's database.
type Nicknames struct {
	db *sql.DB
}

var _ nickname.Store = (*Nicknames)(nil)

// Nicknames returns the nickname table of this store.
func (s *SQLiteStore) Nicknames() *Nicknames {
	return &Nicknames{db: s.db}
}

// Get implements nickname.Store.
func (n *Nicknames) Get(ctx context.Context, address string) (string, bool, error) {
	var name string
	err := n.db.QueryRowContext(ctx, "SELECT nickname FROM nicknames WHERE address = ?", address).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get nickname: %w", err)
	}
	return name, true, nil
}

// All implements nickname.Store.
func (n *Nicknames) All(ctx context.Context) (map[string]string, error) {
	rows, err := n.db.QueryContext(ctx, "SELECT address, nickname FROM nicknames")
	if err != nil {
		return nil, fmt.Errorf("failed to list nicknames: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var address, name string
		if err := rows.Scan(&address, &name); err != nil {
			return nil, fmt.Errorf("failed to scan nickname: %w", err)
		}
		names[address] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate nicknames: %w", err)
	}

	return names, nil
}

// Set implements nickname.Store.
func (n *Nicknames) Set(ctx context.Context, address, name string) error {
	_, err := n.db.ExecContext(ctx,
		`INSERT INTO nicknames (address, nickname, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(address) DO UPDATE SET nickname = excluded.nickname, updated_at = excluded.updated_at`,
		address, name, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to set nickname: %w", err)
	}
	return nil
}

// Remove implements nickname.Store.
func (n *Nicknames) Remove(ctx context.Context, address string) error {
	if _, err := n.db.ExecContext(ctx, "DELETE FROM nicknames WHERE address = ?", address); err != nil {
		return fmt.Errorf("failed to remove nickname: %w", err)
	}
	return nil
}
