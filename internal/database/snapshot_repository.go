package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/petwords/pkg/models"
)

// SnapshotRepository stores one JSON document per account in a SQL table.
// It serves both tiers: SQLite locally and PostgreSQL remotely.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository creates a new repository instance
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Load returns the stored snapshot, or nil when the account has none
func (r *SnapshotRepository) Load(ctx context.Context, accountID string) (*models.AccountSnapshot, error) {
	var payload string
	query := r.db.Rebind("SELECT payload FROM account_snapshots WHERE account_id = ?")
	err := r.db.GetContext(ctx, &payload, query, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return decodeSnapshot(accountID, []byte(payload))
}

// Save replaces the stored snapshot for the account
func (r *SnapshotRepository) Save(ctx context.Context, snap *models.AccountSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	query := r.db.Rebind(`
		INSERT INTO account_snapshots (account_id, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (account_id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP
	`)
	if _, err := r.db.ExecContext(ctx, query, snap.AccountID, string(payload)); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Accounts lists every account with a stored snapshot
func (r *SnapshotRepository) Accounts(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, "SELECT account_id FROM account_snapshots ORDER BY account_id"); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return ids, nil
}

func decodeSnapshot(accountID string, payload []byte) (*models.AccountSnapshot, error) {
	var snap models.AccountSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot for %s: %w", accountID, err)
	}
	if snap.AccountID == "" {
		snap.AccountID = accountID
	}
	return &snap, nil
}
