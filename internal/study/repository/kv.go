package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"simvex/internal/common/storage"
)

// ============================================================
// Key/Value Repository
// ============================================================

// KV stores per-owner string values in kv_store. It satisfies viewer.Store.
type KV struct {
	db *storage.DB
}

func NewKV(db *storage.DB) *KV {
	return &KV{db: db}
}

func (r *KV) Get(ctx context.Context, owner, key string) (string, bool, error) {
	row := r.db.QueryRowContext(ctx, r.db.Rebind(`
        SELECT state_value
        FROM kv_store
        WHERE owner_id = ? AND state_key = ?
    `), owner, key)

	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (r *KV) Set(ctx context.Context, owner, key, value string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
        INSERT INTO kv_store (owner_id, state_key, state_value, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (owner_id, state_key)
        DO UPDATE SET state_value = excluded.state_value, updated_at = excluded.updated_at
    `), owner, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (r *KV) Delete(ctx context.Context, owner string, keys ...string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query := r.db.Rebind(`DELETE FROM kv_store WHERE owner_id = ? AND state_key = ?`)
	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, query, owner, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Keys lists the keys stored for an owner.
func (r *KV) Keys(ctx context.Context, owner string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`
        SELECT state_key FROM kv_store WHERE owner_id = ? ORDER BY state_key
    `), owner)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
