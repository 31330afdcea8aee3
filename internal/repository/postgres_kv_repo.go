package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresKVRepo はPostgreSQLを使用したKVリポジトリ。
type PostgresKVRepo struct {
	db *sql.DB
}

// NewPostgresKVRepo はPostgresKVRepoを生成する。
func NewPostgresKVRepo(db *sql.DB) *PostgresKVRepo {
	return &PostgresKVRepo{db: db}
}

// Get は指定キーの値を取得する。見つからない場合はnil, nilを返す。
func (r *PostgresKVRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE key = $1`,
		key,
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kv entry: %w", err)
	}
	return value, nil
}

// Put は指定キーに値を保存する。既存の値は上書きする。
func (r *PostgresKVRepo) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to put kv entry: %w", err)
	}
	return nil
}

// Delete は指定キーを削除する。
func (r *PostgresKVRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE key = $1`,
		key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete kv entry: %w", err)
	}
	return nil
}

// compile-time interface check
var _ KVRepository = (*PostgresKVRepo)(nil)
