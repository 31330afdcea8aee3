package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteKVRepo はSQLiteを使用したKVリポジトリ。端末ローカルの既定ストア。
type SQLiteKVRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteKVRepo はSQLiteKVRepoを生成する。
func NewSQLiteKVRepo(db *sql.DB) *SQLiteKVRepo {
	return &SQLiteKVRepo{db: db, now: time.Now}
}

// Get は指定キーの値を取得する。見つからない場合はnil, nilを返す。
func (r *SQLiteKVRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE key = ?`,
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
func (r *SQLiteKVRepo) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, r.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to put kv entry: %w", err)
	}
	return nil
}

// Delete は指定キーを削除する。
func (r *SQLiteKVRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE key = ?`,
		key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete kv entry: %w", err)
	}
	return nil
}

// compile-time interface check
var _ KVRepository = (*SQLiteKVRepo)(nil)
