// Package database はデータベース接続とマイグレーション管理を提供する。
package database

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// NewMigrator はマイグレーション実行用のmigrateインスタンスを生成する。
// マイグレーションファイルはDialectごとのディレクトリから読み込む。
func NewMigrator(target Target) (*migrate.Migrate, error) {
	if target.Dialect == DialectMemory {
		return nil, fmt.Errorf("memory store does not support migrations")
	}

	source, err := iofs.New(migrationsFS, "migrations/"+string(target.Dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	if target.Dialect == DialectSQLite {
		if err := os.MkdirAll(filepath.Dir(target.DSN), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, target.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

// RunMigrations はすべてのマイグレーションを適用する。
// すでに最新の場合、またはmemoryストアの場合はエラーなしで返る。
func RunMigrations(target Target) error {
	if target.Dialect == DialectMemory {
		return nil
	}

	m, err := NewMigrator(target)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
