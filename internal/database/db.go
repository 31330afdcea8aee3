package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect は永続ストアの種類。
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMemory   Dialect = "memory"
)

// Target はSTORE_URLを解釈した接続先。
type Target struct {
	Dialect Dialect
	// URL は元のSTORE_URL。マイグレーションにはこのURLをそのまま渡す。
	URL string
	// DSN はdatabase/sqlに渡す接続文字列。memoryの場合は空。
	DSN string
}

// ParseStoreURL はSTORE_URLを解釈する。
// 対応するスキームは sqlite://<path>、postgres://...（postgresql://も可）、memory:// の3種類。
func ParseStoreURL(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		if path == "" {
			return Target{}, fmt.Errorf("sqlite store url has empty path: %q", raw)
		}
		return Target{Dialect: DialectSQLite, URL: raw, DSN: path}, nil
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return Target{Dialect: DialectPostgres, URL: raw, DSN: raw}, nil
	case strings.HasPrefix(raw, "memory://"):
		return Target{Dialect: DialectMemory, URL: raw}, nil
	default:
		return Target{}, fmt.Errorf("unsupported store url scheme: %q", raw)
	}
}

// Open はTargetに対応するデータベース接続を開く。
// SQLiteの場合は親ディレクトリを作成し、WALモードで開く。
// sql.Openは接続を試行しないため、実際の接続確認にはdb.Ping()を使用すること。
func Open(target Target) (*sql.DB, error) {
	switch target.Dialect {
	case DialectSQLite:
		if dir := filepath.Dir(target.DSN); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		sep := "?"
		if strings.Contains(target.DSN, "?") {
			sep = "&"
		}
		db, err := sql.Open("sqlite", target.DSN+sep+"_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// SQLiteは書き込みが直列化されるため接続を1本に絞る。
		db.SetMaxOpenConns(1)
		return db, nil
	case DialectPostgres:
		db, err := sql.Open("postgres", target.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("dialect %q has no sql database", target.Dialect)
	}
}
