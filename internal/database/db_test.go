package database

import (
	"path/filepath"
	"testing"
)

func TestParseStoreURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		dialect Dialect
		dsn     string
		wantErr bool
	}{
		{name: "sqlite相対パス", raw: "sqlite://./data/travelboard.db", dialect: DialectSQLite, dsn: "./data/travelboard.db"},
		{name: "sqlite絶対パス", raw: "sqlite:///var/lib/tb.db", dialect: DialectSQLite, dsn: "/var/lib/tb.db"},
		{name: "postgres", raw: "postgres://u:p@localhost:5432/tb?sslmode=disable", dialect: DialectPostgres, dsn: "postgres://u:p@localhost:5432/tb?sslmode=disable"},
		{name: "postgresql", raw: "postgresql://localhost/tb", dialect: DialectPostgres, dsn: "postgresql://localhost/tb"},
		{name: "memory", raw: "memory://", dialect: DialectMemory},
		{name: "前後の空白", raw: "  memory://  ", dialect: DialectMemory},
		{name: "sqliteパスなし", raw: "sqlite://", wantErr: true},
		{name: "未対応スキーム", raw: "mysql://localhost/tb", wantErr: true},
		{name: "空文字", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStoreURL(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseStoreURL(%q) はエラーを返すべき", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStoreURL(%q) returned error: %v", tt.raw, err)
			}
			if got.Dialect != tt.dialect {
				t.Errorf("Dialect = %q, want %q", got.Dialect, tt.dialect)
			}
			if got.DSN != tt.dsn {
				t.Errorf("DSN = %q, want %q", got.DSN, tt.dsn)
			}
		})
	}
}

func TestOpen_SQLiteCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "tb.db")
	target, err := ParseStoreURL("sqlite://" + path)
	if err != nil {
		t.Fatalf("ParseStoreURL returned error: %v", err)
	}

	db, err := Open(target)
	if err != nil {
		t.Fatalf("Open returned unexpected error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
}

// TestOpen_PostgresReturnsDBForAnyURL はsql.Openは接続を試行しないため、
// 到達できないURLでもDBオブジェクトが返ることを検証する。
func TestOpen_PostgresReturnsDBForAnyURL(t *testing.T) {
	db, err := Open(Target{Dialect: DialectPostgres, DSN: "postgres://invalid"})
	if err != nil {
		t.Fatalf("Open returned unexpected error: %v", err)
	}
	if db == nil {
		t.Fatal("expected non-nil db")
	}
	defer db.Close()
}

func TestOpen_MemoryHasNoSQLDatabase(t *testing.T) {
	if _, err := Open(Target{Dialect: DialectMemory}); err == nil {
		t.Fatal("memoryストアはsql.DBを開けないはず")
	}
}
