package repository

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hitoshi/travelboard/internal/database"
)

// PostgresKVRepoはKVRepositoryインターフェースを満たすことを検証
func TestPostgresKVRepo_ImplementsInterface(t *testing.T) {
	var _ KVRepository = (*PostgresKVRepo)(nil)
}

// SQLiteKVRepoはKVRepositoryインターフェースを満たすことを検証
func TestSQLiteKVRepo_ImplementsInterface(t *testing.T) {
	var _ KVRepository = (*SQLiteKVRepo)(nil)
}

// MemoryKVRepoはKVRepositoryインターフェースを満たすことを検証
func TestMemoryKVRepo_ImplementsInterface(t *testing.T) {
	var _ KVRepository = (*MemoryKVRepo)(nil)
}

func newSQLiteRepo(t *testing.T) *SQLiteKVRepo {
	t.Helper()
	target, err := database.ParseStoreURL("sqlite://" + filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("ParseStoreURL returned error: %v", err)
	}
	if err := database.RunMigrations(target); err != nil {
		t.Fatalf("マイグレーション実行に失敗: %v", err)
	}
	db, err := database.Open(target)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteKVRepo(db)
}

func newMemoryRepo(t *testing.T) *MemoryKVRepo {
	t.Helper()
	repo, err := NewMemoryKVRepo()
	if err != nil {
		t.Fatalf("NewMemoryKVRepo returned error: %v", err)
	}
	t.Cleanup(repo.Close)
	return repo
}

// newPostgresRepo はTEST_DATABASE_URLのPostgreSQLに接続する。接続できない場合はスキップする。
func newPostgresRepo(t *testing.T) *PostgresKVRepo {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL が未設定のためスキップ")
	}
	target, err := database.ParseStoreURL(dbURL)
	if err != nil {
		t.Fatalf("ParseStoreURL returned error: %v", err)
	}
	db, err := database.Open(target)
	if err != nil {
		t.Fatalf("データベースへの接続に失敗: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Ping(); err != nil {
		t.Skipf("テスト用データベースに接続できません（スキップ）: %v", err)
	}
	if err := database.RunMigrations(target); err != nil {
		t.Fatalf("マイグレーション実行に失敗: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM kv_entries`); err != nil {
		t.Fatalf("クリーンアップに失敗: %v", err)
	}
	return NewPostgresKVRepo(db)
}

// exerciseKVRepo は全実装に共通する振る舞いを検証する。
func exerciseKVRepo(t *testing.T, repo KVRepository) {
	t.Helper()
	ctx := context.Background()

	got, err := repo.Get(ctx, "travelTaipei:missing")
	if err != nil {
		t.Fatalf("存在しないキーのGetでエラー: %v", err)
	}
	if got != nil {
		t.Fatalf("存在しないキーはnilを返すべき: got %q", got)
	}

	if err := repo.Put(ctx, "travelTaipei:familyPlan", []byte(`{"tripDays":"3"}`)); err != nil {
		t.Fatalf("Putに失敗: %v", err)
	}
	got, err = repo.Get(ctx, "travelTaipei:familyPlan")
	if err != nil {
		t.Fatalf("Getに失敗: %v", err)
	}
	if !bytes.Equal(got, []byte(`{"tripDays":"3"}`)) {
		t.Errorf("Get = %q, want %q", got, `{"tripDays":"3"}`)
	}

	// 上書き
	if err := repo.Put(ctx, "travelTaipei:familyPlan", []byte(`{"tripDays":"5"}`)); err != nil {
		t.Fatalf("上書きPutに失敗: %v", err)
	}
	got, err = repo.Get(ctx, "travelTaipei:familyPlan")
	if err != nil {
		t.Fatalf("Getに失敗: %v", err)
	}
	if !bytes.Equal(got, []byte(`{"tripDays":"5"}`)) {
		t.Errorf("上書き後のGet = %q, want %q", got, `{"tripDays":"5"}`)
	}

	if err := repo.Delete(ctx, "travelTaipei:familyPlan"); err != nil {
		t.Fatalf("Deleteに失敗: %v", err)
	}
	got, err = repo.Get(ctx, "travelTaipei:familyPlan")
	if err != nil {
		t.Fatalf("削除後のGetでエラー: %v", err)
	}
	if got != nil {
		t.Errorf("削除後はnilを返すべき: got %q", got)
	}

	if err := repo.Delete(ctx, "travelTaipei:familyPlan"); err != nil {
		t.Errorf("存在しないキーのDeleteは成功すべき: %v", err)
	}
}

func TestSQLiteKVRepo_CRUD(t *testing.T) {
	exerciseKVRepo(t, newSQLiteRepo(t))
}

func TestMemoryKVRepo_CRUD(t *testing.T) {
	exerciseKVRepo(t, newMemoryRepo(t))
}

func TestPostgresKVRepo_CRUD(t *testing.T) {
	exerciseKVRepo(t, newPostgresRepo(t))
}

func TestMemoryKVRepo_GetReturnsCopy(t *testing.T) {
	repo := newMemoryRepo(t)
	ctx := context.Background()

	if err := repo.Put(ctx, "k", []byte("abc")); err != nil {
		t.Fatalf("Putに失敗: %v", err)
	}
	got, _ := repo.Get(ctx, "k")
	got[0] = 'x'

	again, _ := repo.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("Getの戻り値を変更しても保存値は変わらないべき: got %q", again)
	}
}

func TestSQLiteKVRepo_PersistsAcrossConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	target, err := database.ParseStoreURL("sqlite://" + path)
	if err != nil {
		t.Fatalf("ParseStoreURL returned error: %v", err)
	}
	if err := database.RunMigrations(target); err != nil {
		t.Fatalf("マイグレーション実行に失敗: %v", err)
	}

	ctx := context.Background()
	db1, err := database.Open(target)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := NewSQLiteKVRepo(db1).Put(ctx, "k", []byte(`[1,2]`)); err != nil {
		t.Fatalf("Putに失敗: %v", err)
	}
	db1.Close()

	db2, err := database.Open(target)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer db2.Close()

	got, err := NewSQLiteKVRepo(db2).Get(ctx, "k")
	if err != nil {
		t.Fatalf("Getに失敗: %v", err)
	}
	if string(got) != `[1,2]` {
		t.Errorf("再接続後のGet = %q, want %q", got, `[1,2]`)
	}
}
