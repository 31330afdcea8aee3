// Package cleanup はオフラインキャッシュの整理ジョブを提供する。
// 保持期間（デフォルト30日）を超えて更新されていないキャッシュエントリを削除する。
// 予算状態のキーは削除しない。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/travelboard/internal/database"
	"github.com/hitoshi/travelboard/internal/kvstore"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CleanupJob は古いキャッシュエントリの削除ジョブ。冪等に実行できる。
type CleanupJob struct {
	db            Executor
	dialect       database.Dialect
	logger        *slog.Logger
	now           func() time.Time
	RetentionDays int // キャッシュの保持日数（デフォルト: 30）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// dialectはプレースホルダの形式を決める。
func NewCleanupJob(db Executor, dialect database.Dialect, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		db:            db,
		dialect:       dialect,
		logger:        logger,
		now:           time.Now,
		RetentionDays: 30,
	}
}

// Run はupdated_atが保持期間より古いキャッシュエントリを削除し、削除件数を返す。
// 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) (int64, error) {
	start := time.Now()

	query, args := j.buildQuery()
	result, err := j.db.ExecContext(ctx, query, args...)
	if err != nil {
		j.logger.Error("キャッシュ整理ジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return 0, fmt.Errorf("キャッシュ整理の実行に失敗: %w", err)
	}

	deletedCount, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("削除件数の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("削除件数の取得に失敗: %w", err)
	}

	j.logger.Info("キャッシュ整理ジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return deletedCount, nil
}

func (j *CleanupJob) buildQuery() (string, []any) {
	cutoff := j.now().UTC().AddDate(0, 0, -j.RetentionDays)
	args := []any{cutoff}

	keys := kvstore.BudgetKeys()
	placeholders := make([]string, 0, len(keys))
	for _, k := range keys {
		args = append(args, k.String())
		placeholders = append(placeholders, j.placeholder(len(args)))
	}

	query := fmt.Sprintf(
		`DELETE FROM kv_entries WHERE updated_at < %s AND key NOT IN (%s)`,
		j.placeholder(1), strings.Join(placeholders, ", "),
	)
	return query, args
}

func (j *CleanupJob) placeholder(n int) string {
	if j.dialect == database.DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
