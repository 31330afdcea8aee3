package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/travelboard/internal/budget"
	"github.com/hitoshi/travelboard/internal/config"
	"github.com/hitoshi/travelboard/internal/database"
	"github.com/hitoshi/travelboard/internal/gateway"
	"github.com/hitoshi/travelboard/internal/kvstore"
	"github.com/hitoshi/travelboard/internal/repository"
	"github.com/hitoshi/travelboard/internal/worker/cleanup"
)

// runMigrate はSTORE_URLのストアにマイグレーションを適用する。
func runMigrate(cfg *config.Config, logger *slog.Logger) error {
	target, err := database.ParseStoreURL(cfg.StoreURL)
	if err != nil {
		return err
	}
	logger.Info("running store migrations",
		slog.String("dialect", string(target.Dialect)),
		slog.String("store_url", maskStoreURL(cfg.StoreURL)),
	)

	if err := database.RunMigrations(target); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("store migrations completed successfully")
	return nil
}

// runPrune は保持期間を過ぎたオフラインキャッシュをSTORE_URLのストアから削除する。
// memoryストアはプロセス終了で消えるため何もしない。
func runPrune(ctx context.Context, cfg *config.Config, logger *slog.Logger, retentionDays int) (int64, error) {
	target, err := database.ParseStoreURL(cfg.StoreURL)
	if err != nil {
		return 0, err
	}
	if target.Dialect == database.DialectMemory {
		return 0, nil
	}

	if err := database.RunMigrations(target); err != nil {
		return 0, fmt.Errorf("migration failed: %w", err)
	}
	db, err := database.Open(target)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	job := cleanup.NewCleanupJob(db, target.Dialect, logger)
	job.RetentionDays = retentionDays
	return job.Run(ctx)
}

// openStore はSTORE_URLに対応するKVストアを開く。
// SQLiteとPostgresは未適用のマイグレーションを先に適用する。
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*kvstore.Store, func(), error) {
	target, err := database.ParseStoreURL(cfg.StoreURL)
	if err != nil {
		return nil, nil, err
	}

	if target.Dialect == database.DialectMemory {
		repo, err := repository.NewMemoryKVRepo()
		if err != nil {
			return nil, nil, err
		}
		return kvstore.New(repo, logger), repo.Close, nil
	}

	if err := database.RunMigrations(target); err != nil {
		return nil, nil, fmt.Errorf("migration failed: %w", err)
	}
	db, err := database.Open(target)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	var repo repository.KVRepository
	if target.Dialect == database.DialectPostgres {
		repo = repository.NewPostgresKVRepo(db)
	} else {
		repo = repository.NewSQLiteKVRepo(db)
	}
	return kvstore.New(repo, logger), func() { db.Close() }, nil
}

// session はダッシュボードコマンドが使うストア・ゲートウェイ・予算の組。
type session struct {
	store   *kvstore.Store
	gateway *gateway.Client
	planner *budget.Planner
	close   func()
}

// openSession はストアを開き、保存済みの予算状態を読み込んだsessionを返す。
func openSession(ctx context.Context, e *env) (*session, error) {
	store, closeFn, err := openStore(ctx, e.cfg, e.logger)
	if err != nil {
		return nil, err
	}
	loc, err := e.cfg.Location()
	if err != nil {
		closeFn()
		return nil, err
	}

	planner := budget.NewPlanner(budget.Config{
		Location:     loc,
		FallbackRate: e.cfg.FallbackExchangeRate,
	})
	planner.Restore(ctx, store)

	return &session{
		store:   store,
		gateway: gateway.NewClient(&http.Client{Timeout: e.cfg.ProxyTimeout}, e.cfg.DashboardAPIBaseURL, e.logger),
		planner: planner,
		close:   closeFn,
	}, nil
}
