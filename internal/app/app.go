// Package app はコマンドラインのエントリーポイントと依存関係の組み立てを提供する。
package app

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hitoshi/travelboard/internal/config"
	"github.com/hitoshi/travelboard/internal/logger"
)

// Init は環境変数からConfigを読み込み、構造化ログをセットアップする。
// ログはwに出力する。
func Init(w io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l := logger.SetupDefault(w, logger.Options{
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
	})
	return cfg, l, nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskStoreURL はログ用にストアURLのパスワードを伏せる。
// 解釈できないURLは全体を伏せる。
func maskStoreURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return "***"
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
