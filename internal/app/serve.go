package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/hitoshi/travelboard/internal/config"
	"github.com/hitoshi/travelboard/internal/handler"
	"github.com/hitoshi/travelboard/internal/metrics"
	"github.com/hitoshi/travelboard/internal/middleware"
	"github.com/hitoshi/travelboard/internal/proxy"
	"github.com/hitoshi/travelboard/internal/security"
	"github.com/hitoshi/travelboard/internal/translate"
)

func newServeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the /api/travel proxy and translation server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, e.cfg, e.logger)
		},
	}
}

// server はHTTPサーバーと、停止時に解放するリソース。
type server struct {
	http        *http.Server
	rateLimiter *middleware.RateLimiter
}

// newServer は全依存関係をワイヤリングしてHTTPサーバーを組み立てる。
func newServer(cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry) *server {
	collector := metrics.NewCollector(reg)

	// 翻訳サービスは公開エンドポイントのためSSRF防止付きクライアントを使う。
	// ローカルのスタブなど検証を通らない宛先は通常のクライアントで接続する。
	translateHTTP, err := security.NewEndpointGuard().ClientFor(cfg.TranslateAPIURL, cfg.TranslateTimeout)
	if err != nil {
		logger.Warn("translate endpoint is not public, SSRF guard disabled",
			slog.String("error", err.Error()),
		)
		translateHTTP = &http.Client{Timeout: cfg.TranslateTimeout}
	}

	forwarder := proxy.NewForwarder(
		&http.Client{Timeout: cfg.ProxyTimeout},
		cfg.BackendAPIBaseURL, collector, logger,
	)
	translator := translate.NewClient(
		translateHTTP, cfg.TranslateAPIURL,
		security.NewTextSanitizer(), collector, logger,
	)

	rl := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitTranslate),
		collector, logger,
	)

	router := handler.NewRouter(&handler.RouterDeps{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rl,
		Logger:            logger,
		Forwarder:         forwarder,
		Translator:        translator,
		Gatherer:          reg,
	})

	return &server{
		http: &http.Server{
			Addr:         ":" + cfg.ServerPort,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		rateLimiter: rl,
	}
}

// runServe はAPIサーバーを起動し、ctxが終了するとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	srv := newServer(cfg, logger, reg)
	defer srv.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server starting",
			slog.String("addr", srv.http.Addr),
			slog.String("backend", cfg.BackendAPIBaseURL),
		)
		if err := srv.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down API server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("API server stopped gracefully")
	return nil
}
