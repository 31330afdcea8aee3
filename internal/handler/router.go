package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/travelboard/internal/metrics"
	"github.com/hitoshi/travelboard/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 旅行API
	Forwarder  Forwarder
	Translator Translator

	// メトリクス。nilの場合は/metricsを公開しない。
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → CORS → RateLimit(General)
//
// CORSはプリフライトをルート解決前に処理するためルーター全体に適用する。
// 翻訳ルートには翻訳専用のレート制限を追加する。
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	h := NewTravelHandler(deps.Forwarder, deps.Translator, logger)

	r.Get("/health", h.Health)
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/travel", func(r chi.Router) {
			r.Get("/weather", h.Weather)
			r.Get("/weather/forecast", h.Forecast)
			r.Get("/exchange-rates", h.ExchangeRates)
			r.Get("/phrases/{category}", h.Phrases)

			r.Route("/spots", func(r chi.Router) {
				r.Get("/", h.Spots)
				r.Get("/{id}", h.SpotDetail)
			})

			// POST /api/travel/translate - 翻訳（翻訳専用レート制限を追加）
			r.With(deps.RateLimiter.TranslateMiddleware()).Post("/translate", h.Translate)
		})
	})

	return r
}
