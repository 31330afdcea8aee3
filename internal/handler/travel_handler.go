package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/travelboard/internal/middleware"
	"github.com/hitoshi/travelboard/internal/model"
	"github.com/hitoshi/travelboard/internal/proxy"
	"github.com/hitoshi/travelboard/internal/translate"
)

// maxTranslateBodyBytes は翻訳リクエストボディとして読み込む最大サイズ。
const maxTranslateBodyBytes = 64 << 10

// Forwarder はバックエンドAPIへの転送を行うインターフェース。
type Forwarder interface {
	Get(ctx context.Context, route, path, rawQuery string) proxy.Response
}

// Translator は検証済みの翻訳リクエストを処理するインターフェース。
type Translator interface {
	Translate(ctx context.Context, p translate.Prepared) (*model.Translation, error)
}

// TravelHandler は旅行ダッシュボード向けAPIのHTTPハンドラー。
type TravelHandler struct {
	forwarder  Forwarder
	translator Translator
	logger     *slog.Logger
}

// NewTravelHandler はTravelHandlerを生成する。
func NewTravelHandler(forwarder Forwarder, translator Translator, logger *slog.Logger) *TravelHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TravelHandler{
		forwarder:  forwarder,
		translator: translator,
		logger:     logger,
	}
}

// Weather は現在の天気を転送する。
// GET /api/travel/weather
func (h *TravelHandler) Weather(w http.ResponseWriter, r *http.Request) {
	h.forwarder.Get(r.Context(), "weather", "/api/weather", "").Render(w)
}

// Forecast は天気予報を転送する。
// GET /api/travel/weather/forecast
func (h *TravelHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	h.forwarder.Get(r.Context(), "forecast", "/api/weather/forecast", "").Render(w)
}

// ExchangeRates は為替レートを転送する。
// GET /api/travel/exchange-rates
func (h *TravelHandler) ExchangeRates(w http.ResponseWriter, r *http.Request) {
	h.forwarder.Get(r.Context(), "exchange-rates", "/api/exchange-rates", "").Render(w)
}

// Phrases はカテゴリ別フレーズを転送する。
// GET /api/travel/phrases/{category}
func (h *TravelHandler) Phrases(w http.ResponseWriter, r *http.Request) {
	category := url.PathEscape(chi.URLParam(r, "category"))
	h.forwarder.Get(r.Context(), "phrases", "/api/phrases/"+category, "").Render(w)
}

// Spots はスポット一覧を転送する。クエリはそのまま引き継ぐ。
// GET /api/travel/spots
func (h *TravelHandler) Spots(w http.ResponseWriter, r *http.Request) {
	h.forwarder.Get(r.Context(), "spots", "/api/spots", r.URL.RawQuery).Render(w)
}

// SpotDetail はスポット詳細を転送する。クエリはそのまま引き継ぐ。
// GET /api/travel/spots/{id}
func (h *TravelHandler) SpotDetail(w http.ResponseWriter, r *http.Request) {
	id := url.PathEscape(chi.URLParam(r, "id"))
	h.forwarder.Get(r.Context(), "spot-detail", "/api/spots/"+id, r.URL.RawQuery).Render(w)
}

// translateResponse は翻訳成功時のレスポンス。
type translateResponse struct {
	Success bool               `json:"success"`
	Data    *model.Translation `json:"data"`
}

// Translate は翻訳リクエストを処理する。
// POST /api/travel/translate
func (h *TravelHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translate.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxTranslateBodyBytes)).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	prepared, err := translate.Prepare(req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	result, err := h.translator.Translate(r.Context(), prepared)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, translateResponse{Success: true, Data: result})
}

// Health はヘルスチェックに応答する。
// GET /health
func (h *TravelHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleServiceError はサービス層のエラーを適切なHTTPレスポンスに変換する。
func (h *TravelHandler) handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, middleware.StatusForError(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	h.logger.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
