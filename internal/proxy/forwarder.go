// Package proxy はバックエンドAPIへの読み取りリクエストを転送し、
// レスポンスを統一エンベロープ {success, data|message} に正規化する。
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/travelboard/internal/metrics"
	"github.com/hitoshi/travelboard/internal/model"
)

// maxResponseBytes はバックエンドレスポンスとして読み込む最大サイズ。
const maxResponseBytes = 5 << 20

// 転送失敗時のメッセージ。
const (
	MsgUnreachable = "백엔드 서버에 연결할 수 없습니다. BACKEND_API_BASE_URL과 서버 상태를 확인해주세요."
	MsgNotJSON     = "백엔드 응답을 JSON으로 파싱할 수 없습니다."
	msgFailedFmt   = "백엔드 요청에 실패했습니다. (HTTP %d)"
)

// Response は正規化済みのレスポンス。BodyはJSONエンベロープ。
type Response struct {
	Status int
	Body   []byte
}

// Forwarder はバックエンドAPIへのGETリクエストを転送する。
type Forwarder struct {
	httpClient *http.Client
	baseURL    string
	metrics    metrics.MetricsCollector
	logger     *slog.Logger
}

// NewForwarder はForwarderの新しいインスタンスを生成する。
// baseURLの末尾スラッシュは除去される。
func NewForwarder(httpClient *http.Client, baseURL string, collector metrics.MetricsCollector, logger *slog.Logger) *Forwarder {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Forwarder{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		metrics:    collector,
		logger:     logger,
	}
}

// Target はパスとクエリから転送先URLを組み立てる。
// パスは先頭にスラッシュを補い、クエリは空でない場合のみ付与する。
func (f *Forwarder) Target(path, rawQuery string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := f.baseURL + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}

// Get はバックエンドへGETリクエストを転送する。
// routeはメトリクスとログ用のルート名。エラーは返さず、失敗もエンベロープで表す。
func (f *Forwarder) Get(ctx context.Context, route, path, rawQuery string) Response {
	target := f.Target(path, rawQuery)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		f.logger.Error("転送リクエストの作成に失敗しました",
			slog.String("route", route),
			slog.String("target", target),
			slog.String("error", err.Error()),
		)
		f.metrics.RecordUpstreamRequest(route, metrics.OutcomeNetworkError)
		return failure(http.StatusBadGateway, MsgUnreachable, model.ErrCodeNetwork)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	f.metrics.RecordUpstreamLatency(route, time.Since(start))
	if err != nil {
		f.logger.Error("バックエンドに接続できませんでした",
			slog.String("route", route),
			slog.String("target", target),
			slog.String("error", err.Error()),
		)
		f.metrics.RecordUpstreamRequest(route, metrics.OutcomeNetworkError)
		return failure(http.StatusBadGateway, MsgUnreachable, model.ErrCodeNetwork)
	}
	defer resp.Body.Close()
	f.metrics.RecordHTTPStatus(resp.StatusCode)

	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		f.logger.Warn("バックエンドがJSON以外のレスポンスを返しました",
			slog.String("route", route),
			slog.String("target", target),
			slog.Int("http_status", resp.StatusCode),
			slog.String("content_type", resp.Header.Get("Content-Type")),
		)
		f.metrics.RecordUpstreamRequest(route, metrics.OutcomeParseError)
		return failure(http.StatusBadGateway, MsgNotJSON, model.ErrCodeParse)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		f.logger.Error("バックエンドレスポンスの読み取りに失敗しました",
			slog.String("route", route),
			slog.String("error", err.Error()),
		)
		f.metrics.RecordUpstreamRequest(route, metrics.OutcomeNetworkError)
		return failure(http.StatusBadGateway, MsgUnreachable, model.ErrCodeNetwork)
	}

	normalized, err := normalize(resp.StatusCode, body)
	if err != nil {
		f.logger.Warn("バックエンドのJSONを解釈できませんでした",
			slog.String("route", route),
			slog.String("target", target),
			slog.String("error", err.Error()),
		)
		f.metrics.RecordUpstreamRequest(route, metrics.OutcomeParseError)
		return failure(http.StatusBadGateway, MsgNotJSON, model.ErrCodeParse)
	}

	outcome := metrics.OutcomeOK
	if !isSuccessStatus(resp.StatusCode) {
		outcome = metrics.OutcomeUpstreamError
		f.logger.Warn("バックエンドがエラーステータスを返しました",
			slog.String("route", route),
			slog.String("target", target),
			slog.Int("http_status", resp.StatusCode),
		)
	}
	f.metrics.RecordUpstreamRequest(route, outcome)

	return Response{Status: resp.StatusCode, Body: normalized}
}

// normalize はバックエンドのJSONをエンベロープ形式にそろえる。
// すでにsuccessフィールドを持つオブジェクトはそのまま通す。
func normalize(status int, body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("invalid JSON body (%d bytes)", len(body))
	}

	var probe struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &probe); err == nil && probe.Success != nil {
		return trimmed, nil
	}

	env := model.Envelope{Success: isSuccessStatus(status)}
	if env.Success {
		env.Data = json.RawMessage(trimmed)
	} else {
		env.Message = probe.Message
		if env.Message == "" {
			env.Message = fmt.Sprintf(msgFailedFmt, status)
		}
		env.Code = model.ErrCodeUpstream
	}
	return json.Marshal(env)
}

func failure(status int, message, code string) Response {
	body, _ := json.Marshal(model.Envelope{Success: false, Message: message, Code: code})
	return Response{Status: status, Body: body}
}

func isSuccessStatus(status int) bool {
	return status >= 200 && status <= 299
}

// Render はレスポンスをhttp.ResponseWriterへ書き出す。
func (r Response) Render(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(r.Status)
	w.Write(r.Body)
}
