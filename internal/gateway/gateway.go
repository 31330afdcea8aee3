// Package gateway はダッシュボードからプロキシAPI(/api/travel)を呼び出すクライアント。
//
// すべての読み込み操作は失敗をエラーとして返さず、Success=falseのResultとして返す。
// 呼び出し側はキャッシュへのフォールバックを判断する。
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/travelboard/internal/model"
	"github.com/hitoshi/travelboard/internal/translate"
)

const (
	// basePath はプロキシAPIの共通パス。
	basePath = "/api/travel"
	// maxResponseBytes はレスポンスボディの最大読み込みサイズ。
	maxResponseBytes = 5 << 20
	// DefaultRadius は半径未指定時の検索半径（メートル）。
	DefaultRadius = "5000"
)

// ユーザー向けの既定メッセージ。
const (
	MsgNetwork        = "서버에 연결하지 못했습니다."
	MsgParse          = "응답 파싱에 실패했습니다."
	MsgRequestFailed  = "요청에 실패했습니다."
	MsgHomeFailed     = "정보를 불러오지 못했습니다."
	MsgTranslateFault = "번역 요청에 실패했습니다."
)

// Result はゲートウェイ操作の結果。
// Successがtrueの場合のみDataが有効。falseの場合はMessageとCodeが設定される。
type Result[T any] struct {
	Success bool
	Data    T
	Message string
	Code    string
}

// Err は失敗結果をAPIErrorとして返す。成功時はnil。
func (r Result[T]) Err() error {
	if r.Success {
		return nil
	}
	return &model.APIError{Code: r.Code, Message: r.Message, Category: "gateway"}
}

func ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func fail[T any](code, message string) Result[T] {
	return Result[T]{Code: code, Message: message}
}

// failFrom はerrをResultの失敗に変換する。APIError以外はネットワークエラーとして扱う。
func failFrom[T any](err error) Result[T] {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return fail[T](apiErr.Code, apiErr.Message)
	}
	return fail[T](model.ErrCodeNetwork, MsgNetwork)
}

// SpotParams はスポット一覧の検索条件。
// Lat/LngはHasLocationがtrueの場合のみ送信する。
type SpotParams struct {
	Type        string
	Radius      string
	OpenNow     bool
	MinRating   string
	Lat, Lng    float64
	HasLocation bool
}

// Query はプロキシに渡すクエリ文字列を組み立てる。
func (p SpotParams) Query() url.Values {
	radius := strings.TrimSpace(p.Radius)
	if radius == "" {
		radius = DefaultRadius
	}
	q := url.Values{}
	q.Set("type", p.Type)
	q.Set("radius", radius)
	q.Set("openNow", strconv.FormatBool(p.OpenNow))
	if p.HasLocation {
		q.Set("lat", strconv.FormatFloat(p.Lat, 'f', -1, 64))
		q.Set("lng", strconv.FormatFloat(p.Lng, 'f', -1, 64))
	}
	if rating := strings.TrimSpace(p.MinRating); rating != "" {
		q.Set("minRating", rating)
	}
	return q
}

// Client はプロキシAPIのクライアント。
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient はClientを生成する。baseURLはダッシュボードのオリジン（例: http://localhost:3000）。
func NewClient(httpClient *http.Client, baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		logger:     logger,
	}
}

// Weather は現在の天気を取得する。
func (c *Client) Weather(ctx context.Context) Result[model.Weather] {
	return get[model.Weather](ctx, c, "/weather", nil)
}

// Forecast は天気予報を取得する。
func (c *Client) Forecast(ctx context.Context) Result[[]model.ForecastItem] {
	return get[[]model.ForecastItem](ctx, c, "/weather/forecast", nil)
}

// ExchangeRate はKRW→TWDの為替レートを取得する。
func (c *Client) ExchangeRate(ctx context.Context) Result[model.ExchangeRate] {
	return get[model.ExchangeRate](ctx, c, "/exchange-rates", nil)
}

// Phrases はカテゴリ別の会話フレーズを取得する。
func (c *Client) Phrases(ctx context.Context, category string) Result[[]model.Phrase] {
	return get[[]model.Phrase](ctx, c, "/phrases/"+url.PathEscape(category), nil)
}

// Spots は検索条件に合うスポット一覧を取得する。
func (c *Client) Spots(ctx context.Context, params SpotParams) Result[[]model.Spot] {
	return get[[]model.Spot](ctx, c, "/spots", params.Query())
}

// SpotDetail はスポット詳細を取得する。
func (c *Client) SpotDetail(ctx context.Context, spotID, spotType string) Result[model.SpotDetail] {
	q := url.Values{}
	q.Set("type", spotType)
	return get[model.SpotDetail](ctx, c, "/spots/"+url.PathEscape(spotID), q)
}

// LoadHome は天気・天気予報・為替レートを並行して取得する。
// いずれか1つでも失敗した場合は全体を失敗として扱い、部分的な結果は返さない。
func (c *Client) LoadHome(ctx context.Context) Result[model.Home] {
	var home model.Home
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r := c.Weather(gctx)
		home.Weather = r.Data
		return r.Err()
	})
	g.Go(func() error {
		r := c.Forecast(gctx)
		home.Forecast = r.Data
		return r.Err()
	})
	g.Go(func() error {
		r := c.ExchangeRate(gctx)
		home.Exchange = r.Data
		return r.Err()
	})

	if err := g.Wait(); err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return fail[model.Home](apiErr.Code, apiErr.Message)
		}
		return fail[model.Home](model.ErrCodeNetwork, MsgHomeFailed)
	}
	return ok(home)
}

// Translate は韓国語の文章を繁体字中国語に翻訳する。
// 空文字列や800文字を超える入力はリクエストを送らずに失敗を返す。
func (c *Client) Translate(ctx context.Context, text string) Result[model.Translation] {
	prepared, err := translate.Prepare(translate.Request{Text: text})
	if err != nil {
		return failFrom[model.Translation](err)
	}

	payload, err := json.Marshal(translate.Request{
		Text:   prepared.Text,
		Source: string(prepared.Source),
		Target: string(prepared.Target),
	})
	if err != nil {
		return fail[model.Translation](model.ErrCodeInternal, MsgTranslateFault)
	}

	r := c.do(ctx, http.MethodPost, "/translate", nil, bytes.NewReader(payload))
	res := decodeResult[model.Translation](r)
	if !res.Success && res.Message == MsgRequestFailed {
		res.Message = MsgTranslateFault
	}
	return res
}

// rawResult はエンベロープのデコード前の中間結果。
type rawResult struct {
	err  *model.APIError
	data json.RawMessage
}

// get はGETリクエストを送り、エンベロープのdataをTにデコードする。
func get[T any](ctx context.Context, c *Client, path string, query url.Values) Result[T] {
	return decodeResult[T](c.do(ctx, http.MethodGet, path, query, nil))
}

func decodeResult[T any](r rawResult) Result[T] {
	if r.err != nil {
		return fail[T](r.err.Code, r.err.Message)
	}
	var data T
	if len(r.data) > 0 {
		if err := json.Unmarshal(r.data, &data); err != nil {
			return fail[T](model.ErrCodeParse, MsgParse)
		}
	}
	return ok(data)
}

// do はリクエストを送り、エンベロープを検証する。
// 通信失敗はNETWORK_ERROR、JSONでない応答はPARSE_ERROR、
// 非2xxまたはsuccess=falseはUPSTREAM_ERROR（エンベロープにcodeがあればそれを優先）。
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader) rawResult {
	target := c.baseURL + basePath + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return rawResult{err: model.NewNetworkError(MsgNetwork)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("gateway request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return rawResult{err: model.NewNetworkError(MsgNetwork)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return rawResult{err: model.NewNetworkError(MsgNetwork)}
	}

	var env model.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Warn("gateway response is not json",
			slog.String("path", path),
			slog.Int("http_status", resp.StatusCode),
		)
		return rawResult{err: model.NewParseError(MsgParse)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		message := env.Message
		if message == "" {
			message = MsgRequestFailed
		}
		apiErr := model.NewUpstreamError(message)
		if env.Code != "" {
			apiErr.Code = env.Code
		}
		c.logger.Warn("gateway request rejected",
			slog.String("path", path),
			slog.Int("http_status", resp.StatusCode),
			slog.String("code", apiErr.Code),
		)
		return rawResult{err: apiErr}
	}

	return rawResult{data: env.Data}
}
