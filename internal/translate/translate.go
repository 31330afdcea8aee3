// Package translate は外部翻訳サービスを使った韓国語と繁体字中国語の翻訳を提供する。
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hitoshi/travelboard/internal/metrics"
	"github.com/hitoshi/travelboard/internal/model"
	"github.com/hitoshi/travelboard/internal/security"
)

// Lang は翻訳で扱う言語コード。
type Lang string

const (
	LangKorean             Lang = "ko"
	LangTraditionalChinese Lang = "zh-TW"
)

const (
	// DefaultSource は言語未指定時の翻訳元。
	DefaultSource = LangKorean
	// DefaultTarget は言語未指定時の翻訳先。
	DefaultTarget = LangTraditionalChinese

	// maxResponseBytes は翻訳レスポンスとして読み込む最大サイズ。
	maxResponseBytes = 1 << 20
)

// 上流呼び出し失敗時のメッセージ。
const (
	msgUpstream = "번역 서버에 연결하지 못했습니다."
	msgParse    = "번역 결과를 해석하지 못했습니다."
	msgNetwork  = "번역 요청 중 네트워크 오류가 발생했습니다."
)

// Request は翻訳リクエストの入力。
type Request struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// Prepared は検証済みの翻訳リクエスト。
type Prepared struct {
	Text   string
	Source Lang
	Target Lang
}

// NormalizeLang は言語コードを正規化する。未知の値や空文字列はfalseを返す。
func NormalizeLang(raw string) (Lang, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ko":
		return LangKorean, true
	case "zh-tw":
		return LangTraditionalChinese, true
	default:
		return "", false
	}
}

// Prepare はリクエストを検証し、ネットワーク呼び出し前に拒否すべき入力をエラーにする。
// テキストはトリムされ、言語は未指定または未知の場合に既定値で補われる。
func Prepare(req Request) (Prepared, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Prepared{}, model.NewEmptyTextError()
	}
	if utf8.RuneCountInString(text) > model.MaxTranslateLength {
		return Prepared{}, model.NewTextTooLongError()
	}

	source, ok := NormalizeLang(req.Source)
	if !ok {
		source = DefaultSource
	}
	target, ok := NormalizeLang(req.Target)
	if !ok {
		target = DefaultTarget
	}
	if !isSupportedPair(source, target) {
		return Prepared{}, model.NewUnsupportedPairError()
	}

	return Prepared{Text: text, Source: source, Target: target}, nil
}

func isSupportedPair(source, target Lang) bool {
	return (source == LangKorean && target == LangTraditionalChinese) ||
		(source == LangTraditionalChinese && target == LangKorean)
}

// Client は外部翻訳サービスのクライアント。
type Client struct {
	httpClient *http.Client
	endpoint   string
	sanitizer  security.TextSanitizerService
	metrics    metrics.MetricsCollector
	logger     *slog.Logger
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(
	httpClient *http.Client,
	endpoint string,
	sanitizer security.TextSanitizerService,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Client {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		sanitizer:  sanitizer,
		metrics:    collector,
		logger:     logger,
	}
}

// Translate は検証済みリクエストを翻訳サービスへ送り、結果を返す。
// 失敗は*model.APIError（NETWORK_ERROR / UPSTREAM_ERROR / PARSE_ERROR）で返す。
func (c *Client) Translate(ctx context.Context, p Prepared) (*model.Translation, error) {
	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("翻訳エンドポイントURLのパースに失敗しました: %w", err)
	}
	q := reqURL.Query()
	q.Set("client", "gtx")
	q.Set("sl", string(p.Source))
	q.Set("tl", string(p.Target))
	q.Set("dt", "t")
	q.Set("q", p.Text)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordUpstreamLatency("translate", time.Since(start))
	if err != nil {
		c.logger.Error("翻訳サービスの呼び出しに失敗しました",
			slog.String("target", reqURL.Host),
			slog.String("error", err.Error()),
		)
		c.metrics.RecordTranslation(metrics.OutcomeNetworkError)
		return nil, model.NewNetworkError(msgNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("翻訳サービスがエラーステータスを返しました",
			slog.String("target", reqURL.Host),
			slog.Int("http_status", resp.StatusCode),
		)
		c.metrics.RecordTranslation(metrics.OutcomeUpstreamError)
		return nil, model.NewUpstreamError(msgUpstream)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Error("翻訳レスポンスの読み取りに失敗しました",
			slog.String("error", err.Error()),
		)
		c.metrics.RecordTranslation(metrics.OutcomeNetworkError)
		return nil, model.NewNetworkError(msgNetwork)
	}

	translated, err := ParseTranslatedText(body)
	if err == nil && c.sanitizer != nil {
		translated = c.sanitizer.Clean(translated)
		if translated == "" {
			err = errEmptyTranslation
		}
	}
	if err != nil {
		c.logger.Warn("翻訳レスポンスを解釈できませんでした",
			slog.String("error", err.Error()),
		)
		c.metrics.RecordTranslation(metrics.OutcomeParseError)
		return nil, model.NewParseError(msgParse)
	}

	c.metrics.RecordTranslation(metrics.OutcomeOK)
	return &model.Translation{
		SourceText:     p.Text,
		TranslatedText: translated,
		SourceLang:     string(p.Source),
		TargetLang:     string(p.Target),
	}, nil
}

var (
	errNotNested        = errors.New("payload is not an array of arrays")
	errEmptyTranslation = errors.New("translated text is empty")
)

// ParseTranslatedText は翻訳サービスの入れ子配列レスポンスを平坦な文字列にする。
// 先頭要素の各セグメントから最初の文字列要素を連結し、前後の空白を除去する。
// 形が合わない場合や結果が空の場合はエラーを返す。
func ParseTranslatedText(payload []byte) (string, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil {
		return "", fmt.Errorf("%w: %v", errNotNested, err)
	}
	if len(top) == 0 {
		return "", errNotNested
	}
	var segments []json.RawMessage
	if err := json.Unmarshal(top[0], &segments); err != nil {
		return "", fmt.Errorf("%w: %v", errNotNested, err)
	}

	var b strings.Builder
	for _, raw := range segments {
		var segment []json.RawMessage
		if err := json.Unmarshal(raw, &segment); err != nil || len(segment) == 0 {
			continue
		}
		var piece string
		if err := json.Unmarshal(segment[0], &piece); err != nil {
			continue
		}
		b.WriteString(piece)
	}

	translated := strings.TrimSpace(b.String())
	if translated == "" {
		return "", errEmptyTranslation
	}
	return translated, nil
}
