package viewstate

import (
	"context"
	"strings"

	"github.com/hitoshi/travelboard/internal/gateway"
	"github.com/hitoshi/travelboard/internal/kvstore"
	"github.com/hitoshi/travelboard/internal/model"
)

// 翻訳画面のメッセージ。
const (
	MsgTranslationStale  = "오프라인 캐시 번역을 표시 중입니다."
	MsgTranslationFailed = "번역 요청에 실패했습니다."
	MsgTranslationEmpty  = "번역할 한국어 문장을 입력해주세요."
)

// QuickTranslateSamples はワンタップで翻訳できる例文。
var QuickTranslateSamples = []string{
	"안녕하세요. 한국에서 왔어요.",
	"이 근처 추천 음식점이 어디예요?",
	"지하철역까지 어떻게 가나요?",
	"카드 결제 가능한가요?",
}

// TranslateGateway は翻訳画面が使うゲートウェイ操作。
type TranslateGateway interface {
	Translate(ctx context.Context, text string) gateway.Result[model.Translation]
}

// TranslationBoard は翻訳画面の状態。入力文と翻訳結果を持つ。
type TranslationBoard struct {
	gateway TranslateGateway
	cache   Cache

	surface surface
	input   string
	result  Snapshot[string]
}

// NewTranslationBoard はTranslationBoardを生成する。
func NewTranslationBoard(gw TranslateGateway, cache Cache) *TranslationBoard {
	return &TranslationBoard{gateway: gw, cache: cache}
}

// Input は最後に翻訳を要求した入力文を返す。
func (b *TranslationBoard) Input() string {
	b.surface.mu.Lock()
	defer b.surface.mu.Unlock()
	return b.input
}

// Result は表示中の翻訳結果を返す。
func (b *TranslationBoard) Result() Snapshot[string] {
	b.surface.mu.Lock()
	defer b.surface.mu.Unlock()
	return b.result
}

// Translate は入力文を翻訳する。空の入力はゲートウェイを呼ばずに検証エラーを返す。
// 失敗時は同じ入力文のキャッシュを使う。
func (b *TranslationBoard) Translate(ctx context.Context, input string) error {
	text := strings.TrimSpace(input)

	b.surface.mu.Lock()
	token := b.surface.issueLocked()
	b.input = input
	if text == "" {
		b.result = Snapshot[string]{Message: MsgTranslationEmpty}
		b.surface.mu.Unlock()
		return model.NewValidationError(MsgTranslationEmpty)
	}
	b.surface.mu.Unlock()

	out := fetchWithFallback(ctx, b.cache, kvstore.TranslationKey(text),
		func(ctx context.Context) gateway.Result[model.Translation] { return b.gateway.Translate(ctx, text) },
		func(t model.Translation) bool { return t.TranslatedText != "" },
		MsgTranslationFailed)

	b.surface.mu.Lock()
	defer b.surface.mu.Unlock()
	if !b.surface.isLatestLocked(token) {
		return model.NewSupersededError()
	}

	switch {
	case out.err != nil:
		b.result = Snapshot[string]{Message: out.err.Message}
		return out.err
	case out.stale:
		b.result = Snapshot[string]{Data: out.data.TranslatedText, Stale: true, Message: MsgTranslationStale}
	default:
		b.result = Snapshot[string]{Data: out.data.TranslatedText}
	}
	return nil
}
