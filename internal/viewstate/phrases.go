package viewstate

import (
	"context"
	"slices"

	"github.com/hitoshi/travelboard/internal/gateway"
	"github.com/hitoshi/travelboard/internal/kvstore"
	"github.com/hitoshi/travelboard/internal/model"
)

// 会話画面のメッセージ。
const (
	MsgPhrasesStale       = "오프라인 캐시 회화를 표시합니다."
	MsgPhrasesFailed      = "회화 목록을 불러오지 못했습니다."
	msgUnknownCategory    = "지원하지 않는 회화 카테고리입니다."
	DefaultPhraseCategory = "airport"
)

// PhraseCategory は会話フレーズのカテゴリ。
type PhraseCategory struct {
	Value string
	Label string
}

// PhraseCategories は選択可能なカテゴリの一覧（表示順）。
var PhraseCategories = []PhraseCategory{
	{Value: "airport", Label: "✈️ 공항"},
	{Value: "transport", Label: "🚇 교통"},
	{Value: "hotel", Label: "🏨 숙소"},
	{Value: "restaurant", Label: "🍜 음식점"},
	{Value: "shopping", Label: "🛍 쇼핑"},
	{Value: "emergency", Label: "🚨 긴급"},
}

// IsPhraseCategory はカテゴリが選択可能かを返す。
func IsPhraseCategory(category string) bool {
	return slices.ContainsFunc(PhraseCategories, func(c PhraseCategory) bool {
		return c.Value == category
	})
}

// PhraseGateway は会話画面が使うゲートウェイ操作。
type PhraseGateway interface {
	Phrases(ctx context.Context, category string) gateway.Result[[]model.Phrase]
}

// PhraseBoard は会話画面の状態。選択中のカテゴリとフレーズ一覧を持つ。
type PhraseBoard struct {
	gateway PhraseGateway
	cache   Cache

	surface  surface
	category string
	phrases  Snapshot[[]model.Phrase]
}

// NewPhraseBoard はPhraseBoardを生成する。
func NewPhraseBoard(gw PhraseGateway, cache Cache) *PhraseBoard {
	return &PhraseBoard{
		gateway:  gw,
		cache:    cache,
		category: DefaultPhraseCategory,
	}
}

// Category は選択中のカテゴリを返す。
func (b *PhraseBoard) Category() string {
	b.surface.mu.Lock()
	defer b.surface.mu.Unlock()
	return b.category
}

// Phrases は表示中のフレーズ一覧を返す。
func (b *PhraseBoard) Phrases() Snapshot[[]model.Phrase] {
	b.surface.mu.Lock()
	defer b.surface.mu.Unlock()
	return b.phrases
}

// Refresh は選択中のカテゴリを再取得する。
func (b *PhraseBoard) Refresh(ctx context.Context) error {
	return b.SelectCategory(ctx, b.Category())
}

// SelectCategory はカテゴリを切り替えてフレーズを取得する。
// 失敗時はキャッシュを使い、キャッシュもなければ空の一覧を表示してエラーを返す。
func (b *PhraseBoard) SelectCategory(ctx context.Context, category string) error {
	if !IsPhraseCategory(category) {
		return model.NewValidationError(msgUnknownCategory)
	}

	b.surface.mu.Lock()
	token := b.surface.issueLocked()
	b.category = category
	b.surface.mu.Unlock()

	out := fetchWithFallback(ctx, b.cache, kvstore.PhrasesKey(category),
		func(ctx context.Context) gateway.Result[[]model.Phrase] { return b.gateway.Phrases(ctx, category) },
		nil, MsgPhrasesFailed)

	b.surface.mu.Lock()
	defer b.surface.mu.Unlock()
	if !b.surface.isLatestLocked(token) {
		return model.NewSupersededError()
	}

	switch {
	case out.err != nil:
		b.phrases = Snapshot[[]model.Phrase]{Data: []model.Phrase{}, Message: out.err.Message}
		return out.err
	case out.stale:
		b.phrases = Snapshot[[]model.Phrase]{Data: out.data, Stale: true, Message: MsgPhrasesStale}
	default:
		b.phrases = Snapshot[[]model.Phrase]{Data: out.data}
	}
	return nil
}
