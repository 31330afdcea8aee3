// Package viewstate はダッシュボード各画面（ホーム・会話・翻訳・スポット）の表示状態を管理する。
//
// 各画面は取得のたびに要求番号を発行し、最後に発行した要求の結果だけを反映する。
// 追い越された要求の結果は反映しないが、成功した内容はキャッシュに保存する。
// 取得に失敗した場合は同じキーのキャッシュを「オフライン表示」として使う。
package viewstate

import (
	"context"
	"sync"

	"github.com/hitoshi/travelboard/internal/gateway"
	"github.com/hitoshi/travelboard/internal/kvstore"
	"github.com/hitoshi/travelboard/internal/model"
)

// Cache は画面状態が使うキャッシュ。*kvstore.Storeが実装する。
type Cache interface {
	Load(ctx context.Context, key kvstore.Key, v any) bool
	Save(ctx context.Context, key kvstore.Key, v any)
}

var _ Cache = (*kvstore.Store)(nil)

// Snapshot は画面に表示する値と、その状態。
type Snapshot[T any] struct {
	Data T
	// Stale はキャッシュから表示していることを示す。
	Stale bool
	// Message はUIに表示するエラーまたはオフライン表示のメッセージ。
	Message string
}

// surface は1つの画面の要求番号を管理する。
type surface struct {
	mu     sync.Mutex
	latest uint64
}

// issueLocked は新しい要求番号を発行する。呼び出し側がmuを保持していること。
func (s *surface) issueLocked() uint64 {
	s.latest++
	return s.latest
}

// isLatestLocked はtokenが最新の要求番号かを返す。呼び出し側がmuを保持していること。
func (s *surface) isLatestLocked(token uint64) bool {
	return token == s.latest
}

// outcome は取得とキャッシュフォールバックの結果。
type outcome[T any] struct {
	data  T
	stale bool
	err   *model.APIError
}

// fetchWithFallback は取得を行い、成功時はキャッシュに保存する。
// 失敗時は同じキーのキャッシュがあればそれをstaleとして返す。
func fetchWithFallback[T any](
	ctx context.Context,
	cache Cache,
	key kvstore.Key,
	fetch func(context.Context) gateway.Result[T],
	usable func(T) bool,
	defaultMessage string,
) outcome[T] {
	res := fetch(ctx)
	if res.Success {
		cache.Save(ctx, key, res.Data)
		return outcome[T]{data: res.Data}
	}

	var cached T
	if cache.Load(ctx, key, &cached) && (usable == nil || usable(cached)) {
		return outcome[T]{data: cached, stale: true}
	}

	message := res.Message
	if message == "" {
		message = defaultMessage
	}
	code := res.Code
	if code == "" {
		code = model.ErrCodeNetwork
	}
	var zero T
	return outcome[T]{data: zero, err: &model.APIError{Code: code, Message: message, Category: "gateway"}}
}
