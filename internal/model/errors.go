// Package model はドメインモデルとエラー分類を定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // ユーザー向けメッセージ
	Category string // カテゴリ: validation, capacity, network, upstream, parse, storage, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeCapacity         = "CAPACITY_ERROR"
	ErrCodeNetwork          = "NETWORK_ERROR"
	ErrCodeUpstream         = "UPSTREAM_ERROR"
	ErrCodeParse            = "PARSE_ERROR"
	ErrCodeStorage          = "STORAGE_ERROR"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeTextTooLong      = "TEXT_TOO_LONG"
	ErrCodeUnsupportedPair  = "UNSUPPORTED_LANGUAGE_PAIR"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeSuperseded       = "SUPERSEDED"
	ErrCodeInvalidSpotQuery = "INVALID_SPOT_QUERY"
)

// MaxTranslateLength は1回の翻訳で受け付ける最大文字数。
const MaxTranslateLength = 800

// NewValidationError は入力値エラーを生成する。
// メッセージはそのままUIにインライン表示される。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewCapacityError は家族メンバー数の上限エラーを生成する。
func NewCapacityError(limit int) *APIError {
	return &APIError{
		Code:     ErrCodeCapacity,
		Message:  fmt.Sprintf("가족 구성원은 최대 %d명까지 등록할 수 있습니다.", limit),
		Category: "capacity",
		Action:   "不要なメンバーを削除してから追加してください。",
	}
}

// NewNetworkError は上流サーバーに到達できない場合のエラーを生成する。
func NewNetworkError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeNetwork,
		Message:  message,
		Category: "network",
		Action:   "ネットワーク接続とサーバーの状態を確認してください。",
	}
}

// NewUpstreamError は上流が2xx以外または失敗エンベロープを返した場合のエラーを生成する。
func NewUpstreamError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeUpstream,
		Message:  message,
		Category: "upstream",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewParseError はレスポンスボディがJSONでない、または期待する形でない場合のエラーを生成する。
func NewParseError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeParse,
		Message:  message,
		Category: "parse",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewStorageError はストレージ操作の失敗を表すエラーを生成する。
// kvstore内部でログに記録するためだけに使い、呼び出し元へは伝播させない。
func NewStorageError(op string, err error) *APIError {
	return &APIError{
		Code:     ErrCodeStorage,
		Message:  fmt.Sprintf("storage %s failed: %v", op, err),
		Category: "storage",
		Action:   "",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "요청 본문(JSON)을 파싱하지 못했습니다.",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewEmptyTextError は翻訳対象テキストが空の場合のエラーを生成する。
func NewEmptyTextError() *APIError {
	return NewValidationError("번역할 문장을 입력해주세요.")
}

// NewTextTooLongError は翻訳対象テキストが上限を超えた場合のエラーを生成する。
func NewTextTooLongError() *APIError {
	return &APIError{
		Code:     ErrCodeTextTooLong,
		Message:  fmt.Sprintf("한 번에 %d자 이하로 입력해주세요.", MaxTranslateLength),
		Category: "validation",
		Action:   "文章を分割して翻訳してください。",
	}
}

// NewUnsupportedPairError は対応していない翻訳方向のエラーを生成する。
func NewUnsupportedPairError() *APIError {
	return &APIError{
		Code:     ErrCodeUnsupportedPair,
		Message:  "지원하지 않는 번역 방향입니다. (ko ↔ zh-TW)",
		Category: "validation",
		Action:   "ko と zh-TW の組み合わせを指定してください。",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.",
		Category: "system",
		Action:   "Retry-Afterの秒数だけ待ってから再試行してください。",
	}
}

// NewInternalError は内部エラーの統一エラーを生成する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "서버 오류가 발생했습니다.",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewSupersededError は後続のリクエストに追い越された結果であることを示す。
func NewSupersededError() *APIError {
	return &APIError{
		Code:     ErrCodeSuperseded,
		Message:  "newer request already issued",
		Category: "system",
	}
}

// NewInvalidSpotQueryError はスポット検索条件が範囲外の場合のエラーを生成する。
func NewInvalidSpotQueryError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSpotQuery,
		Message:  fmt.Sprintf("잘못된 요청입니다: %s", reason),
		Category: "validation",
		Action:   "検索条件を確認してください。",
	}
}

// HasCode はerrがAPIErrorであり、指定コードを持つかを返す。
func HasCode(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
