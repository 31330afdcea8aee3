package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService は外部から受け取ったテキストからマークアップを除去する。
type TextSanitizerService interface {
	// Clean はHTMLタグを全て取り除き、エンティティを復元したプレーンテキストを返す。
	Clean(raw string) string
}

// textSanitizer はbluemondayのStrictPolicyを使うTextSanitizerServiceの実装。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean は翻訳結果など表示用テキストを無害化する。
// StrictPolicyはタグを除去した上で特殊文字をエスケープするため、
// プレーンテキストとして扱えるよう最後にアンエスケープする。
func (s *textSanitizer) Clean(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}
