package middleware

import (
	"net/http"
	"slices"
	"strings"
)

// NewCORSMiddleware はCORSミドルウェアを返す。allowedOriginsはカンマ区切りで複数指定できる。
// リクエストのOriginが許可リストにあればそれを返し、Originがなければ先頭のオリジンを返す。
// 許可されないOriginにはAccess-Control-Allow-Originを付けない。"*"はすべてを許可する。
// ダッシュボードは読み取りと翻訳のPOSTのみを使う。OPTIONSプリフライトには204で応答する。
func NewCORSMiddleware(allowedOrigins string) func(next http.Handler) http.Handler {
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	wildcard := slices.Contains(origins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			if allow := allowOrigin(origins, wildcard, r.Header.Get("Origin")); allow != "" {
				h.Set("Access-Control-Allow-Origin", allow)
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Max-Age", "86400")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func allowOrigin(origins []string, wildcard bool, requestOrigin string) string {
	switch {
	case wildcard:
		return "*"
	case len(origins) == 0:
		return ""
	case requestOrigin == "":
		return origins[0]
	case slices.Contains(origins, requestOrigin):
		return requestOrigin
	default:
		return ""
	}
}
