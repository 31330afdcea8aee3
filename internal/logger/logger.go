package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Options はロガーの出力形式とレベル。
type Options struct {
	// Format は "json"（既定）または "text"。textはtintによる色付きの人間向け出力。
	Format string
	// Level は debug / info / warn / error。未知の値はinfo。
	Level string
	// NoColor はtext形式で色付けを無効にする。
	NoColor bool
}

// Setup は構造化ログ出力のslog.Loggerを生成して返す。
// 既定はJSON出力で、本番環境のログ収集を想定している。
func Setup(w io.Writer, opts Options) *slog.Logger {
	level := ParseLevel(opts.Level)
	if strings.EqualFold(opts.Format, "text") {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    opts.NoColor,
		}))
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// SetupDefault は構造化ログ出力をグローバルロガーとして設定し、そのロガーを返す。
// writerがnilの場合はos.Stdoutに出力する。
func SetupDefault(w io.Writer, opts Options) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	logger := Setup(w, opts)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel はLOG_LEVELの値をslog.Levelに変換する。
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
