// Package cli はダッシュボードの各画面をターミナル向けに描画する。
package cli

import "github.com/charmbracelet/lipgloss"

// テーマカラー。
var (
	ColorBorder  = lipgloss.Color("#3A3A3A")
	ColorTextDim = lipgloss.Color("#6F6E69")
	ColorText    = lipgloss.Color("#F5F5F0")
	ColorAccent  = lipgloss.Color("#2A9D8F")
	ColorGreen   = lipgloss.Color("#879A39")
	ColorOrange  = lipgloss.Color("#DA702C")
	ColorRed     = lipgloss.Color("#D14D41")
	ColorBlue    = lipgloss.Color("#4385BE")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	errorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)
)

// RenderTitle は枠付きのタイトルを描画する。
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(48).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderNotice はオフライン表示やエラーの1行メッセージを描画する。
// staleがtrueなら警告色、falseならエラー色になる。空のメッセージは空文字列。
func RenderNotice(message string, stale bool) string {
	if message == "" {
		return ""
	}
	if stale {
		return "  " + warnStyle.Render("⚠ "+message) + "\n"
	}
	return "  " + errorStyle.Render("✕ "+message) + "\n"
}
