package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hitoshi/travelboard/internal/budget"
	"github.com/hitoshi/travelboard/internal/model"
	"github.com/hitoshi/travelboard/internal/viewstate"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{42000, "42,000"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClampUsage(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{22.2, 22.2},
		{-3, 0},
		{1500, 999},
		{999, 999},
	}
	for _, tt := range tests {
		if got := ClampUsage(tt.in); got != tt.want {
			t.Errorf("ClampUsage(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRenderTable_AlignsWideCharacters(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"이름", "값"},
		Rows: [][]string{
			{"가족", "1"},
			{"abc", "1,500"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("lines = %d, want 6:\n%s", len(lines), out)
	}
	width := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != width {
			t.Errorf("line %d width = %d, want %d: %q", i, w, width, line)
		}
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if out := RenderTable(Table{}); out != "" {
		t.Errorf("空の表は空文字列であるべき: %q", out)
	}
}

func TestRenderHome(t *testing.T) {
	home := &model.Home{
		Weather:  model.Weather{City: "Taipei", Temperature: 28.4, Humidity: 70, Description: "맑음"},
		Forecast: []model.ForecastItem{{Date: "2026-10-18", MinTemp: 22, MaxTemp: 29, Description: "구름"}},
		Exchange: model.ExchangeRate{Currency: "TWD", BaseRate: 42, Date: "2026-10-17"},
	}

	out := RenderHome(viewstate.Snapshot[*model.Home]{Data: home})

	for _, want := range []string{"Taipei", "28.4°C", "2026-10-18", "42.00", "NT$238"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q:\n%s", want, out)
		}
	}
}

func TestRenderHome_Failure(t *testing.T) {
	out := RenderHome(viewstate.Snapshot[*model.Home]{Message: "정보를 불러오지 못했습니다."})

	if !strings.Contains(out, "정보를 불러오지 못했습니다.") {
		t.Errorf("失敗メッセージが表示されるべき:\n%s", out)
	}
}

func TestRenderSpots_ShowsStaleNoticeAndTravelTime(t *testing.T) {
	rating := 4.5
	snap := viewstate.Snapshot[[]model.Spot]{
		Data:    []model.Spot{{ID: "p1", Name: "鼎泰豐", Rating: &rating, DistanceKm: 4.5}},
		Stale:   true,
		Message: viewstate.MsgSpotsStale,
	}

	out := RenderSpots(viewstate.DefaultFilters(), snap)

	for _, want := range []string{viewstate.MsgSpotsStale, "鼎泰豐", "★ 4.5", "4.5km", "60분", "12분", "1개 장소"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q:\n%s", want, out)
		}
	}
}

func TestRenderSpotDetail(t *testing.T) {
	phone := "02-1234-5678"
	detail := &model.SpotDetail{
		Name:         "國立故宮博物院",
		Type:         "attraction",
		OpeningHours: []string{"월요일: 09:00~17:00"},
		Phone:        &phone,
	}
	spot := &model.Spot{ID: "p2", DistanceKm: 2.2}
	monday := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

	out := RenderSpotDetail(viewstate.Snapshot[*model.SpotDetail]{Data: detail}, spot, monday)

	for _, want := range []string{"國立故宮博物院", "관광지", "영업 정보", "09:00~17:00", phone, "29분", "6분"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q:\n%s", want, out)
		}
	}
}

func TestRenderTranslation(t *testing.T) {
	out := RenderTranslation(" 감사합니다 ", viewstate.Snapshot[string]{Data: "謝謝"})
	if !strings.Contains(out, "감사합니다") || !strings.Contains(out, "謝謝") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out = RenderTranslation("", viewstate.Snapshot[string]{Message: viewstate.MsgTranslationEmpty})
	if !strings.Contains(out, viewstate.MsgTranslationEmpty) {
		t.Errorf("検証メッセージが表示されるべき:\n%s", out)
	}
}

func TestRenderPhrases_Empty(t *testing.T) {
	out := RenderPhrases("hotel", viewstate.Snapshot[[]model.Phrase]{Data: []model.Phrase{}})
	if !strings.Contains(out, "🏨 숙소") || !strings.Contains(out, "표시할 회화가 없습니다.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRenderBudget_ClampsUsage(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	p := budget.NewPlanner(budget.Config{Now: func() time.Time { return now }, Location: time.UTC})
	p.SetExchangeRate(42)
	p.SetTotalBudget("100")
	if _, err := p.AddExpense(budget.SharedMemberID, budget.CategoryFood, 420000, "딘타이펑"); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	out := RenderBudget(p)

	for _, want := range []string{"999.0%", "NT$10,000", "1일차", "구성원별 지출", "🍜 식비", "일별 페이스"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q:\n%s", want, out)
		}
	}

	expenses := RenderExpenses(p)
	if !strings.Contains(expenses, "공동") || !strings.Contains(expenses, "₩420,000") {
		t.Errorf("unexpected expenses output:\n%s", expenses)
	}
}
