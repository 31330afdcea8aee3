package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/travelboard/internal/budget"
	"github.com/hitoshi/travelboard/internal/model"
	"github.com/hitoshi/travelboard/internal/viewstate"
)

// RenderHome は天気・予報・為替のホーム画面を描画する。
func RenderHome(snap viewstate.Snapshot[*model.Home]) string {
	var b strings.Builder
	b.WriteString(RenderTitle("타이베이 여행 대시보드"))
	b.WriteString("\n")
	if snap.Data == nil {
		b.WriteString(RenderNotice(snap.Message, false))
		return b.String()
	}
	h := snap.Data

	b.WriteString(RenderTable(Table{
		Title:   "현재 날씨 · " + h.Weather.City,
		Headers: []string{"항목", "값"},
		Rows: [][]string{
			{"날씨", h.Weather.Description},
			{"기온", formatTemp(h.Weather.Temperature)},
			{"체감", formatTemp(h.Weather.FeelsLike)},
			{"습도", strconv.Itoa(h.Weather.Humidity) + "%"},
			{"풍속", strconv.FormatFloat(h.Weather.WindSpeed, 'f', 1, 64) + "m/s"},
		},
	}))

	rows := make([][]string, 0, len(h.Forecast))
	for _, f := range h.Forecast {
		rows = append(rows, []string{f.Date, f.Description, formatTemp(f.MinTemp), formatTemp(f.MaxTemp)})
	}
	b.WriteString(RenderTable(Table{
		Title:   "예보",
		Headers: []string{"날짜", "날씨", "최저", "최고"},
		Rows:    rows,
	}))

	e := h.Exchange
	per10k := "-"
	if e.BaseRate > 0 {
		per10k = FormatTWD(budget.ConvertKRWToTWD(10000, e.BaseRate))
	}
	b.WriteString(RenderTable(Table{
		Title:   "환율 (" + e.Date + ")",
		Headers: []string{"통화", "기준", "살 때", "팔 때", "₩10,000"},
		Rows: [][]string{{
			e.Currency,
			formatRate(e.BaseRate),
			formatRate(e.BuyRate),
			formatRate(e.SellRate),
			per10k,
		}},
	}))
	return b.String()
}

// RenderPhrases はカテゴリ別の会話フレーズを描画する。
func RenderPhrases(category string, snap viewstate.Snapshot[[]model.Phrase]) string {
	label := category
	for _, c := range viewstate.PhraseCategories {
		if c.Value == category {
			label = c.Label
		}
	}

	var b strings.Builder
	b.WriteString(RenderNotice(snap.Message, snap.Stale))
	rows := make([][]string, 0, len(snap.Data))
	for _, p := range snap.Data {
		rows = append(rows, []string{p.Korean, p.Chinese, p.Pronunciation})
	}
	if len(rows) == 0 {
		b.WriteString("  " + dimStyle.Render(label+": 표시할 회화가 없습니다.") + "\n")
		return b.String()
	}
	b.WriteString(RenderTable(Table{
		Title:   label,
		Headers: []string{"한국어", "中文", "발음"},
		Rows:    rows,
	}))
	return b.String()
}

// RenderTranslation は翻訳結果を描画する。
func RenderTranslation(input string, snap viewstate.Snapshot[string]) string {
	var b strings.Builder
	b.WriteString(RenderNotice(snap.Message, snap.Stale))
	if snap.Data == "" {
		return b.String()
	}
	b.WriteString("  " + dimStyle.Render("한국어") + "  " + valueStyle.Render(strings.TrimSpace(input)) + "\n")
	b.WriteString("  " + dimStyle.Render("中文  ") + "  " + headerStyle.Render(snap.Data) + "\n")
	return b.String()
}

// RenderSpots はスポット一覧を描画する。
func RenderSpots(filters viewstate.Filters, snap viewstate.Snapshot[[]model.Spot]) string {
	var b strings.Builder
	b.WriteString(RenderNotice(snap.Message, snap.Stale))

	rows := make([][]string, 0, len(snap.Data))
	for _, s := range snap.Data {
		walk, transit := viewstate.TravelTime(s.DistanceKm)
		rows = append(rows, []string{
			s.Name,
			formatRating(s.Rating),
			strconv.FormatFloat(s.DistanceKm, 'f', 1, 64) + "km",
			fmt.Sprintf("🚶 %d분 / 🚌 %d분", walk, transit),
			s.ID,
		})
	}
	title := fmt.Sprintf("%s · 반경 %sm · %d개 장소", viewstate.TypeLabel(filters.Type), filters.Radius, len(snap.Data))
	if len(rows) == 0 {
		b.WriteString("  " + dimStyle.Render(title) + "\n")
		return b.String()
	}
	b.WriteString(RenderTable(Table{
		Title:   title,
		Headers: []string{"이름", "평점", "거리", "이동", "ID"},
		Rows:    rows,
	}))
	return b.String()
}

// RenderSpotDetail はスポット詳細を描画する。spotは一覧での距離情報（なければnil）。
func RenderSpotDetail(snap viewstate.Snapshot[*model.SpotDetail], spot *model.Spot, now time.Time) string {
	var b strings.Builder
	b.WriteString(RenderNotice(snap.Message, snap.Stale))
	d := snap.Data
	if d == nil {
		return b.String()
	}

	opening := viewstate.TodayOpeningInfo(d.OpeningHours, now)
	rows := [][]string{
		{"종류", viewstate.TypeLabel(d.Type)},
		{"평점", formatRating(d.Rating)},
		{"주소", d.Address},
		{"오늘", opening.Status + " · " + opening.Detail},
	}
	if d.Phone != nil {
		rows = append(rows, []string{"전화", *d.Phone})
	}
	if d.Website != nil {
		rows = append(rows, []string{"웹사이트", *d.Website})
	}
	if spot != nil {
		walk, transit := viewstate.TravelTime(spot.DistanceKm)
		rows = append(rows,
			[]string{"도보", fmt.Sprintf("%d분", walk)},
			[]string{"대중교통", fmt.Sprintf("%d분", transit)},
		)
	}
	b.WriteString(RenderTable(Table{Title: d.Name, Headers: []string{"항목", "정보"}, Rows: rows}))
	return b.String()
}

// RenderBudget は予算サマリー、メンバー別、カテゴリ別、日別ペースを描画する。
func RenderBudget(p *budget.Planner) string {
	s := p.Summarize()
	var b strings.Builder

	override := "자동"
	if s.HasCustomTotalBudget {
		override = "수동"
	}
	tripDay := "여행 전"
	if s.CurrentTripDay > 0 {
		tripDay = fmt.Sprintf("%d일차", s.CurrentTripDay)
	}
	b.WriteString(RenderTable(Table{
		Title:   fmt.Sprintf("가족 예산 · %s부터 %d일", p.Plan().StartDate, s.Days),
		Headers: []string{"항목", "값"},
		Rows: [][]string{
			{"총 예산 (" + override + ")", FormatTWD(s.TotalTripBudget)},
			{"사용", FormatTWD(s.SpentTWD) + " (" + FormatKRW(s.SpentKRW) + ")"},
			{"남은 예산", FormatTWD(s.RemainingTWD)},
			{"사용률", FormatPercent(ClampUsage(s.UsagePercent))},
			{"진행", tripDay},
			{"남은 일수", strconv.Itoa(s.DaysLeft) + "일"},
			{"하루 권장 사용액", FormatTWD(s.DailyAllowanceTWD)},
			{"환율", formatRate(p.ExchangeRate())},
		},
	}))

	memberRows := [][]string{}
	for i, m := range p.MemberSummaries() {
		memberRows = append(memberRows, []string{
			fmt.Sprintf("%d. %s", i+1, m.Member.Name),
			FormatTWD(float64(m.Member.DailyBudgetTWD)),
			FormatTWD(m.SpentTWD),
			FormatTWD(m.RemainingTWD),
			strconv.Itoa(m.ExpenseCount),
			m.Member.ID,
		})
	}
	b.WriteString(RenderTable(Table{
		Title:   "구성원별 지출",
		Headers: []string{"구성원", "일일 예산", "사용", "남음", "건수", "ID"},
		Rows:    memberRows,
	}))

	categoryRows := [][]string{}
	for _, c := range p.CategorySummaries() {
		categoryRows = append(categoryRows, []string{
			c.Icon + " " + c.Label,
			FormatTWD(c.SpentTWD),
			strconv.Itoa(c.Count),
			FormatPercent(c.SharePercent),
			FormatPercent(c.RecommendedRatio * 100),
		})
	}
	b.WriteString(RenderTable(Table{
		Title:   "카테고리별",
		Headers: []string{"카테고리", "사용", "건수", "비중", "권장"},
		Rows:    categoryRows,
	}))

	dayRows := [][]string{}
	for _, d := range p.DayPlans() {
		remaining := FormatTWD(d.RemainingTWD)
		if d.RemainingTWD < 0 {
			remaining = errorStyle.Render(remaining)
		}
		dayRows = append(dayRows, []string{
			fmt.Sprintf("%d일차 %s", d.Day, d.Date),
			FormatTWD(d.PlannedTWD),
			FormatTWD(d.SpentTWD),
			remaining,
		})
	}
	b.WriteString(RenderTable(Table{
		Title:   "일별 페이스",
		Headers: []string{"날짜", "계획", "사용", "남음"},
		Rows:    dayRows,
	}))

	return b.String()
}

// RenderExpenses は支出記録の一覧を新しい順に描画する。
func RenderExpenses(p *budget.Planner) string {
	names := make(map[string]string)
	for _, m := range p.Members() {
		names[m.ID] = m.Name
	}

	expenses := p.Expenses()
	if len(expenses) == 0 {
		return "  " + dimStyle.Render("기록된 지출이 없습니다.") + "\n"
	}
	rows := make([][]string, 0, len(expenses))
	for _, e := range expenses {
		owner := names[e.MemberID]
		if e.IsShared() {
			owner = "공동"
		}
		meta := e.Category.Meta()
		rows = append(rows, []string{
			e.CreatedAt.Format("01-02 15:04"),
			owner,
			meta.Icon + " " + meta.Label,
			e.Note,
			FormatKRW(e.AmountKRW),
			FormatTWD(e.AmountTWD),
			e.ID,
		})
	}
	return RenderTable(Table{
		Title:   "지출 기록",
		Headers: []string{"시각", "구성원", "카테고리", "메모", "원화", "대만달러", "ID"},
		Rows:    rows,
	})
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "°C"
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatRating(r *float64) string {
	if r == nil {
		return "-"
	}
	return "★ " + strconv.FormatFloat(*r, 'f', 1, 64)
}
