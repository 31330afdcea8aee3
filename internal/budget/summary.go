package budget

import (
	"math"
	"sort"
	"time"
)

// Summary は旅行全体の予算サマリー。
type Summary struct {
	Days                 int       `json:"days"`
	StartDate            time.Time `json:"startDate"`
	TotalDailyBudget     int       `json:"totalDailyBudget"`
	AutoTotalTripBudget  float64   `json:"autoTotalTripBudget"`
	TotalTripBudget      float64   `json:"totalTripBudget"`
	HasCustomTotalBudget bool      `json:"hasCustomTotalBudget"`
	DailyPlanBudget      float64   `json:"dailyPlanBudget"`
	SpentTWD             float64   `json:"spentTwd"`
	SpentKRW             float64   `json:"spentKrw"`
	RemainingTWD         float64   `json:"remainingTwd"`
	UsagePercent         float64   `json:"usagePercent"`
	CurrentTripDay       int       `json:"currentTripDay"`
	DaysLeft             int       `json:"daysLeft"`
	DailyAllowanceTWD    float64   `json:"dailyAllowanceTwd"`
}

// MemberSummary はメンバーごとの支出集計。
type MemberSummary struct {
	Member       Member  `json:"member"`
	SpentTWD     float64 `json:"spentTwd"`
	SpentKRW     float64 `json:"spentKrw"`
	ExpenseCount int     `json:"expenseCount"`
	TripBudget   float64 `json:"tripBudget"`
	RemainingTWD float64 `json:"remainingTwd"`
}

// CategorySummary はカテゴリごとの支出集計。
type CategorySummary struct {
	CategoryMeta
	SpentTWD     float64 `json:"spentTwd"`
	SpentKRW     float64 `json:"spentKrw"`
	Count        int     `json:"count"`
	SharePercent float64 `json:"sharePercent"`
}

// DayPlan は旅行日ごとの予算ペース。
type DayPlan struct {
	Date         string  `json:"date"`
	Day          int     `json:"day"`
	PlannedTWD   float64 `json:"plannedTwd"`
	SpentTWD     float64 `json:"spentTwd"`
	RemainingTWD float64 `json:"remainingTwd"`
}

// Summarize は現在の状態から旅行全体のサマリーを計算する。
func (p *Planner) Summarize() Summary {
	days := p.plan.Days()

	totalDaily := 0
	for _, m := range p.members {
		totalDaily += m.DailyBudgetTWD
	}
	auto := float64(totalDaily * days)

	total := auto
	override, hasOverride := p.plan.TotalOverride()
	if hasOverride {
		total = override
	}

	twd := make([]float64, 0, len(p.expenses))
	krw := make([]float64, 0, len(p.expenses))
	for _, e := range p.expenses {
		twd = append(twd, e.AmountTWD)
		krw = append(krw, e.AmountKRW)
	}
	spentTWD := sumAmounts(twd)
	spentKRW := sumAmounts(krw)
	remaining := round2(total - spentTWD)

	today := p.today()
	start := p.startDate()
	rawDay := civilDaysBetween(start, today) + 1

	currentDay := 0
	daysLeft := days
	if rawDay >= 1 {
		currentDay = min(rawDay, days)
		daysLeft = max(0, days-rawDay+1)
	}

	usage := 0.0
	if total > 0 {
		usage = math.Max(0, spentTWD/total*100)
	}

	allowance := 0.0
	if daysLeft > 0 {
		allowance = remaining / float64(daysLeft)
	}

	return Summary{
		Days:                 days,
		StartDate:            start,
		TotalDailyBudget:     totalDaily,
		AutoTotalTripBudget:  auto,
		TotalTripBudget:      total,
		HasCustomTotalBudget: hasOverride,
		DailyPlanBudget:      total / float64(days),
		SpentTWD:             round2(spentTWD),
		SpentKRW:             math.Round(spentKRW),
		RemainingTWD:         remaining,
		UsagePercent:         usage,
		CurrentTripDay:       currentDay,
		DaysLeft:             daysLeft,
		DailyAllowanceTWD:    allowance,
	}
}

// MemberSummaries はメンバーごとの支出を計算し、支出額の多い順に並べて返す。
// 共有支出は呼び出し時点のメンバー数で均等に割り当てる。
func (p *Planner) MemberSummaries() []MemberSummary {
	days := p.plan.Days()
	index := make(map[string]int, len(p.members))
	out := make([]MemberSummary, len(p.members))
	for i, m := range p.members {
		index[m.ID] = i
		out[i] = MemberSummary{Member: m}
	}

	memberCount := float64(max(1, len(p.members)))
	for _, e := range p.expenses {
		if e.IsShared() {
			splitTWD := e.AmountTWD / memberCount
			splitKRW := e.AmountKRW / memberCount
			for i := range out {
				out[i].SpentTWD += splitTWD
				out[i].SpentKRW += splitKRW
				out[i].ExpenseCount++
			}
			continue
		}
		i, ok := index[e.MemberID]
		if !ok {
			continue
		}
		out[i].SpentTWD += e.AmountTWD
		out[i].SpentKRW += e.AmountKRW
		out[i].ExpenseCount++
	}

	for i := range out {
		out[i].TripBudget = float64(out[i].Member.DailyBudgetTWD * days)
		out[i].RemainingTWD = out[i].TripBudget - out[i].SpentTWD
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].SpentTWD > out[b].SpentTWD
	})
	return out
}

// CategorySummaries はカテゴリごとの支出と全体に占める割合を計算し、支出額の多い順に並べて返す。
func (p *Planner) CategorySummaries() []CategorySummary {
	out := make([]CategorySummary, len(Categories))
	index := make(map[Category]int, len(Categories))
	for i, meta := range Categories {
		out[i] = CategorySummary{CategoryMeta: meta}
		index[meta.Category] = i
	}

	totalSpent := 0.0
	for _, e := range p.expenses {
		totalSpent += e.AmountTWD
		i, ok := index[e.Category]
		if !ok {
			continue
		}
		out[i].SpentTWD += e.AmountTWD
		out[i].SpentKRW += e.AmountKRW
		out[i].Count++
	}

	for i := range out {
		if totalSpent > 0 {
			out[i].SharePercent = out[i].SpentTWD / totalSpent * 100
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].SpentTWD > out[b].SpentTWD
	})
	return out
}

// DayPlans は旅行開始日から日数分の日別予算と支出を返す。
// 支出は作成日時のローカル日付で集計する。
func (p *Planner) DayPlans() []DayPlan {
	spentByDate := make(map[string]float64)
	for _, e := range p.expenses {
		if e.CreatedAt.IsZero() {
			continue
		}
		key := formatISODate(e.CreatedAt.In(p.loc))
		spentByDate[key] += e.AmountTWD
	}

	summary := p.Summarize()
	out := make([]DayPlan, summary.Days)
	for i := range out {
		date := summary.StartDate.AddDate(0, 0, i)
		key := formatISODate(date)
		spent := spentByDate[key]
		out[i] = DayPlan{
			Date:         key,
			Day:          i + 1,
			PlannedTWD:   summary.DailyPlanBudget,
			SpentTWD:     spent,
			RemainingTWD: summary.DailyPlanBudget - spent,
		}
	}
	return out
}

// startDate は旅行開始日を返す。解釈できない場合は今日になる。
func (p *Planner) startDate() time.Time {
	if t, ok := parseISODate(p.plan.StartDate, p.loc); ok {
		return t
	}
	return p.today()
}

// civilDaysBetween はfromからtoまでの暦日数を返す。
// 夏時間の切り替えをまたいでもずれないよう、日付をUTCに置き直してから差を取る。
func civilDaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Floor(t.Sub(f).Hours() / 24))
}
