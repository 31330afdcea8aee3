// Package budget は家族旅行の予算プランナーを提供する。
//
// Plannerはメンバー、支出記録、旅行期間の3つだけを状態として保持し、
// 残り予算や日別ペースなどの集計値はすべて問い合わせのたびに現在の状態から再計算する。
// 共有支出（SharedMemberID）は保存時に分配せず、集計時に現在のメンバー数で均等割りする。
package budget

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/travelboard/internal/model"
)

const (
	// MaxMembers は登録できる家族メンバーの上限。
	MaxMembers = 12
	// SharedMemberID は「全員で均等割り」を表す支出の所有者マーカー。
	SharedMemberID = "__shared__"
	// DefaultFallbackRate は為替レート未取得時に使う1TWDあたりのKRW。
	DefaultFallbackRate = 42
	// MaxTripDays は旅行日数の上限。これを超える入力は上限に丸める。
	MaxTripDays = 365
	// DefaultTripDays は旅行日数の初期値。
	DefaultTripDays = "3"
	// DefaultExpenseNote はメモ未入力時の支出メモ。
	DefaultExpenseNote = "기타 지출"
	// DefaultMemberName は保存データに名前がない場合のメンバー名。
	DefaultMemberName = "가족 구성원"
)

// Member は家族メンバー。
type Member struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	DailyBudgetTWD int    `json:"dailyBudgetTwd"`
}

// Expense は支出記録。AmountTWDは記録時点のレートで換算して保存し、後から再計算しない。
type Expense struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"memberId"`
	Note      string    `json:"note"`
	Category  Category  `json:"category"`
	AmountKRW float64   `json:"amountKrw"`
	AmountTWD float64   `json:"amountTwd"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsShared は共有支出かを返す。
func (e Expense) IsShared() bool {
	return e.MemberID == SharedMemberID
}

// TripPlan は旅行期間と総予算の手動上書き。
// 日数と総予算はユーザー入力の生文字列のまま保持し、集計時に解釈する。
type TripPlan struct {
	StartDate        string
	DaysInput        string
	TotalBudgetInput string
}

// Days は旅行日数を返す。解釈できない値や1未満は1、MaxTripDaysを超える値はMaxTripDaysになる。
func (p TripPlan) Days() int {
	n, ok := leadingInt(p.DaysInput)
	if !ok || n < 1 {
		return 1
	}
	return min(n, MaxTripDays)
}

// TotalOverride は手動指定の総予算を返す。未指定または0以下の場合はfalse。
func (p TripPlan) TotalOverride() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(p.TotalBudgetInput), 64)
	if err != nil || !isPositive(v) {
		return 0, false
	}
	return math.Round(v), true
}

// Config はPlannerの生成パラメータ。
type Config struct {
	// Now は「今日」の基準時刻。nilの場合はtime.Now。
	Now func() time.Time
	// Location は日付計算に使うタイムゾーン。nilの場合はtime.Local。
	Location *time.Location
	// FallbackRate は為替レート未取得時の換算レート。0以下の場合はDefaultFallbackRate。
	FallbackRate float64
}

// Planner は家族旅行の予算状態を保持する。
// 単一セッションから逐次的に操作される前提で、ロックは持たない。
type Planner struct {
	members        []Member
	expenses       []Expense
	plan           TripPlan
	selectedTarget string
	exchangeRate   float64

	now          func() time.Time
	loc          *time.Location
	fallbackRate float64
}

// DefaultMembers は初期状態の家族メンバー。
func DefaultMembers() []Member {
	return []Member{
		{ID: "member-self", Name: "나", DailyBudgetTWD: 1500},
		{ID: "member-family", Name: "가족", DailyBudgetTWD: 1500},
	}
}

// NewPlanner はデフォルトメンバーと今日開始・3日間の旅行プランでPlannerを生成する。
func NewPlanner(cfg Config) *Planner {
	p := &Planner{
		now:          cfg.Now,
		loc:          cfg.Location,
		fallbackRate: cfg.FallbackRate,
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.loc == nil {
		p.loc = time.Local
	}
	if !isPositive(p.fallbackRate) {
		p.fallbackRate = DefaultFallbackRate
	}

	p.members = DefaultMembers()
	p.selectedTarget = p.members[0].ID
	p.plan = TripPlan{
		StartDate: formatISODate(p.today()),
		DaysInput: DefaultTripDays,
	}
	return p
}

// Members はメンバー一覧のコピーを返す。
func (p *Planner) Members() []Member {
	return append([]Member(nil), p.members...)
}

// Expenses は支出記録のコピーを新しい順で返す。
func (p *Planner) Expenses() []Expense {
	return append([]Expense(nil), p.expenses...)
}

// Plan は旅行プランを返す。
func (p *Planner) Plan() TripPlan {
	return p.plan
}

// SelectedTarget は支出入力の対象（メンバーIDまたはSharedMemberID）を返す。
func (p *Planner) SelectedTarget() string {
	return p.selectedTarget
}

// SelectTarget は支出入力の対象を切り替える。
func (p *Planner) SelectTarget(target string) error {
	if !p.isValidTarget(target) {
		return model.NewValidationError("지출을 기록할 가족 구성원을 먼저 선택해주세요.")
	}
	p.selectedTarget = target
	return nil
}

// SetExchangeRate は直近に取得した基準レートを設定する。0以下は未取得として扱う。
func (p *Planner) SetExchangeRate(baseRate float64) {
	if !isPositive(baseRate) {
		p.exchangeRate = 0
		return
	}
	p.exchangeRate = baseRate
}

// ExchangeRate は換算に使うレートを返す。未取得の場合はフォールバック値。
func (p *Planner) ExchangeRate() float64 {
	if p.exchangeRate > 0 {
		return p.exchangeRate
	}
	return p.fallbackRate
}

// SetStartDate は旅行開始日（YYYY-MM-DD）を設定する。
func (p *Planner) SetStartDate(raw string) error {
	raw = strings.TrimSpace(raw)
	if _, ok := parseISODate(raw, p.loc); !ok {
		return model.NewValidationError("여행 시작일을 YYYY-MM-DD 형식으로 입력해주세요.")
	}
	p.plan.StartDate = raw
	return nil
}

// SetDays は旅行日数の入力値を設定する。解釈は集計時に行う。
func (p *Planner) SetDays(raw string) {
	p.plan.DaysInput = strings.TrimSpace(raw)
}

// SetTotalBudget は総予算の手動入力値を設定する。空文字で自動計算に戻る。
func (p *Planner) SetTotalBudget(raw string) {
	p.plan.TotalBudgetInput = strings.TrimSpace(raw)
}

// AddMember はメンバーを追加し、支出入力の対象を新メンバーに切り替える。
func (p *Planner) AddMember(name string, dailyBudget float64) (Member, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Member{}, model.NewValidationError("구성원 이름을 입력해주세요.")
	}
	if !isPositive(dailyBudget) {
		return Member{}, model.NewValidationError("구성원 일일 예산(TWD)을 올바르게 입력해주세요.")
	}
	if len(p.members) >= MaxMembers {
		return Member{}, model.NewCapacityError(MaxMembers)
	}

	m := Member{
		ID:             "member-" + uuid.NewString(),
		Name:           name,
		DailyBudgetTWD: int(math.Round(dailyBudget)),
	}
	p.members = append(p.members, m)
	p.selectedTarget = m.ID
	return m, nil
}

// UpdateMemberBudget はメンバーの日別予算を更新する。
// 数値として解釈できない値や0以下は拒否せず0として保存する。
func (p *Planner) UpdateMemberBudget(memberID, raw string) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	budget := 0
	if err == nil && isPositive(v) {
		budget = int(math.Round(v))
	}
	for i := range p.members {
		if p.members[i].ID == memberID {
			p.members[i].DailyBudgetTWD = budget
		}
	}
}

// RemoveMember はメンバーと、そのメンバーが所有する支出記録を削除する。
// 最後の1人は削除できない。共有支出は残る。
func (p *Planner) RemoveMember(memberID string) error {
	if len(p.members) <= 1 {
		return model.NewValidationError("최소 1명의 구성원은 필요합니다.")
	}

	kept := p.members[:0:0]
	for _, m := range p.members {
		if m.ID != memberID {
			kept = append(kept, m)
		}
	}
	p.members = kept

	expenses := p.expenses[:0:0]
	for _, e := range p.expenses {
		if e.MemberID != memberID {
			expenses = append(expenses, e)
		}
	}
	p.expenses = expenses

	if p.selectedTarget == memberID {
		p.selectedTarget = p.members[0].ID
	}
	return nil
}

// AddExpense は支出を記録する。換算額は現在のレートで計算して固定する。
// 新しい記録は先頭に挿入される。
func (p *Planner) AddExpense(target string, category Category, amountKRW float64, note string) (Expense, error) {
	if !p.isValidTarget(target) {
		return Expense{}, model.NewValidationError("지출을 기록할 가족 구성원을 먼저 선택해주세요.")
	}
	if !isPositive(amountKRW) {
		return Expense{}, model.NewValidationError("지출 금액(원)을 올바르게 입력해주세요.")
	}
	category, ok := ParseCategory(string(category))
	if !ok {
		return Expense{}, model.NewValidationError("지출 카테고리를 선택해주세요.")
	}

	amountTWD := ConvertKRWToTWD(amountKRW, p.ExchangeRate())
	if !isPositive(amountTWD) {
		return Expense{}, model.NewValidationError("지출 금액(원)을 올바르게 입력해주세요.")
	}

	note = strings.TrimSpace(note)
	if note == "" {
		note = DefaultExpenseNote
	}

	e := Expense{
		ID:        "expense-" + uuid.NewString(),
		MemberID:  target,
		Note:      note,
		Category:  category,
		AmountKRW: amountKRW,
		AmountTWD: amountTWD,
		CreatedAt: p.now().UTC(),
	}
	p.expenses = append([]Expense{e}, p.expenses...)
	return e, nil
}

// RemoveExpense は指定IDの支出記録を削除する。存在しない場合は何もしない。
func (p *Planner) RemoveExpense(expenseID string) {
	kept := p.expenses[:0:0]
	for _, e := range p.expenses {
		if e.ID != expenseID {
			kept = append(kept, e)
		}
	}
	p.expenses = kept
}

// ClearExpenses はすべての支出記録を削除する。
func (p *Planner) ClearExpenses() {
	p.expenses = nil
}

func (p *Planner) isValidTarget(target string) bool {
	if target == SharedMemberID {
		return true
	}
	for _, m := range p.members {
		if m.ID == target {
			return true
		}
	}
	return false
}

func (p *Planner) today() time.Time {
	n := p.now().In(p.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, p.loc)
}

// parseISODate はYYYY-MM-DDを指定タイムゾーンの0時として解釈する。
// 月日のあふれはtime.Dateの正規化に従う。
func parseISODate(raw string, loc *time.Location) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n == 0 {
			return time.Time{}, false
		}
		nums[i] = n
	}
	return time.Date(nums[0], time.Month(nums[1]), nums[2], 0, 0, 0, 0, loc), true
}

func formatISODate(t time.Time) string {
	return t.Format("2006-01-02")
}

// leadingInt は先頭の整数部分だけを読み取る（"3日" → 3）。
func leadingInt(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c == '-' || c == '+') && end == 0 {
			end++
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		if s[0] == '-' {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	if err != nil {
		return 0, false
	}
	return n, true
}
