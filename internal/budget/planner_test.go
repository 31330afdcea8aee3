package budget

import (
	"math"
	"testing"
	"time"

	"github.com/hitoshi/travelboard/internal/model"
)

// taipei はテスト用の固定タイムゾーン（UTC+8）。
var taipei = time.FixedZone("CST", 8*60*60)

// fixedNow はテスト用の現在時刻（2026-10-17 10:00 台北時間）。
var fixedNow = time.Date(2026, 10, 17, 10, 0, 0, 0, taipei)

func newTestPlanner(t *testing.T) *Planner {
	t.Helper()
	return NewPlanner(Config{
		Now:      func() time.Time { return fixedNow },
		Location: taipei,
	})
}

// newSingleMemberPlanner は「나」(1500TWD) の1人だけのPlannerを返す。
func newSingleMemberPlanner(t *testing.T) *Planner {
	t.Helper()
	p := newTestPlanner(t)
	if err := p.RemoveMember("member-family"); err != nil {
		t.Fatalf("RemoveMember returned error: %v", err)
	}
	return p
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestNewPlanner_Defaults(t *testing.T) {
	p := newTestPlanner(t)

	members := p.Members()
	if len(members) != 2 {
		t.Fatalf("既定メンバー数 = %d, want 2", len(members))
	}
	if members[0].ID != "member-self" || members[0].Name != "나" || members[0].DailyBudgetTWD != 1500 {
		t.Errorf("members[0] = %+v", members[0])
	}
	if members[1].ID != "member-family" || members[1].Name != "가족" || members[1].DailyBudgetTWD != 1500 {
		t.Errorf("members[1] = %+v", members[1])
	}
	if got := p.Plan().StartDate; got != "2026-10-17" {
		t.Errorf("StartDate = %q, want 2026-10-17", got)
	}
	if got := p.Plan().DaysInput; got != "3" {
		t.Errorf("DaysInput = %q, want 3", got)
	}
	if got := p.SelectedTarget(); got != "member-self" {
		t.Errorf("SelectedTarget = %q, want member-self", got)
	}
	if got := p.ExchangeRate(); got != DefaultFallbackRate {
		t.Errorf("ExchangeRate = %v, want fallback %v", got, DefaultFallbackRate)
	}
}

func TestAddMember_UpToCapacity(t *testing.T) {
	p := newTestPlanner(t)

	for i := len(p.Members()); i < MaxMembers; i++ {
		if _, err := p.AddMember("가족", 1000); err != nil {
			t.Fatalf("%d人目の追加に失敗: %v", i+1, err)
		}
	}
	if got := len(p.Members()); got != MaxMembers {
		t.Fatalf("メンバー数 = %d, want %d", got, MaxMembers)
	}

	_, err := p.AddMember("13번째", 1000)
	if !model.HasCode(err, model.ErrCodeCapacity) {
		t.Fatalf("13人目はCapacityErrorになるべき: got %v", err)
	}
	if got := len(p.Members()); got != MaxMembers {
		t.Errorf("上限エラー後のメンバー数 = %d, want %d", got, MaxMembers)
	}
}

func TestAddMember_Validation(t *testing.T) {
	tests := []struct {
		name   string
		member string
		budget float64
	}{
		{"空の名前", "", 1000},
		{"空白のみの名前", "   ", 1000},
		{"予算0", "엄마", 0},
		{"負の予算", "엄마", -10},
		{"NaN", "엄마", math.NaN()},
		{"無限大", "엄마", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPlanner(t)
			_, err := p.AddMember(tt.member, tt.budget)
			if !model.HasCode(err, model.ErrCodeValidation) {
				t.Fatalf("ValidationErrorになるべき: got %v", err)
			}
			if got := len(p.Members()); got != 2 {
				t.Errorf("エラー時にメンバーが変更された: %d", got)
			}
		})
	}
}

func TestAddMember_RoundsBudgetAndSelectsTarget(t *testing.T) {
	p := newTestPlanner(t)

	m, err := p.AddMember("  엄마  ", 1499.6)
	if err != nil {
		t.Fatalf("AddMember returned error: %v", err)
	}
	if m.Name != "엄마" {
		t.Errorf("Name = %q, want 엄마", m.Name)
	}
	if m.DailyBudgetTWD != 1500 {
		t.Errorf("DailyBudgetTWD = %d, want 1500", m.DailyBudgetTWD)
	}
	if p.SelectedTarget() != m.ID {
		t.Errorf("追加したメンバーが支出入力の対象になるべき: %q", p.SelectedTarget())
	}

	other, _ := p.AddMember("아빠", 1000)
	if other.ID == m.ID {
		t.Error("メンバーIDは一意であるべき")
	}
}

func TestUpdateMemberBudget(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"2000", 2000},
		{" 1234.5 ", 1235},
		{"0", 0},
		{"-5", 0},
		{"abc", 0},
		{"", 0},
		{"NaN", 0},
		{"Infinity", 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p := newTestPlanner(t)
			p.UpdateMemberBudget("member-family", tt.raw)
			if got := p.Members()[1].DailyBudgetTWD; got != tt.want {
				t.Errorf("UpdateMemberBudget(%q) = %d, want %d", tt.raw, got, tt.want)
			}
			if got := p.Members()[0].DailyBudgetTWD; got != 1500 {
				t.Errorf("他のメンバーが変更された: %d", got)
			}
		})
	}
}

func TestRemoveMember_LastMemberRejected(t *testing.T) {
	p := newSingleMemberPlanner(t)

	err := p.RemoveMember("member-self")
	if !model.HasCode(err, model.ErrCodeValidation) {
		t.Fatalf("最後のメンバーの削除はValidationErrorになるべき: got %v", err)
	}
	if got := len(p.Members()); got != 1 {
		t.Errorf("メンバー数 = %d, want 1", got)
	}
}

func TestRemoveMember_CascadesOwnedExpensesOnly(t *testing.T) {
	p := newTestPlanner(t)
	p.SetExchangeRate(42)

	self, _ := p.AddExpense("member-self", CategoryFood, 4200, "우육면")
	family1, _ := p.AddExpense("member-family", CategoryShopping, 8400, "펑리수")
	shared, _ := p.AddExpense(SharedMemberID, CategoryStay, 84000, "호텔")
	family2, _ := p.AddExpense("member-family", CategoryTransport, 420, "MRT")

	if err := p.RemoveMember("member-family"); err != nil {
		t.Fatalf("RemoveMember returned error: %v", err)
	}

	remaining := map[string]bool{}
	for _, e := range p.Expenses() {
		remaining[e.ID] = true
	}
	if !remaining[self.ID] || !remaining[shared.ID] {
		t.Errorf("本人と共有の支出は残るべき: %v", remaining)
	}
	if remaining[family1.ID] || remaining[family2.ID] {
		t.Errorf("削除したメンバーの支出は消えるべき: %v", remaining)
	}
	if len(remaining) != 2 {
		t.Errorf("残りの支出数 = %d, want 2", len(remaining))
	}
}

func TestRemoveMember_RetargetsSelection(t *testing.T) {
	p := newTestPlanner(t)
	if err := p.SelectTarget("member-family"); err != nil {
		t.Fatalf("SelectTarget returned error: %v", err)
	}

	if err := p.RemoveMember("member-family"); err != nil {
		t.Fatalf("RemoveMember returned error: %v", err)
	}
	if got := p.SelectedTarget(); got != "member-self" {
		t.Errorf("SelectedTarget = %q, want member-self", got)
	}
}

func TestRemoveMember_KeepsSharedSelection(t *testing.T) {
	p := newTestPlanner(t)
	if err := p.SelectTarget(SharedMemberID); err != nil {
		t.Fatalf("SelectTarget returned error: %v", err)
	}
	if err := p.RemoveMember("member-family"); err != nil {
		t.Fatalf("RemoveMember returned error: %v", err)
	}
	if got := p.SelectedTarget(); got != SharedMemberID {
		t.Errorf("共有の選択は維持されるべき: %q", got)
	}
}

func TestAddExpense_Validation(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		category Category
		amount   float64
	}{
		{"存在しないメンバー", "member-unknown", CategoryFood, 1000},
		{"空のメンバー", "", CategoryFood, 1000},
		{"金額0", "member-self", CategoryFood, 0},
		{"負の金額", "member-self", CategoryFood, -100},
		{"NaN", "member-self", CategoryFood, math.NaN()},
		{"無限大", "member-self", CategoryFood, math.Inf(1)},
		{"未知のカテゴリ", "member-self", Category("souvenir"), 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPlanner(t)
			_, err := p.AddExpense(tt.target, tt.category, tt.amount, "")
			if !model.HasCode(err, model.ErrCodeValidation) {
				t.Fatalf("ValidationErrorになるべき: got %v", err)
			}
			if len(p.Expenses()) != 0 {
				t.Error("エラー時に支出が記録された")
			}
		})
	}
}

func TestAddExpense_NormalizesCategory(t *testing.T) {
	p := newTestPlanner(t)
	p.SetExchangeRate(42)

	e, err := p.AddExpense("member-self", Category(" FOOD "), 4200, "")
	if err != nil {
		t.Fatalf("AddExpense returned error: %v", err)
	}
	if e.Category != CategoryFood {
		t.Errorf("Category = %q, want %q", e.Category, CategoryFood)
	}
	if got := p.Expenses()[0].Category; got != CategoryFood {
		t.Errorf("保存されたCategory = %q, want %q", got, CategoryFood)
	}
}

func TestAddExpense_InsertsAtHeadWithDefaults(t *testing.T) {
	p := newTestPlanner(t)

	first, err := p.AddExpense("member-self", CategoryFood, 4200, "  ")
	if err != nil {
		t.Fatalf("AddExpense returned error: %v", err)
	}
	if first.Note != DefaultExpenseNote {
		t.Errorf("Note = %q, want %q", first.Note, DefaultExpenseNote)
	}
	// レート未設定時はフォールバックの42を使う
	if first.AmountTWD != 100 {
		t.Errorf("AmountTWD = %v, want 100", first.AmountTWD)
	}
	if !first.CreatedAt.Equal(fixedNow) {
		t.Errorf("CreatedAt = %v, want %v", first.CreatedAt, fixedNow)
	}

	second, err := p.AddExpense(SharedMemberID, CategoryTransport, 1000, "택시")
	if err != nil {
		t.Fatalf("AddExpense returned error: %v", err)
	}
	expenses := p.Expenses()
	if len(expenses) != 2 || expenses[0].ID != second.ID || expenses[1].ID != first.ID {
		t.Errorf("新しい支出が先頭に来るべき: %+v", expenses)
	}
	if second.AmountTWD != 23.81 {
		t.Errorf("AmountTWD = %v, want 23.81", second.AmountTWD)
	}
}

func TestAddExpense_AmountFrozenAtCreation(t *testing.T) {
	p := newTestPlanner(t)
	p.SetExchangeRate(40)

	e, _ := p.AddExpense("member-self", CategoryFood, 4000, "")
	p.SetExchangeRate(50)

	if got := p.Expenses()[0].AmountTWD; got != e.AmountTWD || got != 100 {
		t.Errorf("レート変更後も換算額は変わらないべき: %v", got)
	}
}

func TestRemoveAndClearExpenses(t *testing.T) {
	p := newTestPlanner(t)
	a, _ := p.AddExpense("member-self", CategoryFood, 4200, "")
	b, _ := p.AddExpense("member-self", CategoryFood, 4200, "")

	p.RemoveExpense(a.ID)
	p.RemoveExpense("expense-unknown")
	if got := p.Expenses(); len(got) != 1 || got[0].ID != b.ID {
		t.Errorf("RemoveExpense後 = %+v", got)
	}

	p.ClearExpenses()
	if got := len(p.Expenses()); got != 0 {
		t.Errorf("ClearExpenses後の件数 = %d", got)
	}
}

func TestSelectTarget_RejectsUnknown(t *testing.T) {
	p := newTestPlanner(t)
	if err := p.SelectTarget("member-unknown"); !model.HasCode(err, model.ErrCodeValidation) {
		t.Fatalf("ValidationErrorになるべき: got %v", err)
	}
	if got := p.SelectedTarget(); got != "member-self" {
		t.Errorf("選択は変更されないべき: %q", got)
	}
}

func TestSetStartDate(t *testing.T) {
	p := newTestPlanner(t)
	if err := p.SetStartDate("2026-11-03"); err != nil {
		t.Fatalf("SetStartDate returned error: %v", err)
	}
	if got := p.Plan().StartDate; got != "2026-11-03" {
		t.Errorf("StartDate = %q", got)
	}
	if err := p.SetStartDate("11/03/2026"); !model.HasCode(err, model.ErrCodeValidation) {
		t.Errorf("不正な日付はValidationErrorになるべき: got %v", err)
	}
	if got := p.Plan().StartDate; got != "2026-11-03" {
		t.Errorf("エラー時に開始日が変更された: %q", got)
	}
}

func TestTripPlan_Days(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"3", 3},
		{" 5 ", 5},
		{"5일", 5},
		{"0", 1},
		{"-2", 1},
		{"abc", 1},
		{"", 1},
		{"365", 365},
		{"366", MaxTripDays},
		{"100000000000000", MaxTripDays},
		{"99999999999999999999999", MaxTripDays},
		{"-99999999999999999999999", 1},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := (TripPlan{DaysInput: tt.raw}).Days(); got != tt.want {
				t.Errorf("Days(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTripPlan_TotalOverride(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"10000", 10000, true},
		{"1234.6", 1235, true},
		{"", 0, false},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := (TripPlan{TotalBudgetInput: tt.raw}).TotalOverride()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("TotalOverride(%q) = (%v, %v), want (%v, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestConvertKRWToTWD(t *testing.T) {
	tests := []struct {
		krw, rate, want float64
	}{
		{42000, 42, 1000},
		{1000, 42, 23.81},
		{100, 3, 33.33},
		{5, 42, 0.12},
	}
	for _, tt := range tests {
		if got := ConvertKRWToTWD(tt.krw, tt.rate); got != tt.want {
			t.Errorf("ConvertKRWToTWD(%v, %v) = %v, want %v", tt.krw, tt.rate, got, tt.want)
		}
	}
}
