package budget

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/travelboard/internal/kvstore"
)

// Store はPlannerの保存先。kvstore.Storeが実装する。
type Store interface {
	Load(ctx context.Context, key kvstore.Key, v any) bool
	Save(ctx context.Context, key kvstore.Key, v any)
}

// storedPlan は familyPlan キーに保存する形式。
type storedPlan struct {
	TripStartDate          string         `json:"tripStartDate"`
	TripDays               looseText      `json:"tripDays"`
	CustomTotalBudgetInput *looseText     `json:"customTotalBudgetInput,omitempty"`
	FamilyMembers          []storedMember `json:"familyMembers"`
}

type storedMember struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	DailyBudgetTWD looseNumber `json:"dailyBudgetTwd"`
}

type storedExpense struct {
	ID        string      `json:"id"`
	MemberID  string      `json:"memberId"`
	Note      string      `json:"note"`
	Category  string      `json:"category"`
	AmountKRW looseNumber `json:"amountKrw"`
	AmountTWD looseNumber `json:"amountTwd"`
	CreatedAt string      `json:"createdAt"`
}

// legacyBudget はメンバー概念導入前の単一予算。
type legacyBudget struct {
	DailyBudgetTWD looseNumber `json:"dailyBudgetTwd"`
}

// Restore は保存済みの状態を読み込む。
// 読み込み順は 現行キー → 旧形式キー → 既定値 で、この1か所でスキーマ移行を行う。
// 読み込めない値や不正なフィールドはエラーにせず既定値に置き換える。
func (p *Planner) Restore(ctx context.Context, store Store) {
	var plan storedPlan
	if store.Load(ctx, kvstore.FamilyPlanKey(), &plan) && len(plan.FamilyMembers) > 0 {
		p.restorePlan(plan)
	} else {
		var legacy legacyBudget
		if store.Load(ctx, kvstore.LegacyBudgetKey(), &legacy) && isPositive(float64(legacy.DailyBudgetTWD)) {
			budget := int(math.Round(float64(legacy.DailyBudgetTWD)))
			for i := range p.members {
				p.members[i].DailyBudgetTWD = budget
			}
		}
	}

	var records []storedExpense
	if store.Load(ctx, kvstore.FamilyExpensesKey(), &records) {
		p.expenses = p.normalizeExpenses(records, false)
		return
	}
	var legacyRecords []storedExpense
	if store.Load(ctx, kvstore.LegacyExpensesKey(), &legacyRecords) && len(legacyRecords) > 0 {
		p.expenses = p.normalizeExpenses(legacyRecords, true)
	}
}

// Persist は現在の状態を現行キーに保存する。旧形式キーには書き込まない。
func (p *Planner) Persist(ctx context.Context, store Store) {
	members := make([]storedMember, len(p.members))
	for i, m := range p.members {
		members[i] = storedMember{ID: m.ID, Name: m.Name, DailyBudgetTWD: looseNumber(m.DailyBudgetTWD)}
	}
	total := looseText(p.plan.TotalBudgetInput)
	store.Save(ctx, kvstore.FamilyPlanKey(), storedPlan{
		TripStartDate:          p.plan.StartDate,
		TripDays:               looseText(p.plan.DaysInput),
		CustomTotalBudgetInput: &total,
		FamilyMembers:          members,
	})

	records := make([]storedExpense, len(p.expenses))
	for i, e := range p.expenses {
		records[i] = storedExpense{
			ID:        e.ID,
			MemberID:  e.MemberID,
			Note:      e.Note,
			Category:  string(e.Category),
			AmountKRW: looseNumber(e.AmountKRW),
			AmountTWD: looseNumber(e.AmountTWD),
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	}
	store.Save(ctx, kvstore.FamilyExpensesKey(), records)
}

func (p *Planner) restorePlan(plan storedPlan) {
	members := make([]Member, 0, min(len(plan.FamilyMembers), MaxMembers))
	for _, sm := range plan.FamilyMembers {
		if len(members) == MaxMembers {
			break
		}
		id := strings.TrimSpace(sm.ID)
		if id == "" {
			id = "member-" + uuid.NewString()
		}
		name := strings.TrimSpace(sm.Name)
		if name == "" {
			name = DefaultMemberName
		}
		budget := 0
		if v := float64(sm.DailyBudgetTWD); isPositive(v) {
			budget = int(math.Round(v))
		}
		members = append(members, Member{ID: id, Name: name, DailyBudgetTWD: budget})
	}
	p.members = members
	p.selectedTarget = members[0].ID

	if _, ok := parseISODate(plan.TripStartDate, p.loc); ok {
		p.plan.StartDate = strings.TrimSpace(plan.TripStartDate)
	}
	if plan.TripDays != "" {
		p.plan.DaysInput = string(plan.TripDays)
	}
	if plan.CustomTotalBudgetInput != nil {
		p.plan.TotalBudgetInput = string(*plan.CustomTotalBudgetInput)
	}
}

// normalizeExpenses は保存済みの支出記録を検証し、金額が正でない記録を除外する。
// 所有者のない記録（旧形式を含む）は先頭のメンバーに割り当てる。
func (p *Planner) normalizeExpenses(records []storedExpense, legacy bool) []Expense {
	owner := p.members[0].ID
	out := make([]Expense, 0, len(records))
	for _, r := range records {
		krw := float64(r.AmountKRW)
		twd := float64(r.AmountTWD)
		if !isPositive(krw) || !isPositive(twd) {
			continue
		}

		category, ok := ParseCategory(r.Category)
		if !ok || legacy {
			category = CategoryOther
		}
		memberID := strings.TrimSpace(r.MemberID)
		if memberID == "" || legacy {
			memberID = owner
		}
		id := strings.TrimSpace(r.ID)
		if id == "" {
			id = "expense-" + uuid.NewString()
		}
		note := strings.TrimSpace(r.Note)
		if note == "" {
			note = DefaultExpenseNote
		}

		out = append(out, Expense{
			ID:        id,
			MemberID:  memberID,
			Note:      note,
			Category:  category,
			AmountKRW: krw,
			AmountTWD: twd,
			CreatedAt: p.parseCreatedAt(r.CreatedAt),
		})
	}
	return out
}

// parseCreatedAt は作成日時を解釈する。未設定の場合は現在時刻、解釈できない場合はゼロ値になる。
// ゼロ値の記録は日別集計から除外される。
func (p *Planner) parseCreatedAt(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return p.now().UTC()
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// looseNumber は数値または数値文字列を受け付ける数値。
// 解釈できない値は0になる。
type looseNumber float64

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = looseNumber(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = looseNumber(v)
			return nil
		}
	}
	*n = 0
	return nil
}

// looseText は文字列または数値を受け付ける入力値。数値は文字列に変換して保持する。
type looseText string

func (t *looseText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = looseText(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*t = looseText(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}
	*t = ""
	return nil
}
