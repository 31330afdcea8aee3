package budget

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/hitoshi/travelboard/internal/model"
)

// PlanFile はTOMLで記述する旅行プラン。メンバー構成と旅行期間をまとめて取り込む。
//
//	start_date   = "2026-11-03"
//	days         = 4
//	total_budget = 12000
//
//	[[members]]
//	name         = "나"
//	daily_budget = 1500
type PlanFile struct {
	StartDate   string           `toml:"start_date"`
	Days        int              `toml:"days"`
	TotalBudget *float64         `toml:"total_budget,omitempty"`
	Members     []PlanFileMember `toml:"members"`
}

// PlanFileMember はPlanFile内のメンバー定義。
type PlanFileMember struct {
	Name        string  `toml:"name"`
	DailyBudget float64 `toml:"daily_budget"`
}

// LoadPlanFile はTOMLファイルを読み込む。
func LoadPlanFile(path string) (PlanFile, error) {
	var pf PlanFile
	data, err := os.ReadFile(path)
	if err != nil {
		return pf, fmt.Errorf("reading plan file: %w", err)
	}
	if err := toml.Unmarshal(data, &pf); err != nil {
		return pf, fmt.Errorf("parsing plan file: %w", err)
	}
	return pf, nil
}

// WritePlanFile は現在のメンバー構成と旅行期間をTOMLで書き出す。
func (p *Planner) WritePlanFile(w io.Writer) error {
	pf := PlanFile{
		StartDate: p.plan.StartDate,
		Days:      p.plan.Days(),
	}
	if total, ok := p.plan.TotalOverride(); ok {
		pf.TotalBudget = &total
	}
	for _, m := range p.members {
		pf.Members = append(pf.Members, PlanFileMember{Name: m.Name, DailyBudget: float64(m.DailyBudgetTWD)})
	}
	return toml.NewEncoder(w).Encode(pf)
}

// ApplyPlanFile はPlanFileの内容でメンバー構成と旅行期間を置き換える。
// すべての項目を検証してから反映するため、エラー時は状態を変更しない。
// 置き換えで消えたメンバーの支出記録は削除し、共有支出は残す。
func (p *Planner) ApplyPlanFile(pf PlanFile) error {
	if len(pf.Members) == 0 {
		return model.NewValidationError("최소 1명의 구성원은 필요합니다.")
	}
	if len(pf.Members) > MaxMembers {
		return model.NewCapacityError(MaxMembers)
	}
	if pf.StartDate != "" {
		if _, ok := parseISODate(pf.StartDate, p.loc); !ok {
			return model.NewValidationError("여행 시작일을 YYYY-MM-DD 형식으로 입력해주세요.")
		}
	}
	if pf.Days < 0 {
		return model.NewValidationError("여행 일수를 올바르게 입력해주세요.")
	}
	if pf.TotalBudget != nil && !isPositive(*pf.TotalBudget) {
		return model.NewValidationError("총 예산(TWD)을 올바르게 입력해주세요.")
	}

	// 同名メンバーは既存のIDを引き継ぎ、支出記録の所有関係を保つ。
	existing := make(map[string]string, len(p.members))
	for _, m := range p.members {
		if _, dup := existing[m.Name]; !dup {
			existing[m.Name] = m.ID
		}
	}

	members := make([]Member, 0, len(pf.Members))
	for i, fm := range pf.Members {
		name := strings.TrimSpace(fm.Name)
		if name == "" {
			return model.NewValidationError(fmt.Sprintf("%d번째 구성원 이름을 입력해주세요.", i+1))
		}
		if !isPositive(fm.DailyBudget) {
			return model.NewValidationError(fmt.Sprintf("%s 일일 예산(TWD)을 올바르게 입력해주세요.", name))
		}
		id, ok := existing[name]
		if ok {
			delete(existing, name)
		} else {
			id = "member-" + uuid.NewString()
		}
		members = append(members, Member{ID: id, Name: name, DailyBudgetTWD: int(math.Round(fm.DailyBudget))})
	}

	kept := make(map[string]bool, len(members))
	for _, m := range members {
		kept[m.ID] = true
	}
	expenses := p.expenses[:0:0]
	for _, e := range p.expenses {
		if e.IsShared() || kept[e.MemberID] {
			expenses = append(expenses, e)
		}
	}

	p.members = members
	p.expenses = expenses
	if !p.isValidTarget(p.selectedTarget) {
		p.selectedTarget = members[0].ID
	}
	if pf.StartDate != "" {
		p.plan.StartDate = strings.TrimSpace(pf.StartDate)
	}
	if pf.Days > 0 {
		p.plan.DaysInput = strconv.Itoa(pf.Days)
	}
	if pf.TotalBudget != nil {
		p.plan.TotalBudgetInput = strconv.FormatFloat(math.Round(*pf.TotalBudget), 'f', -1, 64)
	} else {
		p.plan.TotalBudgetInput = ""
	}
	return nil
}
