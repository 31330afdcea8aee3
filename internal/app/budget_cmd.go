package app

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hitoshi/travelboard/internal/budget"
	"github.com/hitoshi/travelboard/internal/cli"
	"github.com/hitoshi/travelboard/internal/model"
)

// budgetOptions はbudgetサブコマンド共通のフラグ。
type budgetOptions struct {
	offline bool
}

func newBudgetCommand(e *env) *cobra.Command {
	opts := &budgetOptions{}
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Family travel budget (members, expenses, trip window)",
	}
	cmd.PersistentFlags().BoolVar(&opts.offline, "offline", false, "do not fetch the exchange rate; use FALLBACK_EXCHANGE_RATE")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show budget summary, member ranking, categories and daily pacing",
			Args:  cobra.NoArgs,
			RunE: budgetRunE(e, opts, false, func(cmd *cobra.Command, p *budget.Planner, _ []string) error {
				out := cmd.OutOrStdout()
				fmt.Fprint(out, cli.RenderBudget(p))
				fmt.Fprint(out, cli.RenderExpenses(p))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "add-member <name> <daily-budget-twd>",
			Short: "Add a family member",
			Args:  cobra.ExactArgs(2),
			RunE: budgetRunE(e, opts, true, func(cmd *cobra.Command, p *budget.Planner, args []string) error {
				m, err := p.AddMember(args[0], parseAmount(args[1]))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", m.Name, m.ID)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "set-member-budget <member-id> <daily-budget-twd>",
			Short: "Update a member's daily budget (invalid values become 0)",
			Args:  cobra.ExactArgs(2),
			RunE: budgetRunE(e, opts, true, func(cmd *cobra.Command, p *budget.Planner, args []string) error {
				if !hasMember(p, args[0]) {
					return model.NewValidationError("구성원을 찾을 수 없습니다: " + args[0])
				}
				p.UpdateMemberBudget(args[0], args[1])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "remove-member <member-id>",
			Short: "Remove a member and the member's own expenses",
			Args:  cobra.ExactArgs(1),
			RunE: budgetRunE(e, opts, true, func(cmd *cobra.Command, p *budget.Planner, args []string) error {
				return p.RemoveMember(args[0])
			}),
		},
		newAddExpenseCommand(e, opts),
		&cobra.Command{
			Use:   "remove-expense <expense-id>",
			Short: "Remove an expense record",
			Args:  cobra.ExactArgs(1),
			RunE: budgetRunE(e, opts, true, func(cmd *cobra.Command, p *budget.Planner, args []string) error {
				p.RemoveExpense(args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all expense records",
			Args:  cobra.NoArgs,
			RunE: budgetRunE(e, opts, true, func(cmd *cobra.Command, p *budget.Planner, _ []string) error {
				p.ClearExpenses()
				return nil
			}),
		},
		newSetTripCommand(e, opts),
		&cobra.Command{
			Use:   "import <plan.toml>",
			Short: "Replace the trip window and members from a TOML plan file",
			Args:  cobra.ExactArgs(1),
			RunE: budgetRunE(e, opts, true, func(cmd *cobra.Command, p *budget.Planner, args []string) error {
				pf, err := budget.LoadPlanFile(args[0])
				if err != nil {
					return err
				}
				return p.ApplyPlanFile(pf)
			}),
		},
		&cobra.Command{
			Use:   "export [plan.toml]",
			Short: "Write the trip window and members as TOML (stdout when no file is given)",
			Args:  cobra.MaximumNArgs(1),
			RunE: budgetRunE(e, opts, false, func(cmd *cobra.Command, p *budget.Planner, args []string) error {
				if len(args) == 0 {
					return p.WritePlanFile(cmd.OutOrStdout())
				}
				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("creating plan file: %w", err)
				}
				if err := p.WritePlanFile(f); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			}),
		},
	)
	return cmd
}

func newAddExpenseCommand(e *env, opts *budgetOptions) *cobra.Command {
	var member, category, note string
	cmd := &cobra.Command{
		Use:   "add-expense <amount-krw>",
		Short: "Record an expense in KRW (converted to TWD at the current rate)",
		Args:  cobra.ExactArgs(1),
		RunE: budgetRunE(e, opts, true, func(cmd *cobra.Command, p *budget.Planner, args []string) error {
			target := p.SelectedTarget()
			switch strings.TrimSpace(member) {
			case "":
			case "shared":
				target = budget.SharedMemberID
			default:
				target = strings.TrimSpace(member)
			}
			c, ok := budget.ParseCategory(category)
			if !ok {
				return model.NewValidationError("지출 카테고리를 선택해주세요.")
			}
			exp, err := p.AddExpense(target, c, parseAmount(args[0]), note)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s = %s (%s)\n",
				cli.FormatKRW(exp.AmountKRW), cli.FormatTWD(exp.AmountTWD), exp.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&member, "member", "", `member id, or "shared" to split across all members (default: first member)`)
	cmd.Flags().StringVar(&category, "category", string(budget.CategoryFood), "food, transport, stay, activity, shopping, other")
	cmd.Flags().StringVar(&note, "note", "", "free-text note")
	return cmd
}

func newSetTripCommand(e *env, opts *budgetOptions) *cobra.Command {
	var start, days, total string
	cmd := &cobra.Command{
		Use:   "set-trip",
		Short: "Set start date, number of days and the manual total budget",
		Args:  cobra.NoArgs,
		RunE: budgetRunE(e, opts, true, func(cmd *cobra.Command, p *budget.Planner, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("start") {
				if err := p.SetStartDate(start); err != nil {
					return err
				}
			}
			if flags.Changed("days") {
				p.SetDays(days)
			}
			if flags.Changed("total") {
				p.SetTotalBudget(total)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&start, "start", "", "trip start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&days, "days", "", "trip length in days")
	cmd.Flags().StringVar(&total, "total", "", `manual total budget in TWD ("" returns to automatic)`)
	return cmd
}

// budgetRunE は予算コマンドの共通処理を組み立てる。
// 保存済みの状態を読み込み、必要なら為替レートを取得してからfnを実行する。
// persistがtrueの場合、fnが成功したら状態を保存する。
func budgetRunE(
	e *env,
	opts *budgetOptions,
	persist bool,
	fn func(cmd *cobra.Command, p *budget.Planner, args []string) error,
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx, e)
		if err != nil {
			return err
		}
		defer s.close()

		if !opts.offline {
			res := s.gateway.ExchangeRate(ctx)
			if res.Success {
				s.planner.SetExchangeRate(res.Data.BaseRate)
			} else {
				e.logger.Warn("exchange rate unavailable, using fallback",
					slog.String("code", res.Code),
					slog.Float64("fallback_rate", e.cfg.FallbackExchangeRate),
				)
			}
		}

		if err := fn(cmd, s.planner, args); err != nil {
			return err
		}
		if persist {
			s.planner.Persist(ctx, s.store)
		}
		return nil
	}
}

// parseAmount は数値を解釈する。解釈できない場合はNaNを返し、検証で拒否させる。
func parseAmount(raw string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func hasMember(p *budget.Planner, id string) bool {
	for _, m := range p.Members() {
		if m.ID == id {
			return true
		}
	}
	return false
}
