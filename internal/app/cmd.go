package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hitoshi/travelboard/internal/config"
)

// env はサブコマンドが共有する設定とロガー。PersistentPreRunEで初期化される。
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand はtravelboardのコマンドツリーを生成する。
// 画面の出力はstdout、ログはstderrに書き出す。
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "travelboard",
		Short:         "타이베이 여행 대시보드",
		Long:          "Taipei travel dashboard: backend proxy server and terminal dashboard (weather, phrases, translation, spots, family budget).",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "healthcheck" {
				return nil
			}
			cfg, l, err := Init(stderr)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			e.cfg, e.logger = cfg, l
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(
		newServeCommand(e),
		newMigrateCommand(e),
		newPruneCommand(e),
		newHealthcheckCommand(),
		newHomeCommand(e),
		newPhrasesCommand(e),
		newTranslateCommand(e),
		newSpotsCommand(e),
		newSpotCommand(e),
		newBudgetCommand(e),
	)
	return root
}

// Run はargsでコマンドを実行する。argsにはos.Args[1:]を渡す。
// サブコマンドが省略された場合はserveとして起動する。
func Run(stdout, stderr io.Writer, args []string) error {
	if len(args) == 0 {
		args = []string{"serve"}
	}
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.Execute()
}

// Main はプロセスのエントリーポイント。終了コードを返す。
func Main() int {
	if err := Run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func newMigrateCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply store migrations for STORE_URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(e.cfg, e.logger)
		},
	}
}

func newPruneCommand(e *env) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete offline cache entries not refreshed within --days (budget data is kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}
			n, err := runPrune(cmd.Context(), e.cfg, e.logger, days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d cache entries\n", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "retention period in days")
	return cmd
}

func newHealthcheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe /health of the local server (for container health checks)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			port := os.Getenv("SERVER_PORT")
			if port == "" {
				port = "3000"
			}
			return runHealthcheck(port)
		},
	}
}
