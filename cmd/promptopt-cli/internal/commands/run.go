package commands

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/promptopt-go/pkg/config"
	errs "github.com/XiaoConstantine/promptopt-go/pkg/errors"
	"github.com/XiaoConstantine/promptopt-go/pkg/gateway"
)

// NewRunCommand builds the `run` subcommand.
func NewRunCommand() *cobra.Command {
	var (
		task        string
		taskContext string
		iterations  int
		configPath  string
		provider    string
		model       string
		archivePath string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Optimize prompts for a single task",
		Long: `Run the full optimization loop for one task: fan the prompt variants out
against the configured gateway, judge the responses, evolve the losers, and
print a markdown report of every round.

Ctrl-C stops the loop at the next round boundary; rounds already in flight
finish and stay in the report.`,
		Example: `  # Three rounds against the Anthropic API
  promptopt-cli run --task "Summarize this week's oncall report"

  # Five rounds through a local agent CLI, archived for later
  promptopt-cli run --task "Draft release notes" --provider cli \
    --iterations 5 --archive runs.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(task) == "" {
				return errs.New(errs.InvalidInput, "--task must not be empty")
			}

			cfg, err := loadConfig(configPath, func(c *config.Config) {
				if cmd.Flags().Changed("iterations") {
					c.Iterations = iterations
				}
				if provider != "" {
					c.Provider = provider
				}
				if model != "" {
					c.Model = model
				}
				if archivePath != "" {
					c.ArchivePath = archivePath
				}
			})
			if err != nil {
				return err
			}

			logger := setupLogging(cfg)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			gw, shutdown, err := gateway.FromConfig(ctx, cfg)
			if err != nil {
				return err
			}
			defer shutdown()

			loop := buildLoop(gw, cfg, logger)

			result, err := optimizeAndReport(ctx, loop, cfg, task, taskContext, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if result.Cancelled {
				color.New(color.FgYellow).Fprintln(cmd.ErrOrStderr(), "run cancelled; the report covers the rounds that completed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&task, "task", "", "Task for the agent to perform (required)")
	cmd.Flags().StringVar(&taskContext, "context", "", "Extra context appended to every prompt")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Optimization rounds to run (1-20)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a promptopt config file")
	cmd.Flags().StringVar(&provider, "provider", "", "Gateway backend (anthropic, mcp, cli)")
	cmd.Flags().StringVar(&model, "model", "", "Model ID for the anthropic provider")
	cmd.Flags().StringVar(&archivePath, "archive", "", "SQLite file to archive the run to")

	return cmd
}
