package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/promptopt-go/pkg/config"
	"github.com/XiaoConstantine/promptopt-go/pkg/datasets"
	errs "github.com/XiaoConstantine/promptopt-go/pkg/errors"
	"github.com/XiaoConstantine/promptopt-go/pkg/gateway"
)

// NewBatchCommand builds the `batch` subcommand.
func NewBatchCommand() *cobra.Command {
	var (
		datasetPath string
		iterations  int
		configPath  string
		provider    string
		archivePath string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Optimize prompts for every task in a parquet dataset",
		Long: `Run the optimization loop once per row of a parquet dataset. The file must
have a string column named "task"; an optional "context" column supplies
extra context per row.

A failed task is reported and skipped so the rest of the batch still runs.
Ctrl-C stops between tasks and at round boundaries within the current task.`,
		Example: `  promptopt-cli batch --dataset tasks.parquet --archive runs.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetPath == "" {
				return errs.New(errs.InvalidInput, "--dataset must not be empty")
			}

			cfg, err := loadConfig(configPath, func(c *config.Config) {
				if cmd.Flags().Changed("iterations") {
					c.Iterations = iterations
				}
				if provider != "" {
					c.Provider = provider
				}
				if archivePath != "" {
					c.ArchivePath = archivePath
				}
			})
			if err != nil {
				return err
			}

			tasks, err := datasets.LoadTasks(datasetPath)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				return errs.WithFields(
					errs.New(errs.InvalidInput, "dataset contains no tasks"),
					errs.Fields{"path": datasetPath},
				)
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

			out := cmd.OutOrStdout()
			heading := color.New(color.Bold, color.FgCyan)
			warn := color.New(color.FgYellow)

			completed := 0
			for i, item := range tasks {
				if ctx.Err() != nil {
					break
				}
				heading.Fprintf(out, "=== Task %d/%d ===\n\n", i+1, len(tasks))

				if _, err := optimizeAndReport(ctx, loop, cfg, item.Task, item.Context, out); err != nil {
					warn.Fprintf(cmd.ErrOrStderr(), "task %d failed: %v\n", i+1, err)
					continue
				}
				completed++
				fmt.Fprintln(out)
			}

			fmt.Fprintf(out, "completed %d of %d tasks\n", completed, len(tasks))
			if ctx.Err() != nil {
				warn.Fprintln(cmd.ErrOrStderr(), "batch cancelled; remaining tasks were skipped")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Parquet file with a task column (required)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Optimization rounds per task (1-20)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a promptopt config file")
	cmd.Flags().StringVar(&provider, "provider", "", "Gateway backend (anthropic, mcp, cli)")
	cmd.Flags().StringVar(&archivePath, "archive", "", "SQLite file to archive each run to")

	return cmd
}
