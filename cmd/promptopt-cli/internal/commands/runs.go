package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/promptopt-go/pkg/archive"
	"github.com/XiaoConstantine/promptopt-go/pkg/config"
	errs "github.com/XiaoConstantine/promptopt-go/pkg/errors"
)

// NewRunsCommand builds the `runs` subcommand.
func NewRunsCommand() *cobra.Command {
	var (
		configPath  string
		archivePath string
	)

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List archived runs or print one run's report",
		Long: `Without arguments, list the runs stored in the archive, newest first. With a
run ID, print that run's full markdown report.`,
		Example: `  promptopt-cli runs --archive runs.db
  promptopt-cli runs 6f1c0e0a-8a3a-4a9e-9e1f-2b7d2f9c4711 --archive runs.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, func(c *config.Config) {
				if archivePath != "" {
					c.ArchivePath = archivePath
				}
			})
			if err != nil {
				return err
			}
			if cfg.ArchivePath == "" {
				return errs.New(errs.InvalidInput, "no archive configured; pass --archive or set archive_path")
			}

			a, err := archive.Open(cfg.ArchivePath)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := context.Background()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				run, err := a.Get(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, run.Report)
				return nil
			}

			summaries, err := a.List(ctx)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(out, "no runs archived yet")
				return nil
			}

			header := color.New(color.Bold)
			header.Fprintf(out, "%-36s  %6s  %-9s  %-19s  %s\n", "ID", "ROUNDS", "CANCELLED", "STARTED", "TASK")
			for _, s := range summaries {
				fmt.Fprintf(out, "%-36s  %6d  %-9t  %-19s  %s\n",
					s.ID, s.Rounds, s.Cancelled, s.StartedAt.Format("2006-01-02 15:04:05"), truncateTask(s.Task))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a promptopt config file")
	cmd.Flags().StringVar(&archivePath, "archive", "", "SQLite archive to read")

	return cmd
}

func truncateTask(task string) string {
	const limit = 60
	runes := []rune(task)
	if len(runes) <= limit {
		return task
	}
	return string(runes[:limit-3]) + "..."
}
