// Package commands holds the promptopt-cli subcommands and the wiring
// between configuration, gateways, the optimization loop, and the archive.
package commands

import (
	"context"
	"io"

	"github.com/XiaoConstantine/promptopt-go/pkg/archive"
	"github.com/XiaoConstantine/promptopt-go/pkg/config"
	"github.com/XiaoConstantine/promptopt-go/pkg/core"
	"github.com/XiaoConstantine/promptopt-go/pkg/logging"
	"github.com/XiaoConstantine/promptopt-go/pkg/optimizer"
	"github.com/XiaoConstantine/promptopt-go/pkg/report"
)

// loadConfig loads the config file (or defaults), lets the command apply its
// flag overrides, and validates the final result.
func loadConfig(path string, mutate func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging installs the process-wide logger described by the config and
// returns it.
func setupLogging(cfg *config.Config) *logging.Logger {
	logger := logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(cfg.LogLevel),
		Outputs:  []logging.Output{logging.NewConsoleOutput(true, logging.WithJSON(cfg.LogJSON))},
	})
	logging.SetLogger(logger)
	return logger
}

// buildLoop assembles the optimization loop with the configured round count
// and a logging observer.
func buildLoop(gw core.Gateway, cfg *config.Config, logger *logging.Logger) *optimizer.Loop {
	return optimizer.New(gw,
		optimizer.WithIterations(cfg.Iterations),
		optimizer.WithObserver(logging.NewObserver(logger)),
	)
}

// archiveRun stores the result and report when an archive path is
// configured. With no path configured it is a no-op.
func archiveRun(ctx context.Context, cfg *config.Config, result *optimizer.RunResult, reportText string) error {
	if cfg.ArchivePath == "" {
		return nil
	}

	a, err := archive.Open(cfg.ArchivePath)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Save(ctx, result, reportText)
}

// optimizeAndReport runs one task through the loop, prints the report, and
// archives the run.
func optimizeAndReport(ctx context.Context, loop *optimizer.Loop, cfg *config.Config, task, taskContext string, out io.Writer) (*optimizer.RunResult, error) {
	result, err := loop.Run(ctx, task, taskContext)
	if err != nil {
		return nil, err
	}

	text := report.Build(result)
	if _, err := io.WriteString(out, text); err != nil {
		return nil, err
	}

	if err := archiveRun(ctx, cfg, result, text); err != nil {
		return nil, err
	}

	return result, nil
}
