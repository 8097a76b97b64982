package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/promptopt-go/cmd/promptopt-cli/internal/commands"
)

var rootCmd = &cobra.Command{
	Use:   "promptopt-cli",
	Short: "Iterative prompt optimization against a live agent",
	Long: `A command-line interface for promptopt-go that pits differently phrased
prompts for the same task against each other through an agent gateway,
has a judge pick the strongest response each round, and folds the judge's
guidance into the losing prompts before the next round.

The CLI provides:
- Single-task optimization with a markdown report
- Batch optimization over a parquet task file
- A catalog of the seed prompting strategies
- A SQLite archive of past runs`,
	Version: "0.1.0",
}

func main() {
	rootCmd.AddCommand(
		commands.NewRunCommand(),
		commands.NewBatchCommand(),
		commands.NewStrategiesCommand(),
		commands.NewRunsCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
