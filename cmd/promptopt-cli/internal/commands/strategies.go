package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/promptopt-go/pkg/variants"
)

// NewStrategiesCommand builds the `strategies` subcommand.
func NewStrategiesCommand() *cobra.Command {
	var (
		task        string
		taskContext string
	)

	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "List the seed prompt strategies with rendered samples",
		Long: `Print every seed strategy the optimizer starts from, each rendered against a
sample task so you can see the phrasing it produces before spending tokens.`,
		Example: `  promptopt-cli strategies
  promptopt-cli strategies --task "Write a commit message for this diff"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			title := color.New(color.Bold, color.FgCyan)

			for i, v := range variants.Seed() {
				if i > 0 {
					fmt.Fprintln(out)
				}
				title.Fprintf(out, "%s\n", v.Name)
				fmt.Fprintln(out, "----------------------------------------")
				fmt.Fprintln(out, v.Render(task, taskContext))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&task, "task", "Summarize the attached incident report", "Sample task to render each strategy against")
	cmd.Flags().StringVar(&taskContext, "context", "", "Sample context to render with")

	return cmd
}
