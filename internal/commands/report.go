package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render reports from the stored history without searching",
	Example: `  # Print the latest positions per keyword
  rankagent report

  # Export the full history
  rankagent report -f csv
  rankagent report -f html`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "console", "report format (console, csv, html)")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	backend, _, gen, err := openAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	path, err := gen.Generate(ctx, reportFormat, os.Stdout)
	if err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
	}

	return nil
}
