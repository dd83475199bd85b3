package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Search every configured keyword once and record the rankings",
	Long: `check runs the batch pipeline: each configured keyword is searched,
the target domain's position is appended to the ranking store, and
console and CSV reports are rendered when the batch finishes.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	backend, a, gen, err := openAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	s, tr, err := buildTracker(cfg, a, gen)
	if err != nil {
		return err
	}
	// The browser is released even when the run aborts early.
	defer func() {
		if err := s.Close(); err != nil {
			logrus.Errorf("Failed to close browser: %v", err)
		}
	}()

	return tr.Run(ctx, "cli")
}
