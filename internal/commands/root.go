// Package commands implements the rankagent command-line interface: a
// one-shot batch checker, the web front end server and offline report
// rendering, all sharing the same wired services.
package commands

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mohit1233k/Ranking-agent/internal/analyzer"
	"github.com/mohit1233k/Ranking-agent/internal/archive"
	"github.com/mohit1233k/Ranking-agent/internal/browser"
	"github.com/mohit1233k/Ranking-agent/internal/config"
	"github.com/mohit1233k/Ranking-agent/internal/extractor"
	"github.com/mohit1233k/Ranking-agent/internal/logging"
	"github.com/mohit1233k/Ranking-agent/internal/notifications"
	"github.com/mohit1233k/Ranking-agent/internal/reports"
	"github.com/mohit1233k/Ranking-agent/internal/searcher"
	"github.com/mohit1233k/Ranking-agent/internal/store"
	"github.com/mohit1233k/Ranking-agent/internal/tracker"
)

var version = "dev"

var debug bool

var rootCmd = &cobra.Command{
	Use:     "rankagent",
	Short:   "Track Google rankings of a target domain for a keyword set",
	Version: version,
	Long: `rankagent scrapes Google search results for configured keywords,
records where a target domain ranks, and renders trend reports.
It runs as a one-shot batch check, a web front end with a JSON API,
or on a cron schedule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reportCmd)
}

// setup loads configuration and prepares logging for a command run
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if debug {
		cfg.Debug = true
	}

	logging.Setup(cfg.LogDir, cfg.Debug)
	return cfg, nil
}

// openAnalyzer opens the ranking store and the services layered on it. The
// caller owns the returned backend and must close it.
func openAnalyzer(ctx context.Context, cfg *config.Config) (store.Backend, *analyzer.Analyzer, *reports.Generator, error) {
	backend, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open ranking store: %w", err)
	}

	a := analyzer.New(cfg, backend, logging.Component("analyzer"))
	gen := reports.New(cfg, a, logging.Component("analyzer"))
	return backend, a, gen, nil
}

// buildTracker assembles the browser-driving half of the pipeline. The
// caller owns the returned searcher and must close it to release the
// browser.
func buildTracker(cfg *config.Config, a *analyzer.Analyzer, gen *reports.Generator) (*searcher.Searcher, *tracker.Service, error) {
	archiver, err := archive.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to configure report archive: %w", err)
	}

	notifier := notifications.NewService(cfg)

	searcherLog := logging.Component("searcher")
	mgr := browser.New(cfg.Headless, cfg.BrowserPath, searcherLog)
	s := searcher.New(cfg, mgr, extractor.New(nil), notifier, searcherLog)

	tr := tracker.NewService(cfg, s, a, gen, archiver, notifier, logrus.StandardLogger())
	return s, tr, nil
}
