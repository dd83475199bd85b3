package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mohit1233k/Ranking-agent/internal/logging"
	"github.com/mohit1233k/Ranking-agent/internal/scheduler"
	"github.com/mohit1233k/Ranking-agent/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web front end, JSON API and scheduler",
	Long: `serve starts the HTTP server with the search front end, the ranking
history views and the JSON API, plus the cron scheduler when one is
configured. The process runs until interrupted.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	logrus.Info("Starting ranking agent")

	backend, a, gen, err := openAnalyzer(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	s, tr, err := buildTracker(cfg, a, gen)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logrus.Errorf("Failed to close browser: %v", err)
		}
	}()

	sched, err := scheduler.NewService(cfg, tr)
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	srv := server.New(cfg, s, a, tr, logging.Component("server"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
	return nil
}
