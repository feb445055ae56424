package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/bunkerdash/internal/server"
)

var (
	flagServeAddr     string
	flagServeInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard web view with a JSON/SSE API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.Flags().DurationVar(&flagServeInterval, "interval", 0, "Polling interval for external changes (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	cfg := server.Config{
		Addr:         s.cfg.Server.Addr,
		Interval:     time.Duration(s.cfg.Server.PollIntervalSec) * time.Second,
		EventsBuffer: s.cfg.Server.EventsBuffer,
		DBPath:       dbPath(s.cfg),
	}
	if flagServeAddr != "" {
		cfg.Addr = flagServeAddr
	}
	if flagServeInterval > 0 {
		cfg.Interval = flagServeInterval
	}
	svc := server.New(cfg, s.dispatch, s.db)

	fmt.Printf("  bunkerdash listening on http://%s\n", cfg.Addr)
	fmt.Printf("  Database: %s\n", cfg.DBPath)
	fmt.Println("  Stop with Ctrl+C")

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
