// Package cmd implements the bunkerdash CLI commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/bunkerdash/internal/config"
	"github.com/theirongolddev/bunkerdash/internal/dashboard"
	"github.com/theirongolddev/bunkerdash/internal/logging"
	"github.com/theirongolddev/bunkerdash/internal/model"
	"github.com/theirongolddev/bunkerdash/internal/store"
)

var (
	flagDBPath string
	flagQuiet  bool
)

var rootCmd = &cobra.Command{
	Use:   "bunkerdash",
	Short: "Dashboard Bunker AD",
	Long:  "Suivi du MRR, des clients, de leur activité et des paiements d'affiliés.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return setupLogging()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var logCloser io.Closer

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  Erreur : %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLite database path (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress informational output")
}

// setupLogging sends logrus output to the log file so the terminal stays
// free for the TUI and the tables.
func setupLogging() error {
	cfg := loadConfig()
	closer, err := logging.Setup(config.LogPath(cfg), cfg.General.LogLevel)
	if err != nil {
		// Logging is best effort.
		logging.Discard()
		return nil
	}
	logCloser = closer
	return nil
}

func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Warn("loading config, using defaults")
		return config.DefaultConfig()
	}
	return cfg
}

func dbPath(cfg config.Config) string {
	if flagDBPath != "" {
		return flagDBPath
	}
	return config.DBPath(cfg)
}

// session is an open database with a dispatcher over its document.
type session struct {
	cfg      config.Config
	db       *store.Store
	dispatch *dashboard.Dispatcher
	// stored is false when the database held no document yet.
	stored bool
}

func (s *session) Close() error {
	return s.db.Close()
}

// openSession opens the database and loads the document, falling back to the
// default one. The configured default time range applies only to a fresh
// document. A dialog left open in the stored document is closed: every front
// end starts on the dashboard.
func openSession(ctx context.Context) (*session, error) {
	cfg := loadConfig()
	db, err := store.Open(dbPath(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	state := db.Load(ctx)
	stored := state != nil
	if !stored {
		state = model.DefaultState()
		if r, err := model.ParseTimeRange(cfg.General.DefaultTimeRange); err == nil {
			state.UI.MrrTimeRange = r
		}
	}

	state.UI.Modal = model.Modal{}

	d := dashboard.NewDispatcher(dashboard.NewStore(state), db)
	return &session{cfg: cfg, db: db, dispatch: d, stored: stored}, nil
}

// info prints to stderr unless --quiet is set.
func info(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
