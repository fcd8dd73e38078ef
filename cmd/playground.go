package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/propdesk/internal/config"
	"github.com/zjrosen/propdesk/internal/devserver"
	"github.com/zjrosen/propdesk/internal/log"
)

var (
	playgroundAddr   string
	playgroundDB     string
	playgroundToken  string
	playgroundNoSeed bool
)

var playgroundCmd = &cobra.Command{
	Use:   "playground",
	Short: "Run a local back-office API with sample data",
	Long: `Run a local implementation of the back-office REST API backed by SQLite.

An empty database is seeded with sample locations, developers, projects,
properties, users and leads. Point api.base_url at the listen address and
export PROPDESK_TOKEN with the playground token to browse it:

  propdesk playground &
  PROPDESK_TOKEN=playground propdesk`,
	RunE: runPlayground,
}

func init() {
	rootCmd.AddCommand(playgroundCmd)

	playgroundCmd.Flags().StringVar(&playgroundAddr, "addr", "", "address to listen on (overrides config)")
	playgroundCmd.Flags().StringVar(&playgroundDB, "db", "", `database file, or ":memory:" (overrides config)`)
	playgroundCmd.Flags().StringVar(&playgroundToken, "token", "", "bearer token to accept (overrides config)")
	playgroundCmd.Flags().BoolVar(&playgroundNoSeed, "no-seed", false, "do not insert sample data")
}

// playgroundConfig applies command-line overrides to the configured values.
func playgroundConfig(cmd *cobra.Command) (config.PlaygroundConfig, error) {
	pc := cfg.Playground
	if cmd.Flags().Changed("addr") {
		pc.Addr = playgroundAddr
	}
	if cmd.Flags().Changed("db") {
		pc.DBPath = playgroundDB
		if pc.DBPath != ":memory:" {
			abs, err := filepath.Abs(pc.DBPath)
			if err != nil {
				return pc, fmt.Errorf("resolving --db: %w", err)
			}
			pc.DBPath = abs
		}
	}
	if cmd.Flags().Changed("token") {
		pc.Token = playgroundToken
	}
	if playgroundNoSeed {
		pc.Seed = false
	}
	if pc.DBPath == "" {
		pc.DBPath = ":memory:"
	}
	if err := config.ValidatePlayground(pc); err != nil {
		return pc, err
	}
	return pc, nil
}

func runPlayground(cmd *cobra.Command, _ []string) error {
	pc, err := playgroundConfig(cmd)
	if err != nil {
		return err
	}
	if !debugFlag {
		log.InitWriter(cmd.ErrOrStderr(), log.LevelInfo)
	}

	if pc.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(pc.DBPath), 0o750); err != nil {
			return fmt.Errorf("creating playground directory: %w", err)
		}
	}
	store, err := devserver.Open(pc.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if pc.Seed {
		seeded, err := devserver.Seed(ctx, store)
		if err != nil {
			return fmt.Errorf("seeding playground: %w", err)
		}
		if seeded {
			log.Info(log.CatServer, "Seeded sample data", "db", pc.DBPath)
		}
	}
	if pc.Token == "" {
		log.Warn(log.CatServer, "No token configured; every request is accepted")
	}

	return devserver.New(store, pc.Token).ListenAndServe(ctx, pc.Addr)
}
