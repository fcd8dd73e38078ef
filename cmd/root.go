package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/propdesk/internal/app"
	"github.com/zjrosen/propdesk/internal/config"
	"github.com/zjrosen/propdesk/internal/log"
	"github.com/zjrosen/propdesk/internal/mode"
	"github.com/zjrosen/propdesk/internal/mode/browse"
	"github.com/zjrosen/propdesk/internal/notify"
	"github.com/zjrosen/propdesk/internal/pubsub"
)

func init() {
	// Query the terminal background before any Bubble Tea program starts so
	// the OSC 11 reply cannot race the input loop.
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

const localConfigPath = ".propdesk/config.yaml"

var rootCmd = &cobra.Command{
	Use:   "propdesk",
	Short: "A terminal back office for real-estate listings",
	Long: `Browse, filter and manage locations, developers, projects, properties,
users and leads of the real-estate back office from the terminal.

Without a subcommand propdesk opens the interactive tables.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	RunE:              runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/propdesk/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (PROPDESK_LOG, default debug.log)")
	rootCmd.PersistentFlags().String("base-url", "", "API root (overrides config)")

	_ = viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("base-url"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("api.base_url", defaults.API.BaseURL)
	viper.SetDefault("api.timeout", defaults.API.Timeout)
	viper.SetDefault("api.token_file", defaults.API.TokenFile)
	viper.SetDefault("ui.page_size", defaults.UI.PageSize)
	viper.SetDefault("ui.search_debounce", defaults.UI.SearchDebounce)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", config.DefaultTracesFilePath())
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("playground.addr", defaults.Playground.Addr)
	viper.SetDefault("playground.db_path", defaults.Playground.DBPath)
	viper.SetDefault("playground.token", defaults.Playground.Token)
	viper.SetDefault("playground.seed", defaults.Playground.Seed)

	// PROPDESK_API_BASE_URL, PROPDESK_UI_PAGE_SIZE, ...
	viper.SetEnvPrefix("propdesk")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .propdesk/config.yaml (current directory)
		// 2. ~/.config/propdesk/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "propdesk"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create the default in the user
		// config directory.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if path := userConfigPath(); path != "" {
				if writeErr := config.WriteDefaultConfig(path); writeErr == nil {
					viper.SetConfigFile(path)
					_ = viper.ReadInConfig()
				}
			}
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "propdesk", "config.yaml")
}

// configFilePath is where column changes are saved.
func configFilePath() string {
	if path := viper.ConfigFileUsed(); path != "" {
		return path
	}
	if path := userConfigPath(); path != "" {
		return path
	}
	return localConfigPath
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	if os.Getenv("PROPDESK_DEBUG") == "" && !debugFlag {
		return nil
	}
	logPath := os.Getenv("PROPDESK_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.Init(logPath)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	cobra.OnFinalize(cleanup)
	debugFlag = true
	log.Info(log.CatConfig, "propdesk starting", "command", cmd.Name(), "version", version, "logPath", logPath)
	return nil
}

func runApp(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	notices := pubsub.NewBroker[notify.Notification]()
	defer notices.Close()

	rt, err := newRuntime(cfg, notify.NewBrokerNotifier(notices))
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		if err := rt.creds.Watch(ctx); err != nil {
			log.ErrorErr(log.CatAuth, "Token watcher stopped", err)
		}
	}()

	svc := mode.Services{
		Repos:      rt.repos,
		Refs:       rt.refs,
		Notifier:   rt.notifier,
		Flags:      rt.flags,
		Config:     &cfg,
		ConfigPath: configFilePath(),
	}
	model := app.New(svc, browse.Screens(svc), app.Options{
		Notices:     notices,
		Credentials: rt.creds.Broker(),
		Debug:       debugFlag,
	})
	p := tea.NewProgram(
		&model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	model.Close()
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
