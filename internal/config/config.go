// Package config provides configuration types and defaults for propdesk.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/propdesk/internal/log"
)

// Config holds all configuration options for propdesk.
type Config struct {
	API        APIConfig        `mapstructure:"api"`
	UI         UIConfig         `mapstructure:"ui"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Playground PlaygroundConfig `mapstructure:"playground"`
	Flags      map[string]bool  `mapstructure:"flags"`
}

// APIConfig describes how to reach the back-office REST API.
type APIConfig struct {
	// BaseURL is the API root, e.g. https://admin.example.com/api.
	BaseURL string `mapstructure:"base_url"`

	// Timeout bounds a single request. Zero leaves the transport default.
	Timeout time.Duration `mapstructure:"timeout"`

	// TokenFile holds the bearer token written by the login tool.
	// PROPDESK_TOKEN takes precedence when set.
	TokenFile string `mapstructure:"token_file"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	PageSize       int           `mapstructure:"page_size"`
	SearchDebounce time.Duration `mapstructure:"search_debounce"`
	MarkdownStyle  string        `mapstructure:"markdown_style"` // "dark" (default) or "light"

	// HiddenColumns maps a resource name (e.g. "projects") to column keys
	// that are not rendered.
	HiddenColumns map[string][]string `mapstructure:"hidden_columns"`
}

// TracingConfig holds distributed tracing configuration for API calls.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend: "none", "file", "stdout", "otlp".
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for the "file" exporter.
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for the "otlp" exporter.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate"`
}

// PlaygroundConfig configures the local REST playground server.
type PlaygroundConfig struct {
	Addr   string `mapstructure:"addr"`
	DBPath string `mapstructure:"db_path"`
	Token  string `mapstructure:"token"`
	Seed   bool   `mapstructure:"seed"`
}

// Resources lists the resource names accepted in ui.hidden_columns.
var Resources = []string{"locations", "developers", "projects", "properties", "users", "leads"}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "propdesk")
}

// DefaultTracesFilePath returns ~/.config/propdesk/traces/traces.jsonl or
// empty string if the home dir is unavailable.
func DefaultTracesFilePath() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "traces", "traces.jsonl")
}

// DefaultTokenFile returns ~/.config/propdesk/token.
func DefaultTokenFile() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "token")
}

// DefaultPlaygroundDBPath returns ~/.config/propdesk/playground.db.
func DefaultPlaygroundDBPath() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "playground.db")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL:   "http://127.0.0.1:8787",
			Timeout:   30 * time.Second,
			TokenFile: DefaultTokenFile(),
		},
		UI: UIConfig{
			PageSize:       10,
			SearchDebounce: 500 * time.Millisecond,
			MarkdownStyle:  "dark",
			HiddenColumns:  map[string][]string{},
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Playground: PlaygroundConfig{
			Addr:   "127.0.0.1:8787",
			DBPath: DefaultPlaygroundDBPath(),
			Token:  "playground",
			Seed:   true,
		},
	}
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := ValidateAPI(c.API); err != nil {
		return err
	}
	if err := ValidateUI(c.UI); err != nil {
		return err
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		return err
	}
	return ValidatePlayground(c.Playground)
}

// ValidateAPI checks API configuration for errors.
func ValidateAPI(api APIConfig) error {
	if api.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(api.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https, got %q", api.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url must include a host, got %q", api.BaseURL)
	}
	if api.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative, got %v", api.Timeout)
	}
	return nil
}

// ValidateUI checks UI configuration for errors.
func ValidateUI(ui UIConfig) error {
	if ui.PageSize < 1 || ui.PageSize > 100 {
		return fmt.Errorf("ui.page_size must be between 1 and 100, got %d", ui.PageSize)
	}
	if ui.SearchDebounce < 0 {
		return fmt.Errorf("ui.search_debounce must not be negative, got %v", ui.SearchDebounce)
	}
	switch ui.MarkdownStyle {
	case "", "dark", "light":
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", ui.MarkdownStyle)
	}
	for resource := range ui.HiddenColumns {
		if !isResource(resource) {
			return fmt.Errorf("ui.hidden_columns: unknown resource %q", resource)
		}
	}
	return nil
}

func isResource(name string) bool {
	for _, r := range Resources {
		if r == name {
			return true
		}
	}
	return false
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// ValidatePlayground checks playground server configuration for errors.
func ValidatePlayground(p PlaygroundConfig) error {
	if p.DBPath != "" && p.DBPath != ":memory:" && !filepath.IsAbs(p.DBPath) {
		return fmt.Errorf("playground.db_path must be an absolute path, got %q", p.DBPath)
	}
	return nil
}

// IsHidden reports whether a column is hidden for a resource.
func (u UIConfig) IsHidden(resource, column string) bool {
	for _, c := range u.HiddenColumns[resource] {
		if c == column {
			return true
		}
	}
	return false
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# propdesk configuration

# Back-office API
api:
  base_url: http://127.0.0.1:8787   # API root (the playground server listens here by default)
  timeout: 30s                       # Per-request timeout
  # token_file: ~/.config/propdesk/token  # Bearer token file; PROPDESK_TOKEN overrides it

# UI settings
ui:
  page_size: 10           # Rows per page for paginated resources
  search_debounce: 500ms  # Delay after the last keystroke before searching
  # markdown_style: dark  # Detail pane markdown style: "dark" (default) or "light"
  #
  # Columns hidden per resource (toggle with "c" in a table)
  # hidden_columns:
  #   projects: [launch]
  #   leads: [updated_at]

# Local playground server ('propdesk playground')
# playground:
#   addr: 127.0.0.1:8787
#   db_path: ~/.config/propdesk/playground.db
#   token: playground     # Bearer token the playground accepts
#   seed: true            # Insert sample data into an empty database

# Tracing of API calls
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/propdesk/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Feature flags
# flags:
#   cancel-stale-requests: true    # Abort superseded list requests in flight
#   mouse-selection: true          # Click rows to select them
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
