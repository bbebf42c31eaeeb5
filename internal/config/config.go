package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Feed      Feed      `yaml:"feed"`
	Anthropic Anthropic `yaml:"anthropic"`
	LinkedIn  LinkedIn  `yaml:"linkedin"`
	Store     Store     `yaml:"store"`
	Output    Output    `yaml:"output"`
	Schedule  Schedule  `yaml:"schedule"`
	Logging   Logging   `yaml:"logging"`
}

type Feed struct {
	URL string `yaml:"url"`
}

type Anthropic struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

type LinkedIn struct {
	EmailEnv    string `yaml:"email_env"`
	PasswordEnv string `yaml:"password_env"`
	Headless    bool   `yaml:"headless"`
}

type Store struct {
	Backend string `yaml:"backend"` // "file" or "sqlite"
	Path    string `yaml:"path"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Schedule struct {
	Interval   Duration `yaml:"interval"`
	RunTimeout Duration `yaml:"run_timeout"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "1h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Logging struct {
	Dir string `yaml:"dir"`
}

// Credentials holds the secrets resolved from the environment at startup.
// They are never written to the config file.
type Credentials struct {
	AnthropicAPIKey  string
	LinkedInEmail    string
	LinkedInPassword string
}

// ConfigDir returns the XDG config directory for autopost.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "autopost")
}

// DataDir returns the XDG data directory for autopost.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "autopost")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/autopost/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'autopost init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Anthropic: Anthropic{
			APIKeyEnv: "ANTHROPIC_API_KEY",
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 2500,
		},
		LinkedIn: LinkedIn{
			EmailEnv:    "LINKEDIN_EMAIL",
			PasswordEnv: "LINKEDIN_PASSWORD",
			Headless:    true,
		},
		Store: Store{
			Backend: "file",
		},
		Schedule: Schedule{
			Interval:   Duration(time.Hour),
			RunTimeout: Duration(5 * time.Minute),
		},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// ErrMissingSetting marks a required setting that was absent at startup.
type ErrMissingSetting struct {
	Setting string
}

func (e *ErrMissingSetting) Error() string {
	return fmt.Sprintf("required setting missing: %s", e.Setting)
}

// ResolveCredentials reads the environment variables named in the config.
// Every credential is required; a missing one aborts the run before any
// network call is made.
func (c *Config) ResolveCredentials() (*Credentials, error) {
	creds := &Credentials{
		AnthropicAPIKey:  os.Getenv(c.Anthropic.APIKeyEnv),
		LinkedInEmail:    os.Getenv(c.LinkedIn.EmailEnv),
		LinkedInPassword: os.Getenv(c.LinkedIn.PasswordEnv),
	}
	if creds.AnthropicAPIKey == "" {
		return nil, &ErrMissingSetting{Setting: c.Anthropic.APIKeyEnv}
	}
	if creds.LinkedInEmail == "" {
		return nil, &ErrMissingSetting{Setting: c.LinkedIn.EmailEnv}
	}
	if creds.LinkedInPassword == "" {
		return nil, &ErrMissingSetting{Setting: c.LinkedIn.PasswordEnv}
	}
	return creds, nil
}

// Validate checks the non-credential required settings.
func (c *Config) Validate() error {
	if c.Feed.URL == "" {
		return &ErrMissingSetting{Setting: "feed.url"}
	}
	if c.Store.Backend != "file" && c.Store.Backend != "sqlite" {
		return fmt.Errorf("unknown store backend %q (want \"file\" or \"sqlite\")", c.Store.Backend)
	}
	return nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// StorePath returns the effective dedup store path for the configured backend.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	name := "posted_articles.json"
	if c.Store.Backend == "sqlite" {
		name = "autopost.db"
	}
	return filepath.Join(c.GetDataDir(), name)
}

// LogDir returns the effective operational log directory.
func (c *Config) LogDir() string {
	if c.Logging.Dir != "" {
		return c.Logging.Dir
	}
	return filepath.Join(c.GetDataDir(), "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
