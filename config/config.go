package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alorle/live-order/internal/channel"
	"github.com/alorle/live-order/internal/ranking"
	"github.com/alorle/live-order/logging"
)

// DefaultAPIBaseURL is the Twitch Helix endpoint used when none is configured.
const DefaultAPIBaseURL = "https://api.twitch.tv/helix"

// BoostRule moves Special ahead of the earliest live channel in References.
type BoostRule struct {
	Special    string   `yaml:"special"`
	References []string `yaml:"references"`
}

// Config holds the complete application configuration
type Config struct {
	// HTTP server settings
	HTTP struct {
		Address string `yaml:"address"`
		Port    string `yaml:"port"`
	} `yaml:"http"`

	// Twitch API settings
	Twitch struct {
		ClientID          string        `yaml:"client_id"`
		ClientSecret      string        `yaml:"client_secret"`
		APIBaseURL        string        `yaml:"api_base_url"`
		Timeout           time.Duration `yaml:"timeout"`
		TokenExpiryMargin time.Duration `yaml:"token_expiry_margin"`
	} `yaml:"twitch"`

	// Logging settings
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	// Channels is the roster in fallback order
	Channels []string `yaml:"channels"`

	// Ranking rules applied to live channels
	Ranking struct {
		Priority []string    `yaml:"priority"`
		Pins     []string    `yaml:"pins"`
		Boosts   []BoostRule `yaml:"boosts"`
	} `yaml:"ranking"`
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	var errors []string

	// Validate Twitch settings
	if c.Twitch.ClientID == "" {
		errors = append(errors, "Twitch client ID is required")
	}
	if c.Twitch.ClientSecret == "" {
		errors = append(errors, "Twitch client secret is required")
	}
	if c.Twitch.APIBaseURL == "" {
		errors = append(errors, "Twitch API base URL is required")
	}
	if c.Twitch.Timeout <= 0 {
		errors = append(errors, "Twitch timeout must be positive")
	}
	if c.Twitch.TokenExpiryMargin < 0 {
		errors = append(errors, "Token expiry margin cannot be negative")
	}

	// Validate logging settings
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errors = append(errors, err.Error())
	}
	switch c.Log.Format {
	case logging.FormatJSON, logging.FormatText:
	default:
		errors = append(errors, fmt.Sprintf("Log format must be %q or %q, got %q", logging.FormatJSON, logging.FormatText, c.Log.Format))
	}

	// Validate roster and ranking rules
	roster, err := c.Roster()
	if err != nil {
		errors = append(errors, fmt.Sprintf("Channels: %v", err))
	} else {
		errors = append(errors, c.validateRanking(roster)...)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func (c *Config) validateRanking(roster channel.Roster) []string {
	var errors []string

	for _, name := range c.Ranking.Priority {
		if !roster.Contains(name) {
			errors = append(errors, fmt.Sprintf("Priority channel %q is not in the roster", name))
		}
	}
	for _, name := range c.Ranking.Pins {
		if !roster.Contains(name) {
			errors = append(errors, fmt.Sprintf("Pinned channel %q is not in the roster", name))
		}
	}
	for i, b := range c.Ranking.Boosts {
		if !roster.Contains(b.Special) {
			errors = append(errors, fmt.Sprintf("Boost %d: special channel %q is not in the roster", i, b.Special))
		}
		if len(b.References) == 0 {
			errors = append(errors, fmt.Sprintf("Boost %d (%s): at least one reference is required", i, b.Special))
		}
		for _, ref := range b.References {
			if !roster.Contains(ref) {
				errors = append(errors, fmt.Sprintf("Boost %d (%s): reference %q is not in the roster", i, b.Special, ref))
			}
			if channel.Key(ref) == channel.Key(b.Special) {
				errors = append(errors, fmt.Sprintf("Boost %d (%s): special channel cannot reference itself", i, b.Special))
			}
		}
	}

	return errors
}

// Roster builds the channel roster from the configured channels.
func (c *Config) Roster() (channel.Roster, error) {
	return channel.NewRoster(c.Channels)
}

// Rules returns the configured ranking rules.
func (c *Config) Rules() ranking.Rules {
	rules := ranking.Rules{
		Priority: append([]string(nil), c.Ranking.Priority...),
		Pins:     append([]string(nil), c.Ranking.Pins...),
	}
	for _, b := range c.Ranking.Boosts {
		rules.Boosts = append(rules.Boosts, ranking.BoostRule{
			Special:    b.Special,
			References: append([]string(nil), b.References...),
		})
	}
	return rules
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.HTTP.Address + ":" + c.HTTP.Port
}

// Default returns a Config with sensible default values
func Default() *Config {
	cfg := &Config{}

	// HTTP defaults
	cfg.HTTP.Address = ""
	cfg.HTTP.Port = "3000"

	// Twitch defaults
	cfg.Twitch.ClientID = ""     // Required, no default
	cfg.Twitch.ClientSecret = "" // Required, no default
	cfg.Twitch.APIBaseURL = DefaultAPIBaseURL
	cfg.Twitch.Timeout = 10 * time.Second
	cfg.Twitch.TokenExpiryMargin = 60 * time.Second

	// Logging defaults
	cfg.Log.Level = "info"
	cfg.Log.Format = logging.FormatJSON

	// Default roster
	cfg.Channels = []string{
		"valiv2",
		"crackthecode1",
		"whiteshad0wz1989",
		"lyvickmax",
		"skyrroztv",
		"cohhcarnage",
		"kokushibo66612",
		"lesfaineants",
		"dacemaster",
		"lvndmark",
		"eslcs",
		"explorajeux",
	}

	// Live ordering defaults
	cfg.Ranking.Priority = []string{
		"valiv2",
		"crackthecode1",
		"whiteshad0wz1989",
		"lyvickmax",
		"skyrroztv",
		"cohhcarnage",
		"explorajeux",
		"kokushibo66612",
		"lesfaineants",
		"dacemaster",
		"lvndmark",
		"eslcs",
	}

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load loads configuration from a file (if provided) and applies environment variable overrides
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}
	return LoadPath(configPath)
}

// LoadPath is Load with an explicit config file path. A missing file means defaults.
func LoadPath(configPath string) (*Config, error) {
	var cfg *Config

	// Try to load from file if it exists
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg = Default()
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) error {
	parser := &envParser{}

	// HTTP settings
	parser.parseString("HTTP_ADDRESS", &cfg.HTTP.Address)
	parser.parseString("PORT", &cfg.HTTP.Port)

	// Twitch settings
	parser.parseString("TWITCH_CLIENT_ID", &cfg.Twitch.ClientID)
	parser.parseString("TWITCH_CLIENT_SECRET", &cfg.Twitch.ClientSecret)
	parser.parseString("TWITCH_API_BASE_URL", &cfg.Twitch.APIBaseURL)
	parser.parseDuration("UPSTREAM_TIMEOUT", &cfg.Twitch.Timeout)
	parser.parseMargin("TOKEN_EXPIRY_MARGIN", &cfg.Twitch.TokenExpiryMargin)

	// Logging settings
	parser.parseEnum("LOG_LEVEL", &cfg.Log.Level, map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	})
	parser.parseEnum("LOG_FORMAT", &cfg.Log.Format, map[string]bool{
		logging.FormatJSON: true,
		logging.FormatText: true,
	})

	// Roster and ranking
	parser.parseList("CHANNELS", &cfg.Channels)
	parser.parseList("LIVE_PRIORITY", &cfg.Ranking.Priority)
	parser.parseList("PIN_CHANNELS", &cfg.Ranking.Pins)
	parser.parseBoosts("BOOST_RULES", &cfg.Ranking.Boosts)

	return parser.err()
}

// Print outputs the configuration to w. The client secret is masked.
func (c *Config) Print(w io.Writer) {
	fmt.Fprintf(w, "httpAddress: %v\n", c.HTTP.Address)
	fmt.Fprintf(w, "httpPort: %v\n", c.HTTP.Port)
	fmt.Fprintf(w, "twitchClientId: %v\n", c.Twitch.ClientID)
	fmt.Fprintf(w, "twitchClientSecret: %v\n", mask(c.Twitch.ClientSecret))
	fmt.Fprintf(w, "twitchApiBaseUrl: %v\n", c.Twitch.APIBaseURL)
	fmt.Fprintf(w, "upstreamTimeout: %v\n", c.Twitch.Timeout)
	fmt.Fprintf(w, "tokenExpiryMargin: %v\n", c.Twitch.TokenExpiryMargin)
	fmt.Fprintf(w, "logLevel: %v\n", c.Log.Level)
	fmt.Fprintf(w, "logFormat: %v\n", c.Log.Format)
	fmt.Fprintf(w, "channels: %s\n", strings.Join(c.Channels, ", "))
	fmt.Fprintf(w, "livePriority: %s\n", strings.Join(c.Ranking.Priority, ", "))
	fmt.Fprintf(w, "pins: %s\n", strings.Join(c.Ranking.Pins, ", "))
	fmt.Fprintf(w, "boosts: %d\n", len(c.Ranking.Boosts))
	for _, b := range c.Ranking.Boosts {
		fmt.Fprintf(w, "  - %s before %s\n", b.Special, strings.Join(b.References, ", "))
	}
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
