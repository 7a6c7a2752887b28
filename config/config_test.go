package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// validConfig returns the defaults with the required credentials set
func validConfig() *Config {
	cfg := Default()
	cfg.Twitch.ClientID = "client"
	cfg.Twitch.ClientSecret = "secret"
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.HTTP.Port != "3000" {
		t.Errorf("Expected HTTP.Port to be 3000, got %s", cfg.HTTP.Port)
	}
	if cfg.Twitch.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("Expected Twitch.APIBaseURL to be %s, got %s", DefaultAPIBaseURL, cfg.Twitch.APIBaseURL)
	}
	if cfg.Twitch.Timeout != 10*time.Second {
		t.Errorf("Expected Twitch.Timeout to be 10s, got %v", cfg.Twitch.Timeout)
	}
	if cfg.Twitch.TokenExpiryMargin != 60*time.Second {
		t.Errorf("Expected Twitch.TokenExpiryMargin to be 60s, got %v", cfg.Twitch.TokenExpiryMargin)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Expected info/json logging, got %s/%s", cfg.Log.Level, cfg.Log.Format)
	}
	if len(cfg.Channels) != 12 {
		t.Errorf("Expected 12 default channels, got %d", len(cfg.Channels))
	}
	if len(cfg.Ranking.Priority) != 12 {
		t.Errorf("Expected 12 priority channels, got %d", len(cfg.Ranking.Priority))
	}
	if len(cfg.Ranking.Pins) != 0 || len(cfg.Ranking.Boosts) != 0 {
		t.Error("Expected no default pins or boosts")
	}
	if cfg.Addr() != ":3000" {
		t.Errorf("Expected Addr to be :3000, got %s", cfg.Addr())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing client ID",
			mutate:  func(cfg *Config) { cfg.Twitch.ClientID = "" },
			wantErr: "client ID is required",
		},
		{
			name:    "missing client secret",
			mutate:  func(cfg *Config) { cfg.Twitch.ClientSecret = "" },
			wantErr: "client secret is required",
		},
		{
			name:    "zero timeout",
			mutate:  func(cfg *Config) { cfg.Twitch.Timeout = 0 },
			wantErr: "timeout must be positive",
		},
		{
			name:    "negative margin",
			mutate:  func(cfg *Config) { cfg.Twitch.TokenExpiryMargin = -time.Second },
			wantErr: "margin cannot be negative",
		},
		{
			name:   "zero margin",
			mutate: func(cfg *Config) { cfg.Twitch.TokenExpiryMargin = 0 },
		},
		{
			name:    "unknown log level",
			mutate:  func(cfg *Config) { cfg.Log.Level = "verbose" },
			wantErr: "unknown log level",
		},
		{
			name:    "unknown log format",
			mutate:  func(cfg *Config) { cfg.Log.Format = "xml" },
			wantErr: "Log format",
		},
		{
			name:    "empty roster",
			mutate:  func(cfg *Config) { cfg.Channels = nil },
			wantErr: "Channels",
		},
		{
			name: "duplicate channel ignoring case",
			mutate: func(cfg *Config) {
				cfg.Channels = []string{"ValiV2", "valiv2"}
				cfg.Ranking.Priority = nil
			},
			wantErr: "already in roster",
		},
		{
			name: "priority channel outside roster",
			mutate: func(cfg *Config) {
				cfg.Ranking.Priority = []string{"unknown"}
			},
			wantErr: `Priority channel "unknown"`,
		},
		{
			name: "pin outside roster",
			mutate: func(cfg *Config) {
				cfg.Ranking.Pins = []string{"unknown"}
			},
			wantErr: `Pinned channel "unknown"`,
		},
		{
			name: "valid boost",
			mutate: func(cfg *Config) {
				cfg.Ranking.Pins = []string{"ValiV2"}
				cfg.Ranking.Boosts = []BoostRule{{Special: "dacemaster", References: []string{"lvndmark", "eslcs"}}}
			},
		},
		{
			name: "boost without references",
			mutate: func(cfg *Config) {
				cfg.Ranking.Boosts = []BoostRule{{Special: "dacemaster"}}
			},
			wantErr: "at least one reference",
		},
		{
			name: "boost referencing itself",
			mutate: func(cfg *Config) {
				cfg.Ranking.Boosts = []BoostRule{{Special: "dacemaster", References: []string{"DaceMaster"}}}
			},
			wantErr: "cannot reference itself",
		},
		{
			name: "boost reference outside roster",
			mutate: func(cfg *Config) {
				cfg.Ranking.Boosts = []BoostRule{{Special: "dacemaster", References: []string{"unknown"}}}
			},
			wantErr: `reference "unknown"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Twitch.Timeout = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"client ID", "client secret", "timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %q, got %v", want, err)
		}
	}
}

func TestRules(t *testing.T) {
	cfg := validConfig()
	cfg.Ranking.Pins = []string{"valiv2"}
	cfg.Ranking.Boosts = []BoostRule{{Special: "dacemaster", References: []string{"lvndmark"}}}

	rules := cfg.Rules()

	if len(rules.Priority) != 12 {
		t.Errorf("Expected 12 priority entries, got %d", len(rules.Priority))
	}
	if len(rules.Pins) != 1 || rules.Pins[0] != "valiv2" {
		t.Errorf("Expected pins [valiv2], got %v", rules.Pins)
	}
	if len(rules.Boosts) != 1 || rules.Boosts[0].Special != "dacemaster" || rules.Boosts[0].References[0] != "lvndmark" {
		t.Errorf("Unexpected boosts %+v", rules.Boosts)
	}

	// Mutating the rules must not change the config
	rules.Pins[0] = "other"
	if cfg.Ranking.Pins[0] != "valiv2" {
		t.Error("Rules() must return a copy of the pins")
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `http:
  address: "0.0.0.0"
  port: "9090"
twitch:
  client_id: "abc"
  client_secret: "xyz"
  timeout: "5s"
  token_expiry_margin: "30s"
log:
  level: "debug"
  format: "text"
channels:
  - ValiV2
  - eslcs
  - lvndmark
  - dacemaster
ranking:
  priority: []
  pins: [valiv2]
  boosts:
    - special: dacemaster
      references: [lvndmark, eslcs]
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Addr() != "0.0.0.0:9090" {
		t.Errorf("Expected Addr to be 0.0.0.0:9090, got %s", cfg.Addr())
	}
	if cfg.Twitch.ClientID != "abc" || cfg.Twitch.ClientSecret != "xyz" {
		t.Errorf("Unexpected credentials %q/%q", cfg.Twitch.ClientID, cfg.Twitch.ClientSecret)
	}
	if cfg.Twitch.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("Expected default API base URL to be kept, got %s", cfg.Twitch.APIBaseURL)
	}
	if cfg.Twitch.Timeout != 5*time.Second {
		t.Errorf("Expected Twitch.Timeout to be 5s, got %v", cfg.Twitch.Timeout)
	}
	if cfg.Twitch.TokenExpiryMargin != 30*time.Second {
		t.Errorf("Expected Twitch.TokenExpiryMargin to be 30s, got %v", cfg.Twitch.TokenExpiryMargin)
	}
	if len(cfg.Channels) != 4 || cfg.Channels[0] != "ValiV2" {
		t.Errorf("Expected 4 channels starting with ValiV2, got %v", cfg.Channels)
	}
	if len(cfg.Ranking.Priority) != 0 {
		t.Errorf("Expected empty priority, got %v", cfg.Ranking.Priority)
	}
	if len(cfg.Ranking.Boosts) != 1 || len(cfg.Ranking.Boosts[0].References) != 2 {
		t.Errorf("Unexpected boosts %+v", cfg.Ranking.Boosts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("channels: [unterminated"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("LoadFromFile() expected parse error")
	}
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFromFile() expected read error")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", "127.0.0.1")
	t.Setenv("PORT", "8081")
	t.Setenv("TWITCH_CLIENT_ID", "env-client")
	t.Setenv("TWITCH_CLIENT_SECRET", "env-secret")
	t.Setenv("TWITCH_API_BASE_URL", "http://localhost:9999/helix")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("TOKEN_EXPIRY_MARGIN", "0s")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("CHANNELS", " a, b ,,c ")
	t.Setenv("LIVE_PRIORITY", "")
	t.Setenv("PIN_CHANNELS", "b")
	t.Setenv("BOOST_RULES", "c=a|b")

	cfg := Default()
	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	if cfg.Addr() != "127.0.0.1:8081" {
		t.Errorf("Expected Addr to be 127.0.0.1:8081, got %s", cfg.Addr())
	}
	if cfg.Twitch.ClientID != "env-client" || cfg.Twitch.ClientSecret != "env-secret" {
		t.Errorf("Unexpected credentials %q/%q", cfg.Twitch.ClientID, cfg.Twitch.ClientSecret)
	}
	if cfg.Twitch.APIBaseURL != "http://localhost:9999/helix" {
		t.Errorf("Unexpected API base URL %s", cfg.Twitch.APIBaseURL)
	}
	if cfg.Twitch.Timeout != 3*time.Second {
		t.Errorf("Expected Twitch.Timeout to be 3s, got %v", cfg.Twitch.Timeout)
	}
	if cfg.Twitch.TokenExpiryMargin != 0 {
		t.Errorf("Expected zero margin, got %v", cfg.Twitch.TokenExpiryMargin)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("Expected debug/text logging, got %s/%s", cfg.Log.Level, cfg.Log.Format)
	}
	if strings.Join(cfg.Channels, ",") != "a,b,c" {
		t.Errorf("Expected channels a,b,c, got %v", cfg.Channels)
	}
	if len(cfg.Ranking.Priority) != 0 {
		t.Errorf("Expected empty priority, got %v", cfg.Ranking.Priority)
	}
	if strings.Join(cfg.Ranking.Pins, ",") != "b" {
		t.Errorf("Expected pins [b], got %v", cfg.Ranking.Pins)
	}
	if len(cfg.Ranking.Boosts) != 1 || cfg.Ranking.Boosts[0].Special != "c" || strings.Join(cfg.Ranking.Boosts[0].References, ",") != "a,b" {
		t.Errorf("Unexpected boosts %+v", cfg.Ranking.Boosts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestApplyEnvOverrides_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		envName string
		value   string
	}{
		{name: "malformed timeout", envName: "UPSTREAM_TIMEOUT", value: "soon"},
		{name: "zero timeout", envName: "UPSTREAM_TIMEOUT", value: "0s"},
		{name: "negative margin", envName: "TOKEN_EXPIRY_MARGIN", value: "-1s"},
		{name: "unknown log level", envName: "LOG_LEVEL", value: "trace"},
		{name: "unknown log format", envName: "LOG_FORMAT", value: "xml"},
		{name: "boost without separator", envName: "BOOST_RULES", value: "dacemaster"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envName, tt.value)

			err := applyEnvOverrides(Default())
			if err == nil {
				t.Fatal("applyEnvOverrides() expected error")
			}
			if !strings.Contains(err.Error(), tt.envName) {
				t.Errorf("expected error to name %s, got %v", tt.envName, err)
			}
		})
	}
}

func TestLoadPath(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		t.Setenv("TWITCH_CLIENT_ID", "id")
		t.Setenv("TWITCH_CLIENT_SECRET", "secret")

		cfg, err := LoadPath(filepath.Join(t.TempDir(), "absent.yaml"))
		if err != nil {
			t.Fatalf("LoadPath() error = %v", err)
		}
		if len(cfg.Channels) != 12 {
			t.Errorf("Expected default roster, got %v", cfg.Channels)
		}
	})

	t.Run("env overrides file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		content := "twitch:\n  client_id: file-id\n  client_secret: file-secret\nhttp:\n  port: \"4000\"\n"
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write test config: %v", err)
		}
		t.Setenv("PORT", "5000")

		cfg, err := LoadPath(configPath)
		if err != nil {
			t.Fatalf("LoadPath() error = %v", err)
		}
		if cfg.HTTP.Port != "5000" {
			t.Errorf("Expected env port 5000, got %s", cfg.HTTP.Port)
		}
		if cfg.Twitch.ClientID != "file-id" {
			t.Errorf("Expected file client ID, got %s", cfg.Twitch.ClientID)
		}
	})

	t.Run("invalid result is rejected", func(t *testing.T) {
		t.Setenv("TWITCH_CLIENT_ID", "")
		t.Setenv("TWITCH_CLIENT_SECRET", "")

		if _, err := LoadPath(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("LoadPath() expected validation error")
		}
	})
}

func TestLoad_UsesConfigFileEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "custom.yaml")
	content := "twitch:\n  client_id: id\n  client_secret: secret\nchannels: [solo]\nranking:\n  priority: []\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	t.Setenv("CONFIG_FILE", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Channels) != 1 || cfg.Channels[0] != "solo" {
		t.Errorf("Expected roster [solo], got %v", cfg.Channels)
	}
}

func TestPrint_MasksSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Ranking.Boosts = []BoostRule{{Special: "dacemaster", References: []string{"lvndmark"}}}

	var buf bytes.Buffer
	cfg.Print(&buf)

	out := buf.String()
	if strings.Contains(out, ": secret") {
		t.Errorf("expected secret to be masked, got:\n%s", out)
	}
	if !strings.Contains(out, "twitchClientSecret: ********") {
		t.Errorf("expected masked secret line, got:\n%s", out)
	}
	if !strings.Contains(out, "dacemaster before lvndmark") {
		t.Errorf("expected boost line, got:\n%s", out)
	}
}
