package workdir

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvPortalURL = "AIVCTL_PORTAL_URL"
	EnvAPIKey    = "AIVCTL_API_KEY" //nolint:gosec // variable name, not a credential
)

// DefaultPortalURL is the backend address of a local AI Verify install.
const DefaultPortalURL = "http://localhost:4000"

// Config is the CLI configuration.
type Config struct {
	PortalURL   string        `yaml:"portal_url,omitempty"`
	APIKey      string        `yaml:"api_key,omitempty"` //nolint:gosec // configuration field, not a hardcoded secret
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	ModelAPIDir string        `yaml:"modelapi_dir,omitempty"`
	ExportDir   string        `yaml:"export_dir,omitempty"`
}

// Defaults returns the built-in settings every other layer overrides.
func Defaults() Config {
	return Config{
		PortalURL: DefaultPortalURL,
		Timeout:   30 * time.Second,
	}
}

// Merge returns base with every non-zero field of overlay applied.
func Merge(base, overlay Config) Config {
	if overlay.PortalURL != "" {
		base.PortalURL = overlay.PortalURL
	}
	if overlay.APIKey != "" {
		base.APIKey = overlay.APIKey
	}
	if overlay.Timeout != 0 {
		base.Timeout = overlay.Timeout
	}
	if overlay.ModelAPIDir != "" {
		base.ModelAPIDir = overlay.ModelAPIDir
	}
	if overlay.ExportDir != "" {
		base.ExportDir = overlay.ExportDir
	}
	return base
}

// Validate checks the merged configuration.
func (c Config) Validate() error {
	u, err := url.Parse(c.PortalURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("workdir: config: portal_url %q must be an absolute http(s) URL", c.PortalURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("workdir: config: timeout must not be negative")
	}
	return nil
}

// LoadConfig reads a YAML config file, expanding environment variables.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("workdir: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("workdir: parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes cfg as YAML, owner-only since it may hold the API key.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("workdir: marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("workdir: create config dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("workdir: write config: %w", err)
	}

	return nil
}

// UserConfigPath returns the per-user defaults file under the XDG config
// home.
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "aivctl", "config.yaml")
}

// Resolve builds the effective configuration: built-in defaults, then each
// existing file in paths in order, then environment overrides. Missing files
// are skipped.
func Resolve(paths ...string) (Config, error) {
	cfg := Defaults()

	for _, path := range paths {
		if path == "" {
			continue
		}
		layer, err := LoadConfig(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, err
		}
		cfg = Merge(cfg, layer)
	}

	cfg = Merge(cfg, Config{
		PortalURL: os.Getenv(EnvPortalURL),
		APIKey:    os.Getenv(EnvAPIKey),
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
