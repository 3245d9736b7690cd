package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries every setting the pipeline needs. It is constructed once at
// process start and passed explicitly into the components that use it; there
// is deliberately no package-level instance.
type Config struct {
	DataDir string `yaml:"data_dir"`
	LogsDir string `yaml:"logs_dir"`

	LogLevel string `yaml:"log_level"`

	// Sources enabled for the pipeline, in processing order
	EnabledSources []string                `yaml:"enabled_sources"`
	Sources        map[string]SourceConfig `yaml:"sources"`

	Scraping  ScrapingConfig  `yaml:"scraping"`
	Dashboard DashboardConfig `yaml:"dashboard"`

	// MaxGoals bounds the scoreline grid of the outcome model
	MaxGoals int `yaml:"max_goals"`

	// Teams maps a canonical team name to the alias spellings the sources use
	Teams map[string][]string `yaml:"teams"`

	// SpieltagMap maps a matchday number to its first kickoff ("2006-01-02 15:04:05").
	// Matchdays whose kickoff is in the future are skipped by the scrapers.
	SpieltagMap map[int]string `yaml:"spieltag_map"`
}

type SourceConfig struct {
	BaseURL     string `yaml:"base_url"`
	FixturesURL string `yaml:"fixtures_url"`
	XGURL       string `yaml:"xg_url"`
}

type ScrapingConfig struct {
	DelayMinSeconds int `yaml:"delay_min_seconds"`
	DelayMaxSeconds int `yaml:"delay_max_seconds"`
	MaxRetries      int `yaml:"max_retries"`
	TimeoutSeconds  int `yaml:"timeout_seconds"`
}

type DashboardConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Default returns a configuration with the standard values, usable without a
// config file at all
func Default() *Config {
	return &Config{
		DataDir:        "./data",
		LogsDir:        "./logs",
		LogLevel:       "info",
		EnabledSources: []string{"footystats", "soccerway"},
		Sources: map[string]SourceConfig{
			"footystats": {
				BaseURL:     "https://footystats.org",
				FixturesURL: "https://footystats.org/germany/3-liga/fixtures",
			},
			"soccerway": {
				BaseURL:     "https://int.soccerway.com",
				FixturesURL: "https://int.soccerway.com/national/germany/3-liga/",
			},
		},
		Scraping: ScrapingConfig{
			DelayMinSeconds: 2,
			DelayMaxSeconds: 8,
			MaxRetries:      3,
			TimeoutSeconds:  30,
		},
		Dashboard: DashboardConfig{
			Host: "127.0.0.1",
			Port: 8050,
		},
		MaxGoals: 10,
		Teams:    map[string][]string{},
	}
}

// Load reads the YAML config file, layers it over the defaults and applies
// environment overrides. A missing file is not an error; the defaults stand.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		configPath = envOr("LIGA_CONFIG_FILE", "config/config.yaml")
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LIGA_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("LIGA_LOGS_DIR"); v != "" {
		c.LogsDir = v
	}
	if v := os.Getenv("LIGA_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LIGA_ENABLED_SOURCES"); v != "" {
		var sources []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sources = append(sources, s)
			}
		}
		c.EnabledSources = sources
	}
	if v := os.Getenv("LIGA_DASHBOARD_HOST"); v != "" {
		c.Dashboard.Host = v
	}
	if v := os.Getenv("LIGA_DASHBOARD_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Dashboard.Port = port
		}
	}
}

func (c *Config) validate() error {
	if c.MaxGoals < 3 {
		return fmt.Errorf("max_goals must be at least 3 to capture realistic scores, got %d", c.MaxGoals)
	}
	if c.Scraping.DelayMinSeconds > c.Scraping.DelayMaxSeconds {
		return fmt.Errorf("scraping delay_min_seconds %d exceeds delay_max_seconds %d",
			c.Scraping.DelayMinSeconds, c.Scraping.DelayMaxSeconds)
	}
	if len(c.EnabledSources) == 0 {
		return fmt.Errorf("no enabled sources configured")
	}
	return nil
}

// WriteDefault writes the default configuration as a YAML file, creating the
// parent directory. Existing files are preserved unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to render default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// SourceDir returns the data directory of one scraping source
func (c *Config) SourceDir(source string) string {
	return filepath.Join(c.DataDir, source)
}

// EnsureDirectories creates the data and log directories
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir, c.LogsDir}
	for _, source := range c.EnabledSources {
		dirs = append(dirs, c.SourceDir(source))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// NormalizeTeamName maps any alias spelling onto the canonical team name.
// Unknown names pass through unchanged.
func (c *Config) NormalizeTeamName(name string) string {
	name = strings.TrimSpace(name)
	for canonical, aliases := range c.Teams {
		if name == canonical {
			return canonical
		}
		for _, alias := range aliases {
			if name == alias {
				return canonical
			}
		}
	}
	return name
}

// SpieltagKickoff returns the first kickoff of a matchday, when configured
func (c *Config) SpieltagKickoff(spieltag int) (time.Time, bool) {
	raw, ok := c.SpieltagMap[spieltag]
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02 15:04:05", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Timeout returns the scraping timeout as a duration
func (s ScrapingConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Addr returns the dashboard listen address
func (d DashboardConfig) Addr() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
