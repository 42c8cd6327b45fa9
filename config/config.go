package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	League        LeagueConfig        `yaml:"league"`
	Tournament    TournamentConfig    `yaml:"tournament"`
	Postgres      PostgresConfig      `yaml:"postgres"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// HTTPConfig holds the API server configuration.
type HTTPConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst"`
}

// LeagueConfig holds the season settings the scheduler depends on.
type LeagueConfig struct {
	WorkbookPath         string  `yaml:"workbook_path"`
	TournamentPointsPath string  `yaml:"tournament_points_path"`
	SessionsRemaining    int     `yaml:"sessions_remaining"`
	QuotaAdjustment      float64 `yaml:"quota_adjustment"`
	LastResortTeam       string  `yaml:"last_resort_team"`
}

// TournamentConfig holds tournament storage settings.
type TournamentConfig struct {
	DataPath string `yaml:"data_path"`
}

// PostgresConfig holds Postgres configuration. An empty DSN selects the
// file-backed tournament store.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"` // text|json
	Environment string `yaml:"environment"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, fall back to environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadConfigFromEnv() (*Config, error) {
	cfg := &Config{}
	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides lets deployment environments win over the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("LEAGUE_WORKBOOK_PATH"); v != "" {
		cfg.League.WorkbookPath = v
	}
	if v := os.Getenv("TOURNAMENT_DATA_PATH"); v != "" {
		cfg.Tournament.DataPath = v
	}
	if v := os.Getenv("SESSIONS_REMAINING"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.League.SessionsRemaining = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Observability.Environment = v
	}
}

func (cfg *Config) applyDefaults() {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.RateLimitRPS == 0 {
		cfg.HTTP.RateLimitRPS = 5
	}
	if cfg.HTTP.RateLimitBurst == 0 {
		cfg.HTTP.RateLimitBurst = 10
	}
	if cfg.League.QuotaAdjustment == 0 {
		cfg.League.QuotaAdjustment = 0.1
	}
	if cfg.League.SessionsRemaining == 0 {
		cfg.League.SessionsRemaining = 1
	}
	if cfg.Tournament.DataPath == "" {
		cfg.Tournament.DataPath = "data/tournament.json"
	}
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
	if cfg.Observability.LogFormat == "" {
		cfg.Observability.LogFormat = "text"
	}
}

func (cfg *Config) validate() error {
	if cfg.League.SessionsRemaining < 1 {
		return fmt.Errorf("league.sessions_remaining must be >= 1, got %d", cfg.League.SessionsRemaining)
	}
	if cfg.League.QuotaAdjustment < 0 || cfg.League.QuotaAdjustment >= 1 {
		return fmt.Errorf("league.quota_adjustment must be in [0, 1), got %v", cfg.League.QuotaAdjustment)
	}
	return nil
}
