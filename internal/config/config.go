package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration. Values load from the
// environment first (CLIMB_ prefix) and are overridden by an optional YAML
// config file.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Sources SourcesConfig `yaml:"sources" envconfig:"SOURCES"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"50"`
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// SourcesConfig describes where the raw record rows come from. Exactly
// one mode is active: local CSV exports, an Excel workbook, or a Google
// Sheets spreadsheet.
type SourcesConfig struct {
	Mode string `yaml:"mode" envconfig:"MODE" default:"csv"`

	// How often the web server re-derives the snapshot from the source.
	// Zero disables periodic refresh.
	RefreshInterval time.Duration `yaml:"refresh_interval" envconfig:"REFRESH_INTERVAL" default:"15m"`

	// CSV export paths. Trainings may be split across several exports.
	UsersCSV       string   `yaml:"users_csv" envconfig:"USERS_CSV"`
	TrainingsCSV   []string `yaml:"trainings_csv" envconfig:"TRAININGS_CSV"`
	AssessmentsCSV string   `yaml:"assessments_csv" envconfig:"ASSESSMENTS_CSV"`
	CoachesCSV     string   `yaml:"coaches_csv" envconfig:"COACHES_CSV"`
	PlansCSV       string   `yaml:"plans_csv" envconfig:"PLANS_CSV"`

	// Excel workbook path; sheets are discovered per entity.
	WorkbookPath string `yaml:"workbook_path" envconfig:"WORKBOOK_PATH"`

	// Google Sheets source.
	SpreadsheetID     string   `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	APIKey            string   `yaml:"api_key" envconfig:"API_KEY"`
	UsersRange        string   `yaml:"users_range" envconfig:"USERS_RANGE" default:"Users!A1:Z1000"`
	TrainingsRanges   []string `yaml:"trainings_ranges" envconfig:"TRAININGS_RANGES"`
	AssessmentsRange  string   `yaml:"assessments_range" envconfig:"ASSESSMENTS_RANGE" default:"Assessments!A1:Z1000"`
	CoachesRange      string   `yaml:"coaches_range" envconfig:"COACHES_RANGE" default:"Coaches!A1:Z1000"`
	PlansRange        string   `yaml:"plans_range" envconfig:"PLANS_RANGE" default:"Plans!A1:Z1000"`
}

// Source modes.
const (
	SourceModeCSV      = "csv"
	SourceModeWorkbook = "workbook"
	SourceModeSheets   = "sheets"
)

// Load loads configuration from environment variables and the optional
// config file named by CLIMB_CONFIG_FILE (default config.yaml).
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("CLIMB", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	configFile := os.Getenv("CLIMB_CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := loadFromFile(configFile, &cfg); err != nil {
			return nil, fmt.Errorf("load config from file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration for structural problems. Source
// completeness is re-checked at load time by the loader for the active
// mode; here only the mode itself and server basics are enforced.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Sources.Mode {
	case SourceModeCSV, SourceModeWorkbook, SourceModeSheets:
	default:
		return fmt.Errorf("invalid source mode: %q", c.Sources.Mode)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}

	return nil
}
