package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backends accepted by DATA_BACKEND.
const (
	BackendRemote = "remote"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

var validBackends = []string{BackendRemote, BackendMemory, BackendSQLite}

type Config struct {
	// HTTP Server
	Port           string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	CacheTTL       time.Duration
	LogLevel       string

	// Backend selection
	DataBackend    string
	GatewayBaseURL string
	GatewayTimeout time.Duration
	SQLiteDBPath   string
	SeedFile       string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets journal export
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCredentialsFile string
	GoogleOAuthClientFile string
	GoogleOAuthTokenFile  string
}

// LoadEnvFile loads a .env file into the process environment when present.
// Variables already set win over the file.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("rate_limit_rps", 10.0)
	v.SetDefault("rate_limit_burst", 20)
	v.SetDefault("cache_ttl", 30*time.Second)
	v.SetDefault("log_level", "info")

	v.SetDefault("data_backend", BackendRemote)
	v.SetDefault("gateway_base_url", "http://localhost:8080/mywallet")
	// Zero leaves gateway calls bounded by the request context only.
	v.SetDefault("gateway_timeout", time.Duration(0))
	v.SetDefault("sqlite_db_path", "./data/mywallet.db")
	v.SetDefault("seed_file", "./data/seed.json")

	v.SetDefault("amqp_url", "")
	v.SetDefault("amqp_exchange", "mywallet")
	v.SetDefault("amqp_queue", "transaction_events")

	v.SetDefault("google_spreadsheet_id", "")
	v.SetDefault("google_sheet_name", "Journal")
	v.SetDefault("google_credentials_file", "")
	v.SetDefault("google_oauth_client_file", "")
	v.SetDefault("google_oauth_token_file", "./data/token.json")
}

// Load reads configuration from the environment. Every key can be given
// either bare (PORT) or with the MYWALLET_ prefix, the prefixed form winning.
// An optional config file (yaml, toml or json) may be passed; its values sit
// below the environment.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if err := v.BindEnv(key, "MYWALLET_"+name, name); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", name, err)
		}
	}

	return &Config{
		Port:           v.GetString("port"),
		AllowedOrigins: splitList(v.GetString("allowed_origins")),
		RateLimitRPS:   v.GetFloat64("rate_limit_rps"),
		RateLimitBurst: v.GetInt("rate_limit_burst"),
		CacheTTL:       v.GetDuration("cache_ttl"),
		LogLevel:       v.GetString("log_level"),

		DataBackend:    strings.ToLower(v.GetString("data_backend")),
		GatewayBaseURL: v.GetString("gateway_base_url"),
		GatewayTimeout: v.GetDuration("gateway_timeout"),
		SQLiteDBPath:   v.GetString("sqlite_db_path"),
		SeedFile:       v.GetString("seed_file"),

		AMQPURL:      v.GetString("amqp_url"),
		AMQPExchange: v.GetString("amqp_exchange"),
		AMQPQueue:    v.GetString("amqp_queue"),

		GoogleSpreadsheetID:   v.GetString("google_spreadsheet_id"),
		GoogleSheetName:       v.GetString("google_sheet_name"),
		GoogleCredentialsFile: v.GetString("google_credentials_file"),
		GoogleOAuthClientFile: v.GetString("google_oauth_client_file"),
		GoogleOAuthTokenFile:  v.GetString("google_oauth_token_file"),
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendRemote:
		if u, err := url.Parse(c.GatewayBaseURL); err != nil || c.GatewayBaseURL == "" {
			errs = append(errs, fmt.Sprintf("invalid gateway base URL '%s'", c.GatewayBaseURL))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, fmt.Sprintf("invalid gateway base URL scheme '%s': must be 'http' or 'https'", u.Scheme))
		}
		if c.GatewayTimeout < 0 {
			errs = append(errs, fmt.Sprintf("invalid gateway timeout %v: must not be negative", c.GatewayTimeout))
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RateLimitRPS <= 0 {
		errs = append(errs, fmt.Sprintf("invalid rate limit %v: must be positive", c.RateLimitRPS))
	}
	if c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Sprintf("invalid rate limit burst %d: must be at least 1", c.RateLimitBurst))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// ValidateWorker checks the settings the export worker needs on top of
// Validate.
func (c *Config) ValidateWorker() error {
	var errs []string
	if c.AMQPURL == "" {
		errs = append(errs, "AMQP_URL is required for the export worker")
	}
	if c.GoogleSpreadsheetID != "" && c.GoogleSheetName == "" {
		errs = append(errs, "Google Sheet name is required when a spreadsheet ID is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("worker configuration invalid:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
