package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds every recognized option. Values come from Default(), then an
// optional YAML file named by ENROLLMENT_CONFIG, then environment variables.
type Config struct {
	// Live mode must be switched on explicitly.
	LiveMode bool `yaml:"live_mode" env:"LIVE_MODE"`

	// Proxy tier
	ProxyEnabled bool   `yaml:"proxy_enabled" env:"PROXY_ENABLED"`
	ProxyBaseURL string `yaml:"proxy_base_url" env:"PROXY_BASE_URL"`

	// Direct tier (Airtable)
	AirtableAPIURL   string `yaml:"airtable_api_url" env:"AIRTABLE_API_URL"`
	AirtableToken    string `yaml:"airtable_pat" env:"AIRTABLE_PAT"`
	AirtableBaseID   string `yaml:"airtable_base_id" env:"AIRTABLE_BASE_ID"`
	LeadersTable     string `yaml:"leaders_table" env:"AIRTABLE_LEADERS_TABLE"`
	CitiesTable      string `yaml:"cities_table" env:"AIRTABLE_CITIES_TABLE"`
	EnrollmentsTable string `yaml:"enrollments_table" env:"AIRTABLE_ENROLLMENTS_TABLE"`

	StaticSnapshotPath string        `yaml:"static_snapshot_path" env:"STATIC_SNAPSHOT_PATH"`
	RefreshTimeout     time.Duration `yaml:"refresh_timeout" env:"REFRESH_TIMEOUT"`
	HTTPRetryAttempts  int           `yaml:"http_retry_attempts" env:"HTTP_RETRY_ATTEMPTS"`

	ListenAddr     string `yaml:"listen_addr" env:"LISTEN_ADDR"`
	MetricsEnabled bool   `yaml:"metrics_enabled" env:"METRICS_ENABLED"`

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	// SFTP publishing of exports
	SFTPHost                  string `yaml:"sftp_host" env:"SFTP_HOST"`
	SFTPPort                  int    `yaml:"sftp_port" env:"SFTP_PORT"`
	SFTPUser                  string `yaml:"sftp_user" env:"SFTP_USER"`
	SFTPPass                  string `yaml:"sftp_pass" env:"SFTP_PASS"`
	SFTPDir                   string `yaml:"sftp_dir" env:"SFTP_DIR"`
	SFTPInsecureIgnoreHostKey bool   `yaml:"sftp_insecure_ignore_hostkey" env:"SFTP_INSECURE_IGNORE_HOSTKEY"`
	SFTPKnownHosts            string `yaml:"sftp_known_hosts" env:"SFTP_KNOWN_HOSTS"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		LiveMode:     false,
		ProxyEnabled: true,
		ProxyBaseURL: "http://localhost:8080",

		AirtableAPIURL:   "https://api.airtable.com/v0",
		LeadersTable:     "Leaders",
		CitiesTable:      "Cities",
		EnrollmentsTable: "Enrollments",

		StaticSnapshotPath: "data/enrollment_data.json",
		RefreshTimeout:     60 * time.Second,
		HTTPRetryAttempts:  1,

		ListenAddr:     ":8080",
		MetricsEnabled: true,

		LogLevel:  "info",
		LogFormat: "json",

		SFTPPort:                  22,
		SFTPDir:                   "/inbound",
		SFTPInsecureIgnoreHostKey: true,
	}
}

// Load builds the configuration from defaults, the optional YAML file, and
// the environment.
func Load() (Config, error) {
	return LoadFile(os.Getenv("ENROLLMENT_CONFIG"))
}

// LoadFile is Load with an explicit YAML path; an empty path skips the file.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	cfg.ProxyBaseURL = strings.TrimRight(cfg.ProxyBaseURL, "/")
	cfg.AirtableAPIURL = strings.TrimRight(cfg.AirtableAPIURL, "/")
	return cfg, nil
}

// HasAirtableCredentials reports whether the direct tier can be attempted.
func (c Config) HasAirtableCredentials() bool {
	return c.AirtableToken != "" && c.AirtableBaseID != ""
}
