// Package config loads purser's configuration from YAML, flags and the
// environment. Defaults cover every knob so the binary runs with no config
// file at all.
package config

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// DatabaseURL selects the Postgres store; empty means the local WAL store.
	DatabaseURL string `yaml:"database_url"`
	WALDir      string `yaml:"wal_dir"`

	ListenAddr  string   `yaml:"listen_addr"`
	TLSDomains  []string `yaml:"tls_domains"`
	TLSCacheDir string   `yaml:"tls_cache_dir"`

	CheckInterval time.Duration `yaml:"check_interval"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	FetchWorkers  int           `yaml:"fetch_workers"`
	UserAgent     string        `yaml:"user_agent"`

	DigestTime      string `yaml:"digest_time"`
	DigestRecipient string `yaml:"digest_recipient"`

	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass"`

	// AddMode is set by the -add flag: run the interactive wizard and exit.
	AddMode bool `yaml:"-"`
}

func defaults() Config {
	return Config{
		WALDir:        "./wal/purser",
		ListenAddr:    ":8080",
		CheckInterval: time.Hour,
		FetchTimeout:  30 * time.Second,
		FetchWorkers:  4,
		DigestTime:    "09:00",
		SMTPHost:      "smtp.gmail.com",
		SMTPPort:      587,
	}
}

// Get parses flags, loads the optional YAML file, then applies environment
// overrides.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	addMode := flag.Bool("add", false, "interactively add a watchlist item and exit")
	flag.Parse()

	// Missing .env is fine; it only exists in local setups.
	_ = godotenv.Load()

	cfg := defaults()

	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			return Config{}, errors.Wrap(err, "read config file")
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, errors.Wrap(err, "parse config file")
		}
	}

	applyEnv(&cfg)
	cfg.AddMode = *addMode

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("DIGEST_TIME_ET"); v != "" {
		cfg.DigestTime = v
	}
	if v := os.Getenv("DIGEST_TO"); v != "" {
		cfg.DigestRecipient = v
	}
	if v := os.Getenv("EMAIL_USER"); v != "" {
		cfg.SMTPUser = v
	}
	if v := os.Getenv("EMAIL_PASS"); v != "" {
		cfg.SMTPPass = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.SMTPPort = port
		}
	}
	if v := os.Getenv("FETCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FetchWorkers = n
		}
	}
}

func validate(cfg Config) error {
	if cfg.CheckInterval <= 0 {
		return errors.New("check_interval must be positive")
	}
	if cfg.FetchTimeout <= 0 {
		return errors.New("fetch_timeout must be positive")
	}
	if cfg.FetchWorkers < 1 {
		return errors.New("fetch_workers must be at least 1")
	}
	if cfg.DatabaseURL == "" && cfg.WALDir == "" {
		return errors.New("either database_url or wal_dir must be set")
	}
	return nil
}
