package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "SETTPL"

const (
	BackendResty = "resty"
	BackendFiber = "fiber"
)

var ErrNoBaseURL = errors.New("base url is required")

type Config struct {
	BaseURL               string        `yaml:"base_url" split_words:"true"`
	Backend               string        `yaml:"backend" split_words:"true"`
	Size                  int           `yaml:"size" split_words:"true"`
	RequestTimeout        time.Duration `yaml:"request_timeout" split_words:"true"`
	DialTimeout           time.Duration `yaml:"dial_timeout" split_words:"true"`
	TLSTimeout            time.Duration `yaml:"tls_timeout" split_words:"true"`
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout" split_words:"true"`
	MaxConnsPerHost       int           `yaml:"max_conns_per_host" split_words:"true"`
	InsecureSkipVerify    bool          `yaml:"insecure_skip_verify" split_words:"true"`
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout" split_words:"true"`

	// CMDB caller identity, stamped on requests by the CLI.
	User            string `yaml:"user" split_words:"true"`
	SupplierAccount string `yaml:"supplier_account" split_words:"true"`

	Debug bool `yaml:"debug" split_words:"true"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:               "",
		Backend:               BackendResty,
		Size:                  8,
		RequestTimeout:        10 * time.Second,
		DialTimeout:           5 * time.Second,
		TLSTimeout:            2 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxConnsPerHost:       1,
		InsecureSkipVerify:    true,
		ResponseHeaderTimeout: 0,
		User:                  "admin",
		SupplierAccount:       "0",
	}
}

// Load is Read followed by Validate.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Read starts from DefaultConfig, overlays the YAML file at path (if path is
// non-empty) and then SETTPL_* environment variables.
func Read(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrNoBaseURL
	}
	switch c.Backend {
	case BackendResty, BackendFiber:
	default:
		return fmt.Errorf("unsupported backend %q", c.Backend)
	}
	return nil
}
