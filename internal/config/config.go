// Package config loads the declarative configuration this system is
// started with: a single YAML file describing the HTTP listen address,
// the sqlite DSN, the stats-refresh cadence, optional Kafka ingestion
// settings, and the bearer-token signing secret.
//
// Config is loaded once at startup and passed by value into component
// constructors; there is no hot reload here (unlike the registry's seed
// file, which does reload — reloading a token dictionary is cheap and
// safe mid-flight, reloading listen addresses and DSNs is not).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the desired shape of a running instance. It is declarative:
// it defines what should run, not how it gets constructed.
type Config struct {
	HTTP   HTTPConfig   `yaml:"http"`
	Store  StoreConfig  `yaml:"store"`
	Stats  StatsConfig  `yaml:"stats"`
	Auth   AuthConfig   `yaml:"auth"`
	Kafka  *KafkaConfig `yaml:"kafka,omitempty"`
	Seed   SeedConfig   `yaml:"seed"`
}

// HTTPConfig describes the HTTP surface's listen address.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// StoreConfig describes the sqlite persistence layer.
type StoreConfig struct {
	DSN string `yaml:"dsn"`
}

// StatsConfig describes the periodic global-token-stats refresh. ArchiveDir
// enables compressed snapshot archival (internal/stats/archive) alongside
// each refresh; empty disables it.
type StatsConfig struct {
	RefreshInterval  time.Duration `yaml:"refresh_interval"`
	ArchiveDir       string        `yaml:"archive_dir,omitempty"`
	ArchiveRetention int           `yaml:"archive_retention,omitempty"`
}

// AuthConfig describes bearer-token issuance and verification.
type AuthConfig struct {
	SigningSecret string        `yaml:"signing_secret"`
	TokenLifetime time.Duration `yaml:"token_lifetime"`
}

// KafkaConfig describes the optional crowdsourced-entry ingestion
// consumer. A nil *KafkaConfig means ingestion is disabled.
type KafkaConfig struct {
	SeedBrokers   []string `yaml:"seed_brokers"`
	Topic         string   `yaml:"topic"`
	ConsumerGroup string   `yaml:"consumer_group"`
	TLS           bool     `yaml:"tls"`
	Workers       int      `yaml:"workers"`
}

// SeedConfig describes the registry's optional on-disk seed dictionary.
type SeedConfig struct {
	FilePath string `yaml:"file_path"`
	Watch    bool   `yaml:"watch"`
}

// Default returns a Config usable for local development: an in-memory
// store, an HTTP listener on port 8080 of every interface, and Kafka
// ingestion disabled.
func Default() Config {
	return Config{
		HTTP:  HTTPConfig{Addr: ":8080"},
		Store: StoreConfig{DSN: "file::memory:?cache=shared"},
		Stats: StatsConfig{RefreshInterval: 5 * time.Minute},
		Auth:  AuthConfig{TokenLifetime: 24 * time.Hour},
	}
}

// Load reads and parses a YAML config file at path, starting from
// Default so unset fields still have sane values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	if cfg.Auth.SigningSecret == "" {
		return Config{}, fmt.Errorf("config %q: auth.signing_secret is required", path)
	}
	return cfg, nil
}
