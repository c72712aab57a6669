package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/feed"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/notify"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/ops"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pkg/logging"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pkg/storage"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/wager"
)

// Config is the full service configuration. Durations are strings in
// the file (e.g. "30s") and parsed by the typed accessors.
type Config struct {
	Feed     FeedConfig             `yaml:"feed"`
	Registry RegistryConfig         `yaml:"registry"`
	Wager    WagerConfig            `yaml:"wager"`
	Sessions []SessionConfig        `yaml:"sessions"`
	Postgres storage.PostgresConfig `yaml:"postgres"`
	Telegram notify.Config          `yaml:"telegram"`
	Ops      OpsConfig              `yaml:"ops"`
	Logging  logging.Config         `yaml:"logging"`
}

// FeedConfig describes the upstream push feed connection.
type FeedConfig struct {
	URL              string `yaml:"url"`
	HandshakeTimeout string `yaml:"handshake_timeout"`
	ReadTimeout      string `yaml:"read_timeout"`
	PingInterval     string `yaml:"ping_interval"`
	ReconnectMin     string `yaml:"reconnect_min"`
	ReconnectMax     string `yaml:"reconnect_max"`
}

// Connector converts the file representation into a connector config.
func (c FeedConfig) Connector() (feed.ConnectorConfig, error) {
	out := feed.ConnectorConfig{URL: c.URL}
	var err error
	if out.HandshakeTimeout, err = parseDuration(c.HandshakeTimeout); err != nil {
		return out, fmt.Errorf("feed.handshake_timeout: %w", err)
	}
	if out.ReadTimeout, err = parseDuration(c.ReadTimeout); err != nil {
		return out, fmt.Errorf("feed.read_timeout: %w", err)
	}
	if out.PingInterval, err = parseDuration(c.PingInterval); err != nil {
		return out, fmt.Errorf("feed.ping_interval: %w", err)
	}
	if out.ReconnectMin, err = parseDuration(c.ReconnectMin); err != nil {
		return out, fmt.Errorf("feed.reconnect_min: %w", err)
	}
	if out.ReconnectMax, err = parseDuration(c.ReconnectMax); err != nil {
		return out, fmt.Errorf("feed.reconnect_max: %w", err)
	}
	return out, nil
}

// WagerConfig tunes the submission orchestrator.
type WagerConfig struct {
	SubmitTimeout  string `yaml:"submit_timeout"`
	PriceTolerance int    `yaml:"price_tolerance"`
	ProbeStake     int64  `yaml:"probe_stake"`
	TemplateTTL    string `yaml:"template_ttl"`
}

// Orchestrator converts the file representation into an orchestrator
// config.
func (c WagerConfig) Orchestrator() (wager.Config, error) {
	out := wager.Config{
		PriceTolerance: c.PriceTolerance,
		ProbeStake:     c.ProbeStake,
	}
	var err error
	if out.SubmitTimeout, err = parseDuration(c.SubmitTimeout); err != nil {
		return out, fmt.Errorf("wager.submit_timeout: %w", err)
	}
	if out.TemplateTTL, err = parseDuration(c.TemplateTTL); err != nil {
		return out, fmt.Errorf("wager.template_ttl: %w", err)
	}
	return out, nil
}

// OpsConfig describes the operator HTTP server.
type OpsConfig struct {
	Addr              string `yaml:"addr"`
	ReadHeaderTimeout string `yaml:"read_header_timeout"`
}

// Server converts the file representation into an ops server config.
func (c OpsConfig) Server() (ops.Config, error) {
	out := ops.Config{Addr: c.Addr}
	var err error
	if out.ReadHeaderTimeout, err = parseDuration(c.ReadHeaderTimeout); err != nil {
		return out, fmt.Errorf("ops.read_header_timeout: %w", err)
	}
	return out, nil
}

// RegistryConfig tunes event retention.
type RegistryConfig struct {
	// MaxGenerationAge evicts events not refreshed within this many
	// snapshot frames. Zero disables eviction.
	MaxGenerationAge uint64 `yaml:"max_generation_age"`
}

// SessionConfig describes one credential profile. Tokens come from the
// environment variable named here, never from the file.
type SessionConfig struct {
	Name         string `yaml:"name"`
	AuthTokenEnv string `yaml:"auth_token_env"`
	Endpoint     string `yaml:"endpoint"`
}

// Load reads and parses the YAML config file.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// parseDuration parses a duration string, treating empty as zero so
// component defaults apply.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
