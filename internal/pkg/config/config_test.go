package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleConfig = `
feed:
  url: "wss://feed.example.com/push"
  handshake_timeout: 15s
  read_timeout: 60s

registry:
  max_generation_age: 50

wager:
  submit_timeout: 30s
  price_tolerance: 1
  probe_stake: 100
  template_ttl: 6h

sessions:
  - name: "primary"
    auth_token_env: "BSUB_TOKEN_PRIMARY"
    endpoint: "https://api.example.com/v2/place_picks"

ops:
  addr: ":8090"
  read_header_timeout: 10s

logging:
  level: "DEBUG"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	feedCfg, err := cfg.Feed.Connector()
	if err != nil {
		t.Fatalf("Feed.Connector: %v", err)
	}
	if feedCfg.URL != "wss://feed.example.com/push" {
		t.Errorf("feed url = %q", feedCfg.URL)
	}
	if feedCfg.HandshakeTimeout != 15*time.Second || feedCfg.ReadTimeout != time.Minute {
		t.Errorf("feed timeouts = %v / %v", feedCfg.HandshakeTimeout, feedCfg.ReadTimeout)
	}
	// Unset durations stay zero so component defaults apply.
	if feedCfg.PingInterval != 0 {
		t.Errorf("ping interval = %v, want 0", feedCfg.PingInterval)
	}

	wagerCfg, err := cfg.Wager.Orchestrator()
	if err != nil {
		t.Fatalf("Wager.Orchestrator: %v", err)
	}
	if wagerCfg.SubmitTimeout != 30*time.Second || wagerCfg.TemplateTTL != 6*time.Hour {
		t.Errorf("wager durations = %v / %v", wagerCfg.SubmitTimeout, wagerCfg.TemplateTTL)
	}
	if wagerCfg.ProbeStake != 100 || wagerCfg.PriceTolerance != 1 {
		t.Errorf("wager tuning = %+v", wagerCfg)
	}

	opsCfg, err := cfg.Ops.Server()
	if err != nil {
		t.Fatalf("Ops.Server: %v", err)
	}
	if opsCfg.Addr != ":8090" || opsCfg.ReadHeaderTimeout != 10*time.Second {
		t.Errorf("ops = %+v", opsCfg)
	}

	if cfg.Registry.MaxGenerationAge != 50 {
		t.Errorf("max_generation_age = %d", cfg.Registry.MaxGenerationAge)
	}
	if len(cfg.Sessions) != 1 || cfg.Sessions[0].AuthTokenEnv != "BSUB_TOKEN_PRIMARY" {
		t.Errorf("sessions = %+v", cfg.Sessions)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("logging level = %q", cfg.Logging.Level)
	}
}

func TestLoadBadDuration(t *testing.T) {
	cfg, err := Load(writeConfig(t, "wager:\n  submit_timeout: soon\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := cfg.Wager.Orchestrator(); err == nil {
		t.Errorf("bad duration must fail conversion")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("missing file must error")
	}
}
