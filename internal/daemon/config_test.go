package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8642 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8642)
	}
	if !cfg.Auth.AllowAnonymous {
		t.Error("Auth.AllowAnonymous = false, want true by default")
	}
	if !cfg.Telemetry.Prometheus {
		t.Error("Telemetry.Prometheus = false, want true by default")
	}
	if cfg.Store.Dir == "" {
		t.Error("Store.Dir is empty")
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("QUESTLINE_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != 8642 {
		t.Errorf("API.Port = %d, want default %d", cfg.API.Port, 8642)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("QUESTLINE_HOME", home)

	raw := `
[api]
port = 9000

[auth]
allow_anonymous = false

[auth.tokens]
"secret-token" = "learner-1"

[reviews]
intervals_days = [1, 2, 4, 8]
`
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(raw), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want 9000", cfg.API.Port)
	}
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want default kept", cfg.API.Host)
	}
	if cfg.Auth.AllowAnonymous {
		t.Error("Auth.AllowAnonymous = true, want false from file")
	}
	if got := cfg.Auth.Tokens["secret-token"]; got != "learner-1" {
		t.Errorf("Auth.Tokens[secret-token] = %q, want %q", got, "learner-1")
	}
	if len(cfg.Reviews.IntervalsDays) != 4 || cfg.Reviews.IntervalsDays[1] != 2 {
		t.Errorf("Reviews.IntervalsDays = %v, want [1 2 4 8]", cfg.Reviews.IntervalsDays)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("QUESTLINE_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.Port = 7777
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if loaded.API.Port != 7777 {
		t.Errorf("API.Port = %d after round trip, want 7777", loaded.API.Port)
	}
}
