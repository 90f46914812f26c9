package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/linanwx/scout/protocol"
)

func useTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	SetConfigDir(dir)
	t.Cleanup(func() { SetConfigDir("") })
	for _, key := range []string{"SCOUT_BACKEND_URL", "SCOUT_PROTOCOL", "SCOUT_CHAT_PATH", "SCOUT_LOG_LEVEL", "SCOUT_WEB_ADDR"} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	useTempDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.ChatPath != "/chat" || cfg.Backend.Protocol != "v1" || cfg.UI.PreviewLimit != 4 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if !errors.Is(cfg.Validate(), ErrNoBackend) {
		t.Fatalf("Validate() error = %v, want ErrNoBackend", cfg.Validate())
	}
}

func TestLoadFileAndEnvOverlay(t *testing.T) {
	dir := useTempDir(t)
	yamlText := "backend:\n  url: http://file.local:8000\n  protocol: v2\nui:\n  previewLimit: 2\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yamlText), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.URL != "http://file.local:8000" || cfg.UI.PreviewLimit != 2 {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if v, _ := cfg.ProtocolVersion(); v != protocol.V2 {
		t.Fatalf("ProtocolVersion() = %v, want v2", v)
	}

	t.Setenv("SCOUT_BACKEND_URL", "http://env.local:9000")
	t.Setenv("SCOUT_LOG_LEVEL", "debug")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.URL != "http://env.local:9000" {
		t.Fatalf("Backend.URL = %q, want env override", cfg.Backend.URL)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	dir := useTempDir(t)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail on invalid YAML")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	useTempDir(t)

	cfg := DefaultConfig()
	cfg.Backend.URL = "http://localhost:8000"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Backend.URL != cfg.Backend.URL || loaded.Web.Addr != cfg.Web.Addr {
		t.Fatalf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		proto   string
		wantErr bool
	}{
		{"ok", "http://localhost:8000", "v1", false},
		{"missing", "", "v1", true},
		{"no scheme", "localhost:8000", "v1", true},
		{"bad protocol", "http://localhost:8000", "v9", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Backend.URL = tt.url
			cfg.Backend.Protocol = tt.proto
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildLoggerConfig(t *testing.T) {
	cfg := DefaultConfig()
	lc := cfg.BuildLoggerConfig()
	if !lc.Enabled || lc.File != "logs/scout.log" {
		t.Fatalf("BuildLoggerConfig() = %+v", lc)
	}
	off := false
	cfg.Logging.Enabled = &off
	if cfg.BuildLoggerConfig().Enabled {
		t.Fatal("explicit enabled=false ignored")
	}
}
