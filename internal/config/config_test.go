package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

func ptr[T any](v T) *T { return &v }

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Version != DefaultVersion {
		t.Fatalf("expected version %d, got %d", DefaultVersion, cfg.Version)
	}
	if got := cfg.Server.GetAddr(); got != DefaultServerAddr {
		t.Fatalf("expected addr %q, got %q", DefaultServerAddr, got)
	}
	if got := cfg.Server.GetReadLimit(); got != DefaultServerReadLimit {
		t.Fatalf("expected read_limit %d, got %d", DefaultServerReadLimit, got)
	}
	if got := cfg.Script.GetTimeout(); got != DefaultScriptTimeout {
		t.Fatalf("expected timeout %v, got %v", DefaultScriptTimeout, got)
	}
	if got := cfg.Log.GetLevel(); got != zapcore.InfoLevel {
		t.Fatalf("expected info level, got %v", got)
	}
}

func TestLoadMissingConfig(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "calc.json"))
	if err == nil {
		t.Fatalf("expected error for missing config")
	}
}

func TestLoadOrDefaultMissingConfig(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "calc.json"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Version != DefaultVersion {
		t.Fatalf("expected default version, got %d", cfg.Version)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calc.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Version != DefaultVersion {
		t.Fatalf("expected default version %d, got %d", DefaultVersion, cfg.Version)
	}
}

func TestLoadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calc.json")
	data := `{"server":{"addr":":9000","read_limit":128},"script":{"timeout":"250ms"},"log":{"level":"debug"}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.GetAddr() != ":9000" {
		t.Errorf("addr = %q", cfg.Server.GetAddr())
	}
	if cfg.Server.GetReadLimit() != 128 {
		t.Errorf("read_limit = %d", cfg.Server.GetReadLimit())
	}
	if cfg.Script.GetTimeout() != 250*time.Millisecond {
		t.Errorf("timeout = %v", cfg.Script.GetTimeout())
	}
	if cfg.Log.GetLevel() != zapcore.DebugLevel {
		t.Errorf("level = %v", cfg.Log.GetLevel())
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calc.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"unsupported version", Config{Version: 2}},
		{"read limit too small", Config{Version: 1, Server: &ServerConfig{ReadLimit: ptr(int64(10))}}},
		{"read limit too large", Config{Version: 1, Server: &ServerConfig{ReadLimit: ptr(int64(2 << 20))}}},
		{"bad timeout", Config{Version: 1, Script: &ScriptConfig{Timeout: ptr("soon")}}},
		{"timeout too short", Config{Version: 1, Script: &ScriptConfig{Timeout: ptr("1ms")}}},
		{"timeout too long", Config{Version: 1, Script: &ScriptConfig{Timeout: ptr("2m")}}},
		{"bad level", Config{Version: 1, Log: &LogConfig{Level: ptr("loud")}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "calc.json")

	cfg := Config{Server: &ServerConfig{Addr: ptr(":8080")}}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if loaded.Server.GetAddr() != ":8080" {
		t.Fatalf("expected addr :8080, got %q", loaded.Server.GetAddr())
	}
}

func TestDefaultPathFromEnv(t *testing.T) {
	t.Setenv(EnvConfig, "/tmp/custom.json")
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	if path != "/tmp/custom.json" {
		t.Fatalf("expected env override, got %q", path)
	}
}
