package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Bot struct {
		Token       string `koanf:"token"`
		PollTimeout string `koanf:"poll_timeout"`
	} `koanf:"bot"`
	Sync struct {
		Pointer struct {
			ChatID int64 `koanf:"chat_id"`
		} `koanf:"pointer"`
	} `koanf:"sync"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/path/to/config.yaml"),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if l.filePath != "/path/to/config.yaml" {
		t.Errorf("filePath = %q, want %q", l.filePath, "/path/to/config.yaml")
	}
}

func TestLoader_LoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
bot:
  token: "1234567:secret"
  poll_timeout: "10s"
sync:
  pointer:
    chat_id: 721641425
log:
  level: "debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	l := NewLoader(WithConfigFile(configPath))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Bot.Token != "1234567:secret" {
		t.Errorf("bot.token = %q", cfg.Bot.Token)
	}
	if cfg.Sync.Pointer.ChatID != 721641425 {
		t.Errorf("sync.pointer.chat_id = %d", cfg.Sync.Pointer.ChatID)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q", cfg.Log.Level)
	}
}

func TestLoader_LoadFile_Missing(t *testing.T) {
	l := NewLoader(WithConfigFile("/nonexistent/config.yaml"))
	var cfg testConfig
	if err := l.Load(&cfg); err == nil {
		t.Fatal("Load() should fail for a missing file")
	}
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := "log:\n  level: \"info\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("LEADERBOARD_LOG_LEVEL", "error")

	l := NewLoader(WithConfigFile(configPath))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("log.level = %q, want env override %q", cfg.Log.Level, "error")
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{"log.level": "warn"}); err != nil {
		t.Fatalf("LoadMap() error: %v", err)
	}
	if got := l.GetString("log.level"); got != "warn" {
		t.Errorf("log.level = %q", got)
	}
}

func TestLoader_IsLoaded(t *testing.T) {
	l := NewLoader()
	if l.IsLoaded() {
		t.Error("IsLoaded() = true before Load()")
	}
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() = false after Load()")
	}
}
