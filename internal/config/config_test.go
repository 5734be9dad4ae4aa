package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return configFile
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config does not validate: %v", err)
	}
	if cfg.Buffer.Blocks*cfg.Buffer.SlotsPerBlock != 12700 {
		t.Errorf("default capacity: got %d, want 12700", cfg.Buffer.Blocks*cfg.Buffer.SlotsPerBlock)
	}
	if got := cfg.Languages(); !reflect.DeepEqual(got, []string{"eng"}) {
		t.Errorf("Languages: got %v", got)
	}
}

func TestParseLanguages(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"eng", []string{"eng"}},
		{"eng+deu", []string{"eng", "deu"}},
		{"eng, fra", []string{"eng", "fra"}},
		{"", nil},
		{"+", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLanguages(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_SlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		cfg := &Config{LogLevel: in}
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"no language", func(c *Config) { c.Engine.Language = "" }, "engine.language"},
		{"page seg mode", func(c *Config) { c.Engine.PageSegMode = 14 }, "page_seg_mode"},
		{"dpi", func(c *Config) { c.Engine.DPI = 0 }, "engine.dpi"},
		{"max concurrent", func(c *Config) { c.Engine.MaxConcurrent = -1 }, "max_concurrent"},
		{"blocks", func(c *Config) { c.Buffer.Blocks = 0 }, "buffer"},
		{"slots", func(c *Config) { c.Buffer.SlotsPerBlock = 0 }, "buffer"},
		{"pool size", func(c *Config) { c.Pool.Size = 0 }, "pool.size"},
		{"contrast", func(c *Config) { c.Preprocess.Contrast = 101 }, "contrast"},
		{"scale", func(c *Config) { c.Preprocess.Scale = 0 }, "scale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		configFile := writeConfig(t, `
log_level: debug
engine:
  language: eng+deu
  variables:
    tessedit_char_whitelist: "0123456789"
buffer:
  blocks: 4
  slots_per_block: 10
pool:
  size: 3
`)
		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel: got %s", cfg.LogLevel)
		}
		if !reflect.DeepEqual(cfg.Languages(), []string{"eng", "deu"}) {
			t.Errorf("Languages: got %v", cfg.Languages())
		}
		if cfg.Buffer.Blocks != 4 || cfg.Buffer.SlotsPerBlock != 10 || cfg.Pool.Size != 3 {
			t.Errorf("sizing: %+v %+v", cfg.Buffer, cfg.Pool)
		}
		if cfg.Engine.Variables["tessedit_char_whitelist"] != "0123456789" {
			t.Errorf("Variables: got %v", cfg.Engine.Variables)
		}
		// Untouched keys keep their defaults.
		if cfg.Engine.DPI != 300 {
			t.Errorf("DPI default: got %d", cfg.Engine.DPI)
		}
		if mgr.ConfigFileUsed() != configFile {
			t.Errorf("ConfigFileUsed: got %s", mgr.ConfigFileUsed())
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		configFile := writeConfig(t, "pool:\n  size: 3\n")
		t.Setenv("OCRMON_POOL_SIZE", "5")
		t.Setenv("OCRMON_ENGINE_LANGUAGE", "fra")

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		cfg := mgr.Get()
		if cfg.Pool.Size != 5 {
			t.Errorf("Pool.Size: got %d, want 5", cfg.Pool.Size)
		}
		if cfg.Engine.Language != "fra" {
			t.Errorf("Engine.Language: got %s, want fra", cfg.Engine.Language)
		}
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		configFile := writeConfig(t, "buffer:\n  blocks: 0\n")
		if _, err := NewManager(configFile); err == nil {
			t.Error("expected error for zero blocks")
		}
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		if _, err := NewManager(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("failed to load written default: %v", err)
	}
	cfg := mgr.Get()
	want := DefaultConfig()
	if cfg.Buffer != want.Buffer || cfg.Pool != want.Pool || cfg.Engine.Language != want.Engine.Language {
		t.Errorf("round trip mismatch: got %+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "OCRMON_DOTENV_TEST_VALUE"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(key+"=from-dotenv\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv(key); got != "from-dotenv" {
		t.Errorf("env: got %q", got)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored: %v", err)
	}
}

func TestManager_OnChange_Multiple(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "log_level: info\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})

	mgr.mu.RLock()
	if len(mgr.callbacks) != 3 {
		t.Errorf("expected 3 callbacks, got %d", len(mgr.callbacks))
	}
	mgr.mu.RUnlock()
}

func TestManager_WatchConfig(t *testing.T) {
	configFile := writeConfig(t, "pool:\n  size: 1\n")

	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	var callbackCount atomic.Int32
	var lastSize atomic.Int32
	mgr.OnChange(func(cfg *Config) {
		callbackCount.Add(1)
		lastSize.Store(int32(cfg.Pool.Size))
	})

	mgr.WatchConfig()

	// Give fsnotify time to set up the watcher
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(configFile, []byte("pool:\n  size: 6\n"), 0644); err != nil {
		t.Fatalf("failed to write updated config file: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if callbackCount.Load() > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if callbackCount.Load() == 0 {
		t.Fatal("callback was not invoked after config file change")
	}
	if mgr.Get().Pool.Size != 6 {
		t.Errorf("config not updated: got pool size %d", mgr.Get().Pool.Size)
	}
	if lastSize.Load() != 6 {
		t.Errorf("callback received wrong value: %d", lastSize.Load())
	}
}
