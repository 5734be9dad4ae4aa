package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g.
// OCRMON_ENGINE_LANGUAGE.
const EnvPrefix = "OCRMON"

// Config is the full server configuration.
type Config struct {
	LogLevel   string           `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Engine     EngineConfig     `mapstructure:"engine" yaml:"engine" json:"engine"`
	Buffer     BufferConfig     `mapstructure:"buffer" yaml:"buffer" json:"buffer"`
	Pool       PoolConfig       `mapstructure:"pool" yaml:"pool" json:"pool"`
	Preprocess PreprocessConfig `mapstructure:"preprocess" yaml:"preprocess" json:"preprocess"`
}

// EngineConfig configures Tesseract.
type EngineConfig struct {
	// Language uses Tesseract's "eng+deu" form for multiple languages.
	Language       string            `mapstructure:"language" yaml:"language" json:"language"`
	TessdataPrefix string            `mapstructure:"tessdata_prefix" yaml:"tessdata_prefix" json:"tessdata_prefix"`
	PageSegMode    int               `mapstructure:"page_seg_mode" yaml:"page_seg_mode" json:"page_seg_mode"`
	DPI            int               `mapstructure:"dpi" yaml:"dpi" json:"dpi"`
	Variables      map[string]string `mapstructure:"variables" yaml:"variables" json:"variables"`
	MaxConcurrent  int               `mapstructure:"max_concurrent" yaml:"max_concurrent" json:"max_concurrent"`
}

// BufferConfig sizes each monitor buffer.
type BufferConfig struct {
	Blocks        int `mapstructure:"blocks" yaml:"blocks" json:"blocks"`
	SlotsPerBlock int `mapstructure:"slots_per_block" yaml:"slots_per_block" json:"slots_per_block"`
}

// PoolConfig sizes the session pool.
type PoolConfig struct {
	Size int `mapstructure:"size" yaml:"size" json:"size"`
}

// PreprocessConfig holds the default image preparation.
type PreprocessConfig struct {
	Enabled  bool    `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Contrast float64 `mapstructure:"contrast" yaml:"contrast" json:"contrast"`
	Scale    float64 `mapstructure:"scale" yaml:"scale" json:"scale"`
}

// Languages splits Engine.Language into Tesseract language codes.
func (c *Config) Languages() []string {
	return ParseLanguages(c.Engine.Language)
}

// ParseLanguages splits "eng+deu" (or "eng,deu") into its codes.
func ParseLanguages(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '+' || r == ',' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// ValidLogLevel reports whether s names a level SlogLevel understands.
func ValidLogLevel(s string) bool {
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// Validate checks ranges that would otherwise fail deep inside the engine
// or the buffer allocator.
func (c *Config) Validate() error {
	if !ValidLogLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if len(c.Languages()) == 0 {
		return errors.New("engine.language must name at least one language")
	}
	if c.Engine.PageSegMode < 0 || c.Engine.PageSegMode > 13 {
		return fmt.Errorf("engine.page_seg_mode must be within [0, 13], got %d", c.Engine.PageSegMode)
	}
	if c.Engine.DPI < 1 {
		return fmt.Errorf("engine.dpi must be positive, got %d", c.Engine.DPI)
	}
	if c.Engine.MaxConcurrent < 0 {
		return fmt.Errorf("engine.max_concurrent must not be negative, got %d", c.Engine.MaxConcurrent)
	}
	if c.Buffer.Blocks < 1 || c.Buffer.SlotsPerBlock < 1 {
		return fmt.Errorf("buffer must have at least one block of one slot, got %d x %d",
			c.Buffer.Blocks, c.Buffer.SlotsPerBlock)
	}
	if c.Pool.Size < 1 {
		return fmt.Errorf("pool.size must be positive, got %d", c.Pool.Size)
	}
	if c.Preprocess.Contrast < -100 || c.Preprocess.Contrast > 100 {
		return fmt.Errorf("preprocess.contrast must be within [-100, 100], got %v", c.Preprocess.Contrast)
	}
	if c.Preprocess.Scale <= 0 || c.Preprocess.Scale > 8 {
		return fmt.Errorf("preprocess.scale must be within (0, 8], got %v", c.Preprocess.Scale)
	}
	return nil
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	v *viper.Viper

	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
//
// Values come, lowest precedence first, from defaults, the config file and
// OCRMON_* environment variables. An empty cfgFile searches for config.yaml
// in the working directory and $HOME/.ocr-monitor-mcp; not finding one is
// not an error.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

func (cm *Manager) initViper(cfgFile string) error {
	v := cm.v
	d := DefaultConfig()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("engine.language", d.Engine.Language)
	v.SetDefault("engine.tessdata_prefix", d.Engine.TessdataPrefix)
	v.SetDefault("engine.page_seg_mode", d.Engine.PageSegMode)
	v.SetDefault("engine.dpi", d.Engine.DPI)
	v.SetDefault("engine.variables", d.Engine.Variables)
	v.SetDefault("engine.max_concurrent", d.Engine.MaxConcurrent)
	v.SetDefault("buffer.blocks", d.Buffer.Blocks)
	v.SetDefault("buffer.slots_per_block", d.Buffer.SlotsPerBlock)
	v.SetDefault("pool.size", d.Pool.Size)
	v.SetDefault("preprocess.enabled", d.Preprocess.Enabled)
	v.SetDefault("preprocess.contrast", d.Preprocess.Contrast)
	v.SetDefault("preprocess.scale", d.Preprocess.Scale)

	// Environment variables with OCRMON_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.ocr-monitor-mcp")
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a validated Config.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFileUsed returns the path of the loaded config file, if any.
func (cm *Manager) ConfigFileUsed() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration. A change that fails
// validation is logged and the previous configuration stays in effect.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			slog.Warn("ignoring config change", "file", e.Name, "error", err)
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		slog.Info("config reloaded", "file", e.Name)
		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# ocr-monitor-mcp configuration
# Every key can be overridden with an OCRMON_ environment variable,
# e.g. OCRMON_ENGINE_LANGUAGE=eng+deu or OCRMON_POOL_SIZE=4.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
