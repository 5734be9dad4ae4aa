package config

import "github.com/ironsheep/ocr-monitor-mcp/internal/monitor"

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Engine: EngineConfig{
			Language:      "eng",
			PageSegMode:   3,
			DPI:           300,
			Variables:     map[string]string{},
			MaxConcurrent: 2,
		},
		Buffer: BufferConfig{
			Blocks:        monitor.DefaultBlocks,
			SlotsPerBlock: monitor.DefaultSlotsPerBlock,
		},
		Pool: PoolConfig{
			Size: 2,
		},
		Preprocess: PreprocessConfig{
			Contrast: 20,
			Scale:    1.0,
		},
	}
}
