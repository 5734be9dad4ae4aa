package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ironsheep/ocr-monitor-mcp/internal/config"
	"github.com/ironsheep/ocr-monitor-mcp/internal/imaging"
	"github.com/ironsheep/ocr-monitor-mcp/internal/monitor"
	"github.com/ironsheep/ocr-monitor-mcp/internal/ocr"
	"github.com/ironsheep/ocr-monitor-mcp/internal/server"
)

// env is everything a command needs, built from configuration.
type env struct {
	cfg    *config.Manager
	level  *slog.LevelVar
	logger *slog.Logger
	pool   *monitor.Pool
	rec    *ocr.Recognizer
	srv    *server.Server
}

func newEnv() (*env, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	mgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg := mgr.Get()

	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	if logLevel != "" {
		if !config.ValidLogLevel(logLevel) {
			return nil, fmt.Errorf("invalid --log-level %q", logLevel)
		}
		level.Set((&config.Config{LogLevel: logLevel}).SlogLevel())
	}

	// stdout carries the MCP protocol, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ocr.SetConcurrencyLimit(int64(cfg.Engine.MaxConcurrent))

	pool, err := monitor.NewPool(cfg.Pool.Size, cfg.Buffer.Blocks, cfg.Buffer.SlotsPerBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to create monitor pool: %w", err)
	}

	rec := ocr.NewRecognizer(pool, engineOptions(cfg), logger)

	srv, err := server.New(rec, server.Options{
		Preprocess:          preprocessOptions(cfg),
		PreprocessByDefault: cfg.Preprocess.Enabled,
		Logger:              logger,
	})
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &env{
		cfg:    mgr,
		level:  level,
		logger: logger,
		pool:   pool,
		rec:    rec,
		srv:    srv,
	}, nil
}

func (e *env) Close() {
	e.pool.Close()
}

func engineOptions(cfg *config.Config) ocr.Options {
	return ocr.Options{
		Languages:      cfg.Languages(),
		TessdataPrefix: cfg.Engine.TessdataPrefix,
		PageSegMode:    cfg.Engine.PageSegMode,
		DPI:            cfg.Engine.DPI,
		Variables:      cfg.Engine.Variables,
	}
}

func preprocessOptions(cfg *config.Config) imaging.PreprocessOptions {
	return imaging.PreprocessOptions{
		Contrast:   cfg.Preprocess.Contrast,
		Scale:      cfg.Preprocess.Scale,
		AutoInvert: true,
	}
}
