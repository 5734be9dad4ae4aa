package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/ironsheep/ocr-monitor-mcp/internal/monitor"
	"github.com/ironsheep/ocr-monitor-mcp/internal/words"
)

// ErrEngineUnavailable is returned when the binary was built without the
// Tesseract bindings.
var ErrEngineUnavailable = errors.New("tesseract engine unavailable: built without cgo")

// Options configures the engine for every call a Recognizer makes.
type Options struct {
	Languages      []string
	TessdataPrefix string
	PageSegMode    int
	DPI            int
	Variables      map[string]string
}

// Request carries the per-call parameters.
type Request struct {
	// Languages overrides Options.Languages when non-empty.
	Languages []string
	// Transform maps engine boxes back to source image coordinates.
	Transform Transform
}

// Result is what one recognition produced.
type Result struct {
	SessionID string           `json:"session_id"`
	Languages []string         `json:"languages"`
	Stats     FeedStats        `json:"stats"`
	Words     words.ResultSet  `json:"words"`
	Text      string           `json:"text"`
	Duration  time.Duration    `json:"duration_ns"`
	Snapshot  monitor.Snapshot `json:"-"`
}

// Info describes the OCR backend.
type Info struct {
	Available      bool     `json:"available"`
	Version        string   `json:"version,omitempty"`
	Error          string   `json:"error,omitempty"`
	Backend        string   `json:"backend"`
	TessdataPrefix string   `json:"tessdata_prefix,omitempty"`
	Languages      []string `json:"languages"`
	DPI            int      `json:"dpi"`
}

type engine interface {
	name() string
	version() (string, error)
	recognize(ctx context.Context, img []byte, opts Options) (PageBoxes, error)
}

// Recognizer drives the engine into pooled monitor buffers and reconstructs
// the result.
type Recognizer struct {
	engine engine
	pool   *monitor.Pool
	opts   Options
	logger *slog.Logger
}

// NewRecognizer creates a Recognizer backed by the compiled-in engine.
func NewRecognizer(pool *monitor.Pool, opts Options, logger *slog.Logger) *Recognizer {
	return newRecognizer(newEngine(), pool, opts, logger)
}

func newRecognizer(e engine, pool *monitor.Pool, opts Options, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Languages) == 0 {
		opts.Languages = []string{"eng"}
	}
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	return &Recognizer{engine: e, pool: pool, opts: opts, logger: logger}
}

// Recognize runs the engine over an encoded image.
//
// The engine writes into a buffer owned by one pool session for the length
// of the call. If ctx ends before the engine returns the session is
// abandoned and no reconstruction happens.
func (r *Recognizer) Recognize(ctx context.Context, img []byte, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	sess, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire monitor session: %w", err)
	}
	defer r.pool.Release(sess)

	buf, err := sess.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin monitor session: %w", err)
	}

	opts := r.opts
	if len(req.Languages) > 0 {
		opts.Languages = req.Languages
	}

	boxes, err := withConcurrencyLimit(ctx, func() (PageBoxes, error) {
		return r.engine.recognize(ctx, img, opts)
	})
	if err != nil {
		sess.Abandon()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		sess.Abandon()
		return nil, err
	}

	stats := Feed(buf, BuildPage(boxes, opts.DPI, req.Transform))
	snap := sess.End()

	rs, err := words.FromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct words: %w", err)
	}

	if stats.Truncated {
		r.logger.Warn("monitor buffer full, glyphs dropped",
			"session", sess.ID(), "capacity", snap.Capacity, "dropped", stats.Dropped)
	}
	r.logger.Debug("recognition complete",
		"session", sess.ID(), "events", snap.Count, "words", rs.Len(), "skipped", stats.Skipped)

	return &Result{
		SessionID: sess.ID(),
		Languages: opts.Languages,
		Stats:     stats,
		Words:     rs,
		Text:      rs.Text(),
		Duration:  time.Since(start),
		Snapshot:  snap,
	}, nil
}

// Info reports whether the engine can be used and its version.
func (r *Recognizer) Info() Info {
	info := Info{
		Backend:        r.engine.name(),
		TessdataPrefix: r.opts.TessdataPrefix,
		Languages:      r.opts.Languages,
		DPI:            r.opts.DPI,
	}
	version, err := r.engine.version()
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Available = true
	info.Version = version
	return info
}

// Pool returns the session pool the recognizer writes into.
func (r *Recognizer) Pool() *monitor.Pool {
	return r.pool
}

// RegionTransform returns the transform for a crop whose top-left corner is
// at (x, y) in the source image, enlarged by scale before recognition.
func RegionTransform(x, y int, scale float64) Transform {
	return Transform{Scale: scale, Offset: image.Pt(x, y)}
}
