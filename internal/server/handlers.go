package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/ocr-monitor-mcp/internal/config"
	"github.com/ironsheep/ocr-monitor-mcp/internal/imaging"
	"github.com/ironsheep/ocr-monitor-mcp/internal/monitor"
	"github.com/ironsheep/ocr-monitor-mcp/internal/ocr"
	"github.com/ironsheep/ocr-monitor-mcp/internal/words"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "ocr_recognize").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Arguments that fail schema validation return -32602. Tool execution
// errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	if err := s.validateArguments(params.Name, params.Arguments); err != nil {
		s.logger.Debug("rejected tool arguments", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.logger.Debug("tool complete", "tool", params.Name, "elapsed", time.Since(start))

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "ocr_recognize":
		return s.handleRecognize(ctx, args)
	case "ocr_recognize_batch":
		return s.handleRecognizeBatch(ctx, args)
	case "ocr_reconstruct":
		return s.handleReconstruct(args)
	case "ocr_pool_stats":
		return s.recognizer.Pool().Stats(), nil
	case "ocr_engine_info":
		return s.recognizer.Info(), nil
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments, treating missing arguments as {}.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Recognition ===

// RecognizeArgs are the arguments of ocr_recognize. The CLI builds the same
// struct from its flags.
type RecognizeArgs struct {
	Path         string          `json:"path"`
	Language     string          `json:"language,omitempty"`
	Region       *imaging.Region `json:"region,omitempty"`
	RegionName   string          `json:"region_name,omitempty"`
	Preprocess   *bool           `json:"preprocess,omitempty"`
	Scale        float64         `json:"scale,omitempty"`
	IncludeChars bool            `json:"include_chars,omitempty"`
	Annotate     bool            `json:"annotate,omitempty"`
	BoxColor     string          `json:"box_color,omitempty"`
}

// RecognizeResult is what ocr_recognize returns for one file.
type RecognizeResult struct {
	Path       string                  `json:"path"`
	Image      *imaging.ImageInfo      `json:"image"`
	Region     *imaging.Region         `json:"region,omitempty"`
	Preprocess *imaging.Prepared       `json:"preprocess,omitempty"`
	Result     *ocr.Result             `json:"result"`
	Annotated  *imaging.AnnotateResult `json:"annotated,omitempty"`
}

func (s *Server) handleRecognize(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a RecognizeArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return s.RecognizeFile(ctx, a)
}

// RecognizeFile loads an image, optionally crops and preprocesses it, and
// runs it through the recognizer. Word boxes are always reported in the
// coordinates of the file on disk. The decoded image is dropped from the
// cache before returning.
func (s *Server) RecognizeFile(ctx context.Context, a RecognizeArgs) (*RecognizeResult, error) {
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if a.Region != nil && a.RegionName != "" {
		return nil, errors.New("region and region_name are mutually exclusive")
	}
	// The decoded page is only shared within this call; a file rewritten
	// at the same path must be decoded again next time.
	defer s.cache.Evict(a.Path)

	info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	out := &RecognizeResult{Path: a.Path, Image: info}

	src := img
	origin := img.Bounds().Min
	switch {
	case a.Region != nil:
		r := *a.Region
		out.Region = &r
	case a.RegionName != "":
		r, err := imaging.NamedRegion(img.Bounds(), a.RegionName)
		if err != nil {
			return nil, err
		}
		out.Region = &r
	}
	if out.Region != nil {
		cropped, err := imaging.Crop(img, *out.Region)
		if err != nil {
			return nil, err
		}
		src = cropped
		origin = image.Pt(out.Region.X1, out.Region.Y1)
	}

	scale := 1.0
	if s.preprocessEnabled(a) {
		opts := s.opts.Preprocess
		if a.Scale > 0 {
			opts.Scale = a.Scale
		}
		prepared, err := imaging.Preprocess(src, opts)
		if err != nil {
			return nil, err
		}
		src = prepared.Image
		scale = prepared.Scale
		out.Preprocess = prepared
	}

	data, err := imaging.EncodePNG(src)
	if err != nil {
		return nil, err
	}

	res, err := s.recognizer.Recognize(ctx, data, ocr.Request{
		Languages: config.ParseLanguages(a.Language),
		Transform: ocr.RegionTransform(origin.X, origin.Y, scale),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to recognize %s: %w", a.Path, err)
	}

	if a.Annotate {
		boxes := make([]image.Rectangle, 0, res.Words.Len())
		for _, w := range res.Words.Words {
			boxes = append(boxes, image.Rect(w.Box.Left, w.Box.Top, w.Box.Right, w.Box.Bottom))
		}
		ann, err := imaging.Annotate(img, boxes, true, a.BoxColor)
		if err != nil {
			return nil, err
		}
		out.Annotated = ann
	}

	if !a.IncludeChars {
		res.Words = res.Words.WithoutChars()
	}
	out.Result = res
	return out, nil
}

// preprocessEnabled resolves the per-call preprocess flag against the
// configured default. Asking for a scale implies preprocessing.
func (s *Server) preprocessEnabled(a RecognizeArgs) bool {
	if a.Preprocess != nil {
		return *a.Preprocess
	}
	return a.Scale > 0 || s.opts.PreprocessByDefault
}

type recognizeBatchArgs struct {
	Paths      []string `json:"paths"`
	Language   string   `json:"language"`
	Preprocess *bool    `json:"preprocess"`
}

// BatchItem is one file's outcome in a batch.
type BatchItem struct {
	Path   string           `json:"path"`
	Result *RecognizeResult `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// BatchResult holds batch outcomes in the order the paths were given.
type BatchResult struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

func (s *Server) handleRecognizeBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a recognizeBatchArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, errors.New("paths must not be empty")
	}

	items := make([]BatchItem, len(a.Paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.recognizer.Pool().Stats().Size))
	for i, path := range a.Paths {
		i, path := i, path
		g.Go(func() error {
			items[i].Path = path
			res, err := s.RecognizeFile(gctx, RecognizeArgs{
				Path:       path,
				Language:   a.Language,
				Preprocess: a.Preprocess,
			})
			if err != nil {
				// Only cancellation stops the batch; anything else is
				// reported against its own file.
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				items[i].Error = err.Error()
				return nil
			}
			items[i].Result = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &BatchResult{Items: items}
	for _, it := range items {
		if it.Error != "" {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}
	return out, nil
}

// === Reconstruction ===

type reconstructArgs struct {
	Snapshot     *monitor.Snapshot `json:"snapshot"`
	IncludeChars bool              `json:"include_chars"`
}

// ReconstructResult is what ocr_reconstruct returns.
type ReconstructResult struct {
	Words          words.ResultSet `json:"words"`
	Text           string          `json:"text"`
	Lines          int             `json:"lines"`
	MeanConfidence float64         `json:"mean_confidence"`
}

// Reconstruct rebuilds words and lines from a snapshot.
func Reconstruct(snap monitor.Snapshot, includeChars bool) (*ReconstructResult, error) {
	rs, err := words.FromSnapshot(snap)
	if err != nil {
		return nil, err
	}
	out := &ReconstructResult{
		Text:           rs.Text(),
		Lines:          len(rs.Lines()),
		MeanConfidence: rs.MeanConfidence(),
	}
	if !includeChars {
		rs = rs.WithoutChars()
	}
	out.Words = rs
	return out, nil
}

func (s *Server) handleReconstruct(args json.RawMessage) (interface{}, error) {
	var a reconstructArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Snapshot == nil {
		return nil, errors.New("snapshot is required")
	}
	return Reconstruct(*a.Snapshot, a.IncludeChars)
}
