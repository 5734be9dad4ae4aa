package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// namedRegions are the region_name values accepted by imaging.NamedRegion.
var namedRegions = []string{
	"top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center",
}

func regionSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer", "description": "Left edge X coordinate (0-based)"},
			"y1": map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate (0-based)"},
			"x2": map[string]interface{}{"type": "integer", "description": "Right edge X coordinate (exclusive)"},
			"y2": map[string]interface{}{"type": "integer", "description": "Bottom edge Y coordinate (exclusive)"},
		},
		"required":             []string{"x1", "y1", "x2", "y2"},
		"additionalProperties": false,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "ocr_recognize",
			Description: "Recognize the text in an image file. Returns words with bounding boxes, confidence (0 = certain, 100 = rejected) and line indices, plus the reconstructed text.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"minLength":   1,
						"description": "Absolute path to the image file",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language codes, e.g. eng or eng+deu. Defaults to the configured language",
					},
					"region": regionSchema("Only recognize this rectangle. Boxes are reported in full-image coordinates"),
					"region_name": map[string]interface{}{
						"type":        "string",
						"enum":        namedRegions,
						"description": "Only recognize a named part of the image",
					},
					"preprocess": map[string]interface{}{
						"type":        "boolean",
						"description": "Grayscale, contrast and auto-invert the image first. Defaults to the configured behaviour",
					},
					"scale": map[string]interface{}{
						"type":             "number",
						"exclusiveMinimum": 0,
						"maximum":          8,
						"description":      "Enlarge the image before recognition (implies preprocess). Small text often reads better at 2.0",
					},
					"include_chars": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the per-character events of every word",
						"default":     false,
					},
					"annotate": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the image with word boxes drawn on it as base64 PNG",
						"default":     false,
					},
					"box_color": map[string]interface{}{
						"type":        "string",
						"pattern":     "^#?[0-9a-fA-F]{6}$",
						"description": "Hex color for annotation boxes. Default #FF0000",
					},
				},
				"required":             []string{"path"},
				"additionalProperties": false,
			},
		},
		{
			Name:        "ocr_recognize_batch",
			Description: "Recognize several image files concurrently. Results are returned in the order the paths were given; a failed file reports its error without failing the batch.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"minItems":    1,
						"items":       map[string]interface{}{"type": "string", "minLength": 1},
						"description": "Absolute paths to the image files",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language codes applied to every file",
					},
					"preprocess": map[string]interface{}{
						"type":        "boolean",
						"description": "Preprocess every image first",
					},
				},
				"required":             []string{"paths"},
				"additionalProperties": false,
			},
		},
		{
			Name:        "ocr_reconstruct",
			Description: "Rebuild words and lines from a saved monitor buffer snapshot. A snapshot whose header disagrees with its events is rejected.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"snapshot": map[string]interface{}{
						"type":        "object",
						"description": "A snapshot as written by `ocr-monitor-mcp recognize --snapshot`",
						"properties": map[string]interface{}{
							"capacity": map[string]interface{}{"type": "integer"},
							"count":    map[string]interface{}{"type": "integer"},
							"events": map[string]interface{}{
								"type": "array",
								"items": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"code":       map[string]interface{}{"type": "integer"},
										"left":       map[string]interface{}{"type": "integer"},
										"top":        map[string]interface{}{"type": "integer"},
										"right":      map[string]interface{}{"type": "integer"},
										"bottom":     map[string]interface{}{"type": "integer"},
										"confidence": map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 255},
										"font_index": map[string]interface{}{"type": "integer"},
										"point_size": map[string]interface{}{"type": "integer"},
										"blanks":     map[string]interface{}{"type": "integer"},
										"formatting": map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 255},
									},
									"required": []string{"code", "left", "top", "right", "bottom"},
								},
							},
						},
						"required": []string{"capacity", "count", "events"},
					},
					"include_chars": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the per-character events of every word",
						"default":     false,
					},
				},
				"required":             []string{"snapshot"},
				"additionalProperties": false,
			},
		},
		{
			Name:        "ocr_pool_stats",
			Description: "Report the monitor session pool: size, sessions in use and per-session buffer capacity.",
			InputSchema: map[string]interface{}{
				"type":                 "object",
				"properties":           map[string]interface{}{},
				"additionalProperties": false,
			},
		},
		{
			Name:        "ocr_engine_info",
			Description: "Report whether the OCR engine is available, its version and the configured languages and DPI.",
			InputSchema: map[string]interface{}{
				"type":                 "object",
				"properties":           map[string]interface{}{},
				"additionalProperties": false,
			},
		},
	}
}

// compileSchemas compiles each tool's input schema for argument validation.
func compileSchemas(tools []Tool) (map[string]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	for _, tool := range tools {
		raw, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s schema: %w", tool.Name, err)
		}
		if err := compiler.AddResource(tool.Name+".json", bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("failed to load %s schema: %w", tool.Name, err)
		}
	}

	schemas := make(map[string]*jsonschema.Schema, len(tools))
	for _, tool := range tools {
		schema, err := compiler.Compile(tool.Name + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s schema: %w", tool.Name, err)
		}
		schemas[tool.Name] = schema
	}
	return schemas, nil
}

// validateArguments checks raw tool arguments against the tool's schema.
// Missing arguments validate as an empty object.
func (s *Server) validateArguments(name string, args json.RawMessage) error {
	schema, ok := s.schemas[name]
	if !ok {
		return nil
	}
	if len(bytes.TrimSpace(args)) == 0 || bytes.Equal(bytes.TrimSpace(args), []byte("null")) {
		args = json.RawMessage("{}")
	}
	var doc any
	if err := json.Unmarshal(args, &doc); err != nil {
		return fmt.Errorf("failed to decode arguments: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("arguments do not match %s schema: %w", name, err)
	}
	return nil
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
