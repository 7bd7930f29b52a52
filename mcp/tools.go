package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lvillar/formfill"
	"github.com/lvillar/formfill/fields"
	"github.com/lvillar/formfill/mapping"
)

// Engine is the form engine surface used by the tools and resources.
// *formfill.Engine implements it.
type Engine interface {
	Generate(ctx context.Context, rec fields.Record) (*formfill.Result, error)
	Diagnose(ctx context.Context, rec fields.Record) (*formfill.Diagnostics, error)
	Baseline(ctx context.Context) ([]byte, error)
	Mapping(ctx context.Context) (*mapping.Document, []string, error)
}

var _ Engine = (*formfill.Engine)(nil)

var dataSchema = map[string]any{
	"type":        "object",
	"description": `Applicant fields, e.g. {"name": "홍길동", "autopay_method": "card", "card_company": "Shinhan"}`,
}

// RegisterTools adds the form tools backed by eng.
func RegisterTools(s *Server, eng Engine) {
	s.AddTool(fillFormTool(eng))
	s.AddTool(diagnoseTool(eng))
	s.AddTool(normalizeMappingTool())
}

func fillFormTool(eng Engine) Tool {
	return Tool{
		Name:        "fill_form",
		Description: "Fill the subscription form template with applicant data. Returns the PDF as base64, or writes it to outputPath.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"data": dataSchema,
				"outputPath": map[string]any{
					"type":        "string",
					"description": "Optional file path to save the PDF. If omitted, returns base64.",
				},
			},
			"required": []string{"data"},
		},
		Handler: func(ctx context.Context, args map[string]any) (ToolResult, error) {
			rec, err := recordArg(args)
			if err != nil {
				return ToolResult{}, err
			}
			res, err := eng.Generate(ctx, rec)
			if err != nil {
				return ToolResult{}, fmt.Errorf("filling form: %w", err)
			}
			notes := warningText(res.Warnings)

			if outputPath, ok := args["outputPath"].(string); ok && outputPath != "" {
				if err := os.WriteFile(outputPath, res.PDF, 0o644); err != nil {
					return ToolResult{}, fmt.Errorf("writing file: %w", err)
				}
				return textResult("PDF written to %s (%d bytes)%s", outputPath, len(res.PDF), notes), nil
			}
			encoded := base64.StdEncoding.EncodeToString(res.PDF)
			return textResult("PDF generated (%d bytes)%s\nBase64 data:\n%s", len(res.PDF), notes, encoded), nil
		},
	}
}

func diagnoseTool(eng Engine) Tool {
	return Tool{
		Name:        "diagnose",
		Description: "Show how applicant data would be placed on the form: resolved paths, page sizes, scale factors, font status, the resolved record and every draw operation.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"data": dataSchema,
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (ToolResult, error) {
			rec, err := recordArg(args)
			if err != nil {
				return ToolResult{}, err
			}
			d, err := eng.Diagnose(ctx, rec)
			if err != nil {
				return ToolResult{}, fmt.Errorf("diagnosing: %w", err)
			}
			return jsonResult(d)
		},
	}
}

func normalizeMappingTool() Tool {
	return Tool{
		Name:        "normalize_mapping",
		Description: "Convert a mapping document (legacy fields/vmap or canonical text/checkbox/lines) to the canonical form. Pass the document inline as 'mapping' or a file as 'path'.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"mapping": map[string]any{
					"type":        "object",
					"description": "Mapping document to normalize",
				},
				"path": map[string]any{
					"type":        "string",
					"description": "Path of a mapping JSON file",
				},
			},
		},
		Handler: func(_ context.Context, args map[string]any) (ToolResult, error) {
			var (
				doc *mapping.Document
				err error
			)
			if path, ok := args["path"].(string); ok && path != "" {
				data, rerr := os.ReadFile(path)
				if rerr != nil {
					return ToolResult{}, fmt.Errorf("reading mapping: %w", rerr)
				}
				doc, err = mapping.Normalize(data)
			} else {
				doc, err = mapping.NormalizeValue(args["mapping"])
			}
			if err != nil {
				return ToolResult{}, err
			}
			return jsonResult(doc)
		},
	}
}

// recordArg reads the "data" argument. A missing value is an empty record.
func recordArg(args map[string]any) (fields.Record, error) {
	v, ok := args["data"]
	if !ok || v == nil {
		return fields.Record{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("'data' must be an object")
	}
	return fields.Record(m), nil
}

func jsonResult(v any) (ToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ToolResult{}, fmt.Errorf("encoding result: %w", err)
	}
	return ToolResult{Content: []ContentBlock{{Type: "text", Text: string(data)}}}, nil
}

func warningText(warnings []string) string {
	if len(warnings) == 0 {
		return ""
	}
	return "\nWarnings:\n- " + strings.Join(warnings, "\n- ")
}
