package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Resource URIs.
const (
	MappingURI  = "formfill://mapping"
	TemplateURI = "formfill://template"
)

// RegisterResources adds the read-only form resources backed by eng.
func RegisterResources(s *Server, eng Engine) {
	s.AddResource(Resource{
		URI:         MappingURI,
		Name:        "Form Mapping",
		Description: "The mapping file in canonical form: where each field, checkbox and line is drawn.",
		MIMEType:    "application/json",
		Handler: func(ctx context.Context, uri string) ([]ResourceContent, error) {
			doc, _, err := eng.Mapping(ctx)
			if err != nil {
				return nil, err
			}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("encoding mapping: %w", err)
			}
			return []ResourceContent{{URI: uri, MIMEType: "application/json", Text: string(data)}}, nil
		},
	})

	s.AddResource(Resource{
		URI:         TemplateURI,
		Name:        "Blank Template",
		Description: "The unfilled template PDF.",
		MIMEType:    "application/pdf",
		Handler: func(ctx context.Context, uri string) ([]ResourceContent, error) {
			data, err := eng.Baseline(ctx)
			if err != nil {
				return nil, err
			}
			return []ResourceContent{{
				URI:      uri,
				MIMEType: "application/pdf",
				Blob:     base64.StdEncoding.EncodeToString(data),
			}}, nil
		},
	})
}
