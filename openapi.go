package swaggermcp

// OpenAPI 3.0 document types for the generated endpoint documentation.

// OpenAPIDocument is a complete OpenAPI 3.0 specification.
type OpenAPIDocument struct {
	OpenAPI string              `json:"openapi"`
	Info    InfoSpec            `json:"info"`
	Paths   map[string]PathSpec `json:"paths"`
	Tags    []TagSpec           `json:"tags,omitempty"`
}

// InfoSpec contains API metadata.
type InfoSpec struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

// PathSpec defines HTTP operations for a specific path.
type PathSpec struct {
	GET    *OperationSpec `json:"get,omitempty"`
	POST   *OperationSpec `json:"post,omitempty"`
	PUT    *OperationSpec `json:"put,omitempty"`
	DELETE *OperationSpec `json:"delete,omitempty"`
}

// OperationSpec defines a single HTTP operation.
type OperationSpec struct {
	Summary     string                  `json:"summary"`
	Description string                  `json:"description,omitempty"`
	OperationID string                  `json:"operationId,omitempty"`
	Parameters  []ParameterSpec         `json:"parameters,omitempty"`
	Responses   map[string]ResponseSpec `json:"responses"`
	Tags        []string                `json:"tags,omitempty"`
}

// ParameterSpec defines an operation parameter.
type ParameterSpec struct {
	Name        string `json:"name"`
	In          string `json:"in"` // "query", "path", "header"
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Schema      Schema `json:"schema"`
}

// ResponseSpec defines an operation response.
type ResponseSpec struct {
	Description string               `json:"description"`
	Content     map[string]MediaSpec `json:"content,omitempty"`
}

// MediaSpec carries the schema for one response content type.
type MediaSpec struct {
	Schema Schema `json:"schema"`
}

// Schema defines a parameter or response schema.
type Schema struct {
	Type       string            `json:"type,omitempty"`
	Format     string            `json:"format,omitempty"`
	Properties map[string]Schema `json:"properties,omitempty"`
	Default    string            `json:"default,omitempty"`
}

// TagSpec defines an API tag for grouping operations.
type TagSpec struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

const openAPIVersion = "3.0.3"

// BuildOpenAPI derives the OpenAPI document for a generation. Every
// endpoint becomes a GET operation whose query parameters mirror the
// extracted function signature.
func BuildOpenAPI(g *Generation) *OpenAPIDocument {
	doc := &OpenAPIDocument{
		OpenAPI: openAPIVersion,
		Info: InfoSpec{
			Title:       g.Title,
			Description: "API generated from uploaded function definitions.",
			Version:     "1.0.0",
		},
		Paths: make(map[string]PathSpec, len(g.Endpoints)),
	}
	if g.Group != "" {
		doc.Tags = append(doc.Tags, TagSpec{Name: g.Group})
	}

	for _, ep := range g.Endpoints {
		op := &OperationSpec{
			Summary:     ep.Descriptor.Name,
			Description: ep.Descriptor.DocSummary,
			OperationID: ep.Descriptor.Name,
			Responses: map[string]ResponseSpec{
				"200": {
					Description: "Function result",
					Content: map[string]MediaSpec{
						"application/json": {Schema: Schema{
							Type:       "object",
							Properties: map[string]Schema{"result": {}},
						}},
					},
				},
				"400": {
					Description: "Invalid argument or function error",
					Content: map[string]MediaSpec{
						"application/json": {Schema: Schema{Type: "object"}},
					},
				},
			},
		}
		if g.Group != "" {
			op.Tags = []string{g.Group}
		}
		for _, p := range ep.Descriptor.Parameters {
			ps := ParameterSpec{
				Name:     p.Name,
				In:       "query",
				Required: p.Required(),
				Schema:   hintSchema(p.TypeHint),
			}
			if p.HasDefault {
				ps.Schema.Default = p.DefaultRepr
			}
			op.Parameters = append(op.Parameters, ps)
		}
		doc.Paths[ep.RoutePath] = PathSpec{GET: op}
	}

	return doc
}

// hintSchema maps a signature annotation to an OpenAPI schema. Values
// arrive as query strings and go through the coercion chain regardless, so
// the schema is documentation rather than enforcement.
func hintSchema(hint string) Schema {
	switch hint {
	case "int":
		return Schema{Type: "integer"}
	case "float":
		return Schema{Type: "number"}
	case "bool":
		return Schema{Type: "boolean"}
	case "str":
		return Schema{Type: "string"}
	case "list":
		return Schema{Type: "array"}
	case "dict":
		return Schema{Type: "object"}
	default:
		return Schema{Type: "string"}
	}
}
