package swaggermcp

import "strings"

// ParameterDescriptor is one declared parameter of an extracted function.
// Ordering is preserved from the source for documentation fidelity; the
// generated routes bind by name, not position.
type ParameterDescriptor struct {
	Name        string `json:"name"`
	HasDefault  bool   `json:"has_default"`
	DefaultRepr string `json:"default_repr,omitempty"`
	TypeHint    string `json:"type_hint,omitempty"` // informational only
}

// Required reports whether a caller must supply this parameter.
func (p ParameterDescriptor) Required() bool { return !p.HasDefault }

// FunctionDescriptor is the extracted signature metadata for one top-level
// function. Nested, class-level, and anonymous functions never produce one.
type FunctionDescriptor struct {
	Name       string                `json:"name"`
	Parameters []ParameterDescriptor `json:"parameters"`
	DocSummary string                `json:"doc_summary,omitempty"`
	SpanStart  int                   `json:"span_start"`
	SpanEnd    int                   `json:"span_end"`
}

// RoutePath derives the deterministic route for this function.
func (d FunctionDescriptor) RoutePath() string { return "/" + d.Name }

// docSummary extracts the first non-empty line of a docstring.
func docSummary(doc string) string {
	for _, line := range strings.Split(doc, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}
