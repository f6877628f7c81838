package swaggermcp

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahimsaleem/Swaggermcp/testutil"
)

func TestBuildOpenAPIDocument(t *testing.T) {
	gen := synthesizeSource(t, `def add(x: int, y: int = 2):
    "Add two numbers."
    return x + y
`, SynthesizeOptions{Title: "Calc"})

	doc := BuildOpenAPI(gen)
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Equal(t, "Calc", doc.Info.Title)

	path, ok := doc.Paths["/add"]
	require.True(t, ok)
	require.NotNil(t, path.GET)

	op := path.GET
	assert.Equal(t, "add", op.OperationID)
	assert.Equal(t, "Add two numbers.", op.Description)
	require.Len(t, op.Parameters, 2)

	x := op.Parameters[0]
	assert.Equal(t, "x", x.Name)
	assert.Equal(t, "query", x.In)
	assert.True(t, x.Required)
	assert.Equal(t, "integer", x.Schema.Type)

	y := op.Parameters[1]
	assert.False(t, y.Required)
	assert.Equal(t, "2", y.Schema.Default)

	require.Contains(t, op.Responses, "200")
	require.Contains(t, op.Responses, "400")
}

func TestBuildOpenAPIGroupBecomesTag(t *testing.T) {
	gen := synthesizeSource(t, "def f():\n    return 1\n",
		SynthesizeOptions{Group: "math"})

	doc := BuildOpenAPI(gen)
	require.Len(t, doc.Tags, 1)
	assert.Equal(t, "math", doc.Tags[0].Name)
	assert.Equal(t, []string{"math"}, doc.Paths["/f"].GET.Tags)
}

func TestHintSchemaMapping(t *testing.T) {
	tests := []struct {
		hint string
		want string
	}{
		{"int", "integer"},
		{"float", "number"},
		{"bool", "boolean"},
		{"str", "string"},
		{"list", "array"},
		{"dict", "object"},
		{"", "string"},
		{"SomeClass", "string"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hintSchema(tt.hint).Type, "hint %q", tt.hint)
	}
}

func TestOpenAPIEndpointServesDocument(t *testing.T) {
	gen := synthesizeSource(t, "def f(a):\n    return a\n", SynthesizeOptions{})

	req, rec := testutil.NewRequest().GET("/openapi.json").Build()
	gen.Handler().ServeHTTP(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)

	var doc OpenAPIDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Contains(t, doc.Paths, "/f")
}
