package swaggermcp

import (
	"bytes"
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahimsaleem/Swaggermcp/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.AppPort = pickPort(t)
	cfg.SettleDelay = 5 * time.Millisecond
	cfg.StopTimeout = 2 * time.Second
	cfg.ReadyProbe = 2 * time.Second

	srv, err := NewServer(cfg, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Manager().Stop(ctx)
	})
	return srv
}

func multipartUpload(t *testing.T, path, filename, source string, fields map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(source))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req, httptest.NewRecorder()
}

func TestUploadEndToEnd(t *testing.T) {
	srv := testServer(t)
	h := srv.Handler()

	req, rec := multipartUpload(t, "/upload", "calc.py",
		"def add(x, y):\n    return int(x) + int(y)\n",
		map[string]string{"group": "calc"})
	h.ServeHTTP(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)

	var result ActivationResult
	testutil.DecodeJSON(t, rec, &result)
	assert.Equal(t, "ok", result.Status)
	require.Len(t, result.EndpointURLs, 1)

	var body map[string]any
	status := getJSON(t, result.EndpointURLs[0]+"?x=3&y=4", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"result": float64(7)}, body)

	// Docs and schema are reachable on the activated listener.
	resp, err := http.Get(result.DocURL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUploadFormSourceField(t *testing.T) {
	srv := testServer(t)

	req, rec := testutil.NewRequest().POST("/upload").WithForm(map[string]string{
		"source": "def one():\n    return 1\n",
	}).Build()
	srv.Handler().ServeHTTP(rec, req)

	testutil.AssertStatus(t, rec, http.StatusOK)
	var result ActivationResult
	testutil.DecodeJSON(t, rec, &result)
	require.Len(t, result.EndpointURLs, 1)
	assert.Contains(t, result.EndpointURLs[0], "/one")
}

func TestUploadParseErrorRejected(t *testing.T) {
	srv := testServer(t)

	req, rec := testutil.NewRequest().POST("/upload").WithForm(map[string]string{
		"source": "def broken(:\n    pass\n",
	}).Build()
	srv.Handler().ServeHTTP(rec, req)

	testutil.AssertStatus(t, rec, http.StatusBadRequest)
	testutil.AssertJSONError(t, rec, string(KindParse))

	// A rejected upload never touches the listener.
	assert.Equal(t, StateStopped, srv.Manager().State())
}

func TestUploadRejectsNonPyFilename(t *testing.T) {
	srv := testServer(t)
	h := srv.Handler()

	tests := []string{"notes.txt", "calc.go", "calc"}
	for _, name := range tests {
		req, rec := multipartUpload(t, "/upload", name,
			"def f():\n    return 1\n", nil)
		h.ServeHTTP(rec, req)
		testutil.AssertStatus(t, rec, http.StatusBadRequest)
		errResp := testutil.AssertJSONError(t, rec, string(KindInvalidArgument))
		assert.Contains(t, errResp.Message, ".py")
	}
	assert.Equal(t, StateStopped, srv.Manager().State())

	// Case-insensitive suffix match still accepts uppercase extensions.
	req, rec := multipartUpload(t, "/upload", "CALC.PY",
		"def f():\n    return 1\n", nil)
	h.ServeHTTP(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)
}

func TestUploadEmptyInputRejected(t *testing.T) {
	srv := testServer(t)

	tests := []map[string]string{
		{"source": "x = 1\n"}, // no functions
		{},                    // no source at all
	}
	for _, form := range tests {
		req, rec := testutil.NewRequest().POST("/upload").WithForm(form).Build()
		srv.Handler().ServeHTTP(rec, req)
		testutil.AssertStatus(t, rec, http.StatusBadRequest)
		testutil.AssertJSONError(t, rec, string(KindEmptyInput))
	}
}

func TestUploadRejectionKeepsPreviousGeneration(t *testing.T) {
	srv := testServer(t)
	h := srv.Handler()

	req, rec := testutil.NewRequest().POST("/upload").WithForm(map[string]string{
		"source": "def keep():\n    return 1\n",
	}).Build()
	h.ServeHTTP(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)

	req, rec = testutil.NewRequest().POST("/upload").WithForm(map[string]string{
		"source": "def broken(:\n",
	}).Build()
	h.ServeHTTP(rec, req)
	testutil.AssertStatus(t, rec, http.StatusBadRequest)

	// The earlier generation keeps serving.
	var body map[string]any
	status := getJSON(t, srv.Manager().BaseURL()+"/keep", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, StateReady, srv.Manager().State())
}

func TestUploadPersistsArtifact(t *testing.T) {
	srv := testServer(t)

	req, rec := testutil.NewRequest().POST("/upload").WithForm(map[string]string{
		"source": "def f():\n    return 1\n",
	}).Build()
	srv.Handler().ServeHTTP(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)

	data, err := os.ReadFile(filepath.Join(srv.cfg.DataDir, "generation.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"schema_version": 1`)
	assert.Contains(t, string(data), `"/f"`)

	uploads, err := os.ReadDir(filepath.Join(srv.cfg.DataDir, "uploads"))
	require.NoError(t, err)
	assert.Len(t, uploads, 1)
}

func TestStatusEndpoint(t *testing.T) {
	srv := testServer(t)
	h := srv.Handler()

	req, rec := testutil.NewRequest().GET("/status").Build()
	h.ServeHTTP(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)

	var st Status
	testutil.DecodeJSON(t, rec, &st)
	assert.Equal(t, StateStopped, st.State)

	upReq, upRec := testutil.NewRequest().POST("/upload").WithForm(map[string]string{
		"source": "def f():\n    return 1\n",
	}).Build()
	h.ServeHTTP(upRec, upReq)
	testutil.AssertStatus(t, upRec, http.StatusOK)

	req, rec = testutil.NewRequest().GET("/status").Build()
	h.ServeHTTP(rec, req)
	testutil.DecodeJSON(t, rec, &st)
	assert.Equal(t, StateReady, st.State)
	assert.NotEmpty(t, st.Endpoints)
}

func TestEndpointsListing(t *testing.T) {
	srv := testServer(t)
	h := srv.Handler()

	req, rec := testutil.NewRequest().GET("/endpoints").Build()
	h.ServeHTTP(rec, req)
	testutil.AssertStatus(t, rec, http.StatusNotFound)
	testutil.AssertJSONError(t, rec, string(KindNotFound))

	upReq, upRec := testutil.NewRequest().POST("/upload").WithForm(map[string]string{
		"source": "def add(x, y=1):\n    \"Add things.\"\n    return x + y\n",
	}).Build()
	h.ServeHTTP(upRec, upReq)
	testutil.AssertStatus(t, upRec, http.StatusOK)

	req, rec = testutil.NewRequest().GET("/endpoints").Build()
	h.ServeHTTP(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)

	var listing struct {
		Endpoints []endpointInfo `json:"endpoints"`
		Docs      string         `json:"docs"`
	}
	testutil.DecodeJSON(t, rec, &listing)
	require.Len(t, listing.Endpoints, 1)
	ep := listing.Endpoints[0]
	assert.Equal(t, "add", ep.Name)
	assert.Equal(t, "Add things.", ep.Doc)
	require.Len(t, ep.Parameters, 2)
	assert.True(t, ep.Parameters[0].Required())
	assert.False(t, ep.Parameters[1].Required())
	assert.NotEmpty(t, listing.Docs)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := testServer(t)
	h := srv.Handler()

	upReq, upRec := testutil.NewRequest().POST("/upload").WithForm(map[string]string{
		"source": "def f():\n    return 1\n",
	}).Build()
	h.ServeHTTP(upRec, upReq)
	testutil.AssertStatus(t, upRec, http.StatusOK)

	req, rec := testutil.NewRequest().GET("/metrics").Build()
	h.ServeHTTP(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)
	assert.Contains(t, rec.Body.String(), "swaggermcp_uploads_total")
	assert.Contains(t, rec.Body.String(), "swaggermcp_activations_total")
}

func TestControlHealthz(t *testing.T) {
	srv := testServer(t)

	req, rec := testutil.NewRequest().GET("/healthz").Build()
	srv.Handler().ServeHTTP(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)
}
