package swaggermcp

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ibrahimsaleem/Swaggermcp/internal/pylang"
)

// EndpointDefinition is one generated route: signature metadata plus the
// registered callable populated from the interpreted module.
type EndpointDefinition struct {
	RoutePath  string
	Descriptor FunctionDescriptor

	fn *pylang.Function
}

// Generation is one complete, atomically-activated set of synthesized
// endpoints derived from a single upload. The embedded interpreter holds the
// module globals, so original-function references (imports, constants,
// helper functions) stay resolvable at call time.
type Generation struct {
	Title     string
	Group     string
	Source    string
	Endpoints []EndpointDefinition
	CreatedAt time.Time

	interp   *pylang.Interp
	artifact []byte
	logger   *slog.Logger
	metrics  *Metrics
}

// SynthesizeOptions configures route generation.
type SynthesizeOptions struct {
	// Title labels the generated API; the optional Group tag is appended.
	Title string
	// Group is a purely cosmetic label carried from the upload request.
	Group string
	// Logger receives warnings from module-level statement execution.
	// Defaults to slog.Default().
	Logger *slog.Logger
	// Metrics, when set, records per-endpoint invocation counts.
	Metrics *Metrics
}

const artifactSchemaVersion = 1

// generationArtifact is the serialized form persisted by the store. Field
// order and struct-based encoding keep the bytes deterministic for a given
// descriptor list, which activation idempotence depends on.
type generationArtifact struct {
	SchemaVersion int                  `json:"schema_version"`
	Title         string               `json:"title"`
	Group         string               `json:"group,omitempty"`
	Endpoints     []FunctionDescriptor `json:"endpoints"`
	Source        string               `json:"source"`
}

// Synthesize builds a Generation from a parsed module and its descriptors.
// It never fails on well-formed extractor output: module-level statement
// errors are logged and skipped, and synthesis is deterministic — the same
// source and descriptor list always produce a byte-identical artifact.
func Synthesize(source string, mod *pylang.Module, descriptors []FunctionDescriptor, opts SynthesizeOptions) (*Generation, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	title := opts.Title
	if title == "" {
		title = "Generated API"
	}
	if opts.Group != "" {
		title += " - " + opts.Group
	}

	interp := pylang.NewInterp()
	for _, err := range interp.ExecModule(mod) {
		// A failing top-level statement (e.g. an assert) must not reject
		// the upload; definitions before and after it are already bound.
		logger.Warn("module-level statement failed", slog.Any("error", err))
	}

	g := &Generation{
		Title:     title,
		Group:     opts.Group,
		Source:    source,
		CreatedAt: time.Now().UTC(),
		interp:    interp,
		logger:    logger,
		metrics:   opts.Metrics,
	}

	// Route table with later-definition-wins on duplicate paths. The
	// interpreter already resolved duplicate names to the last body; here
	// the earlier route entry is silently replaced as well.
	byPath := make(map[string]int)
	for _, d := range descriptors {
		fnVal, ok := interp.Globals.Get(d.Name)
		if !ok || fnVal.Tag != pylang.TagFunc {
			logger.Warn("skipping descriptor without callable binding", slog.String("name", d.Name))
			continue
		}
		ep := EndpointDefinition{
			RoutePath:  d.RoutePath(),
			Descriptor: d,
			fn:         fnVal.Data.(*pylang.Function),
		}
		if i, seen := byPath[ep.RoutePath]; seen {
			g.Endpoints[i] = ep
			continue
		}
		byPath[ep.RoutePath] = len(g.Endpoints)
		g.Endpoints = append(g.Endpoints, ep)
	}

	artifact, err := json.MarshalIndent(generationArtifact{
		SchemaVersion: artifactSchemaVersion,
		Title:         title,
		Group:         opts.Group,
		Endpoints:     endpointDescriptors(g.Endpoints),
		Source:        source,
	}, "", "  ")
	if err != nil {
		return nil, Errorf(KindInternal, "encode generation artifact: %v", err)
	}
	g.artifact = append(artifact, '\n')

	return g, nil
}

func endpointDescriptors(eps []EndpointDefinition) []FunctionDescriptor {
	out := make([]FunctionDescriptor, len(eps))
	for i, ep := range eps {
		out[i] = ep.Descriptor
	}
	return out
}

// Artifact returns the deterministic serialized form of this generation.
func (g *Generation) Artifact() []byte { return g.artifact }

// EndpointPaths returns the route paths in table order.
func (g *Generation) EndpointPaths() []string {
	out := make([]string, len(g.Endpoints))
	for i, ep := range g.Endpoints {
		out[i] = ep.RoutePath
	}
	return out
}

// Handler builds the HTTP handler for this generation: one route per
// endpoint plus /healthz, /openapi.json, and the /docs page.
func (g *Generation) Handler() http.Handler {
	mux := http.NewServeMux()

	for _, ep := range g.Endpoints {
		mux.HandleFunc("GET "+ep.RoutePath, g.endpointHandler(ep))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	openapi, err := json.MarshalIndent(BuildOpenAPI(g), "", "  ")
	if err != nil {
		openapi = []byte(`{}`)
	}
	mux.HandleFunc("GET /openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(openapi)
	})

	docs := docsPage(g.Title)
	mux.HandleFunc("GET /docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(docs)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			writeError(w, Errorf(KindNotFound, "no such endpoint: %s", r.URL.Path), g.logger)
			return
		}
		_ = writeJSON(w, http.StatusOK, map[string]any{
			"title":     g.Title,
			"endpoints": g.EndpointPaths(),
			"docs":      "/docs",
			"openapi":   "/openapi.json",
		})
	})

	return mux
}

// endpointHandler wires the coercion prologue, the interpreted function
// invocation, and the serialization epilogue for one route.
func (g *Generation) endpointHandler(ep EndpointDefinition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		query := r.URL.Query()

		args := make(map[string]pylang.Value, len(ep.Descriptor.Parameters))
		var missing []string
		for _, p := range ep.Descriptor.Parameters {
			vals, ok := query[p.Name]
			if !ok || len(vals) == 0 {
				if p.Required() {
					missing = append(missing, p.Name)
				}
				// Defaulted parameters fall back to their default
				// expression inside ApplyNamed.
				continue
			}
			args[p.Name] = CoerceParam(vals[0])
		}
		if len(missing) > 0 {
			writeError(w, Errorf(KindInvalidArgument,
				"missing required parameter(s): %s", strings.Join(missing, ", ")), g.logger)
			g.observe(ep.RoutePath, "error", start)
			return
		}

		result, err := g.interp.ApplyNamed(ep.fn, args)
		if err != nil {
			// User code raising is a client-visible request failure, never
			// a listener failure.
			writeError(w, AsError(err), g.logger)
			g.observe(ep.RoutePath, "error", start)
			return
		}

		if err := writeResult(w, result.ToGo()); err != nil {
			g.logger.Error("failed to encode result",
				slog.String("route", ep.RoutePath), slog.Any("error", err))
		}
		g.observe(ep.RoutePath, "ok", start)
	}
}

func (g *Generation) observe(route, outcome string, start time.Time) {
	if g.metrics == nil {
		return
	}
	g.metrics.ObserveInvocation(route, outcome, time.Since(start))
}
