package swaggermcp

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/ibrahimsaleem/Swaggermcp/internal/store"
	"github.com/ibrahimsaleem/Swaggermcp/middleware"
)

// maxUploadBytes bounds the accepted source size.
const maxUploadBytes = 10 << 20

// Server is the control API: it accepts source uploads, drives the
// extraction and synthesis pipeline, and reports on the generated
// endpoint listener.
type Server struct {
	cfg       Config
	logger    *slog.Logger
	extractor *Extractor
	store     *store.Store
	manager   *Manager
	metrics   *Metrics
	events    *Hub
	decoder   *schema.Decoder
	validate  *validator.Validate
}

// uploadRequest carries the non-file form fields of an upload.
type uploadRequest struct {
	Title string `schema:"title" validate:"omitempty,max=128"`
	Group string `schema:"group" validate:"omitempty,max=64"`
}

// NewServer wires the full pipeline behind the control API.
func NewServer(cfg Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, Errorf(KindInternal, "open store: %v", err)
	}

	metrics := NewMetrics()
	events := NewHub(logger)
	manager := NewManager(ManagerOptions{
		Host:        cfg.AppHost,
		Port:        cfg.AppPort,
		StopTimeout: cfg.StopTimeout,
		SettleDelay: cfg.SettleDelay,
		ReadyProbe:  cfg.ReadyProbe,
		BindRetries: cfg.BindRetries,
		Middleware: []func(http.Handler) http.Handler{
			middleware.Logging(logger.With(slog.String("listener", "app"))),
			middleware.CORS(nil),
		},
		Logger:  logger,
		Metrics: metrics,
		Events:  events,
	})

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &Server{
		cfg:       cfg,
		logger:    logger,
		extractor: NewExtractor(),
		store:     st,
		manager:   manager,
		metrics:   metrics,
		events:    events,
		decoder:   decoder,
		validate:  validator.New(),
	}, nil
}

// Manager exposes the lifecycle manager, mainly for tests and shutdown.
func (s *Server) Manager() *Manager { return s.manager }

// Handler builds the control API handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /endpoints", s.handleEndpoints)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.Handle("GET /events", s.events)

	var h http.Handler = mux
	h = middleware.CORS(nil)(h)
	h = middleware.Logging(s.logger.With(slog.String("listener", "control")))(h)
	return h
}

// handleUpload runs the whole pipeline for one source upload: extract,
// synthesize, persist, activate.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	source, filename, req, err := s.readUpload(r)
	if err != nil {
		s.metrics.ObserveUpload("error")
		writeError(w, AsError(err), s.logger)
		return
	}

	mod, descriptors, err := s.extractor.Extract(source)
	if err != nil {
		s.metrics.ObserveUpload("rejected")
		writeError(w, AsError(err), s.logger)
		return
	}

	gen, err := Synthesize(source, mod, descriptors, SynthesizeOptions{
		Title:   req.Title,
		Group:   req.Group,
		Logger:  s.logger,
		Metrics: s.metrics,
	})
	if err != nil {
		s.metrics.ObserveUpload("error")
		writeError(w, AsError(err), s.logger)
		return
	}

	if _, err := s.store.SaveUpload(filename, []byte(source)); err != nil {
		s.logger.Warn("could not persist upload", slog.Any("error", err))
	}
	if err := s.store.WriteArtifact(gen.Artifact()); err != nil {
		s.metrics.ObserveUpload("error")
		writeError(w, Errorf(KindInternal, "persist generation: %v", err), s.logger)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	result, err := s.manager.Activate(ctx, gen)
	if err != nil {
		s.metrics.ObserveUpload("error")
		writeError(w, AsError(err), s.logger)
		return
	}

	s.metrics.ObserveUpload("ok")
	_ = writeJSON(w, http.StatusOK, result)
}

// readUpload accepts either a multipart "file" part or a plain form
// "source" field, plus optional title and group fields.
func (s *Server) readUpload(r *http.Request) (source, filename string, req uploadRequest, err error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return "", "", req, Errorf(KindInvalidArgument, "malformed multipart body: %v", err)
		}
		file, header, ferr := r.FormFile("file")
		if ferr == nil {
			defer file.Close()
			if !strings.HasSuffix(strings.ToLower(header.Filename), ".py") {
				return "", "", req, Errorf(KindInvalidArgument,
					"only .py files are accepted, got %q", header.Filename)
			}
			data, rerr := io.ReadAll(io.LimitReader(file, maxUploadBytes))
			if rerr != nil {
				return "", "", req, Errorf(KindInvalidArgument, "reading upload: %v", rerr)
			}
			source = string(data)
			filename = header.Filename
		}
	} else {
		// ParseForm caps url-encoded bodies at 10MB on its own.
		if err := r.ParseForm(); err != nil {
			return "", "", req, Errorf(KindInvalidArgument, "malformed form body: %v", err)
		}
	}

	if source == "" {
		source = r.FormValue("source")
	}
	if filename == "" {
		filename = "upload.py"
	}
	if strings.TrimSpace(source) == "" {
		return "", "", req, NewError(KindEmptyInput, "no source provided: send a \"file\" part or a \"source\" field")
	}

	if err := s.decoder.Decode(&req, r.Form); err != nil {
		return "", "", req, Errorf(KindInvalidArgument, "decoding form fields: %v", err)
	}
	if err := s.validate.Struct(req); err != nil {
		return "", "", req, err
	}
	return source, filename, req, nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, s.manager.Snapshot())
}

// endpointInfo is one row of the /endpoints listing.
type endpointInfo struct {
	Name       string                `json:"name"`
	URL        string                `json:"url"`
	Parameters []ParameterDescriptor `json:"parameters"`
	Doc        string                `json:"doc,omitempty"`
}

func (s *Server) handleEndpoints(w http.ResponseWriter, r *http.Request) {
	gen := s.manager.Current()
	if gen == nil {
		writeError(w, NewError(KindNotFound, "no generation is active"), s.logger)
		return
	}
	base := s.manager.BaseURL()
	infos := make([]endpointInfo, 0, len(gen.Endpoints))
	for _, ep := range gen.Endpoints {
		infos = append(infos, endpointInfo{
			Name:       ep.Descriptor.Name,
			URL:        base + ep.RoutePath,
			Parameters: ep.Descriptor.Parameters,
			Doc:        ep.Descriptor.DocSummary,
		})
	}
	_ = writeJSON(w, http.StatusOK, map[string]any{
		"endpoints": infos,
		"docs":      base + "/docs",
		"openapi":   base + "/openapi.json",
	})
}

// Run serves the control API until ctx is canceled, then shuts down both
// listeners.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ControlAddr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("control API listening", slog.String("addr", s.cfg.ControlAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.StopTimeout)
	defer cancel()
	if err := s.manager.Stop(shutdownCtx); err != nil {
		s.logger.Warn("stopping app listener", slog.Any("error", err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return srv.Close()
	}
	return nil
}
