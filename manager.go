package swaggermcp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// ManagerState is the lifecycle state of the generated-endpoint listener.
type ManagerState string

const (
	StateStopped  ManagerState = "stopped"
	StateStarting ManagerState = "starting"
	StateReady    ManagerState = "ready"
	StateFailed   ManagerState = "failed"
)

// Manager owns the listener that serves generated endpoints. Activations
// are serialized: each one stops the current listener, waits a settle
// delay, binds the fixed port again, and health-checks the replacement
// before reporting success. A failed stop or start leaves the listener
// down; there is no rollback to the previous generation.
type Manager struct {
	host        string
	port        int
	stopTimeout time.Duration
	settleDelay time.Duration
	readyProbe  time.Duration
	bindRetries int
	middleware  []func(http.Handler) http.Handler
	logger      *slog.Logger
	metrics     *Metrics
	events      *Hub

	// sem serializes activations; taken with a context so a caller that
	// cannot wait gets a Busy error instead of queueing forever.
	sem chan struct{}

	mu       sync.RWMutex
	state    ManagerState
	current  *Generation
	server   *http.Server
	serveErr chan error
	lastErr  string
}

// ManagerOptions configures a Manager. Zero values fall back to the
// defaults below.
type ManagerOptions struct {
	Host        string
	Port        int
	StopTimeout time.Duration
	SettleDelay time.Duration
	ReadyProbe  time.Duration
	BindRetries int
	Middleware  []func(http.Handler) http.Handler
	Logger      *slog.Logger
	Metrics     *Metrics
	Events      *Hub
}

const (
	defaultAppHost     = "127.0.0.1"
	defaultAppPort     = 8001
	defaultStopTimeout = 5 * time.Second
	defaultSettleDelay = 500 * time.Millisecond
	defaultReadyProbe  = 5 * time.Second
	defaultBindRetries = 3
)

// NewManager creates a Manager in the stopped state.
func NewManager(opts ManagerOptions) *Manager {
	if opts.Host == "" {
		opts.Host = defaultAppHost
	}
	if opts.Port == 0 {
		opts.Port = defaultAppPort
	}
	if opts.StopTimeout == 0 {
		opts.StopTimeout = defaultStopTimeout
	}
	if opts.SettleDelay == 0 {
		opts.SettleDelay = defaultSettleDelay
	}
	if opts.ReadyProbe == 0 {
		opts.ReadyProbe = defaultReadyProbe
	}
	if opts.BindRetries == 0 {
		opts.BindRetries = defaultBindRetries
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Manager{
		host:        opts.Host,
		port:        opts.Port,
		stopTimeout: opts.StopTimeout,
		settleDelay: opts.SettleDelay,
		readyProbe:  opts.ReadyProbe,
		bindRetries: opts.BindRetries,
		middleware:  opts.Middleware,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		events:      opts.Events,
		sem:         make(chan struct{}, 1),
		state:       StateStopped,
	}
}

// ActivationResult reports the outcome of a successful activation.
// Wire format: {"status":"ok","endpoint_urls":[...],"doc_url":...,"openapi_url":...}
type ActivationResult struct {
	Status       string   `json:"status"`
	EndpointURLs []string `json:"endpoint_urls"`
	DocURL       string   `json:"doc_url"`
	OpenAPIURL   string   `json:"openapi_url"`
}

// Status is a point-in-time snapshot of the listener.
type Status struct {
	State     ManagerState `json:"state"`
	BaseURL   string       `json:"base_url,omitempty"`
	Endpoints []string     `json:"endpoints,omitempty"`
	DocURL    string       `json:"doc_url,omitempty"`
	LastError string       `json:"last_error,omitempty"`
}

// Activate replaces the running endpoint set with gen. Concurrent calls
// are serialized; a caller whose context expires while waiting receives a
// Busy error without affecting the in-flight activation.
func (m *Manager) Activate(ctx context.Context, gen *Generation) (*ActivationResult, error) {
	select {
	case m.sem <- struct{}{}:
		defer func() { <-m.sem }()
	case <-ctx.Done():
		return nil, NewError(KindBusy, "an activation is already in progress")
	}

	start := time.Now()
	res, err := m.swap(ctx, gen)
	if m.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		m.metrics.ObserveActivation(outcome, time.Since(start))
	}
	return res, err
}

func (m *Manager) swap(ctx context.Context, gen *Generation) (*ActivationResult, error) {
	m.setState(StateStarting, "")

	if err := m.stopLocked(); err != nil {
		m.setState(StateFailed, err.Error())
		return nil, Errorf(KindActivation, "stopping previous listener: %v", err)
	}

	// Let the OS release the port before rebinding it.
	select {
	case <-time.After(m.settleDelay):
	case <-ctx.Done():
		m.setState(StateFailed, ctx.Err().Error())
		return nil, Errorf(KindActivation, "activation canceled: %v", ctx.Err())
	}

	ln, err := m.bind()
	if err != nil {
		m.setState(StateFailed, err.Error())
		return nil, Errorf(KindActivation, "binding %s: %v", m.addr(), err)
	}

	handler := gen.Handler()
	for i := len(m.middleware) - 1; i >= 0; i-- {
		handler = m.middleware[i](handler)
	}
	srv := &http.Server{Handler: handler}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	if err := m.waitReady(ctx); err != nil {
		_ = srv.Close()
		m.setState(StateFailed, err.Error())
		return nil, Errorf(KindActivation, "health check failed: %v", err)
	}

	m.mu.Lock()
	m.server = srv
	m.serveErr = serveErr
	m.current = gen
	m.mu.Unlock()
	m.setState(StateReady, "")

	base := m.BaseURL()
	res := &ActivationResult{
		Status:     "ok",
		DocURL:     base + "/docs",
		OpenAPIURL: base + "/openapi.json",
	}
	for _, p := range gen.EndpointPaths() {
		res.EndpointURLs = append(res.EndpointURLs, base+p)
	}
	m.logger.Info("generation activated",
		slog.Int("endpoints", len(res.EndpointURLs)),
		slog.String("docs", res.DocURL))
	return res, nil
}

// Stop shuts down the listener if one is running.
func (m *Manager) Stop(ctx context.Context) error {
	select {
	case m.sem <- struct{}{}:
		defer func() { <-m.sem }()
	case <-ctx.Done():
		return NewError(KindBusy, "an activation is already in progress")
	}
	if err := m.stopLocked(); err != nil {
		m.setState(StateFailed, err.Error())
		return Errorf(KindActivation, "stopping listener: %v", err)
	}
	m.setState(StateStopped, "")
	return nil
}

// stopLocked tears down the current server. Graceful shutdown first, hard
// close if that times out. Callers hold the activation semaphore.
func (m *Manager) stopLocked() error {
	m.mu.Lock()
	srv, serveErr := m.server, m.serveErr
	m.server, m.serveErr, m.current = nil, nil, nil
	m.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.stopTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		m.logger.Warn("graceful shutdown failed, closing", slog.Any("error", err))
		if err := srv.Close(); err != nil {
			return err
		}
	}
	if serveErr != nil {
		// Serve always returns http.ErrServerClosed after Shutdown/Close.
		<-serveErr
	}
	return nil
}

func (m *Manager) bind() (net.Listener, error) {
	var err error
	for attempt := 0; attempt < m.bindRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(m.settleDelay)
		}
		var ln net.Listener
		ln, err = net.Listen("tcp", m.addr())
		if err == nil {
			return ln, nil
		}
		m.logger.Warn("bind attempt failed",
			slog.Int("attempt", attempt+1), slog.Any("error", err))
	}
	return nil, err
}

// waitReady polls the new listener's health endpoint until it answers.
func (m *Manager) waitReady(ctx context.Context) error {
	deadline := time.Now().Add(m.readyProbe)
	client := &http.Client{Timeout: time.Second}
	url := m.BaseURL() + "/healthz"
	for {
		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
			err = fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		if time.Now().After(deadline) {
			return err
		}
		select {
		case <-time.After(50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (m *Manager) addr() string {
	return net.JoinHostPort(m.host, fmt.Sprintf("%d", m.port))
}

// BaseURL is the root URL of the generated-endpoint listener.
func (m *Manager) BaseURL() string {
	return "http://" + m.addr()
}

// State returns the current lifecycle state.
func (m *Manager) State() ManagerState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Current returns the active generation, or nil when stopped or failed.
func (m *Manager) Current() *Generation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Snapshot returns the externally visible status.
func (m *Manager) Snapshot() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := Status{State: m.state, LastError: m.lastErr}
	if m.state == StateReady && m.current != nil {
		base := m.BaseURL()
		st.BaseURL = base
		st.DocURL = base + "/docs"
		for _, p := range m.current.EndpointPaths() {
			st.Endpoints = append(st.Endpoints, base+p)
		}
	}
	return st
}

func (m *Manager) setState(s ManagerState, lastErr string) {
	m.mu.Lock()
	m.state = s
	m.lastErr = lastErr
	m.mu.Unlock()
	if m.events != nil {
		m.events.Publish(Event{
			Type:    "state",
			State:   s,
			Message: lastErr,
			Time:    time.Now().UTC(),
		})
	}
}
