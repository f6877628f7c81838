package swaggermcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pickPort grabs a free local port for a test listener.
func pickPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func testManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(ManagerOptions{
		Port:        pickPort(t),
		SettleDelay: 5 * time.Millisecond,
		StopTimeout: 2 * time.Second,
		ReadyProbe:  2 * time.Second,
		Logger:      slog.Default(),
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = m.Stop(ctx)
	})
	return m
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestActivateServesGeneration(t *testing.T) {
	m := testManager(t)
	gen := synthesizeSource(t, "def add(x, y):\n    return int(x) + int(y)\n", SynthesizeOptions{})

	res, err := m.Activate(context.Background(), gen)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t, StateReady, m.State())
	require.Len(t, res.EndpointURLs, 1)
	assert.Equal(t, m.BaseURL()+"/add", res.EndpointURLs[0])
	assert.Equal(t, m.BaseURL()+"/docs", res.DocURL)

	var body map[string]any
	status := getJSON(t, res.EndpointURLs[0]+"?x=3&y=4", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"result": float64(7)}, body)
}

func TestActivateReplacesPreviousGeneration(t *testing.T) {
	m := testManager(t)

	first := synthesizeSource(t, "def old():\n    return 1\n", SynthesizeOptions{})
	_, err := m.Activate(context.Background(), first)
	require.NoError(t, err)

	second := synthesizeSource(t, "def fresh():\n    return 2\n", SynthesizeOptions{})
	res, err := m.Activate(context.Background(), second)
	require.NoError(t, err)
	require.Len(t, res.EndpointURLs, 1)

	var body map[string]any
	status := getJSON(t, m.BaseURL()+"/fresh", &body)
	assert.Equal(t, http.StatusOK, status)

	status = getJSON(t, m.BaseURL()+"/old", &body)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestActivateBusyWhenInFlight(t *testing.T) {
	m := testManager(t)

	// Hold the activation slot and try to activate with an expired context.
	m.sem <- struct{}{}
	defer func() { <-m.sem }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := synthesizeSource(t, "def f():\n    return 1\n", SynthesizeOptions{})
	_, err := m.Activate(ctx, gen)

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindBusy, svcErr.Kind)
}

func TestActivateBindFailureIsActivationError(t *testing.T) {
	port := pickPort(t)

	// Occupy the chosen port so the manager cannot bind it.
	occupied, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	require.NoError(t, err)
	defer occupied.Close()

	m := NewManager(ManagerOptions{
		Port:        port,
		SettleDelay: time.Millisecond,
		BindRetries: 2,
		ReadyProbe:  time.Second,
		Logger:      slog.Default(),
	})
	gen := synthesizeSource(t, "def f():\n    return 1\n", SynthesizeOptions{})
	_, err = m.Activate(context.Background(), gen)

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindActivation, svcErr.Kind)
	assert.Equal(t, StateFailed, m.State())

	// No rollback: nothing serves on the port besides the blocker.
	assert.Nil(t, m.Current())
}

func TestActivateForcesCloseWhenStopTimesOut(t *testing.T) {
	m := NewManager(ManagerOptions{
		Port:        pickPort(t),
		SettleDelay: 5 * time.Millisecond,
		StopTimeout: 50 * time.Millisecond,
		ReadyProbe:  2 * time.Second,
		Logger:      slog.Default(),
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = m.Stop(ctx)
	})

	first := synthesizeSource(t, "def f():\n    return 1\n", SynthesizeOptions{})
	_, err := m.Activate(context.Background(), first)
	require.NoError(t, err)

	// Hold an in-flight request open: a connection with partial headers
	// counts as active, so graceful shutdown cannot drain it.
	conn, err := net.Dial("tcp", m.addr())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("GET /f HTTP/1.1\r\nHost: local\r\n"))
	require.NoError(t, err)

	second := synthesizeSource(t, "def g():\n    return 2\n", SynthesizeOptions{})
	start := time.Now()
	res, err := m.Activate(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t, StateReady, m.State())
	// The graceful window elapsed before the forced close kicked in.
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	// The stuck connection was torn down with the old listener.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, err = conn.Read(make([]byte, 1))
	assert.Error(t, err)

	var body map[string]any
	status := getJSON(t, m.BaseURL()+"/g", &body)
	assert.Equal(t, http.StatusOK, status)
}

func TestStopLeavesListenerDown(t *testing.T) {
	m := testManager(t)
	gen := synthesizeSource(t, "def f():\n    return 1\n", SynthesizeOptions{})
	_, err := m.Activate(context.Background(), gen)
	require.NoError(t, err)

	require.NoError(t, m.Stop(context.Background()))
	assert.Equal(t, StateStopped, m.State())

	_, err = http.Get(m.BaseURL() + "/f")
	assert.Error(t, err)
}

func TestSnapshotReflectsState(t *testing.T) {
	m := testManager(t)

	st := m.Snapshot()
	assert.Equal(t, StateStopped, st.State)
	assert.Empty(t, st.Endpoints)

	gen := synthesizeSource(t, "def f():\n    return 1\n", SynthesizeOptions{})
	_, err := m.Activate(context.Background(), gen)
	require.NoError(t, err)

	st = m.Snapshot()
	assert.Equal(t, StateReady, st.State)
	assert.Equal(t, []string{m.BaseURL() + "/f"}, st.Endpoints)
	assert.Equal(t, m.BaseURL()+"/docs", st.DocURL)
}
