package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// hijackableRecorder stands in for the real server connection, which supports
// hijacking where httptest.ResponseRecorder does not.
type hijackableRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
	flushed  bool
}

func (r *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	r.hijacked = true
	server, client := net.Pipe()
	_ = client.Close()
	return server, bufio.NewReadWriter(bufio.NewReader(server), bufio.NewWriter(server)), nil
}

func (r *hijackableRecorder) Flush() {
	r.flushed = true
}

func TestTelemetryPreservesHijacker(t *testing.T) {
	var sawHijacker bool
	handler := Telemetry(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		sawHijacker = ok
		if !ok {
			return
		}
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	}))

	rec := &hijackableRecorder{ResponseRecorder: httptest.NewRecorder()}
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/dashboard/orders", nil))

	assert.True(t, sawHijacker, "wrapped writer must expose http.Hijacker for websocket upgrades")
	assert.True(t, rec.hijacked, "hijack must reach the underlying connection")
}

func TestTelemetryPreservesFlusher(t *testing.T) {
	handler := Telemetry(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		require.True(t, ok)
		f.Flush()
	}))

	rec := &hijackableRecorder{ResponseRecorder: httptest.NewRecorder()}
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/metrics", nil))
	assert.True(t, rec.flushed)
}

func TestTelemetryLogsOncePerRequest(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := Telemetry(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/dashboard/orders", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "http_request", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/dashboard/orders", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.Contains(t, fields, "duration_ms")
}

func TestTelemetryRecordsStatus(t *testing.T) {
	handler := Telemetry(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
