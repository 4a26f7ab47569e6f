package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func decodeStatus(t *testing.T, body []byte) (string, map[string]string) {
	t.Helper()
	var (
		status string
		checks = map[string]string{}
	)
	err := jx.DecodeBytes(body).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "status":
			v, err := d.Str()
			status = v
			return err
		case "checks":
			return d.Obj(func(d *jx.Decoder, name string) error {
				v, err := d.Str()
				checks[name] = v
				return err
			})
		default:
			return d.Skip()
		}
	})
	require.NoError(t, err)
	return status, checks
}

func serve(h http.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestLiveEndpoint(t *testing.T) {
	h := New()
	h.Add(Liveness, "ok", time.Second, PingCheck(stubPinger{}))

	w := serve(h.LiveEndpoint)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	status, checks := decodeStatus(t, w.Body.Bytes())
	assert.Equal(t, "ok", status)
	assert.Empty(t, checks)
}

func TestProbe_FailureThreshold(t *testing.T) {
	h := New()
	h.Add(Liveness, "db", time.Second, failing("connection refused"))
	p := h.probes[Liveness][0]
	ctx := context.Background()

	p.run(ctx)
	p.run(ctx)
	assert.Equal(t, http.StatusOK, serve(h.LiveEndpoint).Code, "below threshold")

	p.run(ctx)
	w := serve(h.LiveEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	status, checks := decodeStatus(t, w.Body.Bytes())
	assert.Equal(t, "unhealthy", status)
	assert.Equal(t, "connection refused", checks["db"])
}

func TestProbe_Recovers(t *testing.T) {
	var err error
	h := New()
	h.Add(Readiness, "sqlite", time.Second, func(context.Context) error { return err },
		WithThresholds(1, 2),
	)
	h.SetReady(true)
	p := h.probes[Readiness][0]
	ctx := context.Background()

	err = errors.New("locked")
	p.run(ctx)
	assert.False(t, h.IsReady())

	err = nil
	p.run(ctx)
	assert.False(t, h.IsReady(), "one success is below threshold")
	p.run(ctx)
	assert.True(t, h.IsReady())
}

func TestReadyEndpoint_ManualGate(t *testing.T) {
	h := New()
	h.Add(Readiness, "postgres", time.Second, PingCheck(stubPinger{}))

	w := serve(h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	_, checks := decodeStatus(t, w.Body.Bytes())
	assert.Contains(t, checks, "_readiness")

	h.SetReady(true)
	assert.Equal(t, http.StatusOK, serve(h.ReadyEndpoint).Code)
}

func TestStartStop(t *testing.T) {
	h := New()
	h.Add(Readiness, "ping", 50*time.Millisecond, PingCheck(stubPinger{err: errors.New("down")}),
		WithThresholds(1, 1),
	)
	h.SetReady(true)

	h.Start(context.Background(), 10*time.Millisecond)
	defer h.Stop()

	require.Eventually(t, func() bool { return !h.IsReady() }, time.Second, 10*time.Millisecond)

	h.Stop()
	h.Stop()
}

func TestGoroutineCountCheck(t *testing.T) {
	require.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	require.Error(t, GoroutineCountCheck(0)(context.Background()))
}
