package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func serve(t *testing.T, h http.HandlerFunc, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Report {
	t.Helper()
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var report Report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	return report
}

func TestRegistry_Healthy(t *testing.T) {
	r := NewRegistry("v1.0.0")
	r.Register("storage", CheckFunc(ok))

	w := serve(t, r.ServeHTTP, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	report := decode(t, w)
	require.Equal(t, StatusHealthy, report.Status)
	require.Equal(t, "v1.0.0", report.Version)
	require.Len(t, report.Checks, 1)
	require.Equal(t, "storage", report.Checks["storage"].Name)
}

func TestRegistry_Unhealthy(t *testing.T) {
	r := NewRegistry("v1.0.0")
	r.Register("postgres", Ping(pingerFunc(func(context.Context) error {
		return errors.New("connection refused")
	})))
	r.Register("outbox", CheckFunc(ok))

	w := serve(t, r.ServeHTTP, "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	report := decode(t, w)
	require.Equal(t, StatusUnhealthy, report.Status)
	require.Equal(t, "connection refused", report.Checks["postgres"].Message)
	require.Equal(t, StatusHealthy, report.Checks["outbox"].Status)
}

func TestRegistry_DegradedStaysReady(t *testing.T) {
	r := NewRegistry("v1.0.0")
	r.Register("outbox", NewBacklog(func(context.Context) (int, time.Time, error) {
		return 12, time.Now().Add(-time.Hour), nil
	}, time.Minute))

	w := serve(t, r.ServeHTTP, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, StatusDegraded, decode(t, w).Status)

	ready := serve(t, r.Ready, "/readyz")
	require.Equal(t, http.StatusOK, ready.Code)
	require.Equal(t, "ready", ready.Body.String())
}

func TestRegistry_WorstStatusWins(t *testing.T) {
	r := NewRegistry("")
	r.Register("a", NewBacklog(func(context.Context) (int, time.Time, error) {
		return 1, time.Now().Add(-time.Hour), nil
	}, time.Minute))
	r.Register("b", CheckFunc(func(context.Context) error { return errors.New("down") }))
	r.Register("c", CheckFunc(ok))

	require.Equal(t, StatusUnhealthy, r.Run(context.Background()).Status)
}

func TestLive(t *testing.T) {
	w := serve(t, Live, "/livez")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestRegistry_Ready(t *testing.T) {
	tests := []struct {
		name     string
		check    CheckFunc
		wantCode int
		wantBody string
	}{
		{name: "ready", check: ok, wantCode: http.StatusOK, wantBody: "ready"},
		{
			name:     "not ready",
			check:    func(context.Context) error { return errors.New("not ready") },
			wantCode: http.StatusServiceUnavailable,
			wantBody: "not ready\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry("v1.0.0")
			r.Register("storage", tt.check)

			w := serve(t, r.Ready, "/readyz")
			require.Equal(t, tt.wantCode, w.Code)
			require.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestRegistry_Timeout(t *testing.T) {
	r := NewRegistry("v1.0.0")
	r.timeout = 20 * time.Millisecond
	r.Register("slow", CheckFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	report := r.Run(context.Background())
	require.Equal(t, StatusUnhealthy, report.Status)
	require.Equal(t, context.DeadlineExceeded.Error(), report.Checks["slow"].Message)
	require.GreaterOrEqual(t, report.Checks["slow"].DurationMs, int64(15))
}

func TestBacklog(t *testing.T) {
	now := time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		pending int
		oldest  time.Time
		err     error
		want    Status
	}{
		{name: "empty", want: StatusHealthy},
		{name: "fresh backlog", pending: 3, oldest: now.Add(-10 * time.Second), want: StatusHealthy},
		{name: "stale backlog", pending: 3, oldest: now.Add(-10 * time.Minute), want: StatusDegraded},
		{name: "stats error", err: errors.New("boom"), want: StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBacklog(func(context.Context) (int, time.Time, error) {
				return tt.pending, tt.oldest, tt.err
			}, time.Minute)
			b.now = func() time.Time { return now }

			got := b.Check(context.Background())
			require.Equal(t, tt.want, got.Status)
			if tt.want == StatusDegraded {
				require.Equal(t, "3 pending, oldest 10m0s", got.Message)
			}
		})
	}
}
