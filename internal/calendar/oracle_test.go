package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/helpdesk-ops/ticket-assignment/internal/observability"
)

var now = time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)

type freeBusyServer struct {
	calls     atomic.Int32
	mu        sync.Mutex
	lastQuery map[string]string
	handler   func(w http.ResponseWriter, email string)
}

func (s *freeBusyServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.calls.Add(1)
	var body struct {
		TimeMin string `json:"timeMin"`
		TimeMax string `json:"timeMax"`
		Items   []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	s.mu.Lock()
	s.lastQuery = map[string]string{"timeMin": body.TimeMin, "timeMax": body.TimeMax}
	s.mu.Unlock()
	email := ""
	if len(body.Items) > 0 {
		email = body.Items[0].ID
	}
	w.Header().Set("Content-Type", "application/json")
	s.handler(w, email)
}

func newOracle(t *testing.T, srv *freeBusyServer, metrics *observability.Metrics) *FreeBusyOracle {
	t.Helper()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	oracle, err := NewWithClientOptions(context.Background(),
		Options{Timeout: time.Second, Metrics: metrics, Now: func() time.Time { return now }},
		option.WithEndpoint(ts.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return oracle
}

func busyResponse(start, end string) func(http.ResponseWriter, string) {
	return func(w http.ResponseWriter, email string) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"calendars": map[string]any{
				email: map[string]any{"busy": []map[string]string{{"start": start, "end": end}}},
			},
		})
	}
}

func TestIsAvailable_BusyOverlap(t *testing.T) {
	srv := &freeBusyServer{handler: busyResponse("2030-01-01T10:00:00Z", "2030-01-01T11:00:00Z")}
	oracle := newOracle(t, srv, nil)

	assert.False(t, oracle.IsAvailable(context.Background(), "alex@example.com", now.Add(8*time.Hour)))
	assert.Equal(t, int32(1), srv.calls.Load())
	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Equal(t, "2030-01-01T09:00:00Z", srv.lastQuery["timeMin"])
	assert.Equal(t, "2030-01-01T17:00:00Z", srv.lastQuery["timeMax"])
}

func busyPeriods(periods ...[2]string) func(http.ResponseWriter, string) {
	return func(w http.ResponseWriter, email string) {
		busy := make([]map[string]string, 0, len(periods))
		for _, p := range periods {
			busy = append(busy, map[string]string{"start": p[0], "end": p[1]})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"calendars": map[string]any{email: map[string]any{"busy": busy}},
		})
	}
}

func TestIsAvailable_OverlapWinsRegardlessOfOrder(t *testing.T) {
	overlap := [2]string{"2030-01-01T10:00:00Z", "2030-01-01T11:00:00Z"}
	broken := [2]string{"garbage", "2030-01-01T12:00:00Z"}

	for name, handler := range map[string]func(http.ResponseWriter, string){
		"overlap first": busyPeriods(overlap, broken),
		"broken first":  busyPeriods(broken, overlap),
	} {
		t.Run(name, func(t *testing.T) {
			metrics := observability.NewMetrics()
			oracle := newOracle(t, &freeBusyServer{handler: handler}, metrics)
			assert.False(t, oracle.IsAvailable(context.Background(), "alex@example.com", now.Add(8*time.Hour)))
			assert.Zero(t, metrics.Snapshot().Degraded[observability.DegradedAvailability])
		})
	}
}

func TestIsAvailable_BrokenIntervalWithoutOverlapIsUnknown(t *testing.T) {
	metrics := observability.NewMetrics()
	srv := &freeBusyServer{handler: busyPeriods(
		[2]string{"2030-01-02T10:00:00Z", "2030-01-02T11:00:00Z"},
		[2]string{"2030-01-01T10:00:00Z", "later"},
	)}
	oracle := newOracle(t, srv, metrics)

	assert.True(t, oracle.IsAvailable(context.Background(), "alex@example.com", now.Add(8*time.Hour)))
	assert.Equal(t, int64(1), metrics.Snapshot().Degraded[observability.DegradedAvailability])
}

func TestIsAvailable_FreeCalendar(t *testing.T) {
	srv := &freeBusyServer{handler: func(w http.ResponseWriter, email string) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"calendars": map[string]any{email: map[string]any{"busy": []any{}}},
		})
	}}
	oracle := newOracle(t, srv, nil)
	assert.True(t, oracle.IsAvailable(context.Background(), "alex@example.com", now.Add(time.Hour)))
}

func TestIsAvailable_BusyOutsideWindow(t *testing.T) {
	srv := &freeBusyServer{handler: busyResponse("2030-01-02T10:00:00Z", "2030-01-02T11:00:00Z")}
	oracle := newOracle(t, srv, nil)
	assert.True(t, oracle.IsAvailable(context.Background(), "alex@example.com", now.Add(time.Hour)))
}

func TestIsAvailable_UnknownResolvesToAvailable(t *testing.T) {
	tests := []struct {
		name    string
		handler func(http.ResponseWriter, string)
	}{
		{"server error", func(w http.ResponseWriter, _ string) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": {"code": 500, "message": "backend"}}`))
		}},
		{"calendar missing", func(w http.ResponseWriter, _ string) {
			_, _ = w.Write([]byte(`{"calendars": {}}`))
		}},
		{"not shared", func(w http.ResponseWriter, email string) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"calendars": map[string]any{email: map[string]any{"errors": []map[string]string{{"domain": "global", "reason": "notFound"}}}},
			})
		}},
		{"unparsable interval", busyResponse("soon", "later")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := observability.NewMetrics()
			oracle := newOracle(t, &freeBusyServer{handler: tt.handler}, metrics)
			assert.True(t, oracle.IsAvailable(context.Background(), "alex@example.com", now.Add(time.Hour)))
			assert.Equal(t, int64(1), metrics.Snapshot().Degraded[observability.DegradedAvailability])
		})
	}
}

func TestIsAvailable_NoQueryNeeded(t *testing.T) {
	srv := &freeBusyServer{handler: busyResponse("2030-01-01T00:00:00Z", "2031-01-01T00:00:00Z")}
	oracle := newOracle(t, srv, nil)

	assert.True(t, oracle.IsAvailable(context.Background(), "not an address", now.Add(time.Hour)))
	assert.True(t, oracle.IsAvailable(context.Background(), "Alex <alex@example.com>", now.Add(time.Hour)))
	assert.True(t, oracle.IsAvailable(context.Background(), "", now.Add(time.Hour)))
	assert.True(t, oracle.IsAvailable(context.Background(), "alex@example.com", now.Add(-time.Hour)))
	assert.True(t, oracle.IsAvailable(context.Background(), "alex@example.com", time.Time{}))
	assert.Equal(t, int32(0), srv.calls.Load())
}

func TestIsAvailable_TimeoutIsAvailable(t *testing.T) {
	release := make(chan struct{})
	srv := &freeBusyServer{handler: func(w http.ResponseWriter, _ string) {
		<-release
	}}
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		close(release)
		ts.Close()
	})

	oracle, err := NewWithClientOptions(context.Background(),
		Options{Timeout: 20 * time.Millisecond, Now: func() time.Time { return now }},
		option.WithEndpoint(ts.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)

	start := time.Now()
	assert.True(t, oracle.IsAvailable(context.Background(), "alex@example.com", now.Add(time.Hour)))
	assert.Less(t, time.Since(start), 2*time.Second)
}
