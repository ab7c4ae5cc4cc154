package fplapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/biplovsubedi/prediction-league/internal/usecase"
)

const bootstrapBody = `{
	"teams": [
		{"id": 1, "name": "Arsenal", "short_name": "ARS", "code": 3, "position": 1, "points": 12, "win": 4, "loss": 0, "draw": 0},
		{"id": 2, "name": "Liverpool", "short_name": "LIV", "code": 14}
	],
	"events": [
		{"id": 1, "is_current": false, "finished": true, "data_checked": true},
		{"id": 2, "is_current": true}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		BaseURL:    server.URL,
		Timeout:    2 * time.Second,
		MaxRetries: retries,
	})
}

func TestFetchSnapshotMapsFields(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bootstrap-static/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(bootstrapBody))
	}, 0)

	snapshot, err := client.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}

	if len(snapshot.Teams) != 2 || len(snapshot.Events) != 2 {
		t.Fatalf("snapshot sizes = %d teams, %d events; want 2 and 2", len(snapshot.Teams), len(snapshot.Events))
	}

	arsenal := snapshot.Teams[0]
	if arsenal.ID != 1 || arsenal.Position != 1 || arsenal.Points != 12 || arsenal.Win != 4 {
		t.Fatalf("team = %+v, want arsenal with standing fields", arsenal)
	}

	// Absent optional fields default to zero.
	liverpool := snapshot.Teams[1]
	if liverpool.Position != 0 || liverpool.Points != 0 {
		t.Fatalf("team = %+v, want zero defaults for missing fields", liverpool)
	}

	if !snapshot.Events[0].Finished || !snapshot.Events[0].DataChecked {
		t.Fatalf("event = %+v, want finished and data_checked", snapshot.Events[0])
	}
	if !snapshot.Events[1].IsCurrent || snapshot.Events[1].Finished {
		t.Fatalf("event = %+v, want current and unfinished", snapshot.Events[1])
	}
}

func TestFetchSnapshotRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(bootstrapBody))
	}, 2)

	if _, err := client.FetchSnapshot(context.Background()); err != nil {
		t.Fatalf("FetchSnapshot after retry: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("upstream called %d times, want 2", calls.Load())
	}
}

func TestFetchSnapshotDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}, 3)

	if _, err := client.FetchSnapshot(context.Background()); err == nil {
		t.Fatal("expected error on 404")
	}
	if calls.Load() != 1 {
		t.Fatalf("upstream called %d times, want 1", calls.Load())
	}
}

func TestCircuitBreakerOpensAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL:          server.URL,
		Timeout:          2 * time.Second,
		BreakerThreshold: 2,
		BreakerTimeout:   time.Minute,
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := client.FetchSnapshot(ctx); err == nil {
			t.Fatal("expected failure from 503")
		}
	}

	seen := calls.Load()
	_, err := client.FetchSnapshot(ctx)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("error = %v, want ErrDependencyUnavailable from the open breaker", err)
	}
	if calls.Load() != seen {
		t.Fatal("open breaker must not reach upstream")
	}
}
