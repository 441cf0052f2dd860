package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/viniciushammett/go-stream-anomaly-detector/internal/detector"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/history"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/logger"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/store"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/stream"
)

type constSource struct{ v float64 }

func (c constSource) Next() float64 { return c.v }

func newTestServer(t *testing.T, token string) (*Server, *history.Ring, *store.Store, *stream.Runner) {
	t.Helper()
	log := logger.New("error")

	db, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	det, err := detector.New(detector.Config{WindowSize: 3, Sensitivity: 2.0})
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}

	ring := history.New(10)
	runner := stream.NewRunner(log, det, constSource{v: 1}, ring, time.Second)

	srv := NewServer(Deps{
		Log:       log,
		Store:     db,
		History:   ring,
		Runner:    runner,
		Feed:      NewFeed(log),
		AuthToken: token,
	}, Config{Addr: ":0"})
	return srv, ring, db, runner
}

func get(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := ts.Client().Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func TestHealthz(t *testing.T) {
	srv, _, _, _ := newTestServer(t, "")
	ts := httptest.NewServer(srv.srv.Handler)
	defer ts.Close()

	resp := get(t, ts, "/healthz")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestPointsReturnsHistory(t *testing.T) {
	srv, ring, _, _ := newTestServer(t, "")
	ts := httptest.NewServer(srv.srv.Handler)
	defer ts.Close()

	for i := 1; i <= 4; i++ {
		ring.Record(stream.Point{TS: time.Now(), Value: float64(i)})
	}

	resp := get(t, ts, "/v1/points?limit=2")
	defer resp.Body.Close()

	var pts []stream.Point
	if err := json.NewDecoder(resp.Body).Decode(&pts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(pts) != 2 || pts[0].Value != 3 || pts[1].Value != 4 {
		t.Fatalf("points = %v", pts)
	}
}

func TestAnomaliesEndpoint(t *testing.T) {
	srv, _, db, _ := newTestServer(t, "")
	ts := httptest.NewServer(srv.srv.Handler)
	defer ts.Close()

	ev := store.NewEvent(time.Now(), 42, 10, 1, 2)
	if err := db.Put(ev); err != nil {
		t.Fatalf("put: %v", err)
	}

	resp := get(t, ts, "/v1/anomalies")
	defer resp.Body.Close()

	var evs []store.Event
	if err := json.NewDecoder(resp.Body).Decode(&evs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(evs) != 1 || evs[0].Value != 42 {
		t.Fatalf("anomalies = %v", evs)
	}
}

func TestDetectorSnapshot(t *testing.T) {
	srv, _, _, _ := newTestServer(t, "")
	ts := httptest.NewServer(srv.srv.Handler)
	defer ts.Close()

	resp := get(t, ts, "/v1/detector")
	defer resp.Body.Close()

	var snap stream.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.WindowSize != 3 || snap.Warm {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestResetRequiresToken(t *testing.T) {
	srv, _, _, _ := newTestServer(t, "secret")
	ts := httptest.NewServer(srv.srv.Handler)
	defer ts.Close()

	resp, err := ts.Client().Post(ts.URL+"/v1/detector/reset", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated reset status = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/v1/detector/reset", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("authenticated reset status = %d", resp.StatusCode)
	}
}
