package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/viniciushammett/go-stream-anomaly-detector/internal/logger"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/metrics"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/stream"
)

// Feed broadcasts classified points to WebSocket subscribers. It is a
// dropping sink: a subscriber that cannot keep up loses points rather
// than stalling the classify loop.
type Feed struct {
	log *logger.Logger

	mu   sync.Mutex
	subs map[chan stream.Point]struct{}
}

func NewFeed(log *logger.Logger) *Feed {
	return &Feed{log: log, subs: map[chan stream.Point]struct{}{}}
}

// Record implements stream.Sink.
func (f *Feed) Record(p stream.Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		select {
		case ch <- p:
		default:
			metrics.SinkErrors.WithLabelValues("live_feed").Inc()
		}
	}
}

func (f *Feed) subscribe() chan stream.Point {
	ch := make(chan stream.Point, 64)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

func (f *Feed) unsubscribe(ch chan stream.Point) {
	f.mu.Lock()
	delete(f.subs, ch)
	f.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The feed is read-only telemetry; no origin restriction.
	CheckOrigin: func(*http.Request) bool { return true },
}

func (f *Feed) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	ch := f.subscribe()
	defer f.unsubscribe(ch)

	// Drain client frames so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case p, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(p); err != nil {
				return
			}
		}
	}
}
