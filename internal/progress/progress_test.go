package progress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type recordingReporter struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingReporter) Report(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func TestMultiStampsAndFansOut(t *testing.T) {
	a, b := &recordingReporter{}, &recordingReporter{}
	m := Multi{a, nil, b, NewLogReporter(zap.NewNop())}

	m.Report(context.Background(), Event{RunID: "r1", Stage: StageEnrich, Index: 1, Total: 2, VideoID: "v1"})

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("expected both reporters to receive the event, got %d/%d", len(a.events), len(b.events))
	}
	if a.events[0].Time.IsZero() {
		t.Fatalf("expected Multi to stamp the event time")
	}
}

func TestWebSocketReporterDeliversEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan Event, 4)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var event Event
			if err := json.Unmarshal(data, &event); err != nil {
				t.Errorf("bad payload %s: %v", data, err)
				return
			}
			received <- event
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	reporter := NewWebSocketReporter(wsURL, zap.NewNop())
	if err := reporter.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer reporter.Close()

	if reporter.State() != StateConnected {
		t.Fatalf("expected connected state, got %s", reporter.State())
	}

	reporter.Report(context.Background(), Event{RunID: "run-1", Stage: StageEnrich, Index: 3, Total: 12, VideoID: "abc"})

	select {
	case event := <-received:
		if event.RunID != "run-1" || event.Index != 3 || event.VideoID != "abc" || event.Stage != StageEnrich {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
}

func TestWebSocketReporterDropsWhenDisconnected(t *testing.T) {
	reporter := NewWebSocketReporter("ws://127.0.0.1:1/unused", zap.NewNop())

	// must not block or panic
	reporter.Report(context.Background(), Event{Stage: StageDone})

	if err := reporter.Close(); err != nil {
		t.Fatalf("close without connection should succeed: %v", err)
	}
}
