package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialBase(t *testing.T, h *Hub, baseId string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.Serve(w, r, baseId, "uid-"+baseId); err != nil {
			t.Errorf("serve: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, h *Hub, baseId string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount(baseId) < n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients for %s, got %d", n, baseId, h.ClientCount(baseId))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubDeliversOnlyToSameBase(t *testing.T) {
	h := NewHub()
	go h.Run()

	a := dialBase(t, h, "base-a")
	b := dialBase(t, h, "base-b")
	waitForClients(t, h, "base-a", 1)
	waitForClients(t, h, "base-b", 1)

	h.Publish(Event{Type: "C", Entity: "Transaction", Id: 7, BaseId: "base-a"})

	_ = a.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := a.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Entity != "Transaction" || got.Id != 7 || got.BaseId != "base-a" {
		t.Fatalf("unexpected event: %+v", got)
	}

	_ = b.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := b.ReadMessage(); err == nil {
		t.Fatalf("client of another base received the event")
	}
}

func TestPublishWithoutBaseIsDropped(t *testing.T) {
	h := NewHub()
	h.Publish(Event{Type: "C", Entity: "Store", Id: 1})
	if len(h.broadcast) != 0 {
		t.Fatalf("expected empty queue, got %d", len(h.broadcast))
	}
}
