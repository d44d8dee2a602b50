package websocket_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	gws "github.com/gorilla/websocket"

	"quizlive/pkg/websocket"
)

func newTestHub(t *testing.T) (*websocket.Hub, *httptest.Server) {
	t.Helper()
	hub := websocket.NewHub()
	go hub.Run()

	router := mux.NewRouter()
	router.HandleFunc("/ws/{code}", hub.HandleWebSocket)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, code string) *gws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + code
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", code, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readEvent keeps broadcasting until the client sees a frame; registration
// races the first broadcast, so a single send is not enough.
func readEvent(t *testing.T, hub *websocket.Hub, conn *gws.Conn, code, event string, data interface{}) websocket.Message {
	t.Helper()
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				hub.Broadcast(code, event, data)
				time.Sleep(10 * time.Millisecond)
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg websocket.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("unmarshal %q: %v", payload, err)
	}
	return msg
}

func TestBroadcastReachesRoom(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv, "AB12CD")

	msg := readEvent(t, hub, conn, "AB12CD", "session_state", map[string]string{"status": "active"})
	if msg.Type != "session_state" {
		t.Fatalf("expected session_state, got %q", msg.Type)
	}
	data, ok := msg.Data.(map[string]interface{})
	if !ok || data["status"] != "active" {
		t.Fatalf("unexpected payload: %+v", msg.Data)
	}
}

func TestBroadcastCodeIsCaseInsensitive(t *testing.T) {
	hub, srv := newTestHub(t)
	// Player pastes the code lowercase; events are published uppercase.
	conn := dial(t, srv, "ab12cd")

	msg := readEvent(t, hub, conn, "AB12CD", "participant_joined", map[string]string{"name": "Alice"})
	if msg.Type != "participant_joined" {
		t.Fatalf("expected participant_joined, got %q", msg.Type)
	}
}

func TestBroadcastIsScopedToRoom(t *testing.T) {
	hub, srv := newTestHub(t)
	other := dial(t, srv, "ZZ99ZZ")

	// Hammer a different room, then our own; the first frame the other room's
	// client sees must be its own event.
	go func() {
		for i := 0; i < 20; i++ {
			hub.Broadcast("AB12CD", "session_state", map[string]string{"status": "active"})
			time.Sleep(5 * time.Millisecond)
		}
	}()
	msg := readEvent(t, hub, other, "ZZ99ZZ", "question_results", nil)
	if msg.Type != "question_results" {
		t.Fatalf("room leak: got %q", msg.Type)
	}
}

func TestBroadcastToEmptyRoomIsNoop(t *testing.T) {
	hub, _ := newTestHub(t)
	// Must not panic or block.
	hub.Broadcast("EMPTY1", "session_state", nil)
}
