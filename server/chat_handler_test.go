package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"beatsensei/core/search"
)

func dialSensei(t *testing.T) (*websocket.Conn, func()) {
	t.Helper()

	h := NewChatHandler(search.NewEngine(nil))
	srv := httptest.NewServer(http.HandlerFunc(h.WebSocketSenseiHandler))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("websocket dial failed: %v", err)
	}

	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func TestWebSocketSenseiGreetsAndFallsBack(t *testing.T) {
	conn, cleanup := dialSensei(t)
	defer cleanup()

	var greeting chatMessage
	if err := conn.ReadJSON(&greeting); err != nil {
		t.Fatalf("failed to read greeting: %v", err)
	}
	if greeting.Type != "greeting" || greeting.Content == "" {
		t.Errorf("greeting frame = %+v", greeting)
	}

	// A prompt with no recognizable keywords gets the fallback reply and
	// never touches the search backend.
	if err := conn.WriteJSON(chatRequest{Content: "how is the weather today"}); err != nil {
		t.Fatalf("failed to write prompt: %v", err)
	}

	var reply chatMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("failed to read reply: %v", err)
	}
	if reply.Type != "content" {
		t.Errorf("reply type = %q, want content", reply.Type)
	}
	if !strings.Contains(reply.Content, "Tell me what kind of sound") {
		t.Errorf("reply content = %q, want the fallback line", reply.Content)
	}
}

func TestWebSocketSenseiRejectsEmptyContent(t *testing.T) {
	conn, cleanup := dialSensei(t)
	defer cleanup()

	var greeting chatMessage
	if err := conn.ReadJSON(&greeting); err != nil {
		t.Fatalf("failed to read greeting: %v", err)
	}

	if err := conn.WriteJSON(chatRequest{}); err != nil {
		t.Fatalf("failed to write message: %v", err)
	}

	var reply chatMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("failed to read reply: %v", err)
	}
	if reply.Type != "error" {
		t.Errorf("reply type = %q, want error", reply.Type)
	}
}
