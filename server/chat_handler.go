package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"beatsensei/core/search"
	"beatsensei/core/sensei"
	"beatsensei/logger"
	"beatsensei/model"
)

// WebSocket tuning.
const (
	writeWait      = 30 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must stay below pongWait
	maxMessageSize = 8192

	chatResultLimit = 5
)

// ChatHandler runs the sensei prompt chat over a websocket.
type ChatHandler struct {
	searchEngine *search.Engine
	upgrader     websocket.Upgrader
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(searchEngine *search.Engine) *ChatHandler {
	return &ChatHandler{
		searchEngine: searchEngine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
	}
}

// chatRequest is an inbound chat message.
type chatRequest struct {
	Content string `json:"content"`
}

// chatMessage is an outbound chat frame. Samples accompany "samples"
// frames only.
type chatMessage struct {
	Type    string          `json:"type"`
	Content string          `json:"content,omitempty"`
	Intent  *sensei.Intent  `json:"intent,omitempty"`
	Samples []*model.Sample `json:"samples,omitempty"`
}

// chatConn guards the websocket with a write lock; the ping loop and
// the reply path must never write a frame concurrently.
type chatConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *chatConn) writeJSON(msg chatMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

func (c *chatConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// WebSocketSenseiHandler upgrades the connection and answers prompts
// with parsed intents and matching samples.
func (h *ChatHandler) WebSocketSenseiHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("failed to upgrade websocket", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	logger.Info("sensei chat connected", logger.String("remote", r.RemoteAddr))

	cc := &chatConn{conn: conn}
	done := make(chan struct{})
	go h.pingLoop(cc, done)
	defer close(done)

	h.send(cc, chatMessage{Type: "greeting", Content: sensei.Greeting()})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.Warn("websocket unexpected close", logger.ErrorField(err))
			}
			break
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var req chatRequest
		if err := json.Unmarshal(message, &req); err != nil {
			h.sendError(cc, "Invalid message format")
			continue
		}
		if req.Content == "" {
			h.sendError(cc, "Message content is required")
			continue
		}

		h.handlePrompt(cc, req.Content)
	}
}

// handlePrompt parses one prompt and replies with matching samples.
func (h *ChatHandler) handlePrompt(cc *chatConn, prompt string) {
	intent := sensei.ParsePrompt(prompt)
	if intent.Empty() {
		h.send(cc, chatMessage{Type: "content", Content: sensei.FallbackReply()})
		return
	}

	what := intent.Describe()
	h.send(cc, chatMessage{Type: "content", Content: sensei.SearchIntro(what), Intent: intent})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := h.searchEngine.Search(ctx, intent.ToSearchRequest(chatResultLimit))
	if err != nil {
		logger.Error("sensei search failed", logger.String("prompt", prompt), logger.ErrorField(err))
		h.sendError(cc, "Search is down right now, try again in a minute.")
		return
	}

	h.send(cc, chatMessage{
		Type:    "samples",
		Content: sensei.ResultsReply(len(resp.Results), what),
		Samples: resp.Results,
	})

	logger.Info("sensei prompt served",
		logger.String("prompt", prompt),
		logger.Int("results", len(resp.Results)))
}

// pingLoop keeps the connection alive with periodic pings.
func (h *ChatHandler) pingLoop(cc *chatConn, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := cc.ping(); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *ChatHandler) send(cc *chatConn, msg chatMessage) error {
	return cc.writeJSON(msg)
}

func (h *ChatHandler) sendError(cc *chatConn, errMsg string) {
	h.send(cc, chatMessage{Type: "error", Content: errMsg})
}
