package lookup

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server lookup messages.
type ClientMessage struct {
	Type string          `json:"type"` // "search", "ping"
	ID   string          `json:"id"`   // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// SearchData is the payload for "search" messages.
type SearchData struct {
	Query string `json:"query"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client lookup messages.
type ServerMessage struct {
	Type      string `json:"type"`                 // "results", "error", "pong"
	RequestID string `json:"request_id,omitempty"` // Echoes client ID
	Data      any    `json:"data,omitempty"`
}

// ResultsData carries the result set current after a search.
type ResultsData struct {
	Members []Member `json:"members"`
}

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WSHandler serves a live member search channel over WebSocket. Each
// connection gets its own Searcher, so the sequence guard applies per
// editing session.
type WSHandler struct {
	dir Directory
}

// NewWSHandler creates the live-search handler.
func NewWSHandler(dir Directory) *WSHandler {
	return &WSHandler{dir: dir}
}

// ServeHTTP upgrades to WebSocket and runs the message loop.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("lookup: websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	searcher := NewSearcher(h.dir)
	ctx := r.Context()

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("lookup: connection closed: %v", websocket.CloseStatus(err))
			}
			return
		}

		switch msg.Type {
		case "search":
			h.handleSearch(ctx, conn, searcher, msg)
		case "ping":
			h.send(ctx, conn, ServerMessage{Type: "pong", RequestID: msg.ID})
		default:
			h.send(ctx, conn, ServerMessage{
				Type:      "error",
				RequestID: msg.ID,
				Data:      ErrorData{Code: "unknown_type", Message: "unknown message type: " + msg.Type},
			})
		}
	}
}

func (h *WSHandler) handleSearch(ctx context.Context, conn *websocket.Conn, searcher *Searcher, msg ClientMessage) {
	var data SearchData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.send(ctx, conn, ServerMessage{
			Type:      "error",
			RequestID: msg.ID,
			Data:      ErrorData{Code: "invalid_data", Message: "invalid search data"},
		})
		return
	}

	members, err := searcher.Search(ctx, data.Query)
	if err != nil {
		h.send(ctx, conn, ServerMessage{
			Type:      "error",
			RequestID: msg.ID,
			Data:      ErrorData{Code: "search_failed", Message: err.Error()},
		})
		return
	}
	if members == nil {
		members = []Member{}
	}
	h.send(ctx, conn, ServerMessage{
		Type:      "results",
		RequestID: msg.ID,
		Data:      ResultsData{Members: members},
	})
}

func (h *WSHandler) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		log.Printf("lookup: write error: %v", err)
	}
}
