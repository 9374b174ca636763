package session

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/neem-ai/assistant/backend/internal/service/conversation"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 54 * time.Second
)

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// SendMessage is the payload of an inbound "send".
type SendMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	events, unsubscribe := session.Subscribe()
	defer unsubscribe()

	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	replies := make(chan outgoingMessage, 8)
	readerDone := make(chan struct{})
	go h.readLoop(ctx, conn, session, replies, readerDone)

	if !writeMessage(conn, outgoingMessage{Type: "snapshot", SessionID: sessionID, Data: session.Snapshot()}) {
		return
	}

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	// Only this goroutine writes to conn.
	for {
		select {
		case <-readerDone:
			return
		case ev, ok := <-events:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if !writeMessage(conn, outgoingMessage{Type: string(ev.Type), SessionID: sessionID, Data: ev}) {
				return
			}
		case msg := <-replies:
			msg.SessionID = sessionID
			if !writeMessage(conn, msg) {
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, session *conversation.Session, replies chan<- outgoingMessage, done chan<- struct{}) {
	defer close(done)

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		switch msg.Type {
		case "send":
			var payload SendMessage
			if err := json.Unmarshal(msg.Data, &payload); err != nil {
				reply(ctx, replies, errorMessage("invalid send payload"))
				continue
			}
			// Results reach the client as session events; only rejections
			// are answered directly.
			go func() {
				if _, err := session.Submit(context.WithoutCancel(ctx), payload.Text); err != nil {
					reply(ctx, replies, errorMessage(err.Error()))
				}
			}()
		case "retry":
			go func() {
				state, err := h.chatSvc.Retry(ctx, session.ID())
				if err != nil {
					reply(ctx, replies, errorMessage(err.Error()))
					return
				}
				reply(ctx, replies, outgoingMessage{Type: "retry", Data: map[string]string{"connection": string(state)}})
			}()
		default:
			reply(ctx, replies, errorMessage("unsupported message type: "+msg.Type))
		}
	}
}

func reply(ctx context.Context, replies chan<- outgoingMessage, msg outgoingMessage) {
	select {
	case replies <- msg:
	case <-ctx.Done():
	}
}

func errorMessage(message string) outgoingMessage {
	return outgoingMessage{Type: "error", Data: map[string]string{"message": message}}
}

func writeMessage(conn *websocket.Conn, msg outgoingMessage) bool {
	msg.Timestamp = time.Now().Unix()
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write failed: %v", err)
		return false
	}
	return true
}
