// Package ws wires the chat core to its transport: a WebSocket live feed
// carrying broadcasts out and submissions in, plus plain HTTP endpoints for
// the one-shot history fetch and health.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/xid"

	"github.com/venturehub/community-chat/domain"
	"github.com/venturehub/community-chat/domain/event"
	"github.com/venturehub/community-chat/runtime"
	"github.com/venturehub/community-chat/services"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients come from the SPA host; cross-origin policy is
	// enforced upstream, the core accepts any origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

type Server struct {
	log                  *slog.Logger
	chat                 services.IChatService
	hub                  *runtime.Hub
	connectionBufferSize int
}

func NewServer(log *slog.Logger, chat services.IChatService, hub *runtime.Hub, connectionBufferSize int) *Server {
	return &Server{log: log, chat: chat, hub: hub, connectionBufferSize: connectionBufferSize}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleSocket)
	mux.HandleFunc("/api/chat/messages", s.handleHistory)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// handleSocket upgrades the connection, registers it with the hub, and
// serves it until the transport closes. The handler goroutine is the single
// writer; a reader goroutine feeds submissions and signals disconnection by
// canceling the connection context.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "WebSocket endpoint only accepts GET", http.StatusMethodNotAllowed)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	connID := xid.New().String()
	sink := NewConnSink(s.connectionBufferSize)
	s.hub.Register(connID, sink)
	defer s.hub.Unregister(connID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Submission failures go back on this connection only, never broadcast.
	failures := make(chan OutboundFrame, s.connectionBufferSize)
	go s.readLoop(ctx, cancel, conn, failures)

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("connection closed", "connection_id", connID)
			return
		case evt := <-sink.Events:
			broadcast, ok := evt.(event.MessageBroadcast)
			if !ok {
				continue
			}
			if err := s.writeFrame(conn, messageFrame(broadcast.Message)); err != nil {
				s.log.Warn("failed to push message to connection",
					"connection_id", connID,
					"error", err)
				return
			}
		case frame := <-failures:
			if err := s.writeFrame(conn, frame); err != nil {
				return
			}
		}
	}
}

// readLoop consumes inbound frames until the transport errors, which is how
// client navigation, network loss, and explicit close all surface.
func (s *Server) readLoop(ctx context.Context, cancel context.CancelFunc,
	conn *websocket.Conn, failures chan<- OutboundFrame) {
	defer cancel()

	for {
		var in InboundFrame
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("unexpected websocket close", "error", err)
			}
			return
		}

		_, err := s.chat.Submit(ctx, services.SubmitRequest{
			SenderID: in.SenderID,
			Body:     in.Body,
		})
		if err != nil {
			select {
			case failures <- errorFrame(err):
			case <-ctx.Done():
				return
			}
		}
		// On success nothing is echoed here; the sender receives its own
		// message through the broadcast like every other connection.
	}
}

func (s *Server) writeFrame(conn *websocket.Conn, frame OutboundFrame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}

// handleHistory returns the full ordered history, oldest first. No
// pagination or cursor; full replay is the only mode.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	messages, err := s.chat.History(r.Context())
	if err != nil {
		s.log.Error("history fetch failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unable to fetch messages"})
		return
	}
	if messages == nil {
		messages = []domain.EnrichedMessage{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(messages); err != nil {
		s.log.Error("history encode failed", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "community-chat server is running")
}
