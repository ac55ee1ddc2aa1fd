package ws_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/venturehub/community-chat/domain"
	"github.com/venturehub/community-chat/identity"
	"github.com/venturehub/community-chat/repositories"
	"github.com/venturehub/community-chat/runtime"
	"github.com/venturehub/community-chat/services"
	"github.com/venturehub/community-chat/transport/ws"
)

const readTimeout = 2 * time.Second

type stack struct {
	server *httptest.Server
	users  repositories.IUserRepository
}

// newStack wires the full server side: badger store, resolver, hub with a
// running fan-out worker, ingest pipeline, and the transport on top.
func newStack(t *testing.T) stack {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.Default()
	messages := repositories.NewMessageRepository(db, log, 4000)
	users := repositories.NewUserRepository(db)
	resolver := identity.NewResolver(users, log)

	registry := runtime.NewRegistry()
	hub := runtime.NewHub(log, registry, 64, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.Worker().Run(ctx) }()

	chat := services.NewChatService(log, resolver, messages, hub, nil, 5*time.Second)
	server := httptest.NewServer(ws.NewServer(log, chat, hub, 64).Routes())
	t.Cleanup(server.Close)

	return stack{server: server, users: users}
}

func (s stack) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) ws.OutboundFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))
	var frame ws.OutboundFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestSocket_Fanout_To_All_Connections(t *testing.T) {
	req := require.New(t)
	s := newStack(t)
	_, err := s.users.CreateUser("ext-alice", "Alice", "alice.png")
	req.NoError(err)

	a := s.dial(t)
	b := s.dial(t)
	c := s.dial(t)

	req.NoError(a.WriteJSON(ws.InboundFrame{SenderID: "ext-alice", Body: "hello all"}))

	// Every connection, the origin included, receives the same broadcast.
	var frames []ws.OutboundFrame
	for _, conn := range []*websocket.Conn{a, b, c} {
		frames = append(frames, readFrame(t, conn))
	}
	for _, frame := range frames {
		req.Equal("message", frame.Type)
		req.NotNil(frame.Message)
		req.Equal(frames[0].Message.ID, frame.Message.ID)
		req.Equal("hello all", frame.Message.Body)
		req.Equal("Alice", frame.Message.Sender.Name)
	}
}

func TestSocket_Delivery_Order_Matches_Submission_Order(t *testing.T) {
	req := require.New(t)
	s := newStack(t)
	_, err := s.users.CreateUser("ext-alice", "Alice", "")
	req.NoError(err)

	sender := s.dial(t)
	observer := s.dial(t)

	req.NoError(sender.WriteJSON(ws.InboundFrame{SenderID: "ext-alice", Body: "m1"}))
	// Wait for m1 to round-trip before submitting m2, so persistence order
	// is fixed; the assertion is about delivery order.
	first := readFrame(t, sender)
	req.Equal("m1", first.Message.Body)

	req.NoError(sender.WriteJSON(ws.InboundFrame{SenderID: "ext-alice", Body: "m2"}))

	got1 := readFrame(t, observer)
	got2 := readFrame(t, observer)
	req.Equal("m1", got1.Message.Body)
	req.Equal("m2", got2.Message.Body)
}

func TestSocket_Submission_Failure_Reported_To_Origin_Only(t *testing.T) {
	req := require.New(t)
	s := newStack(t)

	submitter := s.dial(t)
	other := s.dial(t)

	req.NoError(submitter.WriteJSON(ws.InboundFrame{SenderID: "ghost-id", Body: "hello"}))

	frame := readFrame(t, submitter)
	req.Equal("error", frame.Type)
	req.Contains(frame.Error, "user directory")

	// The other connection gets nothing.
	req.NoError(other.SetReadDeadline(time.Now().Add(300 * time.Millisecond)))
	var stray ws.OutboundFrame
	err := other.ReadJSON(&stray)
	req.Error(err)
}

func TestHistory_Endpoint(t *testing.T) {
	req := require.New(t)
	s := newStack(t)
	_, err := s.users.CreateUser("ext-alice", "Alice", "")
	req.NoError(err)

	// Empty store returns an empty array, not null.
	resp, err := http.Get(s.server.URL + "/api/chat/messages")
	req.NoError(err)
	var empty []domain.EnrichedMessage
	req.NoError(json.NewDecoder(resp.Body).Decode(&empty))
	resp.Body.Close()
	req.NotNil(empty)
	req.Empty(empty)

	conn := s.dial(t)
	req.NoError(conn.WriteJSON(ws.InboundFrame{SenderID: "ext-alice", Body: "persisted"}))
	_ = readFrame(t, conn)

	resp, err = http.Get(s.server.URL + "/api/chat/messages")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)

	var messages []domain.EnrichedMessage
	req.NoError(json.NewDecoder(resp.Body).Decode(&messages))
	req.Len(messages, 1)
	req.Equal("persisted", messages[0].Body)
	req.Equal("Alice", messages[0].Sender.Name)
}

func TestHealth_Endpoint(t *testing.T) {
	req := require.New(t)
	s := newStack(t)

	resp, err := http.Get(s.server.URL + "/healthz")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)
}
