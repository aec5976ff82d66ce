package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/chatty/internal/auth"
	"github.com/vedran77/chatty/internal/domain"
	"github.com/vedran77/chatty/internal/logging"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type wsEnv struct {
	hub    *Hub
	tokens *auth.TokenIssuer
	server *httptest.Server
}

func newWSEnv(t *testing.T) *wsEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewHub(logging.Nop())
	tokens := auth.NewTokenIssuer("ws-secret", time.Hour)
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(ctx)
	}()

	srv := httptest.NewServer(ServeWS(ctx, hub, tokens, "http://localhost:5173"))
	t.Cleanup(func() {
		cancel()
		<-hubDone
		srv.Close()
	})

	return &wsEnv{hub: hub, tokens: tokens, server: srv}
}

func (e *wsEnv) dial(t *testing.T, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	token, err := e.tokens.Generate(userID)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(e.server.URL, "http"), &websocket.DialOptions{
		HTTPHeader: http.Header{"Cookie": []string{auth.CookieName + "=" + token}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

// readUntil skips events until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, eventType string) Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		var evt Event
		require.NoError(t, wsjson.Read(ctx, conn, &evt))
		if evt.Type == eventType {
			return evt
		}
	}
}

func TestServeWS_RejectsMissingCookie(t *testing.T) {
	env := newWSEnv(t)

	resp, err := http.Get(env.server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHub_PresenceAndMessages(t *testing.T) {
	env := newWSEnv(t)
	alice, bob := uuid.New(), uuid.New()

	aliceConn := env.dial(t, alice)
	evt := readUntil(t, aliceConn, EventTypeOnlineUsers)
	var online OnlineUsersPayload
	require.NoError(t, json.Unmarshal(evt.Payload, &online))
	assert.Equal(t, []uuid.UUID{alice}, online.UserIDs)

	bobConn := env.dial(t, bob)
	readUntil(t, bobConn, EventTypeOnlineUsers)

	evt = readUntil(t, aliceConn, EventTypePresence)
	var presence PresencePayload
	require.NoError(t, json.Unmarshal(evt.Payload, &presence))
	assert.Equal(t, bob, presence.UserID)
	assert.Equal(t, "online", presence.Status)

	assert.Len(t, env.hub.OnlineUsers(), 2)

	text := "hi bob"
	NewHubNotifier(env.hub).NotifyNewMessage(&domain.Message{
		ID:         uuid.New(),
		SenderID:   alice,
		ReceiverID: bob,
		Text:       &text,
	})

	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		evt := readUntil(t, conn, EventTypeMessageNew)
		var msg MessagePayload
		require.NoError(t, json.Unmarshal(evt.Payload, &msg))
		require.NotNil(t, msg.Text)
		assert.Equal(t, "hi bob", *msg.Text)
		assert.Equal(t, alice, msg.SenderID)
	}

	bobConn.Close(websocket.StatusNormalClosure, "")
	evt = readUntil(t, aliceConn, EventTypePresence)
	require.NoError(t, json.Unmarshal(evt.Payload, &presence))
	assert.Equal(t, bob, presence.UserID)
	assert.Equal(t, "offline", presence.Status)
}

func TestClient_TypingAndPing(t *testing.T) {
	env := newWSEnv(t)
	alice, bob := uuid.New(), uuid.New()

	aliceConn := env.dial(t, alice)
	readUntil(t, aliceConn, EventTypeOnlineUsers)
	bobConn := env.dial(t, bob)
	readUntil(t, bobConn, EventTypeOnlineUsers)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, err := json.Marshal(TypingRequest{To: bob})
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(ctx, aliceConn, Event{Type: EventTypeTypingStart, Payload: payload}))

	evt := readUntil(t, bobConn, EventTypeTyping)
	var typing TypingPayload
	require.NoError(t, json.Unmarshal(evt.Payload, &typing))
	assert.Equal(t, alice, typing.UserID)
	assert.True(t, typing.IsTyping)

	require.NoError(t, wsjson.Write(ctx, aliceConn, Event{Type: EventTypePing}))
	readUntil(t, aliceConn, EventTypePong)

	require.NoError(t, wsjson.Write(ctx, aliceConn, Event{Type: "bogus"}))
	evt = readUntil(t, aliceConn, EventTypeError)
	var errPayload ErrorPayload
	require.NoError(t, json.Unmarshal(evt.Payload, &errPayload))
	assert.Equal(t, "UNKNOWN_EVENT", errPayload.Code)
}
