package ws

import (
	"context"
	"net/http"
	"net/url"

	"github.com/vedran77/chatty/internal/apierr"
	"github.com/vedran77/chatty/internal/transport/http/middleware"
	"nhooyr.io/websocket"
)

// ServeWS returns an HTTP handler that upgrades to WebSocket. The session
// cookie authenticates the upgrade the same way it does REST calls.
// Connections live until ctx is cancelled or the peer disconnects.
func ServeWS(ctx context.Context, hub *Hub, tokens middleware.TokenParser, clientOrigin string) http.HandlerFunc {
	var originPatterns []string
	if u, err := url.Parse(clientOrigin); err == nil && u.Host != "" {
		originPatterns = []string{u.Host}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserFromCookie(r, tokens)
		if err != nil {
			apierr.Write(w, http.StatusUnauthorized, apierr.TypeAuth, apierr.MsgInvalidToken)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			hub.log.Warn(r.Context(), "accept error", "error", err)
			return
		}

		client := NewClient(hub, conn, userID)
		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}

		go client.WritePump(ctx)
		go client.ReadPump(ctx)
	}
}
