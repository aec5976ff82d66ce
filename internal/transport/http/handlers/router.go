package handlers

import (
	"net/http"

	"github.com/vedran77/chatty/internal/transport/http/middleware"
)

// Router bundles everything the API mux needs.
type Router struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Messages *MessageHandler
	Tokens   middleware.TokenParser

	// WS is mounted at /api/ws when set.
	WS http.Handler
}

// Mux registers every route. Cross-cutting middleware (recover, logging,
// CORS) is applied by the caller.
func (rt *Router) Mux() *http.ServeMux {
	auth := middleware.Auth(rt.Tokens)
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /api/auth/check", rt.Auth.Check)
	mux.HandleFunc("POST /api/auth/signup", rt.Auth.Signup)
	mux.HandleFunc("POST /api/auth/login", rt.Auth.Login)
	mux.HandleFunc("POST /api/auth/logout", rt.Auth.Logout)

	// Protected - Users
	mux.Handle("PUT /api/user/profile", auth(http.HandlerFunc(rt.Users.UpdateProfile)))
	mux.Handle("GET /api/user", auth(http.HandlerFunc(rt.Users.List)))

	// Protected - Messages
	mux.Handle("GET /api/messages/{id}", auth(http.HandlerFunc(rt.Messages.List)))
	mux.Handle("POST /api/messages/send/{id}", auth(http.HandlerFunc(rt.Messages.Send)))

	if rt.WS != nil {
		mux.Handle("GET /api/ws", rt.WS)
	}

	return mux
}
