package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/chatty/internal/apierr"
	"github.com/vedran77/chatty/internal/auth"
	"github.com/vedran77/chatty/internal/logging"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apierr.Envelope {
	t.Helper()
	var env apierr.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestAuth(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	userID := uuid.New()
	good, err := tokens.Generate(userID)
	require.NoError(t, err)

	var seen uuid.UUID
	h := Auth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: good})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, userID, seen)
	})

	tests := []struct {
		name    string
		cookie  *http.Cookie
		message string
	}{
		{"no cookie", nil, "Unauthorized - no token provided"},
		{"empty cookie", &http.Cookie{Name: auth.CookieName, Value: ""}, "Unauthorized - no token provided"},
		{"garbage", &http.Cookie{Name: auth.CookieName, Value: "garbage"}, "Unauthorized - invalid token"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.Equal(t, apierr.TypeAuth, env.Type)
			assert.Equal(t, 401, env.Status)
			assert.Equal(t, tc.message, env.Message)
		})
	}
}

func TestCORS(t *testing.T) {
	h := CORS("http://app.local")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/check", nil)
	req.Header.Set("Origin", "http://app.local")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://app.local", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.local")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLogging_RecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	h := Logging(logging.NewText(&buf, "info"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	out := buf.String()
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "path=/health")
	assert.Contains(t, out, "method=GET")
}

func TestRecover(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})

	t.Run("production hides stack", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Recover(logging.Nop(), false)(panicky).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, apierr.TypeInternal, env.Type)
		assert.Empty(t, env.Stack)
	})

	t.Run("development exposes stack", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Recover(logging.Nop(), true)(panicky).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		env := decodeEnvelope(t, rec)
		assert.Contains(t, env.Stack, "goroutine")
	})
}

func TestLogging_KeepsHijacker(t *testing.T) {
	var hijackable bool
	h := Logging(logging.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hijackable = w.(http.Hijacker)
	}))

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.True(t, hijackable)
}
