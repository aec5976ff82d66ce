package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vedran77/chatty/internal/apierr"
	"github.com/vedran77/chatty/internal/auth"
	"github.com/vedran77/chatty/internal/domain"
	"github.com/vedran77/chatty/internal/logging"
	"github.com/vedran77/chatty/internal/media"
	"github.com/vedran77/chatty/internal/repository/memory"
	"github.com/vedran77/chatty/internal/service"
)

// pngDataURI is a 1x1 transparent PNG.
const pngDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// decodingUploader runs the real image decoding and hands out fake URLs.
type decodingUploader struct {
	n int
}

func (u *decodingUploader) Upload(ctx context.Context, folder media.Folder, data string) (string, error) {
	img, err := media.DecodeImage(data)
	if err != nil {
		return "", err
	}
	u.n++
	return fmt.Sprintf("https://cdn.test/%s/%d%s", folder, u.n, img.Ext()), nil
}

type testAPI struct {
	server *httptest.Server
	users  *memory.UserRepo
	tokens *auth.TokenIssuer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	users := memory.NewUserRepo()
	messages := memory.NewMessageRepo()
	uploader := &decodingUploader{}
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	rep := NewReporter(logging.Nop(), true)

	rt := &Router{
		Auth:     NewAuthHandler(service.NewAuthService(users, tokens), tokens, false, rep),
		Users:    NewUserHandler(service.NewUserService(users, uploader), rep),
		Messages: NewMessageHandler(service.NewMessageService(messages, users, uploader), rep),
		Tokens:   tokens,
	}

	srv := httptest.NewServer(rt.Mux())
	t.Cleanup(srv.Close)

	return &testAPI{server: srv, users: users, tokens: tokens}
}

// client returns an http.Client with its own cookie jar, i.e. a browser.
func (a *testAPI) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (a *testAPI) do(t *testing.T, c *http.Client, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testAPI) signup(t *testing.T, c *http.Client, fullName, email string) *domain.User {
	t.Helper()
	resp := a.do(t, c, http.MethodPost, "/api/auth/signup", service.SignupInput{
		FullName: fullName,
		Email:    email,
		Password: "Password1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeUser(t, resp)
}

func decodeUser(t *testing.T, resp *http.Response) *domain.User {
	t.Helper()
	var body struct {
		User *domain.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.User
}

func decodeEnvelope(t *testing.T, resp *http.Response) apierr.Envelope {
	t.Helper()
	var env apierr.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}
