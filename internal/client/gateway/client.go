// Package gateway is the HTTP client for the chat API. The session rides in
// the jwt cookie, which the client keeps in its own cookie jar.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/chatty/internal/apierr"
	"github.com/vedran77/chatty/internal/domain"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 1 << 20

// Gateway is the remote surface the session store depends on.
type Gateway interface {
	// CheckSession returns nil, nil when the server has no session for us.
	CheckSession(ctx context.Context) (*domain.User, error)
	Signup(ctx context.Context, req SignupRequest) (*domain.User, error)
	Login(ctx context.Context, req LoginRequest) (*domain.User, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, fields map[string]any) (*domain.User, error)
}

type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SendMessageRequest struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

type userEnvelope struct {
	User *domain.User `json:"user"`
}

// Client talks to the chat API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ Gateway = (*Client)(nil)

// New creates a client for baseURL. A zero timeout means requests are only
// bounded by their context.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("gateway.New: invalid base URL %q", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("gateway.New: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

// CheckSession asks the server who the session cookie belongs to.
func (c *Client) CheckSession(ctx context.Context) (*domain.User, error) {
	var out userEnvelope
	if err := c.get(ctx, "/api/auth/check", &out); err != nil {
		return nil, fmt.Errorf("gateway.CheckSession: %w", err)
	}
	return out.User, nil
}

// Signup creates an account and starts a session for it.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	user, err := c.postUser(ctx, http.MethodPost, "/api/auth/signup", req)
	if err != nil {
		return nil, fmt.Errorf("gateway.Signup: %w", err)
	}
	return user, nil
}

// Login starts a session for existing credentials.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*domain.User, error) {
	user, err := c.postUser(ctx, http.MethodPost, "/api/auth/login", req)
	if err != nil {
		return nil, fmt.Errorf("gateway.Login: %w", err)
	}
	return user, nil
}

// Logout ends the session. The server clears the cookie.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("gateway.Logout: %w", err)
	}
	return nil
}

// UpdateProfile sends the given profile fields and returns the stored user.
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]any) (*domain.User, error) {
	user, err := c.postUser(ctx, http.MethodPut, "/api/user/profile", fields)
	if err != nil {
		return nil, fmt.Errorf("gateway.UpdateProfile: %w", err)
	}
	return user, nil
}

// ListUsers returns everyone except the caller.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.get(ctx, "/api/user", &users); err != nil {
		return nil, fmt.Errorf("gateway.ListUsers: %w", err)
	}
	return users, nil
}

// Messages returns the conversation with userID, oldest first.
func (c *Client) Messages(ctx context.Context, userID uuid.UUID) ([]domain.Message, error) {
	var msgs []domain.Message
	if err := c.get(ctx, "/api/messages/"+url.PathEscape(userID.String()), &msgs); err != nil {
		return nil, fmt.Errorf("gateway.Messages: %w", err)
	}
	return msgs, nil
}

// SendMessage sends text and/or an image (data URI) to userID.
func (c *Client) SendMessage(ctx context.Context, userID uuid.UUID, req SendMessageRequest) (*domain.Message, error) {
	var msg domain.Message
	if err := c.doRequest(ctx, http.MethodPost, "/api/messages/send/"+url.PathEscape(userID.String()), req, &msg); err != nil {
		return nil, fmt.Errorf("gateway.SendMessage: %w", err)
	}
	return &msg, nil
}

func (c *Client) postUser(ctx context.Context, method, path string, body any) (*domain.User, error) {
	var out userEnvelope
	if err := c.doRequest(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, &Error{Type: apierr.TypeInternal, Message: "response has no user"}
	}
	return out.User, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

// doRequest performs the call and funnels every failure through normalize.
func (c *Client) doRequest(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Type: apierr.TypeValidation, Message: fmt.Sprintf("encoding request: %v", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return transportError(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if gwErr := normalize(resp, err); gwErr != nil {
		return gwErr
	}
	defer resp.Body.Close()

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Status: resp.StatusCode, Type: apierr.TypeInternal, Message: fmt.Sprintf("decoding response: %v", err)}
	}
	return nil
}

// normalize maps a round trip outcome to an *Error, or nil for a 2xx
// response. On error it closes the body.
func normalize(resp *http.Response, err error) *Error {
	if err != nil {
		return transportError(err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()

	var env apierr.Envelope
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if len(data) > 0 {
		// A non-JSON body (proxy error page) keeps only the status.
		_ = json.Unmarshal(data, &env)
	}
	return envelopeError(resp.StatusCode, env)
}
