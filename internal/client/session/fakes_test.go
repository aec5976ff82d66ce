package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vedran77/chatty/internal/apierr"
	"github.com/vedran77/chatty/internal/client/gateway"
	"github.com/vedran77/chatty/internal/domain"
)

// fakeGateway answers every call through an overridable func. Unset funcs
// succeed with a fixed user.
type fakeGateway struct {
	checkFn  func(ctx context.Context) (*domain.User, error)
	signupFn func(ctx context.Context, req gateway.SignupRequest) (*domain.User, error)
	loginFn  func(ctx context.Context, req gateway.LoginRequest) (*domain.User, error)
	logoutFn func(ctx context.Context) error
	updateFn func(ctx context.Context, fields map[string]any) (*domain.User, error)
}

var _ gateway.Gateway = (*fakeGateway)(nil)

func (f *fakeGateway) CheckSession(ctx context.Context) (*domain.User, error) {
	if f.checkFn != nil {
		return f.checkFn(ctx)
	}
	return nil, nil
}

func (f *fakeGateway) Signup(ctx context.Context, req gateway.SignupRequest) (*domain.User, error) {
	if f.signupFn != nil {
		return f.signupFn(ctx, req)
	}
	return testUser("Signed Up"), nil
}

func (f *fakeGateway) Login(ctx context.Context, req gateway.LoginRequest) (*domain.User, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, req)
	}
	return testUser("Logged In"), nil
}

func (f *fakeGateway) Logout(ctx context.Context) error {
	if f.logoutFn != nil {
		return f.logoutFn(ctx)
	}
	return nil
}

func (f *fakeGateway) UpdateProfile(ctx context.Context, fields map[string]any) (*domain.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, fields)
	}
	return testUser("Updated"), nil
}

func testUser(name string) *domain.User {
	return &domain.User{ID: uuid.New(), FullName: name, Email: "user@example.com"}
}

func authErr(msg string) error {
	return &gateway.Error{Status: 401, Type: apierr.TypeAuth, Message: msg}
}

func transportErr() error {
	return &gateway.Error{Type: apierr.TypeTransport, Message: "connection refused"}
}

func serverErr() error {
	return &gateway.Error{Status: 500, Type: apierr.TypeInternal, Message: "Something went wrong"}
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *recordingNotifier) all() (successes, errors []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.successes...), append([]string(nil), n.errors...)
}

// gate lets a test hold a gateway call open. The call signals entered, then
// waits for release.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) wait() {
	close(g.entered)
	<-g.release
}
