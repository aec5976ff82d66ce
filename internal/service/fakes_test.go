package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/vedran77/chatty/internal/domain"
	"github.com/vedran77/chatty/internal/media"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User

	err error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u := *user
	r.users[u.ID] = &u
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) ListExcept(ctx context.Context, id uuid.UUID) ([]domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		if u.ID != id {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *memUserRepo) UpdateProfilePicture(ctx context.Context, id uuid.UUID, url string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	u.ProfilePicture = url
	cp := *u
	return &cp, nil
}

type memMessageRepo struct {
	messages []domain.Message
	err      error
}

func (r *memMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *memMessageRepo) ListBetween(ctx context.Context, userID, otherID uuid.UUID) ([]domain.Message, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Message
	for _, m := range r.messages {
		if (m.SenderID == userID && m.ReceiverID == otherID) || (m.SenderID == otherID && m.ReceiverID == userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeUploader struct {
	url  string
	err  error
	last struct {
		folder media.Folder
		data   string
	}
	calls int
}

func (f *fakeUploader) Upload(ctx context.Context, folder media.Folder, data string) (string, error) {
	f.calls++
	f.last.folder = folder
	f.last.data = data
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type recordingNotifier struct {
	messages []*domain.Message
}

func (n *recordingNotifier) NotifyNewMessage(msg *domain.Message) {
	n.messages = append(n.messages, msg)
}

func seedUser(t interface{ Helper() }, repo *memUserRepo, email string) *domain.User {
	t.Helper()
	u := &domain.User{ID: uuid.New(), Email: email, FullName: email}
	_ = repo.Create(context.Background(), u)
	return u
}
