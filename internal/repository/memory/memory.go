// Package memory keeps users and messages in process memory. It backs
// STORAGE=memory for local runs without Postgres, and the transport tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/chatty/internal/domain"
)

type UserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]domain.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[uuid.UUID]domain.User)}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

// ListExcept orders newest accounts first, same as the Postgres repository.
func (r *UserRepo) ListExcept(ctx context.Context, id uuid.UUID) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepo) UpdateProfilePicture(ctx context.Context, id uuid.UUID, url string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	u.ProfilePicture = url
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return &u, nil
}

// Delete is not part of the repository interface; tests use it to simulate
// an account removed while its session is still alive.
func (r *UserRepo) Delete(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

type MessageRepo struct {
	mu       sync.RWMutex
	messages []domain.Message
}

func NewMessageRepo() *MessageRepo {
	return &MessageRepo{}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, *msg)
	return nil
}

// ListBetween returns messages in insertion order, which is creation order.
func (r *MessageRepo) ListBetween(ctx context.Context, userID, otherID uuid.UUID) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Message{}
	for _, m := range r.messages {
		if (m.SenderID == userID && m.ReceiverID == otherID) || (m.SenderID == otherID && m.ReceiverID == userID) {
			out = append(out, m)
		}
	}
	return out, nil
}
