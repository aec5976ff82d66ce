package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vedran77/chatty/internal/domain"
)

// Lookups return (nil, nil) when nothing matches.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListExcept(ctx context.Context, id uuid.UUID) ([]domain.User, error)
	UpdateProfilePicture(ctx context.Context, id uuid.UUID, url string) (*domain.User, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListBetween(ctx context.Context, userID, otherID uuid.UUID) ([]domain.Message, error)
}
