package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vedran77/chatty/internal/domain"
	"github.com/vedran77/chatty/internal/media"
	"github.com/vedran77/chatty/internal/repository"
)

var ErrProfilePictureRequired = errors.New("profile picture is required")

type UserService struct {
	userRepo repository.UserRepository
	uploader media.Uploader
}

func NewUserService(userRepo repository.UserRepository, uploader media.Uploader) *UserService {
	return &UserService{
		userRepo: userRepo,
		uploader: uploader,
	}
}

type UpdateProfileInput struct {
	ProfilePicture string `json:"profilePicture"`
}

// UpdateProfile uploads the new avatar to the media host and stores its URL.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	if strings.TrimSpace(input.ProfilePicture) == "" {
		return nil, ErrProfilePictureRequired
	}

	url, err := s.uploader.Upload(ctx, media.FolderAvatars, input.ProfilePicture)
	if err != nil {
		return nil, fmt.Errorf("uploading profile picture: %w", err)
	}

	user, err := s.userRepo.UpdateProfilePicture(ctx, userID, url)
	if err != nil {
		return nil, fmt.Errorf("updating profile picture: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListForSidebar returns every other user.
func (s *UserService) ListForSidebar(ctx context.Context, userID uuid.UUID) ([]domain.User, error) {
	users, err := s.userRepo.ListExcept(ctx, userID)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}
