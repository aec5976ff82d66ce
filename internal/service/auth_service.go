package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/chatty/internal/auth"
	"github.com/vedran77/chatty/internal/domain"
	"github.com/vedran77/chatty/internal/repository"
)

var (
	ErrEmailTaken   = errors.New("email already taken")
	ErrInvalidCreds = errors.New("invalid email or password")
	ErrUserNotFound = errors.New("user not found")
)

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenIssuer
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

type SignupInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult carries the user plus the session token that the transport
// layer puts into the session cookie.
type AuthResult struct {
	User  *domain.User
	Token string
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCreds
	}

	if !verifyPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCreds
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// CurrentUser resolves the user a validated session token belongs to.
// A token for a deleted account yields ErrUserNotFound.
func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
