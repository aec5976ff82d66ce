package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/chatty/internal/domain"
	"github.com/vedran77/chatty/internal/media"
	"github.com/vedran77/chatty/internal/repository"
)

var (
	ErrEmptyMessage      = errors.New("message needs text or an image")
	ErrCannotMessageSelf = errors.New("cannot send a message to yourself")
)

// Notifier broadcasts real-time events to connected clients.
type Notifier interface {
	NotifyNewMessage(msg *domain.Message)
}

type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	uploader    media.Uploader
	notifier    Notifier
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	uploader media.Uploader,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		uploader:    uploader,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

type SendMessageInput struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

// List returns the conversation between userID and otherID, oldest first.
func (s *MessageService) List(ctx context.Context, userID, otherID uuid.UUID) ([]domain.Message, error) {
	messages, err := s.messageRepo.ListBetween(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// Send stores a message from userID to receiverID. An attached image is
// uploaded to the media host first and the message keeps its URL.
func (s *MessageService) Send(ctx context.Context, userID, receiverID uuid.UUID, input SendMessageInput) (*domain.Message, error) {
	text := strings.TrimSpace(input.Text)
	image := strings.TrimSpace(input.Image)
	if text == "" && image == "" {
		return nil, ErrEmptyMessage
	}
	if userID == receiverID {
		return nil, ErrCannotMessageSelf
	}

	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	now := time.Now()
	msg := &domain.Message{
		ID:         uuid.New(),
		SenderID:   userID,
		ReceiverID: receiverID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if text != "" {
		msg.Text = &text
	}
	if image != "" {
		url, err := s.uploader.Upload(ctx, media.FolderMessages, image)
		if err != nil {
			return nil, fmt.Errorf("uploading message image: %w", err)
		}
		msg.Image = &url
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(msg)
	}

	return msg, nil
}
