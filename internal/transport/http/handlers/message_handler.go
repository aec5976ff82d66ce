package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/chatty/internal/apierr"
	"github.com/vedran77/chatty/internal/service"
	"github.com/vedran77/chatty/internal/transport/http/middleware"
	"github.com/vedran77/chatty/pkg/validator"
)

type MessageHandler struct {
	messageService *service.MessageService
	rep            *Reporter
}

func NewMessageHandler(messageService *service.MessageService, rep *Reporter) *MessageHandler {
	return &MessageHandler{messageService: messageService, rep: rep}
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	receiverID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, apierr.TypeValidation, "Invalid user ID")
		return
	}

	var input service.SendMessageInput
	if err := decodeJSON(w, r, &input); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, apierr.TypeValidation, "Image is too large")
			return
		}
		writeInvalidJSON(w)
		return
	}

	if errs := validator.ValidateMessage(input.Text, input.Image); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	msg, err := h.messageService.Send(r.Context(), userID, receiverID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, apierr.TypeValidation, "Message needs text or an image")
		case errors.Is(err, service.ErrCannotMessageSelf):
			writeError(w, http.StatusBadRequest, apierr.TypeValidation, "Cannot send a message to yourself")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, apierr.TypeNotFound, "User not found")
		default:
			if !writeMediaError(w, err) {
				h.rep.internal(w, r, "send message", err)
			}
		}
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	otherID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, apierr.TypeValidation, "Invalid user ID")
		return
	}

	messages, err := h.messageService.List(r.Context(), userID, otherID)
	if err != nil {
		h.rep.internal(w, r, "list messages", err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}
