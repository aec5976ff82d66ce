package handlers

import (
	"errors"
	"net/http"

	"github.com/vedran77/chatty/internal/apierr"
	"github.com/vedran77/chatty/internal/media"
	"github.com/vedran77/chatty/internal/service"
	"github.com/vedran77/chatty/internal/transport/http/middleware"
)

// maxBodyBytes leaves room for a base64 image at media.MaxImageBytes.
const maxBodyBytes = media.MaxImageBytes*4/3 + 64<<10

type UserHandler struct {
	userService *service.UserService
	rep         *Reporter
}

func NewUserHandler(userService *service.UserService, rep *Reporter) *UserHandler {
	return &UserHandler{userService: userService, rep: rep}
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.UpdateProfileInput
	if err := decodeJSON(w, r, &input); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, apierr.TypeValidation, "Image is too large")
			return
		}
		writeInvalidJSON(w)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfilePictureRequired):
			writeError(w, http.StatusBadRequest, apierr.TypeValidation, "Profile pic is required")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, apierr.TypeNotFound, "User not found")
		default:
			if !writeMediaError(w, err) {
				h.rep.internal(w, r, "update profile", err)
			}
		}
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: user})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	users, err := h.userService.ListForSidebar(r.Context(), userID)
	if err != nil {
		h.rep.internal(w, r, "list users", err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// writeMediaError answers client-side image problems. It reports false
// when err is not one of them.
func writeMediaError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, media.ErrImageTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, apierr.TypeValidation, "Image is too large")
	case errors.Is(err, media.ErrEmptyImage), errors.Is(err, media.ErrInvalidImage):
		writeError(w, http.StatusBadRequest, apierr.TypeValidation, "Image data is invalid")
	case errors.Is(err, media.ErrNotAnImage):
		writeError(w, http.StatusBadRequest, apierr.TypeValidation, "Only image uploads are allowed")
	default:
		return false
	}
	return true
}
