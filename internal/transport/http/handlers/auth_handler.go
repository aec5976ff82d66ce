package handlers

import (
	"errors"
	"net/http"

	"github.com/vedran77/chatty/internal/apierr"
	"github.com/vedran77/chatty/internal/auth"
	"github.com/vedran77/chatty/internal/domain"
	"github.com/vedran77/chatty/internal/service"
	"github.com/vedran77/chatty/internal/transport/http/middleware"
	"github.com/vedran77/chatty/pkg/validator"
)

type AuthHandler struct {
	authService  *service.AuthService
	tokens       *auth.TokenIssuer
	cookieSecure bool
	rep          *Reporter
}

func NewAuthHandler(authService *service.AuthService, tokens *auth.TokenIssuer, cookieSecure bool, rep *Reporter) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokens:       tokens,
		cookieSecure: cookieSecure,
		rep:          rep,
	}
}

type userResponse struct {
	User *domain.User `json:"user,omitempty"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input service.SignupInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeInvalidJSON(w)
		return
	}

	if errs := validator.ValidateSignup(input.FullName, input.Email, input.Password); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	res, err := h.authService.Signup(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			writeError(w, http.StatusConflict, apierr.TypeConflict, "Email already exists")
		} else {
			h.rep.internal(w, r, "signup", err)
		}
		return
	}

	h.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusCreated, userResponse{User: res.User})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeInvalidJSON(w)
		return
	}

	if errs := validator.ValidateLogin(input.Email, input.Password); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	res, err := h.authService.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCreds) {
			writeError(w, http.StatusUnauthorized, apierr.TypeAuth, "Invalid email or password")
		} else {
			h.rep.internal(w, r, "login", err)
		}
		return
	}

	h.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusOK, userResponse{User: res.User})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, struct{}{})
}

// Check reports who the session cookie belongs to. No cookie is not an
// error, the answer is simply an empty object.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserFromCookie(r, h.tokens)
	if err != nil {
		switch {
		case errors.Is(err, http.ErrNoCookie):
			writeJSON(w, http.StatusOK, userResponse{})
		case errors.Is(err, auth.ErrTokenExpired):
			h.clearSessionCookie(w)
			writeError(w, http.StatusUnauthorized, apierr.TypeAuth, apierr.MsgSessionExpired)
		default:
			h.clearSessionCookie(w)
			writeError(w, http.StatusUnauthorized, apierr.TypeAuth, apierr.MsgInvalidToken)
		}
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			h.clearSessionCookie(w)
			writeJSON(w, http.StatusOK, userResponse{})
		} else {
			h.rep.internal(w, r, "check session", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: user})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
