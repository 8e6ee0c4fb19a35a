package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hugh/member-sync/internal/api/dto"
	"github.com/hugh/member-sync/internal/api/middleware"
	"github.com/hugh/member-sync/internal/auth"
)

type AuthHandler struct {
	authService auth.Authenticator
	cookies     SessionCookies
	logger      *slog.Logger
}

func NewAuthHandler(authService auth.Authenticator, cookies SessionCookies, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies, logger: logger}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	session, err := h.authService.SignUp(r.Context(), auth.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: auth.ErrUserExists.Error()})
			return
		}
		h.logger.Error("sign-up failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Registration failed"})
		return
	}

	h.cookies.Set(w, session.Token)
	writeJSON(w, http.StatusCreated, authResponse(session))
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	session, err := h.authService.SignIn(r.Context(), auth.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: auth.ErrInvalidCredentials.Error()})
		case errors.Is(err, auth.ErrInactiveUser):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Account is inactive"})
		default:
			h.logger.Error("sign-in failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Login failed"})
		}
		return
	}

	h.cookies.Set(w, session.Token)
	writeJSON(w, http.StatusOK, authResponse(session))
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.SignOut(r.Context(), middleware.TokenFromRequest(r)); err != nil {
		h.logger.Error("sign-out failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Logout failed"})
		return
	}

	h.cookies.Clear(w)
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Logged out"})
}

func authResponse(s *auth.Session) dto.AuthResponse {
	return dto.AuthResponse{
		Token: s.Token,
		User: dto.UserDTO{
			ID:    s.User.ID.String(),
			Email: s.User.Email,
		},
	}
}

// SessionCookies writes the session token cookie shared by the API and the
// web pages.
type SessionCookies struct {
	Secure bool
	MaxAge time.Duration
}

func (c SessionCookies) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.MaxAge.Seconds()),
	})
}

func (c SessionCookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		MaxAge:   -1,
	})
}
