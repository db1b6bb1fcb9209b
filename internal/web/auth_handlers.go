package web

import (
	"net/http"
	"strings"

	apperrors "github.com/contactshub/server/internal/platform/errors"
	"github.com/contactshub/server/internal/platform/requestctx"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	u, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toUserView(u))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	u, err := h.auth.AuthenticatePassword(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}
	token, err := h.auth.IssueToken(u)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, authView{Token: token, User: toUserView(u)})
}

type federatedLoginRequest struct {
	Provider   string `json:"provider"`
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
}

func (h *Handlers) handleFederatedLogin(w http.ResponseWriter, r *http.Request) {
	var req federatedLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	u, err := h.auth.AuthenticateFederated(r.Context(), req.Provider, req.ExternalID, req.Email, req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}
	token, err := h.auth.IssueToken(u)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, authView{Token: token, User: toUserView(u)})
}

func (h *Handlers) handleProfile(w http.ResponseWriter, r *http.Request) {
	u, err := h.auth.GetUser(r.Context(), requestctx.UserIDFromContext(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserView(u))
}

// RequireAuth verifies the bearer token and stores the subject user id on the
// request context. Missing or bad credentials end the request with 401.
func (h *Handlers) RequireAuth() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, tokenString, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
				WriteError(w, apperrors.New(apperrors.CodeUnauthenticated, "missing bearer token"))
				return
			}
			userID, err := h.auth.VerifyToken(strings.TrimSpace(tokenString))
			if err != nil {
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestctx.WithUserID(r.Context(), userID)))
		})
	}
}
