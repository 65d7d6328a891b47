package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"bloom/internal/identity"
	mw "bloom/internal/middleware"
	"bloom/internal/syncer"
)

type AuthHandler struct {
	ids      *identity.Service
	sessions *syncer.Manager
}

func NewAuthHandler(ids *identity.Service, sessions *syncer.Manager) *AuthHandler {
	return &AuthHandler{ids: ids, sessions: sessions}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	principal, err := h.ids.CreateAccount(r.Context(), c.Email, c.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrEmailTaken):
			http.Error(w, "email already in use", http.StatusConflict)
		case errors.Is(err, identity.ErrInvalidCredentials):
			http.Error(w, "email and password required", http.StatusBadRequest)
		default:
			http.Error(w, "could not create account", http.StatusInternalServerError)
		}
		return
	}

	h.startSession(w, principal)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	principal, err := h.ids.SignIn(r.Context(), c.Email, c.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.startSession(w, principal)
}

// startSession creates the device session (which hydrates or bootstraps
// the profile) and issues the token bound to it.
func (h *AuthHandler) startSession(w http.ResponseWriter, principal *identity.Principal) {
	sessionID := h.sessions.StartSession(principal)
	token, err := h.ids.IssueToken(principal, sessionID)
	if err != nil {
		h.sessions.EndSession(sessionID)
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "principal": principal})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sid, _ := r.Context().Value(mw.SessionIDKey).(string)
	h.sessions.EndSession(sid)
	w.WriteHeader(http.StatusNoContent)
}
