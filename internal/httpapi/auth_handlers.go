package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"kimlik.org/internal/audit"
	"kimlik.org/internal/authz"
	"kimlik.org/internal/directory"
	"kimlik.org/internal/stream"
)

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

const tokenTTL = 15 * time.Minute

func (a *API) handleAuthToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}

	person, err := a.auth.Login(r.Context(), username, req.Password)
	if err != nil {
		if errors.Is(err, authz.ErrBadCredentials) {
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "authentication error")
		return
	}

	token, err := authz.GenerateIdentityToken(person.Username, tokenTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token generation failed")
		return
	}

	expiresAt := time.Now().UTC().Add(tokenTTL)
	_ = audit.LogEvent(r.Context(), "auth.token.issued", map[string]any{
		"username":   person.Username,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
	a.recordActivity(r.Context(), directory.Activity{
		PersonID:   person.ID,
		Event:      "user.login",
		OccurredAt: time.Now().UTC(),
	})
	if a.stream != nil {
		a.stream.Publish(stream.ActivityEvent{Username: person.Username, Event: "user.login"})
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
