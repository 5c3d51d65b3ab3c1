package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/alexedwards/argon2id"

	"github.com/thirdwave/contentapi/internal/config"
	"github.com/thirdwave/contentapi/internal/server"
)

// maxRequestBodySize is the maximum allowed size for JSON request bodies
// (1 MB).
const maxRequestBodySize = 1 << 20

// Handler provides the HTTP handler for the token endpoint.
type Handler struct {
	cfg       *config.APIConfig
	jwtSecret string
}

// NewHandler creates an auth Handler over the configured API users.
func NewHandler(cfg *config.APIConfig, jwtSecret string) *Handler {
	return &Handler{
		cfg:       cfg,
		jwtSecret: jwtSecret,
	}
}

// tokenRequest is the expected JSON body for POST /auth/token.
type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token handles POST /auth/token. It validates the credentials against the
// configured users and returns a signed access token.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.ErrorMessage(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if req.Username == "" || req.Password == "" {
		server.ErrorMessage(w, http.StatusBadRequest, "Username and password are required.")
		return
	}

	user, ok := h.cfg.UserByName(req.Username)
	if !ok {
		server.ErrorMessage(w, http.StatusUnauthorized, "Invalid username or password.")
		return
	}

	match, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil || !match {
		server.ErrorMessage(w, http.StatusUnauthorized, "Invalid username or password.")
		return
	}

	token, err := CreateAccessToken(user.Username, user.Roles, h.jwtSecret)
	if err != nil {
		slog.Error("failed to create access token", "username", user.Username, "error", err)
		server.ErrorMessage(w, http.StatusInternalServerError, "An internal error occurred.")
		return
	}

	server.JSON(w, http.StatusOK, map[string]string{
		"access_token": token,
	})
}
