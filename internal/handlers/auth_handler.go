package handlers

import (
	"log/slog"
	"net/http"

	"jugayaprende/internal/models"
	"jugayaprende/internal/security"
	"jugayaprende/internal/service"
)

// AuthHandler handles host authentication requests
type AuthHandler struct {
	authService          *service.AuthService
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
	logger               *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
		logger:               logger,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	User      *models.User `json:"user"`
	CSRFToken string       `json:"csrfToken"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return
	}

	session, err := h.authService.Register(req.Username, req.Password)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to register user", err)
		return
	}
	h.logger.Info("host registered", "user_id", session.User.ID, "username", session.User.Username)

	http.SetCookie(w, security.CreateAuthCookie(r, session.Token, session.Claims.Expires))
	writeJSON(w, http.StatusCreated, authResponse{User: session.User, CSRFToken: session.CSRFToken})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return
	}

	session, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to log in", err)
		return
	}

	http.SetCookie(w, security.CreateAuthCookie(r, session.Token, session.Claims.Expires))
	writeJSON(w, http.StatusOK, authResponse{User: session.User, CSRFToken: session.CSRFToken})
}

// Logout handles POST /auth/logout. Tokens are stateless, so this only clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, security.AuthCookieName))
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me and hands the client a fresh CSRF token
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	claims, _ := r.Context().Value(ClaimsContextKey).(security.TokenClaims)

	csrf, err := h.authService.CSRFToken(claims)
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, ErrInternalServerError, "failed to generate csrf token", err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: user, CSRFToken: csrf})
}
