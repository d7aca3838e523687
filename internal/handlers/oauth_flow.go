package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"jugayaprende/internal/security"
)

const (
	oauthStateCookie    = "oauth_state"
	oauthProviderCookie = "oauth_provider"
	oauthCookieTTL      = 10 * time.Minute
)

// OAuthProvider defines provider configuration and metadata
type OAuthProvider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
	// AfterLoginURL is where the browser lands once signed in
	AfterLoginURL string
}

type oauthUserInfo struct {
	Subject string
	Email   string
}

func (p OAuthProvider) configured() bool {
	return p.Config != nil && p.Config.ClientID != "" && p.Config.ClientSecret != ""
}

func (h *AuthHandler) provider(r *http.Request) (string, OAuthProvider, bool) {
	key := r.PathValue("provider")
	provider, ok := h.oauthProviders[key]
	return key, provider, ok && provider.configured()
}

// StartOAuth initiates the OAuth flow for a provider
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	key, provider, ok := h.provider(r)
	if !ok {
		writeError(w, http.StatusNotFound, "OAuth provider not configured")
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, security.CreateTempCookie(r, oauthStateCookie, state, oauthCookieTTL))
	http.SetCookie(w, security.CreateTempCookie(r, oauthProviderCookie, key, oauthCookieTTL))

	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(r, key)
	http.Redirect(w, r, config.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

// OAuthCallback handles the OAuth provider callback
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	key, provider, ok := h.provider(r)
	if !ok {
		writeError(w, http.StatusNotFound, "OAuth provider not configured")
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		writeError(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	if providerCookie, err := r.Cookie(oauthProviderCookie); err == nil && providerCookie.Value != key {
		writeError(w, http.StatusBadRequest, "OAuth provider mismatch")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(r, key)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		h.logger.Warn("oauth code exchange failed", "provider", key, "error", err)
		writeError(w, http.StatusBadRequest, "Failed to exchange OAuth code")
		return
	}

	userInfo, err := fetchOAuthUserInfo(ctx, provider, token)
	if err != nil {
		h.logger.Warn("oauth user info failed", "provider", key, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, oauthStateCookie))
	http.SetCookie(w, security.CreateDeleteCookie(r, oauthProviderCookie))

	session, err := h.authService.OAuthLogin(key, userInfo.Subject, userInfo.Email)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to sign in with oauth", err)
		return
	}
	h.logger.Info("host signed in with oauth", "provider", key, "user_id", session.User.ID)

	http.SetCookie(w, security.CreateAuthCookie(r, session.Token, session.Claims.Expires))
	target := provider.AfterLoginURL
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func fetchOAuthUserInfo(ctx context.Context, provider OAuthProvider, token *oauth2.Token) (oauthUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(provider.UserInfoURL)
	if err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch %s user info", provider.Name)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch %s user info", provider.Name)
	}

	var payload struct {
		ID    string `json:"id"`
		Sub   string `json:"sub"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to parse %s user info", provider.Name)
	}

	subject := payload.ID
	if subject == "" {
		subject = payload.Sub
	}
	if subject == "" {
		return oauthUserInfo{}, errors.New("OAuth account has no subject")
	}
	return oauthUserInfo{Subject: subject, Email: payload.Email}, nil
}

func (h *AuthHandler) oauthRedirectURL(r *http.Request, providerKey string) string {
	baseURL := strings.TrimSpace(h.oauthRedirectBaseURL)
	if baseURL == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return fmt.Sprintf("%s/auth/%s/callback", strings.TrimRight(baseURL, "/"), providerKey)
}
