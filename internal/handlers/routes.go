package handlers

import (
	"log/slog"
	"net/http"
)

// Router groups everything NewRouter needs to build the HTTP surface
type Router struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Configs    *ConfigHandler
	Games      *GameHandler
	Health     *HealthHandler
	Metrics    http.Handler
	Logger     *slog.Logger
}

// NewRouter registers every route and wraps the mux in panic recovery and request logging
func NewRouter(rt Router) http.Handler {
	m := rt.Middleware
	host := func(h http.HandlerFunc) http.HandlerFunc {
		return m.RequireHost(m.CSRFProtect(h))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.Health.Health)
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}

	// Auth
	mux.HandleFunc("POST /auth/register", m.RateLimit(rt.Auth.Register))
	mux.HandleFunc("POST /auth/login", m.RateLimit(rt.Auth.Login))
	mux.HandleFunc("POST /auth/logout", rt.Auth.Logout)
	mux.HandleFunc("GET /auth/me", m.RequireHost(rt.Auth.Me))
	mux.HandleFunc("GET /auth/{provider}/start", rt.Auth.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", rt.Auth.OAuthCallback)

	// Question sets
	mux.HandleFunc("POST /configs", host(rt.Configs.CreateConfig))
	mux.HandleFunc("GET /configs", m.RequireHost(rt.Configs.ListConfigs))
	mux.HandleFunc("GET /configs/{id}", m.RequireHost(rt.Configs.GetConfig))
	mux.HandleFunc("PUT /configs/{id}", host(rt.Configs.UpdateConfig))
	mux.HandleFunc("DELETE /configs/{id}", host(rt.Configs.DeleteConfig))

	// Live games
	mux.HandleFunc("POST /games", host(rt.Games.CreateGame))
	mux.HandleFunc("GET /games/{code}", m.OptionalHost(rt.Games.GetGame))
	mux.HandleFunc("PUT /games/{code}", host(rt.Games.UpdateGame))
	mux.HandleFunc("POST /games/{code}/start", host(rt.Games.StartGame))
	mux.HandleFunc("POST /games/{code}/finish", host(rt.Games.FinishGame))
	mux.HandleFunc("POST /games/{code}/join", m.RateLimit(rt.Games.JoinGame))
	mux.HandleFunc("POST /games/{code}/answer", rt.Games.Answer)

	return Logging(rt.Logger, Recover(rt.Logger, mux))
}
