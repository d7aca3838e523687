package handlers

import (
	"log/slog"
	"net/http"

	"jugayaprende/internal/game"
	"jugayaprende/internal/service"
)

// GameHandler serves live sessions to hosts and players
type GameHandler struct {
	sessionService *service.SessionService
	logger         *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(sessionService *service.SessionService, logger *slog.Logger) *GameHandler {
	return &GameHandler{sessionService: sessionService, logger: logger}
}

type createGameRequest struct {
	ConfigID int64 `json:"configId"`
}

type joinRequest struct {
	Name string `json:"name"`
}

// CreateGame handles POST /games
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return
	}

	view, err := h.sessionService.CreateSession(r.Context(), GetUserFromContext(r.Context()).ID, req.ConfigID)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to create game", err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// GetGame handles GET /games/{code}; the host sees answers, everyone else does not
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	var viewerID int64
	if user := GetUserFromContext(r.Context()); user != nil {
		viewerID = user.ID
	}

	view, err := h.sessionService.GetSession(r.Context(), r.PathValue("code"), viewerID)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to get game", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// JoinGame handles POST /games/{code}/join
func (h *GameHandler) JoinGame(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return
	}

	view, err := h.sessionService.Join(r.Context(), r.PathValue("code"), req.Name)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to join game", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// StartGame handles POST /games/{code}/start
func (h *GameHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionService.StartSession(r.Context(), r.PathValue("code"), GetUserFromContext(r.Context()).ID)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to start game", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateGame handles PUT /games/{code}
func (h *GameHandler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	var update game.HostUpdate
	if err := readJSON(w, r, &update); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return
	}

	view, err := h.sessionService.UpdateSession(r.Context(), r.PathValue("code"), GetUserFromContext(r.Context()).ID, update)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to update game", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// FinishGame handles POST /games/{code}/finish
func (h *GameHandler) FinishGame(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionService.FinishSession(r.Context(), r.PathValue("code"), GetUserFromContext(r.Context()).ID)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to finish game", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Answer handles POST /games/{code}/answer
func (h *GameHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var action game.Action
	if err := readJSON(w, r, &action); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return
	}

	result, err := h.sessionService.Answer(r.Context(), r.PathValue("code"), action)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to apply answer", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
