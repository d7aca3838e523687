package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"jugayaprende/internal/service"
)

// ConfigHandler serves question set authoring
type ConfigHandler struct {
	configService *service.ConfigService
	logger        *slog.Logger
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(configService *service.ConfigService, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{configService: configService, logger: logger}
}

// pathID parses the {id} path value; ok is false when it is not a positive integer
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// CreateConfig handles POST /configs
func (h *ConfigHandler) CreateConfig(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var input service.ConfigInput
	if err := readJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return
	}

	cfg, err := h.configService.CreateConfig(user.ID, input)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to create config", err)
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

// ListConfigs handles GET /configs
func (h *ConfigHandler) ListConfigs(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	configs, err := h.configService.ListConfigs(user.ID)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to list configs", err)
		return
	}
	writeJSON(w, http.StatusOK, configs)
}

// GetConfig handles GET /configs/{id}
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, ErrNotFound)
		return
	}

	cfg, err := h.configService.GetConfig(id, GetUserFromContext(r.Context()).ID)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to get config", err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// UpdateConfig handles PUT /configs/{id}
func (h *ConfigHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, ErrNotFound)
		return
	}

	var input service.ConfigInput
	if err := readJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return
	}

	cfg, err := h.configService.UpdateConfig(id, GetUserFromContext(r.Context()).ID, input)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to update config", err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// DeleteConfig handles DELETE /configs/{id}
func (h *ConfigHandler) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, ErrNotFound)
		return
	}

	if err := h.configService.DeleteConfig(id, GetUserFromContext(r.Context()).ID); err != nil {
		respondWithServiceError(w, h.logger, "failed to delete config", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
