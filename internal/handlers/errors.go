package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"jugayaprende/internal/game"
	"jugayaprende/internal/lock"
	"jugayaprende/internal/models"
	"jugayaprende/internal/service"
	"jugayaprende/internal/validation"
)

func respondWithError(w http.ResponseWriter, logger *slog.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		logger.Error(logMsg, "error", err)
	}
	writeError(w, status, userMsg)
}

// respondWithServiceError maps an error from the service layer to a response.
// Anything unrecognised is logged and reported as a 500.
func respondWithServiceError(w http.ResponseWriter, logger *slog.Logger, logMsg string, err error) {
	var (
		actionErr     *game.ActionError
		validationErr validation.ValidationError
	)
	switch {
	case errors.As(err, &actionErr):
		writeError(w, actionStatus(actionErr.Kind), actionErr.Message)
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrConfigNotFound):
		writeError(w, http.StatusNotFound, ErrNotFound)
	case errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusForbidden, ErrForbidden)
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, ErrUnauthorized)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "Username already taken")
	case errors.Is(err, models.ErrInvalidQuestions), errors.Is(err, models.ErrUnknownGameType):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, lock.ErrLockTimeout):
		writeError(w, http.StatusServiceUnavailable, ErrSessionBusy)
	default:
		respondWithError(w, logger, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}

func actionStatus(kind game.ErrorKind) int {
	switch kind {
	case game.KindForbidden:
		return http.StatusForbidden
	case game.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}
