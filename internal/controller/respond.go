package controller

import (
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"otrabotki-service/internal/apperror"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError переводит доменную ошибку в HTTP-статус.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		status = http.StatusNotFound
		message = err.Error()
	case apperror.KindConflict:
		status = http.StatusConflict
		message = err.Error()
	case apperror.KindPolicy, apperror.KindValidation:
		status = http.StatusBadRequest
		message = err.Error()
	case apperror.KindUnauthorized:
		status = http.StatusUnauthorized
		message = err.Error()
	case apperror.KindForbidden:
		status = http.StatusForbidden
		message = err.Error()
	default:
		logger.Error("Unhandled error", zap.Error(err))
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.Validation("invalid request body")
	}
	return nil
}
