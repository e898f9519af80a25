package handlers

import (
	"errors"
	"net/http"

	"actionTracker/internal/logger"
	"actionTracker/internal/service"

	"go.uber.org/zap"
)

const (
	codeBadRequest  = "BAD_REQUEST"
	codeUnsupported = "UNSUPPORTED_MEDIA_TYPE"
	codeInternal    = "INTERNAL_ERROR"
)

func handleBusinessError(w http.ResponseWriter, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)
	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	responseWithJSON(w, statusCode,
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", businessErr.Details),
	)
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleError отвечает бизнес-ошибкой или 500
func handleError(w http.ResponseWriter, err error, operation string) {
	if handleBusinessError(w, err) {
		return
	}
	logger.Error("HTTP: Ошибка хранилища", err, zap.String("operation", operation))
	responseWithError(w, http.StatusInternalServerError, codeInternal, err.Error())
}
