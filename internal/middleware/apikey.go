package middleware

import (
	"crypto/subtle"
	"net/http"

	"actionTracker/internal/logger"

	"go.uber.org/zap"
)

// APIKey отклоняет запросы без правильного x-api-key. Пустой ключ отключает проверку.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			got := r.Header.Get(APIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				logger.Warn("HTTP: Неверный API ключ",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("client_ip", clientIP(r)),
					zap.Bool("header_present", got != ""))
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid api key", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
