package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(GetRequestID(r.Context())))
})

// TestRequestID тестирует сквозной id запроса
func TestRequestID(t *testing.T) {
	h := RequestID(ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-1", w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
}

// TestAPIKey тестирует проверку ключа
func TestAPIKey(t *testing.T) {
	tests := []struct {
		name           string
		key            string
		header         string
		expectedStatus int
	}{
		{name: "valid key", key: "secret", header: "secret", expectedStatus: http.StatusOK},
		{name: "wrong key", key: "secret", header: "guess", expectedStatus: http.StatusUnauthorized},
		{name: "missing key", key: "secret", header: "", expectedStatus: http.StatusUnauthorized},
		{name: "check disabled", key: "", header: "", expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := APIKey(tt.key)(ok)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(APIKeyHeader, tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error": "UNAUTHORIZED", "message": "invalid api key", "request_id": ""}`, w.Body.String())
			}
		})
	}
}

// TestRateLimit тестирует ограничение частоты
func TestRateLimit(t *testing.T) {
	h := RateLimit(2)(ok)

	send := func(addr, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		if key != "" {
			req.Header.Set(APIKeyHeader, key)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	codes := make([]int, 0, 3)
	for range 3 {
		codes = append(codes, send("10.0.0.1:5555", "").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := send("10.0.0.1:5555", "")
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", decodeError(t, w)["error"])
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = send("10.0.0.2:5555", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	// с ключом счёт идёт по ключу, а не по адресу
	assert.Equal(t, http.StatusOK, send("10.0.0.1:5555", "secret").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.3:5555", "secret").Code)
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.4:5555", "secret").Code)
}

// TestLimiter тестирует сброс окна и очистку истёкших записей
func TestLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	l := newLimiter(1, time.Minute, func() time.Time { return now })

	_, _, allowed := l.allow("a")
	assert.True(t, allowed)
	_, resetAt, allowed := l.allow("a")
	assert.False(t, allowed)
	assert.Equal(t, now.Add(time.Minute), resetAt)

	for _, key := range []string{"b", "c", "d"} {
		_, _, allowed = l.allow(key)
		require.True(t, allowed)
	}
	assert.Equal(t, 4, l.size())

	now = now.Add(time.Minute)
	remaining, _, allowed := l.allow("a")
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, 1, l.size())
}

func (l *limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
