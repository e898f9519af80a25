package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"actionTracker/internal/logger"

	"go.uber.org/zap"
)

type window struct {
	count   int
	resetAt time.Time
}

// limiter считает запросы в окне фиксированной длины на каждый ключ.
// Истёкшие окна выметаются не чаще одного раза за окно.
type limiter struct {
	mu        sync.Mutex
	rpm       int
	length    time.Duration
	now       func() time.Time
	windows   map[string]*window
	nextSweep time.Time
}

func newLimiter(rpm int, length time.Duration, now func() time.Time) *limiter {
	if now == nil {
		now = time.Now
	}
	return &limiter{
		rpm:     rpm,
		length:  length,
		now:     now,
		windows: make(map[string]*window),
	}
}

// allow регистрирует запрос и возвращает остаток, время сброса и разрешение.
func (l *limiter) allow(key string) (remaining int, resetAt time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	win, exists := l.windows[key]
	if !exists || !now.Before(win.resetAt) {
		win = &window{resetAt: now.Add(l.length)}
		l.windows[key] = win
	}
	if win.count >= l.rpm {
		return 0, win.resetAt, false
	}
	win.count++
	return l.rpm - win.count, win.resetAt, true
}

func (l *limiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for key, win := range l.windows {
		if !now.Before(win.resetAt) {
			delete(l.windows, key)
		}
	}
	l.nextSweep = now.Add(l.length)
}

// limitKey: запросы с ключом считаются по ключу, остальные по IP.
func limitKey(r *http.Request) string {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return "key:" + key
	}
	return "ip:" + clientIP(r)
}

// RateLimit ограничивает число запросов в минуту на ключ или IP.
func RateLimit(rpm int) func(http.Handler) http.Handler {
	return rateLimit(newLimiter(rpm, time.Minute, nil))
}

func rateLimit(l *limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, resetAt, ok := l.allow(limitKey(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.rpm))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !ok {
				logger.Warn("HTTP: Превышен лимит запросов",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("client_ip", clientIP(r)))
				writeError(w, r, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests, try again later.",
					map[string]any{"retry_after": int(resetAt.Sub(l.now()).Seconds())})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
