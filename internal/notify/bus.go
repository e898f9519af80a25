package notify

import (
	"fmt"
	"sync"
	"time"

	"actionTracker/internal/logger"

	"go.uber.org/zap"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a transient toast.
type Notification struct {
	Level     Level
	Message   string
	CreatedAt time.Time
}

// Subscriber is invoked inline on every Publish.
type Subscriber func(Notification)

const defaultHistory = 50

// Bus dispatches toasts to subscribers and keeps the latest ones in memory.
type Bus struct {
	mu          sync.Mutex
	subscribers []Subscriber
	history     []Notification
	limit       int
	now         func() time.Time
}

func NewBus() *Bus {
	return &Bus{
		limit: defaultHistory,
		now:   time.Now,
	}
}

func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

func (b *Bus) Publish(n Notification) {
	b.mu.Lock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = b.now()
	}
	b.history = append(b.history, n)
	if len(b.history) > b.limit {
		b.history = b.history[len(b.history)-b.limit:]
	}
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	logger.Debug("Notify: Уведомление", zap.String("level", string(n.Level)), zap.String("message", n.Message))

	for _, fn := range subs {
		fn(n)
	}
}

func (b *Bus) Infof(format string, args ...any) {
	b.Publish(Notification{Level: LevelInfo, Message: fmt.Sprintf(format, args...)})
}

func (b *Bus) Warnf(format string, args ...any) {
	b.Publish(Notification{Level: LevelWarning, Message: fmt.Sprintf(format, args...)})
}

func (b *Bus) Errorf(format string, args ...any) {
	b.Publish(Notification{Level: LevelError, Message: fmt.Sprintf(format, args...)})
}

// Last returns the most recent toast, false if nothing was published.
func (b *Bus) Last() (Notification, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.history) == 0 {
		return Notification{}, false
	}
	return b.history[len(b.history)-1], true
}

// History returns the kept toasts, newest first.
func (b *Bus) History() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notification, 0, len(b.history))
	for i := len(b.history) - 1; i >= 0; i-- {
		out = append(out, b.history[i])
	}
	return out
}

func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = nil
}
