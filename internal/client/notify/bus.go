// Package notify implements the process-wide toast queue. Notifications are
// appended in insertion order and auto-dismissed by per-item timers; a
// duration of zero keeps the notification until it is dismissed explicitly.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// Default auto-dismiss durations per notification type.
const (
	DefaultInfoDuration    = 3 * time.Second
	DefaultSuccessDuration = 3 * time.Second
	DefaultWarningDuration = 4 * time.Second
	DefaultErrorDuration   = 5 * time.Second
)

type Notification struct {
	ID       string
	Type     Type
	Message  string
	Duration time.Duration
}

// Bus owns the notification queue. Safe for concurrent use: dismissal may
// race between an explicit call and the auto-dismiss timer, so removal is
// idempotent.
type Bus struct {
	mu     sync.Mutex
	items  []Notification
	onPush func(Notification)
}

func NewBus() *Bus {
	return &Bus{}
}

// OnPush registers a callback invoked after each successful Push. The CLI
// uses it to print toasts as they arrive. The callback runs on the pushing
// goroutine and must not call back into the bus.
func (b *Bus) OnPush(fn func(Notification)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onPush = fn
}

// Push appends a notification and schedules its removal when duration > 0.
// Returns the notification id.
func (b *Bus) Push(t Type, message string, duration time.Duration) string {
	n := Notification{
		ID:       uuid.NewString(),
		Type:     t,
		Message:  message,
		Duration: duration,
	}

	b.mu.Lock()
	b.items = append(b.items, n)
	fn := b.onPush
	b.mu.Unlock()

	if fn != nil {
		fn(n)
	}

	if duration > 0 {
		time.AfterFunc(duration, func() {
			b.Dismiss(n.ID)
		})
	}

	return n.ID
}

// Dismiss removes the notification with the given id. Removing an id that is
// already gone is a no-op.
func (b *Bus) Dismiss(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, n := range b.items {
		if n.ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return
		}
	}
}

// Clear drops all queued notifications. Timers already scheduled become
// no-ops through idempotent dismissal.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = nil
}

// Snapshot returns a copy of the queue in insertion order.
func (b *Bus) Snapshot() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notification, len(b.items))
	copy(out, b.items)
	return out
}

func (b *Bus) Info(message string) string {
	return b.Push(TypeInfo, message, DefaultInfoDuration)
}

func (b *Bus) Success(message string) string {
	return b.Push(TypeSuccess, message, DefaultSuccessDuration)
}

func (b *Bus) Warning(message string) string {
	return b.Push(TypeWarning, message, DefaultWarningDuration)
}

func (b *Bus) Error(message string) string {
	return b.Push(TypeError, message, DefaultErrorDuration)
}
