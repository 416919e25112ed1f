package notify

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Kind classifies a user-facing notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notifier is a fire-and-forget sink for transient user notifications.
// Producers never read back from it.
type Notifier interface {
	Notify(message string, kind Kind)
}

type logNotifier struct {
	log *logrus.Logger
}

// NewLogNotifier routes notifications to the application log.
func NewLogNotifier(log *logrus.Logger) Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) Notify(message string, kind Kind) {
	if n.log == nil {
		return
	}
	entry := n.log.WithField("kind", string(kind))
	switch kind {
	case KindError:
		entry.Warn(message)
	default:
		entry.Info(message)
	}
}

// Notification is a queued message with its kind.
type Notification struct {
	Message string `json:"message"`
	Kind    Kind   `json:"kind"`
}

// Memory accumulates notifications so an API response can carry them back to
// the client as toast payloads.
type Memory struct {
	mu      sync.Mutex
	pending []Notification
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Notify(message string, kind Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, Notification{Message: message, Kind: kind})
}

// Drain returns and clears all queued notifications.
func (m *Memory) Drain() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.pending
	m.pending = nil
	return out
}
