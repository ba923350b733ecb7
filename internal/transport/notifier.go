package transport

import (
	"sync"

	"github.com/pickmart/pickmart-go/internal/logger"
)

// SessionListener is the hosting application's hook for session expiry,
// e.g. prompting the user to log in again. It decouples the HTTP layer from
// whatever state management the host uses.
type SessionListener interface {
	SessionExpired(err error)
}

// SessionListenerFunc adapts a plain function to SessionListener.
type SessionListenerFunc func(err error)

func (f SessionListenerFunc) SessionExpired(err error) {
	f(err)
}

// notifier holds at most one listener and fires it once per failed refresh
// cycle. A panicking listener is contained here: the queued requests still
// have to be rejected in an orderly way.
type notifier struct {
	mu       sync.Mutex
	listener SessionListener
	logger   logger.Logger
}

func (n *notifier) register(l SessionListener) {
	n.mu.Lock()
	n.listener = l
	n.mu.Unlock()
}

func (n *notifier) notify(err error) {
	n.mu.Lock()
	listener := n.listener
	n.mu.Unlock()

	if listener == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Session listener panicked", "panic", r)
		}
	}()

	listener.SessionExpired(err)
}
