// Package notify dispatches recorded expenses to registered handlers.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"budget/internal/core"
)

// Handler is invoked once for every recorded expense.
type Handler func(ctx context.Context, e core.Expense) error

// Notifier keeps handlers in registration order. There is no way to remove
// a handler once subscribed.
type Notifier struct {
	mu       sync.RWMutex
	handlers []Handler
}

func New() *Notifier {
	return &Notifier{}
}

// Subscribe registers h. Nil handlers are ignored.
func (n *Notifier) Subscribe(h Handler) {
	if h == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers = append(n.handlers, h)
}

// Len returns the number of registered handlers.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.handlers)
}

// Notify calls every handler synchronously in registration order. A handler
// that fails or panics does not stop the ones after it; all failures are
// joined into the returned error.
func (n *Notifier) Notify(ctx context.Context, e core.Expense) error {
	n.mu.RLock()
	handlers := append([]Handler(nil), n.handlers...)
	n.mu.RUnlock()

	var errs []error
	for i, h := range handlers {
		if err := call(ctx, h, e); err != nil {
			errs = append(errs, fmt.Errorf("handler %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// ErrHandlerPanic wraps a value recovered from a panicking handler.
var ErrHandlerPanic = errors.New("handler panicked")

func call(ctx context.Context, h Handler, e core.Expense) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return h(ctx, e)
}
