package events

import (
	"context"
	"errors"
	"sync"
)

// ErrUnknownKind is returned for kinds outside the event vocabulary
var ErrUnknownKind = errors.New("unknown event kind")

// Handler handles a raised event. The payload is one of the payload types in
// this package, by value or by pointer.
type Handler func(ctx context.Context, payload any) error

// Source is anything that handlers can subscribe to.
type Source interface {
	Subscribe(kind Kind, handler Handler)
}

// Bus is an in-process, synchronous event source. Raise runs the handlers
// for a kind on the caller's goroutine, in subscription order, and returns
// the first handler error.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
}

// Ensure Bus implements Source
var _ Source = (*Bus)(nil)

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[Kind][]Handler)}
}

// Subscribe adds a handler for kind
func (b *Bus) Subscribe(kind Kind, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], handler)
}

// Subscribers returns the number of handlers subscribed to kind
func (b *Bus) Subscribers(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[kind])
}

// Raise delivers payload to every handler subscribed to kind.
// A kind nobody subscribed to is a no-op.
func (b *Bus) Raise(ctx context.Context, kind Kind, payload any) error {
	if !kind.IsAKind() {
		return ErrUnknownKind
	}

	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[kind]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, payload); err != nil {
			return err
		}
	}
	return nil
}

// Raiser is anything events can be raised on
type Raiser interface {
	Raise(ctx context.Context, kind Kind, payload any) error
}

// Ensure Bus implements Raiser
var _ Raiser = (*Bus)(nil)
