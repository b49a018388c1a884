package identity

import (
	"sync"

	"github.com/google/uuid"
)

// EventKind discriminates auth-state transitions.
type EventKind int

const (
	EventSignedIn EventKind = iota
	EventSignedOut
	EventTokenRotated
)

func (k EventKind) String() string {
	switch k {
	case EventSignedIn:
		return "signed_in"
	case EventSignedOut:
		return "signed_out"
	case EventTokenRotated:
		return "token_rotated"
	}
	return "unknown"
}

// Event is the typed payload delivered to subscribers on each transition.
type Event struct {
	Kind EventKind

	// Credential is set for EventSignedIn.
	Credential *Credential

	// AccessToken is set for EventTokenRotated.
	AccessToken string
}

// Broadcaster fans events out to subscribers. Providers embed it to get the
// Subscribe side of the Provider contract.
type Broadcaster struct {
	lock      sync.RWMutex
	listeners map[string]func(Event)
}

func (b *Broadcaster) Subscribe(listener func(Event)) func() {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.listeners == nil {
		b.listeners = make(map[string]func(Event))
	}
	id := uuid.New().String()
	b.listeners[id] = listener

	return func() {
		b.lock.Lock()
		defer b.lock.Unlock()
		delete(b.listeners, id)
	}
}

// Publish delivers the event to every subscriber. Listeners run on the
// caller's goroutine and must not hold the publishing provider's lock, so
// providers publish only after releasing their own state locks.
func (b *Broadcaster) Publish(event Event) {
	b.lock.RLock()
	listeners := make([]func(Event), 0, len(b.listeners))
	for _, listener := range b.listeners {
		listeners = append(listeners, listener)
	}
	b.lock.RUnlock()

	for _, listener := range listeners {
		listener(event)
	}
}
