package auth

import (
	"context"
	"sync"
	"time"
)

// EventKind enumerates the lifecycle notifications emitted by the
// credential validator and the token service.
type EventKind string

const (
	EventBeforeValidation  EventKind = "auth.validation.before"
	EventValidationSuccess EventKind = "auth.validation.success"
	EventValidationFailure EventKind = "auth.validation.failure"
	EventUserLoggedIn      EventKind = "auth.login.token_issued"
)

// Event is the tagged union of notification payloads. Each concrete
// payload reports its own kind so listeners can be registered per kind
// without type switching on publish.
type Event interface {
	Kind() EventKind
}

// BeforeValidationEvent carries the raw credentials about to be checked.
// It exists for observability only; listeners cannot veto validation.
// Listeners must not log or persist the password.
type BeforeValidationEvent struct {
	Email    string
	Password string
}

// Kind implements Event.
func (BeforeValidationEvent) Kind() EventKind { return EventBeforeValidation }

// ValidationSuccessEvent carries the identity that passed validation.
type ValidationSuccessEvent struct {
	Identity Identity
}

// Kind implements Event.
func (ValidationSuccessEvent) Kind() EventKind { return EventValidationSuccess }

// ValidationFailureEvent carries the causal error of a failed
// validation. The error never crosses the Validate boundary itself.
type ValidationFailureEvent struct {
	Err error
}

// Kind implements Event.
func (ValidationFailureEvent) Kind() EventKind { return EventValidationFailure }

// UserLoggedInEvent carries a freshly minted access token.
type UserLoggedInEvent struct {
	Subject   string
	Token     string
	ExpiresAt time.Time
}

// Kind implements Event.
func (UserLoggedInEvent) Kind() EventKind { return EventUserLoggedIn }

// Listener consumes a single published event. Listeners run
// synchronously on the publishing goroutine, in registration order.
type Listener func(ctx context.Context, evt Event)

// Notifier is a typed publish/subscribe fan-out. Registration is
// additive; there is no unsubscribe. A panicking listener is recovered
// and logged so observability can never abort the auth path.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[EventKind][]Listener
	logger    Logger
}

// NewNotifier returns an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{
		listeners: make(map[EventKind][]Listener),
		logger:    defLogger{},
	}
}

func (n *Notifier) WithLogger(logger Logger) *Notifier {
	if logger != nil {
		n.logger = logger
	}
	return n
}

// Subscribe registers a listener for the given event kind.
func (n *Notifier) Subscribe(kind EventKind, l Listener) {
	if l == nil {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners[kind] = append(n.listeners[kind], l)
}

// Publish dispatches the event to every listener registered for its
// kind, in registration order. Publish never fails.
func (n *Notifier) Publish(ctx context.Context, evt Event) {
	if evt == nil {
		return
	}

	n.mu.RLock()
	registered := n.listeners[evt.Kind()]
	listeners := make([]Listener, len(registered))
	copy(listeners, registered)
	n.mu.RUnlock()

	for _, l := range listeners {
		n.dispatch(ctx, l, evt)
	}
}

func (n *Notifier) dispatch(ctx context.Context, l Listener, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("event listener panicked", "kind", evt.Kind(), "panic", r)
		}
	}()

	l(ctx, evt)
}

func normalizeNotifier(n *Notifier) *Notifier {
	if n == nil {
		return NewNotifier()
	}
	return n
}
