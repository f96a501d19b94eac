// Package observable provides change notification for the GPX object model.
//
// Every value that can change and is owned by another value implements
// Observable. Owners subscribe to the values they hold and re-raise any
// change as a change of their own property, so a single subscription on a
// document sees edits made anywhere below it.
package observable

import (
	"errors"
	"slices"
)

var (
	// ErrFrozen is the panic value (wrapped) when a frozen value is mutated.
	ErrFrozen = errors.New("observable: value is read-only")

	// ErrNotSuspended is the panic value (wrapped) when Resume is called on
	// an element that is not suspended.
	ErrNotSuspended = errors.New("observable: observation is not suspended")
)

// Op identifies what kind of change an Event describes.
type Op uint8

const (
	OpChange  Op = iota // a named property (or an item of a collection) changed
	OpAdd               // an item was inserted into a collection
	OpRemove            // an item was removed from a collection
	OpReplace           // an item of a collection was replaced
)

func (o Op) String() string {
	switch o {
	case OpChange:
		return "change"
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	case OpReplace:
		return "replace"
	}
	return "unknown"
}

// Event describes a single change.
type Event struct {
	Sender   any    // The value that raised the event.
	Property string // Property name for elements, empty for collections and fragments.
	Op       Op
	Index    int // Item index for collection events, -1 otherwise.
	Item     any // The item added, removed or changed, nil for property changes.
}

// Handler receives change events.
type Handler func(Event)

// Subscription identifies a registered handler.
type Subscription uint64

// Observable is implemented by everything an element can own and listen to.
type Observable interface {
	Subscribe(h Handler) Subscription
	Unsubscribe(s Subscription) bool
}

type handlerEntry struct {
	id Subscription
	h  Handler
}

// Notifier is an ordered list of handlers. The zero value is ready to use.
type Notifier struct {
	last     Subscription
	handlers []handlerEntry
}

// Subscribe registers h and returns a handle for Unsubscribe.
func (n *Notifier) Subscribe(h Handler) Subscription {
	n.last++
	n.handlers = append(n.handlers, handlerEntry{id: n.last, h: h})
	return n.last
}

// Unsubscribe removes the handler registered under s.
func (n *Notifier) Unsubscribe(s Subscription) bool {
	i := slices.IndexFunc(n.handlers, func(e handlerEntry) bool { return e.id == s })
	if i < 0 {
		return false
	}
	n.handlers = slices.Delete(n.handlers, i, i+1)
	return true
}

// Listeners returns the number of registered handlers.
func (n *Notifier) Listeners() int { return len(n.handlers) }

// Notify calls every handler in registration order. Handlers may subscribe
// or unsubscribe while being notified; such changes apply to the next event.
func (n *Notifier) Notify(e Event) {
	if len(n.handlers) == 0 {
		return
	}
	for _, entry := range slices.Clone(n.handlers) {
		entry.h(e)
	}
}
