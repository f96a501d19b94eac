package observable

import (
	"fmt"
	"iter"
	"slices"
)

// Collection is an ordered list that reports every insertion and removal as
// its own event. Clear removes items one at a time so that listeners always
// learn which items left; there is no bulk reset event. Items implementing
// Observable are listened to while the collection itself has listeners, and
// their changes are re-raised as OpChange.
type Collection[T any] struct {
	Notifier

	items  []T
	subs   []*itemSub // parallel to items
	frozen bool
}

// itemSub is the subscription on one item together with the item's current
// index, kept up to date on insertion and removal.
type itemSub struct {
	sub   Subscription
	index int
}

// NewCollection returns a collection holding items.
func NewCollection[T any](items ...T) *Collection[T] {
	c := new(Collection[T])
	c.Append(items...)
	return c
}

// Subscribe registers h. The first listener makes the collection subscribe
// to its items.
func (c *Collection[T]) Subscribe(h Handler) Subscription {
	s := c.Notifier.Subscribe(h)
	if c.Listeners() == 1 {
		for i, v := range c.items {
			c.listen(v, c.subs[i])
		}
	}
	return s
}

// Unsubscribe removes the handler registered under s. Once the last listener
// is gone the items are no longer listened to.
func (c *Collection[T]) Unsubscribe(s Subscription) bool {
	if !c.Notifier.Unsubscribe(s) {
		return false
	}
	if c.Listeners() == 0 {
		for i, v := range c.items {
			c.unlisten(v, c.subs[i])
		}
	}
	return true
}

// Len returns the number of items.
func (c *Collection[T]) Len() int { return len(c.items) }

// At returns the item at index i.
func (c *Collection[T]) At(i int) T { return c.items[i] }

// All iterates over index and item pairs.
func (c *Collection[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range c.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Items returns a copy of the items.
func (c *Collection[T]) Items() []T { return slices.Clone(c.items) }

// Append adds items to the end.
func (c *Collection[T]) Append(items ...T) {
	for _, v := range items {
		c.Insert(len(c.items), v)
	}
}

// Insert places v at index i.
func (c *Collection[T]) Insert(i int, v T) {
	c.checkWritable("insert")
	c.items = slices.Insert(c.items, i, v)
	c.subs = slices.Insert(c.subs, i, &itemSub{})
	c.reindex(i)
	if c.Listeners() > 0 {
		c.listen(v, c.subs[i])
	}
	c.Notify(Event{Sender: c, Op: OpAdd, Index: i, Item: v})
}

// Set replaces the item at index i.
func (c *Collection[T]) Set(i int, v T) {
	c.checkWritable("set")
	c.unlisten(c.items[i], c.subs[i])
	c.items[i] = v
	if c.Listeners() > 0 {
		c.listen(v, c.subs[i])
	}
	c.Notify(Event{Sender: c, Op: OpReplace, Index: i, Item: v})
}

// RemoveAt removes the item at index i and returns it.
func (c *Collection[T]) RemoveAt(i int) T {
	c.checkWritable("remove")
	v := c.items[i]
	c.unlisten(v, c.subs[i])
	c.items = slices.Delete(c.items, i, i+1)
	c.subs = slices.Delete(c.subs, i, i+1)
	c.reindex(i)
	c.Notify(Event{Sender: c, Op: OpRemove, Index: i, Item: v})
	return v
}

// RemoveFunc removes every item for which del returns true and reports how
// many were removed.
func (c *Collection[T]) RemoveFunc(del func(T) bool) int {
	var n int
	for i := len(c.items) - 1; i >= 0; i-- {
		if del(c.items[i]) {
			c.RemoveAt(i)
			n++
		}
	}
	return n
}

// Clear removes all items, last first, one event per item.
func (c *Collection[T]) Clear() {
	for i := len(c.items) - 1; i >= 0; i-- {
		c.RemoveAt(i)
	}
}

// Freeze makes the collection read-only.
func (c *Collection[T]) Freeze() { c.frozen = true }

// Frozen reports whether the collection is read-only.
func (c *Collection[T]) Frozen() bool { return c.frozen }

func (c *Collection[T]) checkWritable(op string) {
	if c.frozen {
		panic(fmt.Errorf("collection %s: %w", op, ErrFrozen))
	}
}

func (c *Collection[T]) reindex(from int) {
	for i := from; i < len(c.subs); i++ {
		c.subs[i].index = i
	}
}

func (c *Collection[T]) listen(v T, s *itemSub) {
	o, ok := any(v).(Observable)
	if !ok || o == nil || s.sub != 0 {
		return
	}
	s.sub = o.Subscribe(func(Event) {
		c.Notify(Event{Sender: c, Op: OpChange, Index: s.index, Item: v})
	})
}

func (c *Collection[T]) unlisten(v T, s *itemSub) {
	if s.sub == 0 {
		return
	}
	if o, ok := any(v).(Observable); ok {
		o.Unsubscribe(s.sub)
	}
	s.sub = 0
}
