package observable

import "fmt"

type link struct {
	src Observable
	sub Subscription
}

// Child names an owned value for Resume.
type Child struct {
	Name  string
	Value Observable
}

// Element is embedded by every model type. It holds the notification state
// that the typed fields of the embedding struct share: subscriptions on owned
// values, the suspended flag used during bulk construction and the frozen
// flag of read-only snapshots.
type Element struct {
	Notifier

	sender    any
	onChange  func(property string)
	links     map[string]link
	suspended bool
	frozen    bool
}

// Bind sets the value reported as Event.Sender and an optional hook that runs
// on every property change, also while suspended.
func (e *Element) Bind(sender any, onChange func(property string)) {
	e.sender = sender
	e.onChange = onChange
}

// Changed records a change of property and raises the event unless suspended.
func (e *Element) Changed(property string) {
	if e.onChange != nil {
		e.onChange(property)
	}
	if e.suspended {
		return
	}
	e.Notify(Event{Sender: e.sender, Property: property, Op: OpChange, Index: -1})
}

// Suspend stops notifications and drops the subscriptions on owned values
// until Resume, which subscribes to the values it is given. Used while an
// element is filled from parsed input.
func (e *Element) Suspend() {
	e.suspended = true
	for property := range e.links {
		e.detach(property)
	}
}

// Suspended reports whether observation is suspended.
func (e *Element) Suspended() bool { return e.suspended }

// Resume subscribes to the given owned values and makes notifications live
// again. Calling Resume on an element that is not suspended panics.
func (e *Element) Resume(children ...Child) {
	if !e.suspended {
		panic(fmt.Errorf("resume: %w", ErrNotSuspended))
	}
	e.suspended = false
	for _, c := range children {
		e.attach(c.Name, c.Value)
	}
}

// Freeze makes the element read-only, any later setter call panics.
func (e *Element) Freeze() { e.frozen = true }

// Frozen reports whether the element is read-only.
func (e *Element) Frozen() bool { return e.frozen }

// CheckWritable panics with ErrFrozen if the element is read-only.
func (e *Element) CheckWritable(property string) {
	if e.frozen {
		panic(fmt.Errorf("set %s: %w", property, ErrFrozen))
	}
}

// Own subscribes to an owned value without raising a change, used by
// constructors. Nil values are ignored.
func (e *Element) Own(property string, v Observable) {
	if v == nil {
		return
	}
	e.attach(property, v)
}

// Linked returns the value the element listens to for property, if any.
func (e *Element) Linked(property string) Observable {
	return e.links[property].src
}

func (e *Element) attach(property string, v Observable) {
	if e.suspended {
		return
	}
	if l, ok := e.links[property]; ok {
		if l.src == v {
			return
		}
		l.src.Unsubscribe(l.sub)
	}
	if e.links == nil {
		e.links = make(map[string]link)
	}
	sub := v.Subscribe(func(Event) { e.Changed(property) })
	e.links[property] = link{src: v, sub: sub}
}

func (e *Element) detach(property string) {
	l, ok := e.links[property]
	if !ok {
		return
	}
	l.src.Unsubscribe(l.sub)
	delete(e.links, property)
}

// Set stores a comparable value and raises a change if it differs.
func Set[T comparable](e *Element, property string, field *T, value T) {
	e.CheckWritable(property)
	if *field == value {
		return
	}
	*field = value
	e.Changed(property)
}

// SetPtr stores a copy of an optional value. Nil means absent. A change is
// raised when presence or the pointed-to value differs.
func SetPtr[T comparable](e *Element, property string, field **T, value *T) {
	e.CheckWritable(property)
	old := *field
	if value != nil {
		v := *value
		value = &v
	}
	*field = value
	if old == nil && value == nil || old != nil && value != nil && *old == *value {
		return
	}
	e.Changed(property)
}

// SetChild replaces an owned observable value, moving the subscription from
// the old value to the new one. Owned values compare by identity.
func SetChild[T interface {
	comparable
	Observable
}](e *Element, property string, field *T, value T) {
	e.CheckWritable(property)
	old := *field
	if old == value {
		return
	}
	var zero T
	e.detach(property)
	*field = value
	if value != zero {
		e.attach(property, value)
	}
	e.Changed(property)
}

// Clone returns a copy of an optional value, so callers cannot modify the
// stored one behind the element's back.
func Clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
