package observable

import (
	"fmt"

	"github.com/beevik/etree"
)

// Fragment holds a raw XML subtree that the model does not map to fields,
// such as unknown extension elements, routes and tracks. The subtree can only
// be changed through Edit and friends so that every change is reported.
type Fragment struct {
	Notifier

	el     *etree.Element
	frozen bool
}

// NewFragment takes ownership of el, the caller must not modify it later.
func NewFragment(el *etree.Element) *Fragment {
	return &Fragment{el: el}
}

// Tag returns the qualified tag of the root element, e.g. "groundspeak:cache".
func (f *Fragment) Tag() string { return f.el.FullTag() }

// Element returns a deep copy of the subtree.
func (f *Fragment) Element() *etree.Element { return f.el.Copy() }

// Edit runs fn on the stored subtree and raises a change afterwards.
func (f *Fragment) Edit(fn func(el *etree.Element)) {
	if f.frozen {
		panic(fmt.Errorf("edit %s: %w", f.el.FullTag(), ErrFrozen))
	}
	fn(f.el)
	f.Notify(Event{Sender: f, Op: OpChange, Index: -1})
}

// SetAttr sets an attribute on the element found at path (relative to the
// root, "." for the root itself). It reports false when path matches nothing.
func (f *Fragment) SetAttr(path, key, value string) bool {
	target := f.el
	if path != "." && path != "" {
		if target = f.el.FindElement(path); target == nil {
			return false
		}
	}
	f.Edit(func(*etree.Element) { target.CreateAttr(key, value) })
	return true
}

// Freeze makes the fragment read-only.
func (f *Fragment) Freeze() { f.frozen = true }

// Frozen reports whether the fragment is read-only.
func (f *Fragment) Frozen() bool { return f.frozen }
