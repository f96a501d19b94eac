package observable_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Knagis/GeoTransformer-sub000/observable"
)

type point struct {
	observable.Element

	name    *string
	count   int
	child   *point
	items   *observable.Collection[*point]
	changes int
}

func newPoint() *point {
	p := &point{items: observable.NewCollection[*point]()}
	p.Bind(p, func(string) { p.changes++ })
	p.Own("Items", p.items)
	return p
}

func (p *point) SetName(v *string) { observable.SetPtr(&p.Element, "Name", &p.name, v) }
func (p *point) SetCount(v int)    { observable.Set(&p.Element, "Count", &p.count, v) }
func (p *point) SetChild(v *point) { observable.SetChild(&p.Element, "Child", &p.child, v) }

func record(o observable.Observable) *[]string {
	var got []string
	o.Subscribe(func(e observable.Event) { got = append(got, e.Property) })
	return &got
}

func str(s string) *string { return &s }

func expectPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("expected panic with %v, got: %v", target, r)
		}
	}()
	fn()
}

func TestSetRaisesOnlyOnDifference(t *testing.T) {
	p := newPoint()
	got := record(p)

	p.SetName(nil)
	p.SetName(str("GC1"))
	p.SetName(str("GC1"))
	p.SetName(str("GC2"))
	p.SetName(nil)
	p.SetCount(0)
	p.SetCount(3)
	p.SetCount(3)

	expected := []string{"Name", "Name", "Name", "Count"}
	if diff := cmp.Diff(*got, expected); diff != "" {
		t.Fatal(diff)
	}
}

func TestSetPtrStoresCopy(t *testing.T) {
	p := newPoint()
	name := "GC1"
	p.SetName(&name)
	name = "changed behind the back"

	if *p.name != "GC1" {
		t.Fatalf("expected stored copy GC1, got: %q", *p.name)
	}
	if c := observable.Clone(p.name); c == p.name {
		t.Fatalf("expected Clone to return a new pointer")
	}
}

func TestNestedChangesBubble(t *testing.T) {
	root, first, second := newPoint(), newPoint(), newPoint()
	root.SetChild(first)
	got := record(root)

	first.SetName(str("inner"))
	first.items.Append(newPoint())
	first.items.At(0).SetCount(1)

	root.SetChild(second)
	first.SetName(str("detached"))
	second.SetCount(7)
	root.SetChild(second)

	expected := []string{"Child", "Child", "Child", "Child", "Child"}
	if diff := cmp.Diff(*got, expected); diff != "" {
		t.Fatal(diff)
	}
	if n := first.Listeners(); n != 0 {
		t.Fatalf("expected detached child without listeners, got: %d", n)
	}
	if n := second.Listeners(); n != 1 {
		t.Fatalf("expected a single listener on the new child, got: %d", n)
	}
}

func TestCollectionItemsBubbleAsOwningProperty(t *testing.T) {
	p, item := newPoint(), newPoint()
	got := record(p)

	p.items.Append(item)
	item.SetName(str("x"))
	p.items.Clear()
	item.SetName(str("y"))

	expected := []string{"Items", "Items", "Items"}
	if diff := cmp.Diff(*got, expected); diff != "" {
		t.Fatal(diff)
	}
	if n := item.Listeners(); n != 0 {
		t.Fatalf("expected removed item without listeners, got: %d", n)
	}
}

func TestSuspendResume(t *testing.T) {
	p, child := newPoint(), newPoint()
	p.Suspend()
	got := record(p)

	p.SetName(str("parsed"))
	p.SetChild(child)
	child.SetCount(1)
	if len(*got) != 0 {
		t.Fatalf("expected no events while suspended, got: %v", *got)
	}
	if n := child.Listeners(); n != 0 {
		t.Fatalf("expected no subscriptions while suspended, got: %d", n)
	}
	if p.changes == 0 {
		t.Fatalf("expected change hook to run while suspended")
	}

	p.Resume(
		observable.Child{Name: "Child", Value: child},
		observable.Child{Name: "Items", Value: p.items},
	)
	child.SetCount(2)

	if diff := cmp.Diff(*got, []string{"Child"}); diff != "" {
		t.Fatal(diff)
	}
	if n := p.items.Listeners(); n != 1 {
		t.Fatalf("expected Resume not to subscribe twice, got: %d listeners", n)
	}

	expectPanic(t, observable.ErrNotSuspended, func() { p.Resume() })
}

func TestSuspendedCollectionItems(t *testing.T) {
	p, item := newPoint(), newPoint()
	got := record(p)

	p.Suspend()
	p.items.Append(item)
	item.SetCount(1)
	if n := item.Listeners(); n != 0 {
		t.Fatalf("expected no item subscriptions while suspended, got: %d", n)
	}

	p.Resume(observable.Child{Name: "Items", Value: p.items})
	if n := item.Listeners(); n != 1 {
		t.Fatalf("expected Resume to subscribe the items, got: %d", n)
	}
	item.SetCount(2)

	if diff := cmp.Diff([]string{"Items"}, *got); diff != "" {
		t.Fatal(diff)
	}
}

func TestFrozenElementPanics(t *testing.T) {
	p := newPoint()
	p.SetName(str("before"))
	p.Freeze()

	expectPanic(t, observable.ErrFrozen, func() { p.SetName(str("after")) })
	expectPanic(t, observable.ErrFrozen, func() { p.SetChild(newPoint()) })

	if *p.name != "before" {
		t.Fatalf("expected value unchanged, got: %q", *p.name)
	}
}

func TestNotifierUnsubscribe(t *testing.T) {
	var n observable.Notifier
	var calls int
	a := n.Subscribe(func(observable.Event) { calls++ })
	n.Subscribe(func(observable.Event) { calls += 10 })

	if !n.Unsubscribe(a) {
		t.Fatalf("expected unsubscribe to succeed")
	}
	if n.Unsubscribe(a) {
		t.Fatalf("expected second unsubscribe to fail")
	}
	n.Notify(observable.Event{})

	if calls != 10 {
		t.Fatalf("expected only the remaining handler to run, got: %d", calls)
	}
}
