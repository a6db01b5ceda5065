package hxevent

import "sort"

// MetaKey is a typed key for page-scoped metadata. Keys compare by identity,
// so two keys with the same name never collide.
type MetaKey[T any] struct {
	name string
}

// NewMetaKey creates a metadata key. The name is only used for debugging.
func NewMetaKey[T any](name string) *MetaKey[T] {
	return &MetaKey[T]{name: name}
}

// Name returns the key's debug name.
func (k *MetaKey[T]) Name() string {
	return k.name
}

// Get returns the value stored on the page under this key.
func (k *MetaKey[T]) Get(p *Page) (T, bool) {
	v, ok := p.meta[k]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Set stores v on the page, replacing any previous value.
func (k *MetaKey[T]) Set(p *Page, v T) {
	if p.meta == nil {
		p.meta = make(map[any]any)
	}
	p.meta[k] = v
}

// SetIfAbsent returns the stored value, creating it with newValue first if
// the key is not set yet.
func (k *MetaKey[T]) SetIfAbsent(p *Page, newValue func() T) T {
	if v, ok := k.Get(p); ok {
		return v
	}
	v := newValue()
	k.Set(p, v)
	return v
}

// Delete removes the key from the page.
func (k *MetaKey[T]) Delete(p *Page) {
	delete(p.meta, k)
}

// EventSet is a set of DOM event names.
type EventSet struct {
	names map[string]struct{}
}

// NewEventSet creates an empty set.
func NewEventSet() *EventSet {
	return &EventSet{names: make(map[string]struct{})}
}

// Add inserts name and reports whether it was not already present.
func (s *EventSet) Add(name string) bool {
	if _, ok := s.names[name]; ok {
		return false
	}
	s.names[name] = struct{}{}
	return true
}

// Has reports whether name is in the set. A nil set is empty.
func (s *EventSet) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.names[name]
	return ok
}

// Len returns the number of names. A nil set is empty.
func (s *EventSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Names returns the names in sorted order.
func (s *EventSet) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// EnabledEventsKey holds the events for which an EventDelegatingBehavior
// has been configured somewhere on the page.
var EnabledEventsKey = NewMetaKey[*EventSet]("enabled-events")
