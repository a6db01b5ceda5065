package hxevent

import (
	"container/list"
	"sync"
)

// PageStore keeps pages between the render and their callbacks.
type PageStore interface {
	Put(p *Page)
	Get(id string) (*Page, bool)
	Remove(id string)
	Len() int
}

// MemoryStore is a bounded in-memory PageStore. When full, the least
// recently used page is evicted and discarded.
type MemoryStore struct {
	mu    sync.Mutex
	max   int
	order *list.List // front is most recently used
	pages map[string]*list.Element
}

// NewMemoryStore creates a store holding at most max pages. max <= 0 means
// unbounded.
func NewMemoryStore(max int) *MemoryStore {
	return &MemoryStore{
		max:   max,
		order: list.New(),
		pages: make(map[string]*list.Element),
	}
}

// Put stores p, evicting old pages if the store is full.
func (s *MemoryStore) Put(p *Page) {
	s.mu.Lock()
	if el, ok := s.pages[p.id]; ok {
		el.Value = p
		s.order.MoveToFront(el)
		s.mu.Unlock()
		return
	}
	s.pages[p.id] = s.order.PushFront(p)

	var evicted []*Page
	for s.max > 0 && s.order.Len() > s.max {
		el := s.order.Back()
		old := s.order.Remove(el).(*Page)
		delete(s.pages, old.id)
		evicted = append(evicted, old)
	}
	s.mu.Unlock()

	for _, old := range evicted {
		discard(old)
	}
}

// Get returns the page and marks it as recently used.
func (s *MemoryStore) Get(id string) (*Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.pages[id]
	if !ok {
		return nil, false
	}
	s.order.MoveToFront(el)
	return el.Value.(*Page), true
}

// Remove discards the page with the given id.
func (s *MemoryStore) Remove(id string) {
	s.mu.Lock()
	el, ok := s.pages[id]
	if ok {
		s.order.Remove(el)
		delete(s.pages, id)
	}
	s.mu.Unlock()

	if ok {
		discard(el.Value.(*Page))
	}
}

// Len returns the number of stored pages.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// discard waits for a running request on p before dropping its state.
func discard(p *Page) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Discard()
}
