package view

import (
	"sync"

	"fengwz.me/garden/internal/content"
	"fengwz.me/garden/internal/route"
)

const maxMemoised = 256

// Selector memoises Select per route for the current snapshot generation. Search
// queries bypass the cache.
type Selector struct {
	mu         sync.Mutex
	generation uint64
	loading    bool
	pages      map[route.Route]Page
}

// NewSelector returns an empty Selector.
func NewSelector() *Selector {
	return &Selector{pages: make(map[route.Route]Page)}
}

// Select returns the memoised page for (route, generation), computing it on a miss.
func (s *Selector) Select(r route.Route, snap content.Snapshot, query string) Page {
	if query != "" {
		return SelectWithQuery(r, snap, query)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Generation != s.generation || snap.Loading != s.loading {
		s.generation = snap.Generation
		s.loading = snap.Loading
		s.pages = make(map[route.Route]Page)
	}
	if page, ok := s.pages[r]; ok {
		return page
	}
	page := Select(r, snap)
	if len(s.pages) >= maxMemoised {
		s.pages = make(map[route.Route]Page)
	}
	s.pages[r] = page
	return page
}
