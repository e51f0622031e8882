package testutil

import (
	"context"
	"sync"

	"fengwz.me/garden/internal/cms"
	"fengwz.me/garden/internal/content"
)

// StaticContent serves a fixed snapshot and page set.
type StaticContent struct {
	mu    sync.RWMutex
	snap  content.Snapshot
	pages map[string]cms.Page
}

// NewStaticContent returns a settled, live snapshot of posts.
func NewStaticContent(posts ...cms.Post) *StaticContent {
	return &StaticContent{
		snap:  content.Snapshot{Posts: posts, Live: true, Generation: 1},
		pages: map[string]cms.Page{},
	}
}

// SetSnapshot replaces the snapshot.
func (s *StaticContent) SetSnapshot(snap content.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// SetPage registers a page body.
func (s *StaticContent) SetPage(p cms.Page) {
	s.mu.Lock()
	s.pages[p.Slug] = p
	s.mu.Unlock()
}

func (s *StaticContent) Snapshot() content.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *StaticContent) Page(_ context.Context, slug string) (cms.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.pages[slug]; ok {
		return p, nil
	}
	return cms.Page{}, cms.ErrNotFound
}
