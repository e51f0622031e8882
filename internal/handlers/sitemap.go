package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"fengwz.me/garden/internal/cms"
	"fengwz.me/garden/internal/observability"
	"fengwz.me/garden/internal/seo"
)

// sitemapTTL bounds how long a listed post index is reused.
const sitemapTTL = time.Hour

// sitemapCache holds the last successful post listing.
type sitemapCache struct {
	mu      sync.Mutex
	refs    []cms.PostRef
	expires time.Time
}

// Sitemap serves sitemap.xml built from the CMS post index, or from the loaded posts
// when the CMS cannot be listed.
func (h *Handlers) Sitemap(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := seo.WriteSitemap(&buf, seo.Sitemap(h.site.BaseURL, h.sitemapEntries(r.Context()))); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = buf.WriteTo(w)
}

func (h *Handlers) sitemapEntries(ctx context.Context) []seo.Entry {
	entries := append([]seo.Entry{}, seo.StaticEntries...)
	if refs := h.postRefs(ctx); len(refs) > 0 {
		for _, ref := range refs {
			entries = append(entries, seo.PostEntry(ref.Slug, ref.ModifiedAt))
		}
		return entries
	}
	snap := h.content.Snapshot()
	if !snap.Live {
		return entries
	}
	for _, p := range snap.Posts {
		entries = append(entries, seo.PostEntry(p.Slug, p.ModifiedAt))
	}
	return entries
}

// postRefs lists the CMS post index, reusing a non-empty listing for sitemapTTL.
// The lock is held across the listing so concurrent misses walk the CMS once.
func (h *Handlers) postRefs(ctx context.Context) []cms.PostRef {
	if h.posts == nil {
		return nil
	}
	c := &h.sitemap
	c.mu.Lock()
	defer c.mu.Unlock()

	now := h.now()
	if len(c.refs) > 0 && now.Before(c.expires) {
		return c.refs
	}
	refs, err := h.posts.ListPostRefs(ctx)
	switch {
	case errors.Is(err, cms.ErrNotConfigured):
		return nil
	case err != nil:
		observability.FromContext(ctx).Warn("sitemap listing failed", zap.Error(err))
		return nil
	case len(refs) > 0:
		c.refs, c.expires = refs, now.Add(sitemapTTL)
	}
	return refs
}
