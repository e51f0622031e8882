package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"fengwz.me/garden/internal/middleware"
	"fengwz.me/garden/internal/nav"
	"fengwz.me/garden/internal/observability"
	"fengwz.me/garden/internal/route"
	"fengwz.me/garden/internal/seo"
	"fengwz.me/garden/internal/view"
)

// navigatedEvent asks the layout script to reset the scroll position.
var navigatedEvent = mustJSON(map[string]any{"garden:navigated": map[string]int{"scrollTop": 0}})

// pagesBySlug maps routes that carry CMS page bodies to the page slug.
var pagesBySlug = map[route.Name]string{
	route.About:    "about",
	route.Projects: "projects",
}

// Page renders whatever the request URL resolves to. htmx history restores re-enter
// the route through Restore; every other request mounts it.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	router := h.newRouter(r)
	var change route.Change
	if middleware.IsHistoryRestore(r.Context()) {
		change = router.Restore(r.URL.RequestURI())
	} else {
		change = router.Mount(r.URL.RequestURI())
	}
	h.renderRoute(w, r, change.Route)
}

// Go dispatches an abstract navigation destination. Plain requests are redirected to
// the destination URL; htmx requests get the page fragment and push the URL.
func (h *Handlers) Go(w http.ResponseWriter, r *http.Request) {
	dest := strings.Trim(chi.URLParam(r, "*"), "/")
	change := h.newRouter(r).Navigate(dest)

	target := change.URL
	if q := r.URL.RawQuery; q != "" {
		target += "?" + q
	}
	if !middleware.IsHTMX(r.Context()) {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	w.Header().Set("HX-Push-Url", target)
	if change.ResetScroll {
		w.Header().Set("HX-Trigger", navigatedEvent)
	}
	h.renderRoute(w, r, change.Route)
}

func (h *Handlers) newRouter(r *http.Request) *route.Router {
	logger := observability.FromContext(r.Context())
	router := route.NewRouter()
	router.Subscribe(func(c route.Change) {
		logger.Debug("route resolved",
			zap.String("trigger", string(c.Trigger)),
			zap.String("url", c.URL),
			zap.String("route", string(c.Route.Path)),
			zap.String("slug", c.Route.Slug),
		)
	})
	return router
}

func (h *Handlers) renderRoute(w http.ResponseWriter, r *http.Request, rt route.Route) {
	snap := h.content.Snapshot()
	page := h.selector.Select(rt, snap, r.URL.Query().Get("q"))
	data := h.pageData(r, page)

	ctx := r.Context()
	switch {
	case page.Kind == view.KindResume, page.Kind == view.KindGeek:
		resume := h.resume
		data.Resume = &resume
	case page.Kind == view.KindPost:
		data.Comments = h.commentsData(r, page.Post.Post.Slug, page.Post.Post.ID)
	}
	if slug, ok := pagesBySlug[rt.Path]; ok {
		if body, err := h.content.Page(ctx, slug); err == nil {
			data.Body = &body
		} else {
			observability.FromContext(ctx).Debug("page body unavailable", zap.String("slug", slug), zap.Error(err))
		}
	}
	h.renderPage(w, r, data)
}

func (h *Handlers) translator(r *http.Request) Translator {
	lang := middleware.Lang(r.Context())
	if lang == "" {
		lang = h.bundle.Fallback()
	}
	return Translator{bundle: h.bundle, Lang: lang}
}

func (h *Handlers) pageData(r *http.Request, page view.Page) PageData {
	tr := h.translator(r)
	data := PageData{
		Translator: tr,
		Site:       h.site,
		Profile:    h.profile,
		Nav:        nav.Build(page.Route),
		CSRFToken:  middleware.CSRFToken(r.Context()),
		AIEnabled:  h.aiEnabled(),
		Year:       h.now().Year(),
		Page:       page,
	}

	var back, backLabel string
	if page.Post != nil {
		back, backLabel = page.Post.Back.Dest, page.Post.Back.Label
	}
	data.Breadcrumbs = nav.Breadcrumbs(page.Route, back, backLabel, crumbTitle(page))

	meta := seo.Page{
		Description: page.Description,
		Image:       page.Image,
		Path:        page.Route.URL(),
	}
	if page.Kind != view.KindHome {
		meta.Title = page.Title
	}
	if page.Kind == view.KindPost {
		meta.Type = "article"
	}
	data.SEO = seo.Build(h.site, meta)
	data.SEO.JSONLD = h.structuredData(tr, page, data.Breadcrumbs)
	return data
}

func (h *Handlers) structuredData(tr Translator, page view.Page, crumbs []nav.Crumb) []string {
	if page.Kind == view.KindHome {
		return []string{seo.JSON(seo.WebSite(h.site.Name, h.site.BaseURL, seo.AbsoluteURL(h.site.BaseURL, "/essays?q=")))}
	}
	var out []string
	if page.Kind == view.KindPost {
		p := page.Post.Post
		article := seo.Article{
			Headline:    p.Title,
			URL:         seo.AbsoluteURL(h.site.BaseURL, page.Route.URL()),
			Image:       p.ImageURL,
			Author:      p.Author,
			Description: p.Excerpt,
			Keywords:    p.Terms(),
		}
		if !p.PublishedAt.IsZero() {
			article.DatePublished = p.PublishedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		if !p.ModifiedAt.IsZero() {
			article.DateModified = p.ModifiedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		out = append(out, seo.JSON(seo.BlogPosting(article)))
	}
	if page.Status == http.StatusOK && len(crumbs) > 1 {
		items := make([]seo.BreadcrumbItem, 0, len(crumbs))
		for _, c := range crumbs {
			name := c.Label
			if c.LabelKey != "" {
				name = tr.T(c.LabelKey)
			}
			items = append(items, seo.BreadcrumbItem{Name: name, Item: seo.AbsoluteURL(h.site.BaseURL, c.Href)})
		}
		out = append(out, seo.JSON(seo.BreadcrumbList(items)))
	}
	return out
}

func crumbTitle(page view.Page) string {
	switch page.Kind {
	case view.KindPost, view.KindEssays:
		return page.Title
	case view.KindLibrary:
		return activeTab(page.Library.Tabs)
	case view.KindGeek:
		return activeTab(page.Geek.Tabs)
	}
	return ""
}

func activeTab(tabs []view.Tab) string {
	for _, t := range tabs {
		if t.Active {
			return t.Label
		}
	}
	return ""
}

// Healthz reports liveness.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
