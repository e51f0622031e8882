// Package route maps URLs to the site's sections and tracks navigation state.
package route

import (
	"net/url"
	"strings"
)

// Name identifies a section of the site.
type Name string

const (
	Home     Name = ""
	About    Name = "about"
	Post     Name = "post"
	Library  Name = "library"
	Geek     Name = "geek"
	Essays   Name = "essays"
	Projects Name = "projects"
	Category Name = "category"
	Resume   Name = "resume"
	NotFound Name = "404"
)

const (
	// DefaultLibraryTab is used for /library without a tab segment.
	DefaultLibraryTab = "books"
	// DefaultGeekTab is used for /geek without a tab segment.
	DefaultGeekTab = "engineering"
)

// Route is the resolved location. It is a value: every resolution produces a new one.
type Route struct {
	Path Name
	Slug string
}

// URL returns the canonical path for the route.
func (r Route) URL() string {
	switch r.Path {
	case Home:
		return "/"
	case About, Essays, Projects, Resume:
		return "/" + string(r.Path)
	case Library, Geek, Category, Post:
		if r.Slug == "" {
			return "/" + string(r.Path)
		}
		return "/" + string(r.Path) + "/" + url.PathEscape(r.Slug)
	default:
		return "/404"
	}
}

// WithoutLayout reports whether the route renders without the shared header and footer.
func (r Route) WithoutLayout() bool {
	return r.Path == Resume
}

// Resolve maps a URL (absolute, path-only, or carrying a legacy "#/..." fragment) to a
// Route. Matching is literal and case-sensitive; the first matching rule wins and
// anything unmatched resolves to the 404 route.
func Resolve(rawURL string) Route {
	path := pathOf(rawURL)
	if legacy, ok := LegacyPath(rawURL); ok {
		path = legacy
	}

	switch {
	case path == "" || path == "/":
		return Route{Path: Home}
	case path == "/about":
		return Route{Path: About}
	case hasSection(path, "/library"):
		return Route{Path: Library, Slug: segmentOr(path, DefaultLibraryTab)}
	case hasSection(path, "/geek"):
		return Route{Path: Geek, Slug: segmentOr(path, DefaultGeekTab)}
	case path == "/essays":
		return Route{Path: Essays}
	case path == "/projects":
		return Route{Path: Projects}
	case path == "/resume":
		return Route{Path: Resume}
	case strings.HasPrefix(path, "/category/"):
		return Route{Path: Category, Slug: segment(path, 2)}
	case strings.HasPrefix(path, "/post/"):
		return Route{Path: Post, Slug: segment(path, 2)}
	default:
		return Route{Path: NotFound}
	}
}

// LegacyPath extracts the path carried by a hash-style URL such as "/#/post/x".
// It reports false when the URL has no "#/" fragment.
func LegacyPath(rawURL string) (string, bool) {
	idx := strings.Index(rawURL, "#")
	if idx < 0 {
		return "", false
	}
	fragment := rawURL[idx+1:]
	if !strings.HasPrefix(fragment, "/") {
		return "", false
	}
	if q := strings.IndexByte(fragment, '?'); q >= 0 {
		fragment = fragment[:q]
	}
	if unescaped, err := url.PathUnescape(fragment); err == nil {
		fragment = unescaped
	}
	return fragment, true
}

func pathOf(rawURL string) string {
	raw := rawURL
	if idx := strings.Index(raw, "#"); idx >= 0 {
		raw = raw[:idx]
	}
	u, err := url.Parse(raw)
	if err != nil {
		if q := strings.IndexByte(raw, '?'); q >= 0 {
			raw = raw[:q]
		}
		return raw
	}
	return u.Path
}

// hasSection matches a section root on a segment boundary, so "/geek" and
// "/geek/games" match while "/geekery" does not.
func hasSection(path, section string) bool {
	return path == section || strings.HasPrefix(path, section+"/")
}

func segment(path string, index int) string {
	parts := strings.Split(path, "/")
	if index < len(parts) {
		return parts[index]
	}
	return ""
}

func segmentOr(path, fallback string) string {
	if s := segment(path, 2); s != "" {
		return s
	}
	return fallback
}
