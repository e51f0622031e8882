// Package nav builds the primary menu and breadcrumbs for the current route.
package nav

import (
	"net/url"
	"strings"

	"fengwz.me/garden/internal/route"
)

// Item is a top-level navigation entry. Dest is a dispatcher destination.
type Item struct {
	Dest     string
	LabelKey string
	Sections []route.Name
	Children []Item
}

// RenderedItem is the template view of an Item.
type RenderedItem struct {
	Href     string
	Dest     string
	LabelKey string
	Active   bool
	Children []RenderedItem
}

// Crumb is a breadcrumb entry. When LabelKey is empty, Label is shown.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Main is the primary navigation.
var Main = []Item{
	{
		Dest:     "essays",
		LabelKey: "nav.essays",
		Sections: []route.Name{route.Essays, route.Category},
		Children: []Item{
			{Dest: "essays", LabelKey: "nav.essays.all"},
			{Dest: "category/mind", LabelKey: "nav.essays.mind"},
			{Dest: "category/body", LabelKey: "nav.essays.body"},
			{Dest: "category/wealth", LabelKey: "nav.essays.wealth"},
			{Dest: "category/journal", LabelKey: "nav.essays.journal"},
		},
	},
	{Dest: "library", LabelKey: "nav.library", Sections: []route.Name{route.Library}},
	{Dest: "geek", LabelKey: "nav.geek", Sections: []route.Name{route.Geek}},
	{Dest: "projects", LabelKey: "nav.projects", Sections: []route.Name{route.Projects, route.Resume}},
	{Dest: "about", LabelKey: "nav.about", Sections: []route.Name{route.About}},
}

// Build renders the menu with the entry owning the current route marked active.
func Build(current route.Route) []RenderedItem {
	return render(Main, current)
}

func render(items []Item, current route.Route) []RenderedItem {
	out := make([]RenderedItem, 0, len(items))
	for _, it := range items {
		href := route.Destination(it.Dest)
		r := RenderedItem{
			Href:     href,
			Dest:     it.Dest,
			LabelKey: it.LabelKey,
			Active:   isActive(it, current),
		}
		if len(it.Children) > 0 {
			r.Children = render(it.Children, current)
		}
		out = append(out, r)
	}
	return out
}

func isActive(it Item, current route.Route) bool {
	for _, s := range it.Sections {
		if s == current.Path {
			return true
		}
	}
	if len(it.Sections) == 0 {
		return route.Destination(it.Dest) == current.URL()
	}
	return false
}

var sectionLabels = map[route.Name]string{
	route.About:    "nav.about",
	route.Library:  "nav.library",
	route.Geek:     "nav.geek",
	route.Essays:   "nav.essays",
	route.Category: "nav.essays",
	route.Projects: "nav.projects",
	route.Resume:   "nav.resume",
}

// Breadcrumbs returns Home, the owning section, and the item title when there is one.
// back is the section a post returns to; it is ignored for other routes.
func Breadcrumbs(current route.Route, back, backLabel, title string) []Crumb {
	crumbs := []Crumb{{Href: "/", LabelKey: "nav.home", Active: current.Path == route.Home}}
	switch current.Path {
	case route.Home:
		return crumbs
	case route.NotFound:
		return append(crumbs, Crumb{Href: current.URL(), LabelKey: "nav.notfound", Active: true})
	case route.Post:
		if back != "" {
			crumbs = append(crumbs, Crumb{Href: route.Destination(back), Label: backLabel})
		}
		if title == "" {
			title = titleFromSlug(current.Slug)
		}
		return append(crumbs, Crumb{Href: current.URL(), Label: title, Active: true})
	}

	section := Crumb{Href: "/" + string(current.Path), LabelKey: sectionLabels[current.Path]}
	if current.Path == route.Category {
		section.Href = "/essays"
	}
	if current.Slug == "" {
		section.Active = true
		return append(crumbs, section)
	}
	crumbs = append(crumbs, section)
	if title == "" {
		title = titleFromSlug(current.Slug)
	}
	return append(crumbs, Crumb{Href: current.URL(), Label: title, Active: true})
}

func titleFromSlug(seg string) string {
	if decoded, err := url.PathUnescape(seg); err == nil {
		seg = decoded
	}
	s := strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
