// Package view maps the current route and content snapshot to the page to render.
package view

import (
	"net/http"
	"net/url"
	"strings"

	"fengwz.me/garden/internal/cms"
	"fengwz.me/garden/internal/content"
	"fengwz.me/garden/internal/route"
)

// Kind identifies the template a page renders with.
type Kind string

const (
	KindHome         Kind = "home"
	KindAbout        Kind = "about"
	KindLibrary      Kind = "library"
	KindGeek         Kind = "geek"
	KindEssays       Kind = "essays"
	KindProjects     Kind = "projects"
	KindResume       Kind = "resume"
	KindPost         Kind = "post"
	KindLoading      Kind = "loading"
	KindPostNotFound Kind = "post-not-found"
	KindNotFound     Kind = "not-found"
)

// homeLatest is the number of stream posts shown on the home page.
const homeLatest = 3

// Page is the selected view with everything its template needs.
type Page struct {
	Kind        Kind
	Route       route.Route
	Status      int
	Title       string
	Description string
	Image       string
	Layout      bool
	Loading     bool
	Live        bool

	Home    *HomeView
	Post    *PostView
	Library *LibraryView
	Geek    *GeekView
	Essays  *EssaysView
}

// HomeView lists the latest stream posts and the widgets.
type HomeView struct {
	Latest  []cms.Post
	Stream  []cms.Post
	Widgets content.Widgets
}

// PostView carries a single post with its back link and detail layout.
type PostView struct {
	Post   cms.Post
	Back   BackLink
	Layout string
}

// Tab is a selectable sub-section.
type Tab struct {
	Slug   string
	Label  string
	URL    string
	Active bool
}

// LibraryView is the books / knowledge / media shelf.
type LibraryView struct {
	Tab    string
	Tabs   []Tab
	Groups []Group
	Items  []cms.Post
}

// GeekView is the engineering / games section.
type GeekView struct {
	Tab    string
	Tabs   []Tab
	Groups []Group
	Count  int
}

// EssaysView lists essays, optionally narrowed to a category or search query.
type EssaysView struct {
	Category *EssayCategory
	Query    string
	Posts    []cms.Post
	Cloud    []CategoryCount
}

// Select maps a route and snapshot to the page to render. It has no side effects.
func Select(r route.Route, snap content.Snapshot) Page {
	return SelectWithQuery(r, snap, "")
}

// SelectWithQuery is Select with a search query applied to the essays listing.
func SelectWithQuery(r route.Route, snap content.Snapshot, query string) Page {
	page := Page{
		Route:   r,
		Status:  http.StatusOK,
		Layout:  !r.WithoutLayout(),
		Loading: snap.Loading,
		Live:    snap.Live,
	}

	switch r.Path {
	case route.Home:
		page.Kind = KindHome
		page.Title = "首页"
		stream := HomeStream(snap.Posts)
		latest := stream
		if len(latest) > homeLatest {
			latest = latest[:homeLatest]
		}
		page.Home = &HomeView{Latest: latest, Stream: stream, Widgets: snap.Widgets}
	case route.About:
		page.Kind = KindAbout
		page.Title = "About"
		page.Description = "My story, current focus, and changelog."
	case route.Library:
		page.Kind = KindLibrary
		page.Title = "数字书房"
		page.Description = "书籍、课程与影音记录。"
		page.Library = selectLibrary(r.Slug, snap.Posts)
	case route.Geek:
		page.Kind = KindGeek
		page.Title = "数字生活"
		page.Description = "技术架构、极客装备与游戏收藏。"
		page.Geek = selectGeek(r.Slug, snap.Posts)
	case route.Essays:
		page.Kind = KindEssays
		page.Title = "思考与文章"
		page.Description = "商业、心智、身体与财富的复利笔记。"
		page.Essays = &EssaysView{
			Query: strings.TrimSpace(query),
			Posts: Essays(snap.Posts, "", query),
			Cloud: CategoryCloud(snap.Posts),
		}
	case route.Category:
		cat := LookupCategory(r.Slug)
		page.Kind = KindEssays
		page.Title = cat.Title
		page.Description = cat.Description
		page.Essays = &EssaysView{
			Category: &cat,
			Posts:    Essays(snap.Posts, r.Slug, ""),
			Cloud:    CategoryCloud(snap.Posts),
		}
	case route.Projects:
		page.Kind = KindProjects
		page.Title = "事业与项目"
		page.Description = "咨询服务、案例库与个人简历。"
	case route.Resume:
		page.Kind = KindResume
		page.Title = "个人简历"
	case route.Post:
		selectPost(&page, r.Slug, snap)
	default:
		page.Kind = KindNotFound
		page.Status = http.StatusNotFound
		page.Title = "404"
	}
	return page
}

func selectPost(page *Page, slug string, snap content.Snapshot) {
	if snap.Loading {
		page.Kind = KindLoading
		return
	}
	post, ok := FindPost(snap.Posts, slug)
	if !ok {
		page.Kind = KindPostNotFound
		page.Status = http.StatusNotFound
		page.Title = "文章未找到"
		return
	}
	page.Kind = KindPost
	page.Title = post.Title
	page.Description = post.Excerpt
	page.Image = post.ImageURL
	page.Post = &PostView{Post: post, Back: Back(post.Categories), Layout: PostLayout(post)}
}

// FindPost looks a post up by slug. WordPress stores non-ASCII slugs percent-encoded,
// so the decoded form matches as well.
func FindPost(posts []cms.Post, slug string) (cms.Post, bool) {
	if slug == "" {
		return cms.Post{}, false
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, true
		}
		if decoded, err := url.PathUnescape(p.Slug); err == nil && decoded == slug {
			return p, true
		}
	}
	return cms.Post{}, false
}

var libraryTabs = []Tab{
	{Slug: TabBooks, Label: "书籍 (Books)"},
	{Slug: TabKnowledge, Label: "课程与知识 (Knowledge)"},
	{Slug: TabMedia, Label: "影音 (Media)"},
}

var geekTabs = []Tab{
	{Slug: TabTech, Label: "技术与装备 (Tech & Gear)"},
	{Slug: TabGames, Label: "游戏收藏 (Games)"},
}

func selectLibrary(slug string, posts []cms.Post) *LibraryView {
	tab := LibraryTab(slug)
	v := &LibraryView{Tab: tab, Tabs: tabs(libraryTabs, tab, "library/")}
	switch tab {
	case TabKnowledge:
		v.Items = Knowledge(posts)
	case TabMedia:
		v.Items = Media(posts)
		v.Groups = MediaShelves(v.Items)
	default:
		v.Items = Books(posts)
		v.Groups = BookShelves(v.Items)
	}
	return v
}

func selectGeek(slug string, posts []cms.Post) *GeekView {
	tab := GeekTab(slug)
	v := &GeekView{Tab: tab, Tabs: tabs(geekTabs, tab, "geek/")}
	if tab == TabGames {
		games := Games(posts)
		v.Count = len(games)
		v.Groups = GameShelves(games)
	}
	return v
}

func tabs(all []Tab, active, prefix string) []Tab {
	out := make([]Tab, len(all))
	for i, t := range all {
		t.Active = t.Slug == active
		t.URL = route.Destination(prefix + t.Slug)
		out[i] = t
	}
	return out
}
