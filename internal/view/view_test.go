package view

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"fengwz.me/garden/internal/cms"
	"fengwz.me/garden/internal/content"
	"fengwz.me/garden/internal/route"
)

func post(slug string, rating float64, categories ...string) cms.Post {
	return cms.Post{ID: slug, Slug: slug, Title: slug, Categories: categories, Rating: rating}
}

func loaded(posts ...cms.Post) content.Snapshot {
	return content.Snapshot{Posts: posts, Live: true, Generation: 1}
}

func TestBackBuckets(t *testing.T) {
	t.Parallel()

	cases := []struct {
		categories []string
		want       BackLink
	}{
		{[]string{"GAMES"}, BackLink{Dest: "geek/games", URL: "/geek/games", Label: "Back to Games"}},
		{[]string{"Tech"}, BackLink{Dest: "geek", URL: "/geek", Label: "Back to Engineering"}},
		{[]string{"商业与运营"}, BackLink{Dest: "projects", URL: "/projects", Label: "Back to Business"}},
		{[]string{"书籍推荐"}, BackLink{Dest: "library/books", URL: "/library/books", Label: "Back to Books"}},
		{[]string{"Courses"}, BackLink{Dest: "library/knowledge", URL: "/library/knowledge", Label: "Back to Knowledge"}},
		{[]string{"影音记录"}, BackLink{Dest: "library/media", URL: "/library/media", Label: "Back to Media"}},
		{[]string{"Mind"}, BackLink{Dest: "category/mind", URL: "/category/mind", Label: "Back to Mind & Body"}},
		{[]string{"Body & Life"}, BackLink{Dest: "category/mind", URL: "/category/mind", Label: "Back to Mind & Body"}},
		{[]string{"Investment"}, BackLink{Dest: "category/wealth", URL: "/category/wealth", Label: "Back to Wealth"}},
		{[]string{"Daily Notes"}, BackLink{Dest: "category/journal", URL: "/category/journal", Label: "Back to Journal"}},
		{[]string{"Misc"}, BackLink{Dest: "essays", URL: "/essays", Label: "Back to Articles"}},
		{nil, BackLink{Dest: "essays", URL: "/essays", Label: "Back to Articles"}},
		// first bucket wins across categories
		{[]string{"Games", "Business"}, BackLink{Dest: "projects", URL: "/projects", Label: "Back to Business"}},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Back(tc.categories), "categories %v", tc.categories)
	}
}

func TestSelectPostTechScenario(t *testing.T) {
	t.Parallel()

	snap := loaded(post("x", 0, "Tech"))
	page := Select(route.Resolve("/post/x"), snap)

	require.Equal(t, KindPost, page.Kind)
	require.Equal(t, http.StatusOK, page.Status)
	require.Equal(t, "geek", page.Post.Back.Dest)
	require.Equal(t, "Back to Engineering", page.Post.Back.Label)
	require.Equal(t, "article", page.Post.Layout)
}

func TestSelectPostWhileLoading(t *testing.T) {
	t.Parallel()

	page := Select(route.Route{Path: route.Post, Slug: "x"}, content.Snapshot{Loading: true})
	require.Equal(t, KindLoading, page.Kind)
	require.Nil(t, page.Post)
}

func TestSelectPostNotFound(t *testing.T) {
	t.Parallel()

	page := Select(route.Route{Path: route.Post, Slug: "missing"}, loaded(post("x", 0)))
	require.Equal(t, KindPostNotFound, page.Kind)
	require.Equal(t, http.StatusNotFound, page.Status)
}

func TestSelectPostMatchesEncodedSlug(t *testing.T) {
	t.Parallel()

	snap := loaded(cms.Post{ID: "1", Slug: "%e4%bd%a0%e5%a5%bd", Title: "你好"})
	page := Select(route.Resolve("/post/你好"), snap)
	require.Equal(t, KindPost, page.Kind)
	require.Equal(t, "你好", page.Title)
}

func TestSelectNotFoundRoute(t *testing.T) {
	t.Parallel()

	page := Select(route.Resolve("/nowhere"), loaded())
	require.Equal(t, KindNotFound, page.Kind)
	require.Equal(t, http.StatusNotFound, page.Status)
	require.True(t, page.Layout)
}

func TestSelectResumeHasNoLayout(t *testing.T) {
	t.Parallel()

	page := Select(route.Resolve("/resume"), loaded())
	require.Equal(t, KindResume, page.Kind)
	require.False(t, page.Layout)
}

func TestSelectHomeExcludesShelves(t *testing.T) {
	t.Parallel()

	snap := loaded(
		post("essay", 0, "Mind"),
		post("book", 5, "Books"),
		post("game", 5, "Gaming"),
		post("film", 4, "Movies"),
		post("plain", 0),
		post("wealth", 0, "Wealth"),
		post("journal", 0, "Journal"),
	)
	snap.Widgets.Featured = &cms.Post{Slug: "pinned"}
	page := Select(route.Route{Path: route.Home}, snap)

	require.Equal(t, KindHome, page.Kind)
	var slugs []string
	for _, p := range page.Home.Stream {
		slugs = append(slugs, p.Slug)
	}
	require.Equal(t, []string{"essay", "plain", "wealth", "journal"}, slugs)
	require.Len(t, page.Home.Latest, 3)
	require.Equal(t, "pinned", page.Home.Widgets.Featured.Slug)
}

func TestSelectLibraryTabs(t *testing.T) {
	t.Parallel()

	snap := loaded(
		post("five", 5, "Books"),
		post("four", 4, "书架"),
		post("two", 2, "书籍推荐"),
		post("unrated", 0, "books"),
		post("bookish", 5, "Books & Reading"),
		post("course", 0, "Courses"),
		post("movie", 5, "影音"),
		post("show", 3, "Media"),
	)

	page := Select(route.Resolve("/library"), snap)
	require.Equal(t, KindLibrary, page.Kind)
	require.Equal(t, TabBooks, page.Library.Tab)
	require.Len(t, page.Library.Items, 4, "exact category match only")
	require.Len(t, page.Library.Groups, 4)
	require.Equal(t, "masterpiece", page.Library.Groups[0].Key)
	require.Equal(t, "five", page.Library.Groups[0].Posts[0].Slug)
	require.Equal(t, "two", page.Library.Groups[2].Posts[0].Slug)
	require.True(t, page.Library.Tabs[0].Active)
	require.Equal(t, "/library/books", page.Library.Tabs[0].URL)

	page = Select(route.Resolve("/library/media"), snap)
	require.Equal(t, TabMedia, page.Library.Tab)
	require.Len(t, page.Library.Groups, 2)
	require.Equal(t, "selections", page.Library.Groups[0].Key)
	require.Equal(t, "records", page.Library.Groups[1].Key)

	page = Select(route.Resolve("/library/knowledge"), snap)
	require.Len(t, page.Library.Items, 1)
	require.Empty(t, page.Library.Groups)

	page = Select(route.Resolve("/library/unknown"), snap)
	require.Equal(t, TabBooks, page.Library.Tab)
}

func TestLibraryShelvesHoldFractionalRatings(t *testing.T) {
	t.Parallel()

	shelfOf := func(groups []Group) map[string]string {
		out := map[string]string{}
		for _, g := range groups {
			for _, p := range g.Posts {
				out[p.Slug] = g.Key
			}
		}
		return out
	}

	snap := loaded(
		post("dune", 4.5, "Books"),
		post("emma", 4, "Books"),
		post("ulysses", 3.5, "Books"),
		post("maybe", 0.5, "Books"),
		post("arrival", 4.5, "Media"),
		post("heat", 0.5, "Media"),
	)

	page := Select(route.Resolve("/library/books"), snap)
	require.Len(t, page.Library.Items, 4)
	require.Equal(t, map[string]string{
		"dune":    "great",
		"emma":    "great",
		"ulysses": "good",
		"maybe":   "wishlist",
	}, shelfOf(page.Library.Groups))

	page = Select(route.Resolve("/library/media"), snap)
	require.Len(t, page.Library.Items, 2)
	require.Equal(t, map[string]string{
		"arrival": "records",
		"heat":    "wishlist",
	}, shelfOf(page.Library.Groups))
}

func TestSelectGeekGames(t *testing.T) {
	t.Parallel()

	snap := loaded(
		post("elden", 5, "Games"),
		post("zelda", 4.5, "游戏"),
		post("hades", 4, "games"),
		post("tetris", 2, "GAMES"),
		post("notes", 5, "Game Notes"),
	)
	page := Select(route.Resolve("/geek/games"), snap)

	require.Equal(t, KindGeek, page.Kind)
	require.Equal(t, TabGames, page.Geek.Tab)
	require.Equal(t, 4, page.Geek.Count)
	require.Len(t, page.Geek.Groups, 3)
	require.Len(t, page.Geek.Groups[0].Posts, 2)
	require.Equal(t, "hades", page.Geek.Groups[1].Posts[0].Slug)
	require.Equal(t, "tetris", page.Geek.Groups[2].Posts[0].Slug)

	page = Select(route.Resolve("/geek"), snap)
	require.Equal(t, TabTech, page.Geek.Tab)
	require.Empty(t, page.Geek.Groups)
}

func TestSelectEssaysAndCategories(t *testing.T) {
	t.Parallel()

	snap := loaded(
		post("calm", 0, "心智与成长"),
		post("sleep", 0, "Body & Life"),
		post("compound", 0, "Wealth"),
		post("diary", 0, "随笔"),
		post("tech-life", 0, "Tech Life"),
		post("reading-life", 0, "Life", "Reading"),
		post("random", 0, "Misc"),
	)
	snap.Posts[1].Tags = []string{"sleep", "health"}

	page := Select(route.Resolve("/essays"), snap)
	require.Equal(t, KindEssays, page.Kind)
	require.Len(t, page.Essays.Posts, 4)
	require.Nil(t, page.Essays.Category)
	require.Equal(t, []CategoryCount{
		{Name: "心智与成长", Count: 1},
		{Name: "Body & Life", Count: 1},
		{Name: "Wealth", Count: 1},
		{Name: "随笔", Count: 1},
	}, page.Essays.Cloud)

	page = Select(route.Resolve("/category/mind"), snap)
	require.Equal(t, "心智与身体 (Mind & Body)", page.Title)
	require.Len(t, page.Essays.Posts, 2)

	page = Select(route.Resolve("/category/unknown"), snap)
	require.Equal(t, "文章列表", page.Title)
	require.Len(t, page.Essays.Posts, 4)

	page = SelectWithQuery(route.Resolve("/essays"), snap, "HEALTH")
	require.Len(t, page.Essays.Posts, 1)
	require.Equal(t, "sleep", page.Essays.Posts[0].Slug)
	require.Equal(t, "HEALTH", page.Essays.Query)
}

func TestPostLayout(t *testing.T) {
	t.Parallel()

	require.Equal(t, "shelf", PostLayout(post("a", 0, "书架")))
	require.Equal(t, "cinema", PostLayout(post("b", 0, "Games")))
	require.Equal(t, "cinema", PostLayout(post("c", 0, "Films")))
	require.Equal(t, "article", PostLayout(post("d", 0, "Mind")))
}

func TestSelectorMemoisesPerGeneration(t *testing.T) {
	t.Parallel()

	s := NewSelector()
	r := route.Route{Path: route.Post, Slug: "x"}

	loading := content.Snapshot{Loading: true}
	require.Equal(t, KindLoading, s.Select(r, loading, "").Kind)

	first := loaded(post("x", 0, "Tech"))
	require.Equal(t, KindPost, s.Select(r, first, "").Kind)

	// same generation: memoised page is returned even if the caller passes other posts
	same := first
	same.Posts = nil
	require.Equal(t, KindPost, s.Select(r, same, "").Kind)

	next := content.Snapshot{Generation: 2}
	require.Equal(t, KindPostNotFound, s.Select(r, next, "").Kind)
}
