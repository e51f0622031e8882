package view

import (
	"strings"

	"fengwz.me/garden/internal/cms"
)

var (
	homeExcluded = []string{
		"books", "reading", "书架", "书籍",
		"games", "gaming", "游戏",
		"media", "movies", "films", "影音",
	}

	essayAllowed   = []string{"mind", "心智", "body", "身体", "wealth", "财富", "journal", "随笔", "life", "生活"}
	essayForbidden = []string{"tech", "技术", "game", "游戏", "book", "书", "read", "media", "影音", "business", "商业", "project", "项目", "achievement", "成果"}

	gameKeywords  = []string{"game", "游戏"}
	bookKeywords  = []string{"book", "read", "library", "书", "阅读"}
	mediaKeywords = []string{"media", "movie", "film", "影音"}
)

// EssayCategory describes a /category/<slug> view.
type EssayCategory struct {
	Slug        string
	Title       string
	Description string
	Names       []string
}

// essayCategories maps category slugs to the category names they collect. Mind and
// Body share one view; "body" remains addressable on its own.
var essayCategories = map[string]EssayCategory{
	"business": {
		Slug:        "business",
		Title:       "商业与运营",
		Description: "用工程思维解构商业挑战。从 B2B 销售方法论到数字化转型，关于增长的实战复盘。",
		Names:       []string{"商业与运营", "Business", "商业", "运营"},
	},
	"mind": {
		Slug:        "mind",
		Title:       "心智与身体 (Mind & Body)",
		Description: "在无序的世界中重建内在秩序。从焦虑自救到 Body Bio-hacking，用传统智慧与科学锚定身心。",
		Names:       []string{"心智与成长", "Mind", "心智", "心理", "Self", "身体使用手册", "Body", "Life", "健康", "Body & Life"},
	},
	"body": {
		Slug:        "body",
		Title:       "身体使用手册",
		Description: "中医视角、亲密关系与精力管理",
		Names:       []string{"身体使用手册", "Body", "Life", "健康", "Body & Life"},
	},
	"wealth": {
		Slug:        "wealth",
		Title:       "财富与策略",
		Description: "在纷繁复杂的经济波动中，寻找确定性的价值。关于复利、周期与资产配置的思考。",
		Names:       []string{"财富与策略", "Wealth", "投资", "Strategy"},
	},
	"journal": {
		Slug:        "journal",
		Title:       "随笔",
		Description: "日常碎片、灵感记录与未归档的思考",
		Names:       []string{"随笔", "Journal", "生活与随笔", "生活", "Daily", "Notes", "Uncategorized", "未分类"},
	},
}

// HomeStream returns posts that belong on the home page, leaving out library, game
// and media entries. Posts without categories always stay.
func HomeStream(posts []cms.Post) []cms.Post {
	return filter(posts, func(p cms.Post) bool {
		return !anyContains(p.Categories, homeExcluded)
	})
}

// IsEssay reports whether a post belongs to the essays section: it needs an allowed
// category keyword and no forbidden one.
func IsEssay(p cms.Post) bool {
	return anyContains(p.Categories, essayAllowed) && !anyContains(p.Categories, essayForbidden)
}

// Essays filters posts to essays, then by category slug when it is known, then by a
// title/tag search when no category is given.
func Essays(posts []cms.Post, categorySlug, query string) []cms.Post {
	results := filter(posts, IsEssay)
	if categorySlug != "" {
		if cat, ok := essayCategories[categorySlug]; ok {
			results = filter(results, func(p cms.Post) bool {
				return anyContainsFold(p.Categories, cat.Names)
			})
		}
		return results
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return results
	}
	return filter(results, func(p cms.Post) bool {
		if strings.Contains(strings.ToLower(p.Title), query) {
			return true
		}
		return anyContains(p.Tags, []string{query})
	})
}

// CategoryCount is an entry in the essays category cloud.
type CategoryCount struct {
	Name  string
	Count int
}

// CategoryCloud counts essay categories in first-seen order.
func CategoryCloud(posts []cms.Post) []CategoryCount {
	var out []CategoryCount
	index := map[string]int{}
	for _, p := range filter(posts, IsEssay) {
		for _, c := range p.Categories {
			if i, ok := index[c]; ok {
				out[i].Count++
				continue
			}
			index[c] = len(out)
			out = append(out, CategoryCount{Name: c, Count: 1})
		}
	}
	return out
}

// LookupCategory returns the category view for slug, falling back to a generic heading.
func LookupCategory(slug string) EssayCategory {
	if cat, ok := essayCategories[slug]; ok {
		return cat
	}
	return EssayCategory{Slug: slug, Title: "文章列表", Description: "商业、心智、身体与财富的复利笔记。"}
}

// Group is a titled set of posts, used for rating shelves.
type Group struct {
	Key   string
	Title string
	Posts []cms.Post
}

// Library tab names.
const (
	TabBooks     = "books"
	TabKnowledge = "knowledge"
	TabMedia     = "media"
	TabGames     = "games"
	TabTech      = "engineering"
)

// LibraryTab normalises a /library/<tab> slug.
func LibraryTab(slug string) string {
	switch slug {
	case TabKnowledge, TabMedia:
		return slug
	default:
		return TabBooks
	}
}

// GeekTab normalises a /geek/<tab> slug.
func GeekTab(slug string) string {
	if slug == TabGames {
		return TabGames
	}
	return TabTech
}

// Books returns posts filed under an exact book category name.
func Books(posts []cms.Post) []cms.Post {
	return filter(posts, func(p cms.Post) bool {
		return anyEquals(p.Categories, []string{"books"}, []string{"书籍推荐", "书架"})
	})
}

// Knowledge returns posts filed under an exact course/knowledge category name.
func Knowledge(posts []cms.Post) []cms.Post {
	return filter(posts, func(p cms.Post) bool {
		return anyEquals(p.Categories, []string{"knowledge", "courses"}, []string{"课程与知识"})
	})
}

// Media returns posts filed under an exact media category name.
func Media(posts []cms.Post) []cms.Post {
	return filter(posts, func(p cms.Post) bool {
		return anyEquals(p.Categories, []string{"media"}, []string{"影音记录", "影音"})
	})
}

// Games returns posts filed under the games category.
func Games(posts []cms.Post) []cms.Post {
	return filter(posts, func(p cms.Post) bool {
		return anyEquals(p.Categories, []string{"games"}, []string{"游戏"})
	})
}

// BookShelves groups books by rating: 5 and up, [4,5), [1,4) and the rest.
// Every book lands on exactly one shelf.
func BookShelves(books []cms.Post) []Group {
	return nonEmpty([]Group{
		{Key: "masterpiece", Title: "⭐⭐⭐⭐⭐ 力荐 (Masterpiece)", Posts: filter(books, rated(func(r float64) bool { return r >= 5 }))},
		{Key: "great", Title: "⭐⭐⭐⭐ 推荐 (Great)", Posts: filter(books, rated(func(r float64) bool { return r >= 4 && r < 5 }))},
		{Key: "good", Title: "⭐⭐⭐ 还行 (Good)", Posts: filter(books, rated(func(r float64) bool { return r >= 1 && r < 4 }))},
		{Key: "wishlist", Title: "📖 想读 / 未评 (Wishlist)", Posts: filter(books, rated(func(r float64) bool { return r < 1 }))},
	})
}

// MediaShelves groups media entries: 5 and up, [1,5) and the rest.
func MediaShelves(media []cms.Post) []Group {
	return nonEmpty([]Group{
		{Key: "selections", Title: "必看精选 (Selections)", Posts: filter(media, rated(func(r float64) bool { return r >= 5 }))},
		{Key: "records", Title: "影音记录 (Records)", Posts: filter(media, rated(func(r float64) bool { return r >= 1 && r < 5 }))},
		{Key: "wishlist", Title: "想看 (Wishlist)", Posts: filter(media, rated(func(r float64) bool { return r < 1 }))},
	})
}

// GameShelves groups games by their effective rating: ≥4.5, 3.5–4.5 and below.
func GameShelves(games []cms.Post) []Group {
	return nonEmpty([]Group{
		{Key: "masterpiece", Title: "⭐⭐⭐⭐⭐ 灵感神作 (Masterpiece)", Posts: filter(games, func(p cms.Post) bool { return p.Rating >= 4.5 })},
		{Key: "great", Title: "⭐⭐⭐⭐ 值得体验 (Great)", Posts: filter(games, func(p cms.Post) bool { return p.Rating >= 3.5 && p.Rating < 4.5 })},
		{Key: "others", Title: "⭐⭐⭐ 休闲娱乐 (Others)", Posts: filter(games, func(p cms.Post) bool { return p.Rating < 3.5 })},
	})
}

// PostLayout picks the detail layout for a post: "shelf" for books, "cinema" for
// games and media, "article" otherwise.
func PostLayout(p cms.Post) string {
	switch {
	case anyContains(p.Categories, bookKeywords):
		return "shelf"
	case anyContains(p.Categories, gameKeywords), anyContains(p.Categories, mediaKeywords):
		return "cinema"
	default:
		return "article"
	}
}

func rated(match func(float64) bool) func(cms.Post) bool {
	return func(p cms.Post) bool { return match(p.Rating) }
}

func filter(posts []cms.Post, keep func(cms.Post) bool) []cms.Post {
	var out []cms.Post
	for _, p := range posts {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func nonEmpty(groups []Group) []Group {
	out := groups[:0]
	for _, g := range groups {
		if len(g.Posts) > 0 {
			out = append(out, g)
		}
	}
	return out
}
