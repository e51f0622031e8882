package view

import (
	"strings"

	"fengwz.me/garden/internal/route"
)

// BackLink is the "back" affordance shown on a post page.
type BackLink struct {
	Dest  string
	URL   string
	Label string
}

type bucket struct {
	keywords []string
	dest     string
	label    string
}

// backBuckets is ordered; the first bucket with a keyword contained in any of the
// post's lower-cased categories wins.
var backBuckets = []bucket{
	{keywords: []string{"business", "商业", "projects", "项目", "achievements", "成果"}, dest: "projects", label: "Back to Business"},
	{keywords: []string{"games", "游戏"}, dest: "geek/games", label: "Back to Games"},
	{keywords: []string{"tech", "engineering", "技术", "gear"}, dest: "geek", label: "Back to Engineering"},
	{keywords: []string{"books", "书"}, dest: "library/books", label: "Back to Books"},
	{keywords: []string{"knowledge", "知识", "course"}, dest: "library/knowledge", label: "Back to Knowledge"},
	{keywords: []string{"media", "影音"}, dest: "library/media", label: "Back to Media"},
	{keywords: []string{"mind", "心智", "心理", "body", "身体", "life", "健康"}, dest: "category/mind", label: "Back to Mind & Body"},
	{keywords: []string{"wealth", "财富", "investment"}, dest: "category/wealth", label: "Back to Wealth"},
	{keywords: []string{"journal", "随笔", "daily"}, dest: "category/journal", label: "Back to Journal"},
}

var defaultBack = bucket{dest: "essays", label: "Back to Articles"}

// Back classifies a post by its categories into the section it should return to.
func Back(categories []string) BackLink {
	b := defaultBack
	for _, candidate := range backBuckets {
		if anyContains(categories, candidate.keywords) {
			b = candidate
			break
		}
	}
	return BackLink{Dest: b.dest, URL: route.Destination(b.dest), Label: b.label}
}

// anyContains reports whether some lower-cased value contains some keyword.
func anyContains(values, keywords []string) bool {
	for _, v := range values {
		lower := strings.ToLower(v)
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				return true
			}
		}
	}
	return false
}

// anyContainsFold is anyContains with keywords lower-cased as well.
func anyContainsFold(values, keywords []string) bool {
	for _, v := range values {
		lower := strings.ToLower(v)
		for _, k := range keywords {
			if strings.Contains(lower, strings.ToLower(k)) {
				return true
			}
		}
	}
	return false
}

// anyEquals reports whether some value matches exactly, or case-insensitively when
// listed in folded.
func anyEquals(values []string, folded, exact []string) bool {
	for _, v := range values {
		for _, f := range folded {
			if strings.ToLower(v) == f {
				return true
			}
		}
		for _, e := range exact {
			if v == e {
				return true
			}
		}
	}
	return false
}
