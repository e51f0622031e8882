package route

import "strings"

// sections are destinations that map verbatim to a top-level path.
var sections = map[string]struct{}{
	"about":    {},
	"library":  {},
	"essays":   {},
	"projects": {},
	"resume":   {},
}

// passThrough prefixes are kept as-is beneath the root.
var passThrough = []string{"geek", "library", "category/", "post/"}

// Destination converts an abstract navigation target ("about", "geek/games",
// "post/x", or a bare post slug) into a URL path.
func Destination(dest string) string {
	if dest == "" {
		return "/"
	}
	if _, ok := sections[dest]; ok {
		return "/" + dest
	}
	for _, prefix := range passThrough {
		if strings.HasPrefix(dest, prefix) {
			return "/" + dest
		}
	}
	return "/post/" + dest
}
