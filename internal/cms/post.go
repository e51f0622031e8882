package cms

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// ErrInvalidPost is returned by ParsePost when a record lacks the fields every view relies on.
var ErrInvalidPost = errors.New("cms: invalid post")

const (
	// PlaceholderImage is used when a post carries no usable image.
	PlaceholderImage = "https://picsum.photos/seed/wp/800/400"
	defaultAuthor    = "Admin"
	excerptRunes     = 150
	displayDate      = "Jan 2, 2006"
	wpTimeLayout     = "2006-01-02T15:04:05"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	ugcPolicy    = newContentPolicy()

	numericRating = regexp.MustCompile(`^\d+(\.\d+)?$`)
	looseRating   = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)(star|stars|星|分)$`)
)

// Post is a validated content item. Values are produced by ParsePost (or the seed
// collection) and treated as read-only by every consumer.
type Post struct {
	ID          string
	Slug        string
	Title       string
	Excerpt     string
	Content     string
	Author      string
	Date        string
	PublishedAt time.Time
	ModifiedAt  time.Time
	ReadTime    string
	Tags        []string
	Categories  []string
	ImageURL    string
	Rating      float64
	Meta        Meta
}

// Meta carries the custom fields attached to library and game entries.
type Meta struct {
	Rating     float64
	Creator    string
	Platforms  []string
	Status     string
	PlayStatus string
	MediaType  string
	GameLink   string
	DoubanLink string
}

// Terms returns the categories followed by the tags.
func (p Post) Terms() []string {
	out := make([]string, 0, len(p.Categories)+len(p.Tags))
	out = append(out, p.Categories...)
	return append(out, p.Tags...)
}

type wpRendered struct {
	Rendered string `json:"rendered"`
}

type wpTerm struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Taxonomy string `json:"taxonomy"`
}

type wpPost struct {
	ID               json.Number     `json:"id"`
	Slug             string          `json:"slug"`
	Date             string          `json:"date"`
	Modified         string          `json:"modified"`
	Title            wpRendered      `json:"title"`
	Excerpt          wpRendered      `json:"excerpt"`
	Content          wpRendered      `json:"content"`
	FeaturedMediaURL string          `json:"featured_media_url"`
	ACF              json.RawMessage `json:"acf"`
	Embedded         wpEmbedded      `json:"_embedded"`
}

type wpEmbedded struct {
	Author []struct {
		Name string `json:"name"`
	} `json:"author"`
	FeaturedMedia []struct {
		SourceURL string `json:"source_url"`
	} `json:"wp:featuredmedia"`
	Terms [][]wpTerm `json:"wp:term"`
}

type wpACF struct {
	Rating     json.RawMessage `json:"rating"`
	Platform   json.RawMessage `json:"platform"`
	PlayStatus string          `json:"play_status"`
	GameLink   string          `json:"game_link"`
	MediaType  string          `json:"media_type"`
	Creator    string          `json:"creator"`
	Status     string          `json:"status"`
	DoubanLink string          `json:"douban_link"`
}

// ParsePost validates a raw WordPress post (or page) record and converts it to a Post.
func ParsePost(raw []byte) (Post, error) {
	var wp wpPost
	if err := json.Unmarshal(raw, &wp); err != nil {
		return Post{}, fmt.Errorf("%w: %v", ErrInvalidPost, err)
	}
	id := strings.TrimSpace(wp.ID.String())
	if id == "" || id == "0" {
		return Post{}, fmt.Errorf("%w: missing id", ErrInvalidPost)
	}
	slug := strings.TrimSpace(wp.Slug)
	if slug == "" {
		return Post{}, fmt.Errorf("%w: post %s has no slug", ErrInvalidPost, id)
	}

	content := wp.Content.Rendered
	published := parseWPTime(wp.Date)

	post := Post{
		ID:          id,
		Slug:        slug,
		Title:       html.UnescapeString(strings.TrimSpace(wp.Title.Rendered)),
		Excerpt:     Excerpt(wp.Excerpt.Rendered),
		Content:     SanitizeHTML(content),
		Author:      defaultAuthor,
		PublishedAt: published,
		ModifiedAt:  parseWPTime(wp.Modified),
		ReadTime:    ReadTime(content),
		ImageURL:    resolveImage(wp, content),
	}
	if post.Title == "" {
		post.Title = prettifySlug(slug)
	}
	if !published.IsZero() {
		post.Date = published.Format(displayDate)
	}
	if len(wp.Embedded.Author) > 0 && strings.TrimSpace(wp.Embedded.Author[0].Name) != "" {
		post.Author = strings.TrimSpace(wp.Embedded.Author[0].Name)
	}

	var tags []string
	for _, group := range wp.Embedded.Terms {
		for _, term := range group {
			name := html.UnescapeString(strings.TrimSpace(term.Name))
			if name == "" {
				continue
			}
			switch term.Taxonomy {
			case "post_tag":
				tags = append(tags, name)
			case "category":
				post.Categories = append(post.Categories, name)
			}
		}
	}
	post.Tags, post.Rating = splitRatingTag(tags)

	if meta, ok := parseACF(wp.ACF); ok {
		post.Meta = meta
		if meta.Rating != 0 {
			post.Rating = meta.Rating
		}
	}
	return post, nil
}

// Excerpt strips markup from rendered HTML and truncates it to the listing length.
func Excerpt(rendered string) string {
	text := StripTags(rendered)
	if utf8.RuneCountInString(text) > excerptRunes {
		text = string([]rune(text)[:excerptRunes])
	}
	return text + "..."
}

// StripTags reduces rendered HTML to unescaped plain text.
func StripTags(rendered string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(rendered)))
}

// ReadTime estimates reading time at one minute per thousand characters.
func ReadTime(content string) string {
	minutes := int(math.Ceil(float64(utf8.RuneCountInString(content)) / 1000))
	return strconv.Itoa(minutes) + " min read"
}

// SanitizeHTML applies the user-generated-content policy to rendered CMS markup.
func SanitizeHTML(rendered string) string {
	return ugcPolicy.Sanitize(rendered)
}

func newContentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("loading", "decoding", "srcset", "sizes").OnElements("img")
	return p
}

// resolveImage walks the featured-image chain: custom field, embedded media,
// first inline image, placeholder.
func resolveImage(wp wpPost, content string) string {
	if u := strings.TrimSpace(wp.FeaturedMediaURL); u != "" {
		return u
	}
	if len(wp.Embedded.FeaturedMedia) > 0 {
		if u := strings.TrimSpace(wp.Embedded.FeaturedMedia[0].SourceURL); u != "" {
			return u
		}
	}
	if u := firstImage(content); u != "" {
		return u
	}
	return PlaceholderImage
}

func firstImage(content string) string {
	if !strings.Contains(content, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}

// splitRatingTag finds the first rating-shaped tag, preferring bare numbers, and
// returns the remaining display tags together with the parsed rating.
func splitRatingTag(tags []string) ([]string, float64) {
	var (
		found  = -1
		rating float64
	)
	for i, t := range tags {
		if numericRating.MatchString(t) {
			if v, err := strconv.ParseFloat(t, 64); err == nil {
				found, rating = i, v
				break
			}
		}
	}
	if found < 0 {
		for i, t := range tags {
			if m := looseRating.FindStringSubmatch(t); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					found, rating = i, v
					break
				}
			}
		}
	}
	if found < 0 {
		return tags, 0
	}
	ratingTag := tags[found]
	display := make([]string, 0, len(tags)-1)
	for _, t := range tags {
		if t != ratingTag {
			display = append(display, t)
		}
	}
	return display, rating
}

// parseACF tolerates the shapes WordPress emits: an object, an empty array when no
// fields are set, or false.
func parseACF(raw json.RawMessage) (Meta, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || !strings.HasPrefix(trimmed, "{") {
		return Meta{}, false
	}
	var acf wpACF
	if err := json.Unmarshal(raw, &acf); err != nil {
		return Meta{}, false
	}
	return Meta{
		Rating:     flexibleFloat(acf.Rating),
		Creator:    strings.TrimSpace(acf.Creator),
		Platforms:  flexibleStrings(acf.Platform),
		Status:     strings.TrimSpace(acf.Status),
		PlayStatus: strings.TrimSpace(acf.PlayStatus),
		MediaType:  strings.TrimSpace(acf.MediaType),
		GameLink:   strings.TrimSpace(acf.GameLink),
		DoubanLink: strings.TrimSpace(acf.DoubanLink),
	}, true
}

func flexibleFloat(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v
		}
	}
	return 0
}

func flexibleStrings(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return compact(list)
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return compact([]string{single})
	}
	return nil
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseWPTime(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{wpTimeLayout, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
