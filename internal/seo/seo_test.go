package seo

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSite = Site{
	Name:          "疯文斋",
	Description:   "default description",
	BaseURL:       "https://fengwz.me/",
	DefaultImage:  "https://fengwz.me/default-og-image.jpg",
	TwitterHandle: "@sullivan617",
}

func TestBuildDefaults(t *testing.T) {
	t.Parallel()

	meta := Build(testSite, Page{})
	require.Equal(t, "疯文斋", meta.Title)
	require.Equal(t, "default description", meta.Description)
	require.Equal(t, "https://fengwz.me", meta.Canonical)
	require.Equal(t, "website", meta.OG.Type)
	require.Equal(t, testSite.DefaultImage, meta.OG.Image)
	require.Equal(t, "summary_large_image", meta.Twitter.Card)
}

func TestBuildPage(t *testing.T) {
	t.Parallel()

	meta := Build(testSite, Page{Title: "Hello", Description: "desc", Image: "https://img/x.jpg", Path: "/post/hello", Type: "article"})
	require.Equal(t, "Hello | 疯文斋", meta.Title)
	require.Equal(t, "Hello | 疯文斋", meta.OG.Title)
	require.Equal(t, "https://fengwz.me/post/hello", meta.OG.URL)
	require.Equal(t, "article", meta.OG.Type)
	require.Equal(t, "https://img/x.jpg", meta.Twitter.Image)
}

func TestBlogPostingOmitsEmpty(t *testing.T) {
	t.Parallel()

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(JSON(BlogPosting(Article{Headline: "H", Author: "Feng"}))), &decoded))
	require.Equal(t, "BlogPosting", decoded["@type"])
	require.NotContains(t, decoded, "image")
	require.Equal(t, "Feng", decoded["author"].(map[string]any)["name"])
}

func TestBreadcrumbPositions(t *testing.T) {
	t.Parallel()

	list := BreadcrumbList([]BreadcrumbItem{{Name: "Home", Item: "/"}, {Name: "Essays", Item: "/essays"}})
	items := list["itemListElement"].([]map[string]any)
	require.Len(t, items, 2)
	require.Equal(t, 2, items[1]["position"])
}

func TestWriteSitemap(t *testing.T) {
	t.Parallel()

	modified := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	entries := append(append([]Entry{}, StaticEntries...), PostEntry("hello-world", modified))

	var buf bytes.Buffer
	require.NoError(t, WriteSitemap(&buf, Sitemap("https://fengwz.me", entries)))

	var decoded struct {
		URLs []URL `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.URLs, len(StaticEntries)+1)
	require.Equal(t, "https://fengwz.me", decoded.URLs[0].Loc)
	require.Equal(t, "1.0", decoded.URLs[0].Priority)
	require.Equal(t, "daily", decoded.URLs[0].ChangeFreq)

	last := decoded.URLs[len(decoded.URLs)-1]
	require.Equal(t, "https://fengwz.me/post/hello-world", last.Loc)
	require.Equal(t, "2024-05-01T08:30:00Z", last.LastMod)
	require.Equal(t, "0.7", last.Priority)
	require.Contains(t, buf.String(), `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`)
}
