package seo

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// URL is a single sitemap entry.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	NS      string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Entry is a sitemap input before it is made absolute.
type Entry struct {
	Path       string
	ChangeFreq string
	Priority   float64
	Modified   time.Time
}

// StaticEntries are the fixed sections of the site.
var StaticEntries = []Entry{
	{Path: "/", ChangeFreq: "daily", Priority: 1.0},
	{Path: "/about", ChangeFreq: "monthly", Priority: 0.8},
	{Path: "/geek", ChangeFreq: "weekly", Priority: 0.8},
	{Path: "/library", ChangeFreq: "weekly", Priority: 0.8},
	{Path: "/essays", ChangeFreq: "weekly", Priority: 0.8},
	{Path: "/projects", ChangeFreq: "weekly", Priority: 0.8},
}

// PostEntry is the sitemap entry of a post.
func PostEntry(slug string, modified time.Time) Entry {
	return Entry{Path: "/post/" + slug, ChangeFreq: "weekly", Priority: 0.7, Modified: modified}
}

// Sitemap builds the entries for baseURL.
func Sitemap(baseURL string, entries []Entry) []URL {
	out := make([]URL, 0, len(entries))
	for _, e := range entries {
		u := URL{
			Loc:        AbsoluteURL(baseURL, e.Path),
			ChangeFreq: e.ChangeFreq,
		}
		if e.Priority > 0 {
			u.Priority = strconv.FormatFloat(e.Priority, 'f', 1, 64)
		}
		if !e.Modified.IsZero() {
			u.LastMod = e.Modified.UTC().Format(time.RFC3339)
		}
		out = append(out, u)
	}
	return out
}

// WriteSitemap encodes urls as a sitemaps.org urlset.
func WriteSitemap(w io.Writer, urls []URL) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(urlSet{NS: sitemapNS, URLs: urls}); err != nil {
		return fmt.Errorf("seo: encode sitemap: %w", err)
	}
	return enc.Flush()
}
