// Package seo builds meta tags, structured data and the sitemap.
package seo

import "strings"

// OpenGraph holds the og:* properties.
type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
}

// Twitter holds the twitter:* card properties.
type Twitter struct {
	Card        string
	Site        string
	Title       string
	Description string
	Image       string
}

// Meta is everything the layout renders into <head>.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	OG          OpenGraph
	Twitter     Twitter
	JSONLD      []string
}

// Site is the identity used when a page does not override it.
type Site struct {
	Name          string
	Description   string
	BaseURL       string
	DefaultImage  string
	TwitterHandle string
}

// Page is what a single page contributes to its meta tags.
type Page struct {
	Title       string
	Description string
	Image       string
	Path        string
	Type        string
}

// Build composes the meta tags for a page: "<title> | <site>" or the bare site name,
// falling back to the site description and default image.
func Build(site Site, page Page) Meta {
	title := site.Name
	if t := strings.TrimSpace(page.Title); t != "" {
		title = t + " | " + site.Name
	}
	description := strings.TrimSpace(page.Description)
	if description == "" {
		description = site.Description
	}
	image := strings.TrimSpace(page.Image)
	if image == "" {
		image = site.DefaultImage
	}
	kind := page.Type
	if kind == "" {
		kind = "website"
	}
	canonical := AbsoluteURL(site.BaseURL, page.Path)

	return Meta{
		Title:       title,
		Description: description,
		Canonical:   canonical,
		OG: OpenGraph{
			Title:       title,
			Description: description,
			Image:       image,
			Type:        kind,
			URL:         canonical,
			SiteName:    site.Name,
		},
		Twitter: Twitter{
			Card:        "summary_large_image",
			Site:        site.TwitterHandle,
			Title:       title,
			Description: description,
			Image:       image,
		},
	}
}

// AbsoluteURL joins a site base URL and a path.
func AbsoluteURL(base, path string) string {
	base = strings.TrimRight(base, "/")
	if path == "" || path == "/" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
