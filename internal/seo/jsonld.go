package seo

import "encoding/json"

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// WebSite returns a WebSite schema with an optional SearchAction.
func WebSite(name, url, searchActionURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if searchActionURL != "" {
		m["potentialAction"] = map[string]any{
			"@type":       "SearchAction",
			"target":      searchActionURL + "{search_term_string}",
			"query-input": "required name=search_term_string",
		}
	}
	return m
}

// Person returns the site author as a Person schema.
func Person(name, url, jobTitle string, sameAs []string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Person",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if jobTitle != "" {
		m["jobTitle"] = jobTitle
	}
	if len(sameAs) > 0 {
		m["sameAs"] = sameAs
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// Article describes a blog post.
type Article struct {
	Headline      string
	URL           string
	Image         string
	Author        string
	Description   string
	DatePublished string
	DateModified  string
	Keywords      []string
}

// BlogPosting returns a BlogPosting schema for a.
func BlogPosting(a Article) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "BlogPosting",
		"headline": a.Headline,
	}
	if a.URL != "" {
		m["url"] = a.URL
		m["mainEntityOfPage"] = a.URL
	}
	if a.Image != "" {
		m["image"] = a.Image
	}
	if a.Author != "" {
		m["author"] = map[string]any{"@type": "Person", "name": a.Author}
	}
	if a.Description != "" {
		m["description"] = a.Description
	}
	if a.DatePublished != "" {
		m["datePublished"] = a.DatePublished
	}
	if a.DateModified != "" {
		m["dateModified"] = a.DateModified
	}
	if len(a.Keywords) > 0 {
		m["keywords"] = a.Keywords
	}
	return m
}
