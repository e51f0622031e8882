package cms

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

const defaultContentDir = "content"

// Page is a standalone page (about, projects, résumé notes) sourced from WordPress
// pages or, when the CMS is unavailable, from local markdown.
type Page struct {
	Slug      string
	Title     string
	Summary   string
	Body      string // sanitised HTML
	ImageURL  string
	UpdatedAt time.Time
	Source    string // "cms" or "local"
}

type pageFrontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	Image     string `yaml:"image"`
	UpdatedAt string `yaml:"updated_at"`
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// SetContentDir configures the fallback directory for markdown pages.
func (c *Client) SetContentDir(dir string) {
	if c == nil {
		return
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = defaultContentDir
	}
	c.contentDir = dir
}

// ContentDir returns the configured fallback directory.
func (c *Client) ContentDir() string {
	if c == nil || strings.TrimSpace(c.contentDir) == "" {
		return defaultContentDir
	}
	return c.contentDir
}

// GetPage fetches a page from WordPress when configured, otherwise (or when the
// remote call fails) from <contentDir>/pages/<slug>.md.
func (c *Client) GetPage(ctx context.Context, slug string) (Page, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Page{}, ErrNotFound
	}
	if c.Configured() {
		post, err := c.FetchPage(ctx, slug)
		if err == nil {
			return Page{
				Slug:      post.Slug,
				Title:     post.Title,
				Summary:   strings.TrimSuffix(post.Excerpt, "..."),
				Body:      post.Content,
				ImageURL:  post.ImageURL,
				UpdatedAt: post.ModifiedAt,
				Source:    "cms",
			}, nil
		}
		if ctx.Err() != nil {
			return Page{}, ctx.Err()
		}
	}
	return readMarkdownPage(c.ContentDir(), slug)
}

func readMarkdownPage(contentDir, slug string) (Page, error) {
	file := filepath.Join(contentDir, "pages", slug+".md")
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Page{}, ErrNotFound
		}
		return Page{}, err
	}

	fm, body := splitFrontMatter(string(data))
	var front pageFrontMatter
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("cms: parse front matter %s: %w", file, err)
		}
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return Page{}, fmt.Errorf("cms: render %s: %w", file, err)
	}

	page := Page{
		Slug:      slug,
		Title:     firstNonEmpty(strings.TrimSpace(front.Title), prettifySlug(slug)),
		Summary:   strings.TrimSpace(front.Summary),
		Body:      SanitizeHTML(buf.String()),
		ImageURL:  strings.TrimSpace(front.Image),
		UpdatedAt: parseWPTime(front.UpdatedAt),
		Source:    "local",
	}
	if page.UpdatedAt.IsZero() {
		if info, err := os.Stat(file); err == nil {
			page.UpdatedAt = info.ModTime()
		}
	}
	return page, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func sanitizeSlug(slug string) string {
	slug = strings.TrimSpace(slug)
	slug = strings.Trim(slug, "/")
	if slug == "" || strings.Contains(slug, "..") || strings.ContainsAny(slug, "/\\") {
		return ""
	}
	return slug
}

func prettifySlug(slug string) string {
	parts := strings.Split(strings.TrimSpace(slug), "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(part)
		if runes[0] >= 'a' && runes[0] <= 'z' {
			runes[0] -= 'a' - 'A'
		}
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
