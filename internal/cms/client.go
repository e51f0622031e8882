package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a CMS resource cannot be located.
	ErrNotFound = errors.New("cms: not found")
	// ErrNotConfigured is returned by remote calls when no base URL is set.
	ErrNotConfigured = errors.New("cms: base url not configured")
)

const (
	defaultTimeout = 5 * time.Second
	defaultPerPage = 100
	maxPerPage     = 100
	apiPrefix      = "wp-json/wp/v2"
)

// Client provides read-only access to the WordPress REST API.
type Client struct {
	baseURL    string
	perPage    int
	contentDir string
	http       *http.Client
}

// NewClient constructs a Client for the WordPress installation at baseURL. An empty
// base URL yields a client whose remote calls report ErrNotConfigured.
func NewClient(baseURL string, timeout time.Duration, perPage int) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if perPage <= 0 || perPage > maxPerPage {
		perPage = defaultPerPage
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		perPage:    perPage,
		contentDir: defaultContentDir,
		http:       &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient replaces the underlying HTTP client (primarily for tests).
func (c *Client) SetHTTPClient(hc *http.Client) {
	if c == nil || hc == nil {
		return
	}
	c.http = hc
}

// Configured reports whether remote calls will be attempted.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// BaseURL returns the normalised WordPress base URL.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// FetchPosts returns the most recent posts with embedded media, authors and terms.
func (c *Client) FetchPosts(ctx context.Context) ([]Post, error) {
	q := url.Values{}
	q.Set("_embed", "1")
	q.Set("per_page", strconv.Itoa(c.pageSize()))
	return c.fetchPostList(ctx, "posts", q)
}

// FetchStickyPosts returns posts flagged as sticky in WordPress.
func (c *Client) FetchStickyPosts(ctx context.Context) ([]Post, error) {
	q := url.Values{}
	q.Set("_embed", "1")
	q.Set("sticky", "true")
	q.Set("per_page", strconv.Itoa(c.pageSize()))
	return c.fetchPostList(ctx, "posts", q)
}

// FetchPostsByTag resolves the tag slug to its id and returns up to limit posts carrying it.
// An unknown tag yields an empty list.
func (c *Client) FetchPostsByTag(ctx context.Context, tag string, limit int) ([]Post, error) {
	tag = sanitizeSlug(tag)
	if tag == "" {
		return nil, nil
	}
	if limit <= 0 || limit > maxPerPage {
		limit = c.pageSize()
	}

	tq := url.Values{}
	tq.Set("slug", tag)
	var terms []struct {
		ID int64 `json:"id"`
	}
	if _, err := c.getJSON(ctx, "tags", tq, &terms); err != nil {
		return nil, fmt.Errorf("cms: resolve tag %q: %w", tag, err)
	}
	if len(terms) == 0 || terms[0].ID <= 0 {
		return nil, nil
	}

	q := url.Values{}
	q.Set("_embed", "1")
	q.Set("tags", strconv.FormatInt(terms[0].ID, 10))
	q.Set("per_page", strconv.Itoa(limit))
	return c.fetchPostList(ctx, "posts", q)
}

// FetchPage returns the WordPress page with the given slug, parsed like a post.
func (c *Client) FetchPage(ctx context.Context, slug string) (Post, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Post{}, ErrNotFound
	}
	q := url.Values{}
	q.Set("slug", slug)
	q.Set("_embed", "1")
	posts, err := c.fetchPostList(ctx, "pages", q)
	if err != nil {
		return Post{}, err
	}
	if len(posts) == 0 {
		return Post{}, ErrNotFound
	}
	return posts[0], nil
}

// PostRef is the minimal listing used to build the sitemap.
type PostRef struct {
	Slug       string
	ModifiedAt time.Time
}

// ListPostRefs walks every page of the posts collection. WordPress answers 400 once the
// page number runs past the end, which terminates the walk without error.
func (c *Client) ListPostRefs(ctx context.Context) ([]PostRef, error) {
	var refs []PostRef
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(maxPerPage))
		q.Set("page", strconv.Itoa(page))
		q.Set("_fields", "id,slug,modified")

		var batch []struct {
			Slug     string `json:"slug"`
			Modified string `json:"modified"`
		}
		header, err := c.getJSON(ctx, "posts", q, &batch)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) && se.Code == http.StatusBadRequest {
				break
			}
			return refs, err
		}
		if len(batch) == 0 {
			break
		}
		for _, item := range batch {
			slug := strings.TrimSpace(item.Slug)
			if slug == "" {
				continue
			}
			refs = append(refs, PostRef{Slug: slug, ModifiedAt: parseWPTime(item.Modified)})
		}
		if total, err := strconv.Atoi(header.Get("X-WP-TotalPages")); err == nil && page >= total {
			break
		}
	}
	return refs, nil
}

// StatusError reports a non-2xx response from WordPress.
type StatusError struct {
	Code     int
	Endpoint string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cms: %s returned status %d", e.Endpoint, e.Code)
}

func (c *Client) pageSize() int {
	if c == nil || c.perPage <= 0 {
		return defaultPerPage
	}
	return c.perPage
}

func (c *Client) fetchPostList(ctx context.Context, collection string, q url.Values) ([]Post, error) {
	var raw []json.RawMessage
	if _, err := c.getJSON(ctx, collection, q, &raw); err != nil {
		return nil, err
	}
	posts := make([]Post, 0, len(raw))
	for _, item := range raw {
		post, err := ParsePost(item)
		if err != nil {
			// Records that fail validation are dropped; the rest of the listing stays usable.
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (c *Client) getJSON(ctx context.Context, collection string, q url.Values, dst any) (http.Header, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	endpoint, err := url.JoinPath(c.baseURL, apiPrefix, collection)
	if err != nil {
		return nil, err
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resp.Header, ErrNotFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Header, &StatusError{Code: resp.StatusCode, Endpoint: collection}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return resp.Header, fmt.Errorf("cms: decode %s: %w", collection, err)
	}
	return resp.Header, nil
}
