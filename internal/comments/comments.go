// Package comments persists reader comments per post in a durable key/value store.
package comments

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	keyPrefix  = "garden.comments."
	dateLayout = "January 2, 2006"
	maxAuthor  = 80
	maxContent = 4000
)

var (
	// ErrMissingAuthor is returned when a comment has no author name.
	ErrMissingAuthor = errors.New("comments: author is required")
	// ErrMissingContent is returned when a comment has no text.
	ErrMissingContent = errors.New("comments: content is required")
	// ErrMissingPost is returned when no post id is supplied.
	ErrMissingPost = errors.New("comments: post id is required")
)

// Comment is a reader comment on a post.
type Comment struct {
	ID      string `json:"id"`
	PostID  string `json:"postId"`
	Author  string `json:"author"`
	Content string `json:"content"`
	Date    string `json:"date"`
}

// KV is a string key/value store.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Store reads and writes the comment list of each post, newest first.
type Store struct {
	kv  KV
	now func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewStore wraps a key/value backend.
func NewStore(kv KV) *Store {
	return &Store{
		kv:      kv,
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Key returns the storage key for a post's comments.
func Key(postID string) string {
	return keyPrefix + postID
}

// List returns the comments for postID, newest first. An absent or malformed value
// yields an empty list.
func (s *Store) List(ctx context.Context, postID string) ([]Comment, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return nil, ErrMissingPost
	}
	raw, ok, err := s.kv.Get(ctx, Key(postID))
	if err != nil {
		return nil, fmt.Errorf("comments: read %s: %w", postID, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []Comment{}, nil
	}
	var list []Comment
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return []Comment{}, nil
	}
	return list, nil
}

// Add prepends a new comment to the post's list and persists it. Writes to the same
// post are last-write-wins.
func (s *Store) Add(ctx context.Context, postID, author, content string) (Comment, error) {
	postID = strings.TrimSpace(postID)
	author = truncate(strings.TrimSpace(author), maxAuthor)
	content = truncate(strings.TrimSpace(content), maxContent)
	switch {
	case postID == "":
		return Comment{}, ErrMissingPost
	case author == "":
		return Comment{}, ErrMissingAuthor
	case content == "":
		return Comment{}, ErrMissingContent
	}

	existing, err := s.List(ctx, postID)
	if err != nil {
		return Comment{}, err
	}

	now := s.now()
	comment := Comment{
		ID:      s.newID(now),
		PostID:  postID,
		Author:  author,
		Content: content,
		Date:    now.Format(dateLayout),
	}
	updated := append([]Comment{comment}, existing...)
	payload, err := json.Marshal(updated)
	if err != nil {
		return Comment{}, fmt.Errorf("comments: encode: %w", err)
	}
	if err := s.kv.Set(ctx, Key(postID), string(payload)); err != nil {
		return Comment{}, fmt.Errorf("comments: write %s: %w", postID, err)
	}
	return comment, nil
}

func (s *Store) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
