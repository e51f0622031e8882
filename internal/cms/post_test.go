package cms

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) []json.RawMessage {
	t.Helper()
	data, err := os.ReadFile("testdata/posts.json")
	require.NoError(t, err)
	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	return raw
}

func TestParsePostBookEntry(t *testing.T) {
	t.Parallel()

	post, err := ParsePost(loadFixture(t)[0])
	require.NoError(t, err)

	require.Equal(t, "101", post.ID)
	require.Equal(t, "sapiens", post.Slug)
	require.Equal(t, "Sapiens – Notes", post.Title)
	require.Equal(t, "Feng", post.Author)
	require.Equal(t, "Mar 5, 2024", post.Date)
	require.Equal(t, time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC), post.ModifiedAt)
	require.Equal(t, "A brief history of humankind....", post.Excerpt)
	require.Equal(t, "1 min read", post.ReadTime)
	require.Equal(t, "https://cdn.example.com/featured.jpg", post.ImageURL)
	require.NotContains(t, post.Content, "<script")
	require.Equal(t, []string{"Books"}, post.Categories)
	// rating tag removed from display tags, custom field rating wins
	require.Equal(t, []string{"history"}, post.Tags)
	require.InDelta(t, 4.5, post.Rating, 0.0001)
	require.Equal(t, "Yuval Noah Harari", post.Meta.Creator)
	require.Equal(t, "https://book.douban.com/subject/1/", post.Meta.DoubanLink)
}

func TestParsePostLooseRatingAndPlaceholder(t *testing.T) {
	t.Parallel()

	post, err := ParsePost(loadFixture(t)[1])
	require.NoError(t, err)

	require.Equal(t, "Admin", post.Author)
	require.Equal(t, PlaceholderImage, post.ImageURL)
	require.Equal(t, []string{"RPG"}, post.Tags)
	require.InDelta(t, 4.5, post.Rating, 0.0001)
	require.Equal(t, "...", post.Excerpt)
	if diff := cmp.Diff(Meta{}, post.Meta); diff != "" {
		t.Fatalf("expected empty meta (-want +got):\n%s", diff)
	}
}

func TestParsePostRejectsInvalidRecords(t *testing.T) {
	t.Parallel()

	_, err := ParsePost(loadFixture(t)[2])
	require.True(t, errors.Is(err, ErrInvalidPost))

	_, err = ParsePost([]byte(`{"id": 5, "slug": ""}`))
	require.True(t, errors.Is(err, ErrInvalidPost))

	_, err = ParsePost([]byte(`not json`))
	require.True(t, errors.Is(err, ErrInvalidPost))
}

func TestImageChainFallsBackToInlineImage(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"id": 7, "slug": "inline", "content": {"rendered": "<p>x</p><img alt=\"a\" src=\"https://cdn.example.com/a.png\"><img src=\"https://cdn.example.com/b.png\">"}}`)
	post, err := ParsePost(raw)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/a.png", post.ImageURL)

	raw = []byte(`{"id": 8, "slug": "custom", "featured_media_url": "https://cdn.example.com/custom.jpg", "_embedded": {"wp:featuredmedia": [{"source_url": "https://cdn.example.com/embedded.jpg"}]}}`)
	post, err = ParsePost(raw)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/custom.jpg", post.ImageURL)
}

func TestSplitRatingTagPrefersNumericTags(t *testing.T) {
	t.Parallel()

	tags, rating := splitRatingTag([]string{"5stars", "essay", "3.5"})
	require.Equal(t, []string{"5stars", "essay"}, tags)
	require.InDelta(t, 3.5, rating, 0.0001)

	tags, rating = splitRatingTag([]string{"8分", "film"})
	require.Equal(t, []string{"film"}, tags)
	require.InDelta(t, 8, rating, 0.0001)

	tags, rating = splitRatingTag([]string{"v2.0", "film"})
	require.Equal(t, []string{"v2.0", "film"}, tags)
	require.Zero(t, rating)
}

func TestExcerptTruncatesByRune(t *testing.T) {
	t.Parallel()

	long := "<p>" + strings.Repeat("花", 200) + "</p>"
	got := Excerpt(long)
	require.Equal(t, strings.Repeat("花", 150)+"...", got)
}

func TestReadTimeRoundsUp(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0 min read", ReadTime(""))
	require.Equal(t, "1 min read", ReadTime(strings.Repeat("a", 1000)))
	require.Equal(t, "2 min read", ReadTime(strings.Repeat("a", 1001)))
}

func TestSeedPostsAreFreshCopies(t *testing.T) {
	t.Parallel()

	a := SeedPosts()
	b := SeedPosts()
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("seed collection differs between calls:\n%s", diff)
	}
	a[0].Tags[0] = "mutated"
	require.Equal(t, "Welcome", SeedPosts()[0].Tags[0])
	require.Equal(t, "hello-world", b[0].Slug)
}
