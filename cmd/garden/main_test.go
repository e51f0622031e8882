package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fengwz.me/garden/internal/cms"
	"fengwz.me/garden/internal/config"
	"fengwz.me/garden/internal/seo"
)

func testConfig(t *testing.T, extra map[string]string) config.Config {
	t.Helper()

	env := map[string]string{
		"GARDEN_COMMENTS_PATH": filepath.Join(t.TempDir(), "data", "comments.db"),
		"GARDEN_SITE_URL":      "https://example.test",
	}
	for k, v := range extra {
		env[k] = v
	}
	cfg, err := config.Load(config.WithEnvFile(""), config.WithEnvMap(env), config.WithoutSystemEnv())
	require.NoError(t, err)
	return cfg
}

func TestBuildAppServesSeedContent(t *testing.T) {
	cfg := testConfig(t, nil)

	a, err := buildApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })

	snap := a.orchestrator.Load(context.Background())
	require.False(t, snap.Live)
	require.NotEmpty(t, snap.Posts)

	for _, target := range []string{"/healthz", "/", "/post/" + snap.Posts[0].Slug, "/assets/js/garden.js"} {
		rec := httptest.NewRecorder()
		a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusOK, rec.Code, target)
	}
}

func TestBuildAppRejectsUnwritableCommentStore(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	cfg := testConfig(t, map[string]string{"GARDEN_COMMENTS_PATH": filepath.Join(blocker, "comments.db")})

	_, err := buildApp(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
}

type stubLister struct {
	refs []cms.PostRef
	err  error
}

func (s stubLister) ListPostRefs(context.Context) ([]cms.PostRef, error) { return s.refs, s.err }

func TestWriteSitemap(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, nil)
	path := filepath.Join(t.TempDir(), "out", "sitemap.xml")
	lister := stubLister{refs: []cms.PostRef{{Slug: "hello", ModifiedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}}}

	n, err := writeSitemap(context.Background(), cfg, lister, zap.NewNop(), path)
	require.NoError(t, err)
	require.Equal(t, len(seo.StaticEntries)+1, n)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(body), "<?xml"))
	require.Contains(t, string(body), "<loc>https://example.test/post/hello</loc>")
	require.Contains(t, string(body), "<lastmod>2024-01-02T03:04:05Z</lastmod>")
}

func TestWriteSitemapWithoutCMS(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, nil)
	path := filepath.Join(t.TempDir(), "sitemap.xml")

	n, err := writeSitemap(context.Background(), cfg, stubLister{err: errors.New("down")}, zap.NewNop(), path)
	require.NoError(t, err)
	require.Equal(t, len(seo.StaticEntries), n)
}

func TestRootCommandWiring(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.ElementsMatch(t, []string{"serve", "sitemap"}, names)
	require.NotNil(t, root.PersistentFlags().Lookup("env-file"))
}
