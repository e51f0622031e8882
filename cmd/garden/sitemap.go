package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fengwz.me/garden/internal/cms"
	"fengwz.me/garden/internal/config"
	"fengwz.me/garden/internal/seo"
)

func newSitemapCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Write sitemap.xml for every static section and published post",
		Long: `Lists every published post from the CMS and writes a sitemap next to the
static sections. Without a reachable CMS only the static sections are written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()
			client := cms.NewClient(cfg.CMS.BaseURL, cfg.CMS.Timeout, cfg.CMS.PerPage)
			n, err := writeSitemap(cmd.Context(), cfg, client, logger, out)
			if err != nil {
				return err
			}
			logger.Info("sitemap written", zap.String("path", out), zap.Int("urls", n))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "sitemap.xml", "output path")
	return cmd
}

type postLister interface {
	ListPostRefs(ctx context.Context) ([]cms.PostRef, error)
}

func writeSitemap(ctx context.Context, cfg config.Config, posts postLister, logger *zap.Logger, path string) (int, error) {
	entries := append([]seo.Entry{}, seo.StaticEntries...)
	refs, err := posts.ListPostRefs(ctx)
	if err != nil {
		logger.Warn("post listing failed; writing static sections only", zap.Error(err))
	}
	for _, ref := range refs {
		entries = append(entries, seo.PostEntry(ref.Slug, ref.ModifiedAt))
	}
	urls := seo.Sitemap(cfg.Site.BaseURL, entries)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create sitemap: %w", err)
	}
	if err := seo.WriteSitemap(f, urls); err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("write sitemap: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close sitemap: %w", err)
	}
	return len(urls), nil
}
