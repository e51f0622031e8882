package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fengwz.me/garden/internal/ai"
	"fengwz.me/garden/internal/cms"
	"fengwz.me/garden/internal/comments"
	"fengwz.me/garden/internal/config"
	"fengwz.me/garden/internal/content"
	"fengwz.me/garden/internal/forms"
	"fengwz.me/garden/internal/handlers"
	"fengwz.me/garden/internal/i18n"
	"fengwz.me/garden/internal/seo"
	"fengwz.me/garden/public"
)

const (
	shutdownTimeout = 10 * time.Second
	devTemplatesDir = "internal/handlers/templates"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

// app holds the wired services and the closers that release them.
type app struct {
	handler      http.Handler
	orchestrator *content.Orchestrator
	closers      []func() error
}

func (a *app) Close() error {
	a.orchestrator.Close()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	cmsClient := cms.NewClient(cfg.CMS.BaseURL, cfg.CMS.Timeout, cfg.CMS.PerPage)
	cmsClient.SetContentDir(cfg.CMS.ContentDir)
	if !cmsClient.Configured() {
		logger.Warn("GARDEN_CMS_URL not set; serving seed content and local pages")
	}

	orch := content.New(cmsClient,
		content.WithLogger(logger.Named("content")),
		content.WithPageTTL(cfg.Content.PageCacheTTL),
	)
	a := &app{orchestrator: orch}

	kv, err := comments.OpenSQLite(cfg.Comments.Path)
	if err != nil {
		return nil, fmt.Errorf("open comment store: %w", err)
	}
	a.closers = append(a.closers, kv.Close)

	writer, err := ai.New(ctx, ai.Config{
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		SpeechModel: cfg.AI.SpeechModel,
	}, logger.Named("ai"))
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("initialise ai: %w", err)
	}
	if !writer.Enabled() {
		logger.Info("GARDEN_GEMINI_API_KEY not set; AI features return placeholders")
	}

	bundle, err := i18n.Default(cfg.Site.Language)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("load locales: %w", err)
	}

	deps := handlers.Dependencies{
		Content:  orch,
		Posts:    cmsClient,
		Comments: comments.NewStore(kv),
		AI:       writer,
		Forms: forms.NewClient(forms.Config{
			BaseURL:          cfg.CMS.BaseURL,
			ContactFormID:    cfg.Forms.ContactFormID,
			NewsletterFormID: cfg.Forms.NewsletterFormID,
			Locale:           cfg.Forms.Locale,
			Version:          cfg.Forms.Version,
		}),
		I18n:   bundle,
		Site:   siteOf(cfg),
		Logger: logger,
	}

	assets, err := public.StaticFS()
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("load embedded assets: %w", err)
	}
	if cfg.Server.DevMode {
		deps.TemplatesDir = devTemplatesDir
		assets = os.DirFS(filepath.Join(cfg.Server.PublicDir, "static"))
		logger.Info("dev mode: templates and assets read from disk")
	}

	h, err := handlers.New(deps)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.handler = h.Routes(handlers.RouterConfig{
		Assets:         assets,
		SecureCookies:  !cfg.Server.DevMode,
		RequestTimeout: cfg.Server.WriteTimeout,
	})
	return a, nil
}

func siteOf(cfg config.Config) seo.Site {
	return seo.Site{
		Name:          cfg.Site.Name,
		Description:   cfg.Site.Description,
		BaseURL:       cfg.Site.BaseURL,
		DefaultImage:  cfg.Site.DefaultImage,
		TwitterHandle: cfg.Site.TwitterHandle,
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close error", zap.Error(err))
		}
	}()

	go func() {
		snap := a.orchestrator.Load(ctx)
		logger.Info("content loaded", zap.Int("posts", len(snap.Posts)), zap.Bool("live", snap.Live))
	}()
	go a.orchestrator.Run(ctx, cfg.Content.RefreshInterval)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           a.handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr), zap.Bool("dev", cfg.Server.DevMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
