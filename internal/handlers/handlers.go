// Package handlers renders the garden's pages, fragments and JSON endpoints.
package handlers

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"time"

	"go.uber.org/zap"

	"fengwz.me/garden/internal/cms"
	"fengwz.me/garden/internal/comments"
	"fengwz.me/garden/internal/content"
	"fengwz.me/garden/internal/forms"
	"fengwz.me/garden/internal/i18n"
	"fengwz.me/garden/internal/seo"
	"fengwz.me/garden/internal/view"
)

// ContentSource is the read side of the content orchestrator.
type ContentSource interface {
	Snapshot() content.Snapshot
	Page(ctx context.Context, slug string) (cms.Page, error)
}

// PostLister enumerates every published post for the sitemap.
type PostLister interface {
	ListPostRefs(ctx context.Context) ([]cms.PostRef, error)
}

// CommentStore persists reader comments.
type CommentStore interface {
	List(ctx context.Context, postID string) ([]comments.Comment, error)
	Add(ctx context.Context, postID, author, content string) (comments.Comment, error)
}

// Writer generates AI text and narration.
type Writer interface {
	Enabled() bool
	Summary(ctx context.Context, content string) string
	SuggestComment(ctx context.Context, content string) string
	Speech(ctx context.Context, text string) ([]byte, error)
}

// FormRelay submits site forms to the CMS.
type FormRelay interface {
	SubmitConsultation(ctx context.Context, in forms.Consultation) (forms.Result, error)
	SubmitNewsletter(ctx context.Context, email string) (forms.Result, error)
}

// Dependencies collects the services the handlers call.
type Dependencies struct {
	Content  ContentSource
	Posts    PostLister
	Comments CommentStore
	AI       Writer
	Forms    FormRelay
	I18n     *i18n.Bundle
	Site     seo.Site
	Profile  cms.Profile
	Resume   cms.Resume
	Logger   *zap.Logger

	// TemplatesDir, when set, re-parses templates from disk on every request.
	TemplatesDir string
	Now          func() time.Time
}

// Handlers exposes the HTTP handlers of the site.
type Handlers struct {
	content  ContentSource
	posts    PostLister
	comments CommentStore
	ai       Writer
	forms    FormRelay
	bundle   *i18n.Bundle
	site     seo.Site
	profile  cms.Profile
	resume   cms.Resume
	logger   *zap.Logger
	selector *view.Selector
	now      func() time.Time
	sitemap  sitemapCache

	devDir string
	tmpl   *template.Template
}

// New wires the handler set. Templates are parsed once unless TemplatesDir is set.
func New(deps Dependencies) (*Handlers, error) {
	if deps.Content == nil {
		return nil, fmt.Errorf("handlers: content source is required")
	}
	if deps.Comments == nil {
		deps.Comments = comments.NewStore(comments.NewMemoryKV())
	}
	if deps.I18n == nil {
		bundle, err := i18n.Default("en")
		if err != nil {
			return nil, err
		}
		deps.I18n = bundle
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Profile.Name == "" {
		deps.Profile = cms.DefaultProfile()
	}
	if deps.Resume.Name == "" {
		deps.Resume = cms.DefaultResume()
	}

	h := &Handlers{
		content:  deps.Content,
		posts:    deps.Posts,
		comments: deps.Comments,
		ai:       deps.AI,
		forms:    deps.Forms,
		bundle:   deps.I18n,
		site:     deps.Site,
		profile:  deps.Profile,
		resume:   deps.Resume,
		logger:   deps.Logger,
		selector: view.NewSelector(),
		now:      deps.Now,
		devDir:   deps.TemplatesDir,
	}
	if h.devDir == "" {
		tmpl, err := parseTemplates(embeddedTemplates)
		if err != nil {
			return nil, err
		}
		h.tmpl = tmpl
	}
	return h, nil
}

func (h *Handlers) templates() (*template.Template, error) {
	if h.devDir != "" {
		return parseTemplates(os.DirFS(h.devDir))
	}
	return h.tmpl, nil
}

func (h *Handlers) aiEnabled() bool {
	return h.ai != nil && h.ai.Enabled()
}
