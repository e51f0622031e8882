package handlers

import (
	"fengwz.me/garden/internal/cms"
	"fengwz.me/garden/internal/comments"
	"fengwz.me/garden/internal/i18n"
	"fengwz.me/garden/internal/nav"
	"fengwz.me/garden/internal/seo"
	"fengwz.me/garden/internal/view"
)

// Translator resolves UI strings for one request's language.
type Translator struct {
	bundle *i18n.Bundle
	Lang   string
}

// T returns the string for key.
func (t Translator) T(key string) string {
	if t.bundle == nil {
		return key
	}
	return t.bundle.T(t.Lang, key)
}

// PageData is the view model of every full page and fragment.
type PageData struct {
	Translator

	Site        seo.Site
	SEO         seo.Meta
	Profile     cms.Profile
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	CSRFToken   string
	AIEnabled   bool
	Year        int

	Page     view.Page
	Body     *cms.Page
	Resume   *cms.Resume
	Comments *CommentsData
}

// CommentsData renders the comment list and form of a post.
type CommentsData struct {
	Translator

	Slug      string
	PostID    string
	Comments  []comments.Comment
	Author    string
	Draft     string
	Error     string
	CSRFToken string
	AIEnabled bool
}

// FormResult is the inline outcome of a form submission.
type FormResult struct {
	Translator

	Form    string
	OK      bool
	Message string
	Kind    string
}

// AIText is an AI summary or comment suggestion fragment.
type AIText struct {
	Translator

	Kind string
	Text string
}
