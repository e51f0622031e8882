package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"fengwz.me/garden/internal/comments"
	"fengwz.me/garden/internal/middleware"
	"fengwz.me/garden/internal/observability"
	"fengwz.me/garden/internal/view"
)

// ListComments renders the comment section of a post.
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	post, ok := view.FindPost(h.content.Snapshot().Posts, chi.URLParam(r, "slug"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.render(w, r, http.StatusOK, "comments", h.commentsData(r, post.Slug, post.ID))
}

// AddComment stores a comment and re-renders the section. Validation problems are
// shown inline with the draft preserved.
func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	post, ok := view.FindPost(h.content.Snapshot().Posts, chi.URLParam(r, "slug"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	author := r.PostFormValue("author")
	text := r.PostFormValue("content")

	_, err := h.comments.Add(r.Context(), post.ID, author, text)
	if err == nil && !middleware.IsHTMX(r.Context()) {
		http.Redirect(w, r, "/post/"+post.Slug+"#comments", http.StatusSeeOther)
		return
	}

	data := h.commentsData(r, post.Slug, post.ID)
	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, comments.ErrMissingAuthor), errors.Is(err, comments.ErrMissingContent):
		data.Author, data.Draft = author, text
		data.Error = data.T("comments.invalid")
		if !middleware.IsHTMX(r.Context()) {
			status = http.StatusUnprocessableEntity
		}
	default:
		observability.FromContext(r.Context()).Error("comment not saved", zap.String("post_id", post.ID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, status, "comments", data)
}

func (h *Handlers) commentsData(r *http.Request, slug, postID string) *CommentsData {
	list, err := h.comments.List(r.Context(), postID)
	if err != nil {
		observability.FromContext(r.Context()).Warn("comments unavailable", zap.String("post_id", postID), zap.Error(err))
	}
	return &CommentsData{
		Translator: h.translator(r),
		Slug:       slug,
		PostID:     postID,
		Comments:   list,
		CSRFToken:  middleware.CSRFToken(r.Context()),
		AIEnabled:  h.aiEnabled(),
	}
}
