package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"fengwz.me/garden/internal/ai"
	"fengwz.me/garden/internal/cms"
	"fengwz.me/garden/internal/httpx"
	"fengwz.me/garden/internal/middleware"
	"fengwz.me/garden/internal/observability"
	"fengwz.me/garden/internal/view"
)

// SummaryAPI returns an AI summary of the post named by the "slug" form value.
func (h *Handlers) SummaryAPI(w http.ResponseWriter, r *http.Request) {
	post, ok := h.aiPost(w, r)
	if !ok {
		return
	}
	text := ai.MissingKeySummary
	if h.ai != nil {
		text = h.ai.Summary(r.Context(), plainText(post))
	}
	h.writeAIText(w, r, "summary", text)
}

// SuggestAPI drafts a reader comment for the post named by "slug".
func (h *Handlers) SuggestAPI(w http.ResponseWriter, r *http.Request) {
	post, ok := h.aiPost(w, r)
	if !ok {
		return
	}
	text := ai.MissingKeySuggest
	if h.ai != nil {
		text = h.ai.SuggestComment(r.Context(), plainText(post))
	}
	h.writeAIText(w, r, "suggest", text)
}

// SpeechAPI narrates the post named by "slug" as audio/wav.
func (h *Handlers) SpeechAPI(w http.ResponseWriter, r *http.Request) {
	post, ok := h.aiPost(w, r)
	if !ok {
		return
	}
	if !h.aiEnabled() {
		httpx.WriteError(r.Context(), w, httpx.NewError("ai_unavailable", "speech is not configured", http.StatusServiceUnavailable))
		return
	}
	audio, err := h.ai.Speech(r.Context(), post.Title+"\n\n"+plainText(post))
	if err != nil {
		if !errors.Is(err, ai.ErrUnavailable) {
			observability.FromContext(r.Context()).Warn("speech failed", zap.String("slug", post.Slug), zap.Error(err))
		}
		httpx.WriteError(r.Context(), w, httpx.NewError("ai_unavailable", "speech generation failed", http.StatusServiceUnavailable))
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

func (h *Handlers) aiPost(w http.ResponseWriter, r *http.Request) (cms.Post, bool) {
	slug := r.FormValue("slug")
	if slug == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "slug is required", http.StatusBadRequest))
		return cms.Post{}, false
	}
	post, ok := view.FindPost(h.content.Snapshot().Posts, slug)
	if !ok {
		httpx.WriteError(r.Context(), w, httpx.NewError("not_found", "post not found", http.StatusNotFound))
		return cms.Post{}, false
	}
	return post, true
}

func (h *Handlers) writeAIText(w http.ResponseWriter, r *http.Request, kind, text string) {
	if middleware.IsHTMX(r.Context()) {
		h.render(w, r, http.StatusOK, "ai-"+kind, AIText{Translator: h.translator(r), Kind: kind, Text: text})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"text": text})
}

// plainText strips the post body down to text for prompting.
func plainText(p cms.Post) string {
	return cms.StripTags(p.Content)
}
