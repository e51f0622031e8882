package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"fengwz.me/garden/internal/forms"
	"fengwz.me/garden/internal/middleware"
	"fengwz.me/garden/internal/observability"
)

// Newsletter relays a newsletter sign-up.
func (h *Handlers) Newsletter(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	res, err := h.relay().SubmitNewsletter(r.Context(), r.PostFormValue("email"))
	h.writeFormResult(w, r, "newsletter", res, err)
}

// Consultation relays the consultation enquiry form.
func (h *Handlers) Consultation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	res, err := h.relay().SubmitConsultation(r.Context(), forms.Consultation{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Mobile:  r.PostFormValue("mobile"),
		WeChat:  r.PostFormValue("wechat"),
		Message: r.PostFormValue("message"),
	})
	h.writeFormResult(w, r, "consultation", res, err)
}

func (h *Handlers) relay() FormRelay {
	if h.forms == nil {
		return forms.NewClient(forms.Config{})
	}
	return h.forms
}

func (h *Handlers) writeFormResult(w http.ResponseWriter, r *http.Request, form string, res forms.Result, err error) {
	data := FormResult{Translator: h.translator(r), Form: form, OK: err == nil}
	status := http.StatusOK
	if err == nil {
		data.Message = res.Message
		if data.Message == "" {
			data.Message = data.T("forms.success")
		}
	} else {
		kind := forms.KindOf(err)
		data.Kind = string(kind)
		data.Message = err.Error()
		var fe *forms.Error
		if errors.As(err, &fe) {
			data.Message = fe.Message
		}
		logger := observability.FromContext(r.Context())
		switch kind {
		case forms.KindConfig:
			logger.Error("form relay not configured", zap.String("form", form))
			status = http.StatusServiceUnavailable
		case forms.KindNetwork:
			logger.Warn("form relay unreachable", zap.String("form", form), zap.Error(err))
			status = http.StatusBadGateway
		default:
			status = http.StatusUnprocessableEntity
		}
	}
	// htmx only swaps successful responses.
	if middleware.IsHTMX(r.Context()) {
		status = http.StatusOK
	}
	h.render(w, r, status, "form-result", data)
}
