package api

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/harrylevesque/qrpay/internal/form"
	"github.com/harrylevesque/qrpay/internal/render"
	"github.com/harrylevesque/qrpay/internal/upi"
)

//go:embed web/index.html
var webFS embed.FS

var pageTmpl = template.Must(template.ParseFS(webFS, "web/index.html"))

type pageView struct {
	Mode    string
	Text    string
	Payment upi.PaymentRequest
	Error   string
	Content string
	Preview template.HTML
}

// FormPageHandler shows an empty form.
func (h *Handler) FormPageHandler(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, form.State{}, false)
}

// FormSubmitHandler applies the submitted fields and button to a fresh
// state and either answers with a download or re-renders the form.
func (h *Handler) FormSubmitHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s := stateFromValues(r.PostForm.Get)

	action := r.PostForm.Get("action")
	switch {
	case action == "reset":
		s = form.Update(s, form.Reset{})
		h.renderPage(w, r, s, false)
	case strings.HasPrefix(action, "mode:"):
		s = form.Update(s, form.SetMode{Mode: form.ParseMode(strings.TrimPrefix(action, "mode:"))})
		h.renderPage(w, r, s, form.Validate(s.Payload()) == nil)
	case action == "png" || action == "svg":
		s = form.Update(s, form.ExportStarted{Format: action})
		if !s.Generating {
			h.renderPage(w, r, s, false)
			return
		}
		if err := h.sendExport(w, r, render.Format(action), s.Content()); err != nil {
			h.logger.ErrorContext(r.Context(), "export failed", slog.Any("error", err), slog.String("request_id", RequestID(r.Context())))
			s = form.Update(s, form.ExportFailed{Err: err})
			h.renderPage(w, r, s, false)
			return
		}
	default:
		s = form.Update(s, form.Generate{})
		h.renderPage(w, r, s, s.Error == "")
	}
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, s form.State, preview bool) {
	view := pageView{
		Mode:    s.Mode.String(),
		Text:    s.Text,
		Payment: s.Payment,
		Error:   s.Error,
	}
	if preview {
		view.Content = s.Content()
		var svg bytes.Buffer
		if err := h.renderer.SVG(&svg, view.Content); err != nil {
			h.logger.WarnContext(r.Context(), "preview failed", slog.Any("error", err))
			view.Error = form.Update(s, form.ExportFailed{Err: err}).Error
		} else {
			// generated markup only; user text never appears in it
			view.Preview = template.HTML(svg.String())
		}
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, view); err != nil {
		h.logger.ErrorContext(r.Context(), "render page", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
