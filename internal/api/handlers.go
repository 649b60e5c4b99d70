package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/harrylevesque/qrpay/internal/digest"
	"github.com/harrylevesque/qrpay/internal/form"
	"github.com/harrylevesque/qrpay/internal/render"
	"github.com/harrylevesque/qrpay/internal/telemetry"
	"github.com/harrylevesque/qrpay/internal/upi"
	"github.com/harrylevesque/qrpay/internal/utils"
)

const maxBodyBytes = 64 << 10

// Handler serves the form page and the JSON API.
type Handler struct {
	renderer *render.Renderer
	logger   *slog.Logger
	exports  *telemetry.Exports
	now      func() time.Time
}

func NewHandler(renderer *render.Renderer, logger *slog.Logger, exports *telemetry.Exports) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		renderer: renderer,
		logger:   logger,
		exports:  exports,
		now:      time.Now,
	}
}

// ExportRequest is the body of POST /api/export/{format}.
type ExportRequest struct {
	Mode    string             `json:"mode"`
	Text    string             `json:"text"`
	Payment upi.PaymentRequest `json:"payment"`
}

func (req ExportRequest) payload() form.Payload {
	if form.ParseMode(req.Mode) == form.ModePayment {
		return form.Payment{Request: req.Payment}
	}
	return form.FreeForm{Text: req.Text}
}

// HealthHandler reports liveness.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "OK")
}

// BuildURIHandler returns the payment URI for a PaymentRequest body.
func (h *Handler) BuildURIHandler(w http.ResponseWriter, r *http.Request) {
	var req upi.PaymentRequest
	if err := readJSON(w, r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "Invalid request", err)
		return
	}
	if err := form.Validate(form.Payment{Request: req}); err != nil {
		h.writeError(w, r, utils.StatusCode(err), utils.UserMessage(err), nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"uri": req.URI()})
}

// ExportHandler renders the requested payload and sends it as a download.
func (h *Handler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		h.writeError(w, r, utils.StatusCode(err), utils.UserMessage(err), nil)
		return
	}
	var req ExportRequest
	if err := readJSON(w, r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "Invalid request", err)
		return
	}
	payload := req.payload()
	if err := form.ValidateExport(payload); err != nil {
		h.writeError(w, r, utils.StatusCode(err), utils.UserMessage(err), nil)
		return
	}
	if err := h.sendExport(w, r, format, form.Content(payload)); err != nil {
		h.writeError(w, r, http.StatusInternalServerError, utils.UserMessage(utils.ErrExportFailed), err)
	}
}

// PreviewHandler renders an SVG preview from query parameters. It accepts
// the same field names as the form: mode, text, pa, pn, am, tn.
func (h *Handler) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s := stateFromValues(q.Get)
	if err := form.Validate(s.Payload()); err != nil {
		h.writeError(w, r, utils.StatusCode(err), utils.UserMessage(err), nil)
		return
	}
	content := s.Content()
	opts := h.renderer.Options()
	etag := digest.ETag(string(render.FormatSVG), fmt.Sprintf("%+v", opts), content)

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if digest.Match(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.SVG(&buf, content); err != nil {
		w.Header().Del("ETag")
		h.writeError(w, r, http.StatusInternalServerError, utils.UserMessage(utils.ErrExportFailed), err)
		return
	}
	w.Header().Set("Content-Type", render.FormatSVG.ContentType())
	w.Write(buf.Bytes())
}

// sendExport renders fully before writing so a failure never leaves a
// truncated download behind.
func (h *Handler) sendExport(w http.ResponseWriter, r *http.Request, f render.Format, content string) error {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, f, content); err != nil {
		h.exports.Add(r.Context(), string(f), "error")
		return fmt.Errorf("render %s: %w", f, err)
	}
	name := render.Filename(f, h.now())
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.WarnContext(r.Context(), "export write failed", slog.Any("error", err))
	}
	h.exports.Add(r.Context(), string(f), "ok")
	h.logger.InfoContext(r.Context(), "qr exported",
		slog.String("format", string(f)),
		slog.String("file", name),
		slog.Int("bytes", buf.Len()),
	)
	return nil
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, message string, cause error) {
	if cause != nil {
		h.logger.ErrorContext(r.Context(), message, slog.Any("error", cause), slog.String("request_id", RequestID(r.Context())))
	}
	writeJSON(w, status, map[string]string{"status": "error", "message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("unable to read request body: %w", err)
	}
	defer r.Body.Close()
	if len(bytes.TrimSpace(body)) == 0 {
		return errors.New("empty request body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// stateFromValues replays the submitted fields through form.Update.
func stateFromValues(get func(string) string) form.State {
	s := form.State{}
	for _, a := range []form.Action{
		form.SetMode{Mode: form.ParseMode(get("mode"))},
		form.SetText{Value: get("text")},
		form.SetField{Field: form.FieldPayeeID, Value: get("pa")},
		form.SetField{Field: form.FieldPayeeName, Value: get("pn")},
		form.SetField{Field: form.FieldAmount, Value: get("am")},
		form.SetField{Field: form.FieldNote, Value: get("tn")},
	} {
		s = form.Update(s, a)
	}
	return s
}
