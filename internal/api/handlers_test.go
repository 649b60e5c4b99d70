package api

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/harrylevesque/qrpay/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	h := NewHandler(render.NewRenderer(render.DefaultOptions()), slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	h.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return h, NewRouter(h, nil)
}

func do(t *testing.T, srv http.Handler, method, target string, body io.Reader, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp["status"])
	return resp["message"]
}

func TestHealth(t *testing.T) {
	_, srv := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	_, srv := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/health", nil, map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestBuildURI(t *testing.T) {
	_, srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/uri", jsonBody(t, map[string]string{
		"payeeId": "alice@bank", "payeeName": "Alice", "amount": "100", "note": "Lunch",
	}), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "upi://pay?pa=alice%40bank&pn=Alice&am=100.00&cu=INR&tn=Lunch", resp["uri"])
}

func TestBuildURIMissingPayee(t *testing.T) {
	_, srv := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/uri", jsonBody(t, map[string]string{"payeeName": "Alice"}), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please enter a UPI ID", errorMessage(t, rec))
}

func TestBuildURIBadJSON(t *testing.T) {
	_, srv := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/uri", strings.NewReader("{"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request", errorMessage(t, rec))
}

func TestExportPNG(t *testing.T) {
	_, srv := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/export/png", jsonBody(t, ExportRequest{Mode: "text", Text: "Hello World"}), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="qrcode-1700000000000.png"`, rec.Header().Get("Content-Disposition"))

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 512, img.Bounds().Dx())
}

func TestExportSVGPayment(t *testing.T) {
	_, srv := newTestServer(t)
	body := map[string]any{
		"mode":    "payment",
		"payment": map[string]string{"payeeId": "bob@bank"},
	}
	rec := do(t, srv, http.MethodPost, "/api/export/SVG", jsonBody(t, body), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml;charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="qrcode-1700000000000.svg"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<svg"))
}

func TestExportValidation(t *testing.T) {
	_, srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/export/png", jsonBody(t, ExportRequest{Text: "  "}), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please enter some text, URL, or number first", errorMessage(t, rec))

	rec = do(t, srv, http.MethodPost, "/api/export/svg", jsonBody(t, ExportRequest{Mode: "payment", Text: "ignored"}), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please enter a UPI ID first", errorMessage(t, rec))

	rec = do(t, srv, http.MethodPost, "/api/export/gif", jsonBody(t, ExportRequest{Text: "x"}), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Unsupported export format", errorMessage(t, rec))
}

func TestExportFailureIsGeneric(t *testing.T) {
	_, srv := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/export/png", jsonBody(t, ExportRequest{Text: strings.Repeat("x", 5000)}), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to generate QR code. Please try again.", errorMessage(t, rec))
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}

func TestPreviewETag(t *testing.T) {
	_, srv := newTestServer(t)
	target := "/api/preview.svg?" + url.Values{"text": {"Hello World"}}.Encode()

	rec := do(t, srv, http.MethodGet, target, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<svg"))

	rec = do(t, srv, http.MethodGet, target, nil, map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	other := "/api/preview.svg?" + url.Values{"text": {"Hello"}}.Encode()
	rec = do(t, srv, http.MethodGet, other, nil, map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPreviewPaymentAndValidation(t *testing.T) {
	_, srv := newTestServer(t)

	q := url.Values{"mode": {"payment"}, "pa": {"alice@bank"}, "am": {"100"}}
	rec := do(t, srv, http.MethodGet, "/api/preview.svg?"+q.Encode(), nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/preview.svg?mode=payment", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please enter a UPI ID", errorMessage(t, rec))

	rec = do(t, srv, http.MethodGet, "/api/preview.svg", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please enter some text, URL, or number", errorMessage(t, rec))
}

func TestCORSHeaders(t *testing.T) {
	h := NewHandler(render.NewRenderer(render.DefaultOptions()), slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	srv := NewRouter(h, []string{"https://app.example"})

	rec := do(t, srv, http.MethodPost, "/api/uri", jsonBody(t, map[string]string{"payeeId": "a@b"}),
		map[string]string{"Origin": "https://app.example"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, srv, http.MethodPost, "/api/uri", jsonBody(t, map[string]string{"payeeId": "a@b"}),
		map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMethodNotAllowed(t *testing.T) {
	_, srv := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/api/uri", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
