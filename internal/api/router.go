package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter wires the form page, the JSON API and the middleware chain.
// origins is the CORS allow list for cross-site API callers.
func NewRouter(h *Handler, origins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, accessLog(h.logger))

	r.HandleFunc("/health", HealthHandler).Methods("GET")
	r.HandleFunc("/", h.FormPageHandler).Methods("GET")
	r.HandleFunc("/", h.FormSubmitHandler).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/uri", h.BuildURIHandler).Methods("POST")
	api.HandleFunc("/export/{format}", h.ExportHandler).Methods("POST")
	api.HandleFunc("/preview.svg", h.PreviewHandler).Methods("GET")

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST"}),
		handlers.AllowedHeaders([]string{"Content-Type", RequestIDHeader}),
		handlers.ExposedHeaders([]string{"Content-Disposition", RequestIDHeader}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(h.logger.Handler(), slog.LevelError)),
	)
	return recovery(cors(r))
}
