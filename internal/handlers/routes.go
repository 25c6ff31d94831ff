package handlers

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes adds the application routes to r.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/upload", h.Upload).Methods("POST")
	api.HandleFunc("/videos/{id:[0-9]+}", h.GetVideo).Methods("GET")

	r.HandleFunc("/videos/{filename}", h.ServeVideo).Methods("GET", "HEAD")
	r.HandleFunc("/thumbnails/{filename}", h.ServePreview).Methods("GET", "HEAD")
}
