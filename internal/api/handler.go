// Package api provides the HTTP surface the local UI uses to drive the session.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/wardrobe-stylist/internal/domain"
	"github.com/ashureev/wardrobe-stylist/internal/session"
)

// maxUploadBytes caps a single recorded video.
const maxUploadBytes = 256 << 20

// Session is the set of session operations exposed over HTTP.
type Session interface {
	Snapshot() session.Snapshot
	Subscribe() (<-chan session.Snapshot, func())
	AnalyzeVideo(ctx context.Context, video domain.Video)
	SendMessage(ctx context.Context, text string)
	GetUserLocation(ctx context.Context) error
	FetchWeather(ctx context.Context) error
	ClearWardrobe(ctx context.Context)
	LoadDemoData(ctx context.Context)
	HighlightItems(ids []string)
	MediaFile(id string) (path, contentType string, ok bool)
}

// Handler serves the session routes.
type Handler struct {
	session       Session
	logger        *slog.Logger
	allowedOrigin string
	isDev         bool

	// background tracks ingestions that outlive their upload request.
	background sync.WaitGroup
}

// NewHandler creates a new Handler. allowedOrigin and isDev control which
// origins may open the snapshot stream.
func NewHandler(s Session, allowedOrigin string, isDev bool, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		session:       s,
		logger:        logger,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// RegisterRoutes registers session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/session", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.ClearSession)
		r.Get("/stream", h.Stream)
		r.Get("/media/{id}", h.GetMedia)
		r.Post("/video", h.UploadVideo)
		r.Post("/chat", h.Chat)
		r.Post("/location", h.Locate)
		r.Post("/weather", h.RefreshWeather)
		r.Post("/demo", h.LoadDemo)
		r.Post("/highlights", h.Highlight)
	})
}

// Wait blocks until every background ingestion has finished.
func (h *Handler) Wait() {
	h.background.Wait()
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
