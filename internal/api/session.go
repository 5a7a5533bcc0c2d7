package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/wardrobe-stylist/internal/domain"
	"github.com/ashureev/wardrobe-stylist/internal/session"
)

type chatRequest struct {
	Message string `json:"message"`
}

type highlightRequest struct {
	IDs []string `json:"ids"`
}

// GetSession returns the current session snapshot.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.session.Snapshot())
}

// ClearSession wipes the wardrobe, conversation and persisted state.
func (h *Handler) ClearSession(w http.ResponseWriter, r *http.Request) {
	h.session.ClearWardrobe(r.Context())
	JSON(w, http.StatusOK, h.session.Snapshot())
}

// UploadVideo accepts a recorded video and starts ingestion in the background.
// Progress and results are observed through the snapshot stream.
func (h *Handler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "video too large")
			return
		}
		Error(w, http.StatusBadRequest, "missing video file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read uploaded video", "error", err)
		Error(w, http.StatusBadRequest, "failed to read video")
		return
	}
	if len(data) == 0 {
		Error(w, http.StatusBadRequest, "empty video file")
		return
	}

	video := domain.Video{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	h.logger.Info("Video received", "filename", video.Filename, "size", len(data))

	ctx := context.WithoutCancel(r.Context())
	h.background.Add(1)
	go func() {
		defer h.background.Done()
		h.session.AnalyzeVideo(ctx, video)
	}()

	JSON(w, http.StatusAccepted, map[string]string{"status": "analyzing"})
}

// Chat sends a user message to the stylist and returns the updated snapshot.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	h.session.SendMessage(r.Context(), req.Message)
	JSON(w, http.StatusOK, h.session.Snapshot())
}

// Locate resolves the device location and refreshes the weather.
func (h *Handler) Locate(w http.ResponseWriter, r *http.Request) {
	h.enrich(w, r, h.session.GetUserLocation)
}

// RefreshWeather refreshes the weather for the known location.
func (h *Handler) RefreshWeather(w http.ResponseWriter, r *http.Request) {
	h.enrich(w, r, h.session.FetchWeather)
}

// enrich runs an optional enrichment step. Unavailable enrichment is not an
// error for the UI; the snapshot simply lacks location or weather.
func (h *Handler) enrich(w http.ResponseWriter, r *http.Request, fn func(context.Context) error) {
	if err := fn(r.Context()); err != nil {
		if !errors.Is(err, session.ErrEnrichmentUnavailable) {
			h.logger.Error("Enrichment failed", "error", err)
			Error(w, http.StatusInternalServerError, "enrichment failed")
			return
		}
		h.logger.Debug("Enrichment unavailable", "path", r.URL.Path, "error", err)
	}
	JSON(w, http.StatusOK, h.session.Snapshot())
}

// LoadDemo replaces the inventory with the demo wardrobe.
func (h *Handler) LoadDemo(w http.ResponseWriter, r *http.Request) {
	h.session.LoadDemoData(r.Context())
	JSON(w, http.StatusOK, h.session.Snapshot())
}

// Highlight replaces the highlighted item set.
func (h *Handler) Highlight(w http.ResponseWriter, r *http.Request) {
	var req highlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.session.HighlightItems(req.IDs)
	JSON(w, http.StatusOK, h.session.Snapshot())
}

// GetMedia serves the video behind the live media handle.
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	path, contentType, ok := h.session.MediaFile(chi.URLParam(r, "id"))
	if !ok {
		Error(w, http.StatusNotFound, "media not found")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, path)
}
