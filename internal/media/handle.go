// Package media manages ephemeral local copies of uploaded videos for playback.
package media

import (
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ashureev/wardrobe-stylist/internal/domain"
)

const filePrefix = "upload-"

// Descriptor describes a live handle to observers.
type Descriptor struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// Handle is a temporary file backing playback of one upload.
// It must be released explicitly.
type Handle struct {
	desc Descriptor
	path string

	mu       sync.Mutex
	released bool
}

// Descriptor returns the public description of the handle.
func (h *Handle) Descriptor() Descriptor { return h.desc }

// ID returns the handle identifier.
func (h *Handle) ID() string { return h.desc.ID }

// Path returns the on-disk location of the media copy.
func (h *Handle) Path() string { return h.path }

// Released reports whether Release has run.
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// Release removes the backing file. Calling it more than once is a no-op.
func (h *Handle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	h.released = true
	if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}

// Factory creates handles inside a private directory.
type Factory struct {
	dir    string
	logger *slog.Logger
}

// NewFactory prepares dir and returns a factory writing into it.
func NewFactory(dir string, logger *slog.Logger) (*Factory, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &Factory{dir: dir, logger: logger}, nil
}

// Create writes the video to a new file and returns its handle.
func (f *Factory) Create(v domain.Video) (*Handle, error) {
	id := uuid.NewString()
	path := filepath.Join(f.dir, filePrefix+id+extensionFor(v))

	if err := os.WriteFile(path, v.Data, 0o600); err != nil {
		return nil, fmt.Errorf("write media file: %w", err)
	}

	contentType := v.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	f.logger.Debug("Media handle created", "id", id, "bytes", len(v.Data))
	return &Handle{
		desc: Descriptor{
			ID:          id,
			Filename:    v.Filename,
			ContentType: contentType,
			Size:        len(v.Data),
		},
		path: path,
	}, nil
}

// Sweep removes handle files left behind by a previous process.
func Sweep(dir string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read media directory: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), filePrefix) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			logger.Warn("Failed to remove orphaned media file", "name", e.Name(), "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

func extensionFor(v domain.Video) string {
	if ext := filepath.Ext(v.Filename); ext != "" && len(ext) <= 8 {
		return strings.ToLower(ext)
	}
	if v.ContentType != "" {
		if exts, err := mime.ExtensionsByType(v.ContentType); err == nil && len(exts) > 0 {
			return exts[0]
		}
	}
	return ".bin"
}
