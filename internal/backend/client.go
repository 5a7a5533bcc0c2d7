package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/ashureev/wardrobe-stylist/internal/domain"
)

const (
	maxResponseBytes = 8 << 20
	maxErrorBody     = 4 << 10
)

// ErrAnalysisFailed is returned when the backend answers 2xx but reports an error in the body.
var ErrAnalysisFailed = errors.New("video analysis failed")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.Code, e.Body)
}

// Config holds configuration for the backend client.
type Config struct {
	BaseURL        string
	AnalyzeTimeout time.Duration
	ChatTimeout    time.Duration
	HTTPClient     *http.Client
}

// DefaultConfig returns default client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost:8000",
		AnalyzeTimeout: 5 * time.Minute,
		ChatTimeout:    60 * time.Second,
	}
}

// Client talks to the stylist backend over HTTP.
type Client struct {
	baseURL        string
	http           *http.Client
	analyzeTimeout time.Duration
	chatTimeout    time.Duration
	logger         *slog.Logger
}

// NewClient creates a backend client. Zero config fields fall back to defaults.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.AnalyzeTimeout <= 0 {
		cfg.AnalyzeTimeout = def.AnalyzeTimeout
	}
	if cfg.ChatTimeout <= 0 {
		cfg.ChatTimeout = def.ChatTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		http:           cfg.HTTPClient,
		analyzeTimeout: cfg.AnalyzeTimeout,
		chatTimeout:    cfg.ChatTimeout,
		logger:         logger,
	}
}

// AnalyzeVideo uploads a video and returns the detected items.
func (c *Client) AnalyzeVideo(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	body, contentType, err := encodeVideoForm(req)
	if err != nil {
		return nil, fmt.Errorf("encode upload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.analyzeTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze-video", body)
	if err != nil {
		return nil, fmt.Errorf("build analyze request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	c.logger.Debug("Uploading video for analysis",
		"filename", req.Video.Filename,
		"bytes", len(req.Video.Data),
		"with_location", req.Location != nil,
	)

	var resp AnalyzeResponse
	if err := c.do(httpReq, "analyze-video", &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrAnalysisFailed, resp.Error)
	}
	return &resp, nil
}

// Chat sends one conversational turn.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.ChatHistory == nil {
		req.ChatHistory = []domain.Message{}
	}
	if req.InventoryContext == nil {
		req.InventoryContext = []domain.ClothingItem{}
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.chatTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp ChatResponse
	if err := c.do(httpReq, "chat", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(req *http.Request, endpoint string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("Failed to close response body", "endpoint", endpoint, "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func encodeVideoForm(req AnalyzeRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	filename := req.Video.Filename
	if filename == "" {
		filename = "upload.mp4"
	}
	contentType := req.Video.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Video.Data); err != nil {
		return nil, "", err
	}

	if loc := req.Location; loc != nil {
		if err := w.WriteField("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64)); err != nil {
			return nil, "", err
		}
		if err := w.WriteField("lon", strconv.FormatFloat(loc.Lon, 'f', -1, 64)); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
