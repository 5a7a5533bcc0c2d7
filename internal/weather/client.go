// Package weather looks up current conditions from an Open-Meteo compatible service.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ashureev/wardrobe-stylist/internal/domain"
)

// ErrNoCurrent is returned when the response lacks a current block.
var ErrNoCurrent = errors.New("weather response has no current conditions")

// Client queries the forecast endpoint for current conditions.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
	logger   *slog.Logger
}

// NewClient creates a weather client for the given forecast endpoint.
func NewClient(endpoint string, timeout time.Duration, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{endpoint: endpoint, http: httpClient, timeout: timeout, logger: logger}
}

type forecastResponse struct {
	Current *struct {
		Temperature2m float64 `json:"temperature_2m"`
		WeatherCode   int     `json:"weather_code"`
	} `json:"current"`
}

// Current returns the classified weather at lat/lon.
func (c *Client) Current(ctx context.Context, lat, lon float64) (domain.Weather, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("parse weather endpoint: %w", err)
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current", "temperature_2m,weather_code")
	q.Set("timezone", "auto")
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("weather request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("Failed to close weather response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return domain.Weather{}, fmt.Errorf("weather service returned status %d", resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return domain.Weather{}, fmt.Errorf("decode weather response: %w", err)
	}
	if body.Current == nil {
		return domain.Weather{}, ErrNoCurrent
	}

	return domain.NewWeather(body.Current.Temperature2m, body.Current.WeatherCode), nil
}
