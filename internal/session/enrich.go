package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ashureev/wardrobe-stylist/internal/metrics"
)

const (
	workflowLocation = "location"
	workflowWeather  = "weather"
)

// ErrEnrichmentUnavailable is wrapped by every location or weather failure.
// Enrichment is optional, so callers usually just log it.
var ErrEnrichmentUnavailable = errors.New("enrichment unavailable")

// GetUserLocation resolves the device location and then refreshes the weather.
// A cached location skips the locator.
func (m *Manager) GetUserLocation(ctx context.Context) error {
	m.mu.Lock()
	cached := m.state.location != nil
	epoch := m.epoch
	m.mu.Unlock()

	if cached {
		return m.FetchWeather(ctx)
	}

	start := time.Now()
	loc, err := m.locator.Locate(ctx)
	if err != nil {
		m.logger.Debug("Location unavailable", "error", err)
		metrics.RecordWorkflow(workflowLocation, metrics.OutcomeFailure, time.Since(start).Seconds())
		return fmt.Errorf("%w: %w", ErrEnrichmentUnavailable, err)
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		m.logger.Info("Discarding location fix received after reset")
		metrics.RecordStale(workflowLocation)
		metrics.RecordWorkflow(workflowLocation, metrics.OutcomeStale, time.Since(start).Seconds())
		return nil
	}
	m.state.location = &loc
	m.persistLocked(ctx)
	m.publishLocked()
	m.mu.Unlock()

	metrics.RecordWorkflow(workflowLocation, metrics.OutcomeSuccess, time.Since(start).Seconds())
	return m.FetchWeather(ctx)
}

// FetchWeather looks up current weather for the known location. It is a no-op
// when no location is known.
func (m *Manager) FetchWeather(ctx context.Context) error {
	m.mu.Lock()
	if m.state.location == nil || m.weather == nil {
		m.mu.Unlock()
		return nil
	}
	m.weatherSeq++
	token, epoch := m.weatherSeq, m.epoch
	loc := *m.state.location
	m.mu.Unlock()

	start := time.Now()
	w, err := m.weather.Current(ctx, loc.Lat, loc.Lon)
	if err != nil {
		m.logger.Warn("Weather lookup failed", "error", err)
		metrics.RecordWorkflow(workflowWeather, metrics.OutcomeFailure, time.Since(start).Seconds())
		return fmt.Errorf("%w: %w", ErrEnrichmentUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.weatherSeq != token || m.epoch != epoch {
		m.logger.Info("Discarding stale weather result", "token", token)
		metrics.RecordStale(workflowWeather)
		metrics.RecordWorkflow(workflowWeather, metrics.OutcomeStale, time.Since(start).Seconds())
		return nil
	}
	m.state.weather = &w
	m.publishLocked()
	metrics.RecordWorkflow(workflowWeather, metrics.OutcomeSuccess, time.Since(start).Seconds())
	return nil
}
