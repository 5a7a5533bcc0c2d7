package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/wardrobe-stylist/internal/domain"
)

func TestCurrent_ParsesAndClassifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "40.4168", q.Get("latitude"))
		assert.Equal(t, "-3.7038", q.Get("longitude"))
		assert.Equal(t, "temperature_2m,weather_code", q.Get("current"))
		assert.Equal(t, "auto", q.Get("timezone"))
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":21.4,"weather_code":2}}`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, time.Second, nil, nil).Current(context.Background(), 40.4168, -3.7038)
	require.NoError(t, err)
	assert.Equal(t, domain.Weather{Temp: 21.4, Code: 2, Description: domain.WeatherCloudy}, got)
}

func TestCurrent_Failures(t *testing.T) {
	tests := []struct {
		name string
		h    http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) }},
		{"no current", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"reason":"quota"}`)) }},
		{"garbage", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`not json`)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.h)
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second, nil, nil).Current(context.Background(), 1, 2)
			assert.Error(t, err)
		})
	}
}

func TestCurrent_NoCurrentSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, nil, nil).Current(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrNoCurrent)
}
