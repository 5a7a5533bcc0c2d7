package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/wardrobe-stylist/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/"}, nil)
}

func TestAnalyzeVideo_SendsMultipartWithLocation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/analyze-video", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "40.5", r.FormValue("lat"))
		assert.Equal(t, "-3.25", r.FormValue("lon"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "closet.mp4", hdr.Filename)
		assert.Equal(t, "video/mp4", hdr.Header.Get("Content-Type"))
		assert.Equal(t, "frames", string(data))

		_, _ = w.Write([]byte(`{
			"inventory": [{"type":"Top","subtype":"Shirt","formality":7,"search_tags":["shirt"]}],
			"welcome_message": "Nice closet",
			"suggestion_starter": "Try a smart look"
		}`))
	})

	resp, err := client.AnalyzeVideo(context.Background(), AnalyzeRequest{
		Video:    domain.Video{Filename: "closet.mp4", ContentType: "video/mp4", Data: []byte("frames")},
		Location: &domain.Location{Lat: 40.5, Lon: -3.25},
	})
	require.NoError(t, err)
	require.Len(t, resp.Inventory, 1)
	assert.Equal(t, "Shirt", resp.Inventory[0].Subtype)
	assert.Empty(t, resp.Inventory[0].ID)
	assert.Equal(t, "Nice closet", resp.WelcomeMessage)
	assert.Equal(t, "Try a smart look", resp.SuggestionStarter)
}

func TestAnalyzeVideo_OmitsLocationWhenUnknown(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hasLat := r.MultipartForm.Value["lat"]
		_, hasLon := r.MultipartForm.Value["lon"]
		assert.False(t, hasLat)
		assert.False(t, hasLon)
		_, _ = w.Write([]byte(`{"inventory":[]}`))
	})

	resp, err := client.AnalyzeVideo(context.Background(), AnalyzeRequest{Video: domain.Video{Data: []byte("x")}})
	require.NoError(t, err)
	assert.Empty(t, resp.Inventory)
}

func TestAnalyzeVideo_Failures(t *testing.T) {
	tests := []struct {
		name  string
		h     http.HandlerFunc
		check func(t *testing.T, err error)
	}{
		{
			name: "status",
			h: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			},
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusBadGateway, se.Code)
				assert.Equal(t, "boom", se.Body)
			},
		},
		{
			name: "error body",
			h: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"error":"Video processing failed"}`))
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrAnalysisFailed)
			},
		},
		{
			name: "invalid json",
			h: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "decode analyze-video response")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.h)
			_, err := client.AnalyzeVideo(context.Background(), AnalyzeRequest{Video: domain.Video{Data: []byte("x")}})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestChat_RoundTrip(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.JSONEq(t, `"what should I wear?"`, string(got["user_message"]))
		assert.JSONEq(t, `[{"role":"model","content":"hi"}]`, string(got["chat_history"]))
		assert.JSONEq(t, `[]`, string(got["inventory_context"]))
		assert.JSONEq(t, `1.5`, string(got["lat"]))
		assert.JSONEq(t, `2.5`, string(got["lon"]))

		_, _ = w.Write([]byte(`{"text":"Wear the chinos","sources":[{"uri":"https://x"}],"related_item_ids":["2"]}`))
	})

	lat, lon := 1.5, 2.5
	resp, err := client.Chat(context.Background(), ChatRequest{
		UserMessage: "what should I wear?",
		ChatHistory: []domain.Message{{Role: domain.RoleModel, Content: "hi"}},
		Lat:         &lat,
		Lon:         &lon,
	})
	require.NoError(t, err)
	assert.Equal(t, "Wear the chinos", resp.Text)
	assert.JSONEq(t, `[{"uri":"https://x"}]`, string(resp.Sources))
	assert.Equal(t, []string{"2"}, resp.RelatedItemIDs)
}

func TestChat_OmitsCoordinatesWhenUnknown(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var got map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.NotContains(t, got, "lat")
		assert.NotContains(t, got, "lon")
		_, _ = w.Write([]byte(`{}`))
	})

	resp, err := client.Chat(context.Background(), ChatRequest{UserMessage: "hello"})
	require.NoError(t, err)
	assert.Empty(t, resp.Text)
	assert.Nil(t, resp.RelatedItemIDs)
}

func TestChat_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(Config{BaseURL: srv.URL, ChatTimeout: 50 * time.Millisecond}, nil)
	_, err := client.Chat(context.Background(), ChatRequest{UserMessage: "slow"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
