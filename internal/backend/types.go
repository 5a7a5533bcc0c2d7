// Package backend implements the HTTP client for the stylist backend.
package backend

import (
	"encoding/json"

	"github.com/ashureev/wardrobe-stylist/internal/domain"
)

// AnalyzeRequest is one video ingestion call.
type AnalyzeRequest struct {
	Video    domain.Video
	Location *domain.Location
}

// AnalyzeResponse is the body returned by POST /analyze-video.
// Detected items arrive without ids.
type AnalyzeResponse struct {
	Inventory         []domain.ClothingItem `json:"inventory"`
	WelcomeMessage    string                `json:"welcome_message,omitempty"`
	SuggestionStarter string                `json:"suggestion_starter,omitempty"`
	Error             string                `json:"error,omitempty"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	UserMessage      string                `json:"user_message"`
	ChatHistory      []domain.Message      `json:"chat_history"`
	InventoryContext []domain.ClothingItem `json:"inventory_context"`
	Lat              *float64              `json:"lat,omitempty"`
	Lon              *float64              `json:"lon,omitempty"`
}

// ChatResponse is the body returned by POST /api/chat.
type ChatResponse struct {
	Text    string          `json:"text,omitempty"`
	Sources json.RawMessage `json:"sources,omitempty"`
	// RelatedItemIDs is nil when the backend omitted the field.
	RelatedItemIDs []string `json:"related_item_ids,omitempty"`
}
