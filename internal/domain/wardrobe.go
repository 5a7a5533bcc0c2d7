// Package domain contains core domain types for the wardrobe stylist.
package domain

import (
	"encoding/json"
	"slices"
)

// ClothingItem is a single garment detected in a video or seeded from the demo catalog.
type ClothingItem struct {
	ID               string   `json:"id"`
	Type             string   `json:"type"`
	Subtype          string   `json:"subtype"`
	PrimaryColor     string   `json:"primary_color"`
	Patterns         string   `json:"patterns"`
	Season           string   `json:"season"`
	Formality        int      `json:"formality"`
	SearchTags       []string `json:"search_tags"`
	Emoji            string   `json:"emoji,omitempty"`
	TimestampSeconds *float64 `json:"timestamp_seconds,omitempty"`
}

// Clone returns a deep copy of the item.
func (c ClothingItem) Clone() ClothingItem {
	out := c
	out.SearchTags = slices.Clone(c.SearchTags)
	if c.TimestampSeconds != nil {
		ts := *c.TimestampSeconds
		out.TimestampSeconds = &ts
	}
	return out
}

// CloneItems deep-copies an inventory sequence. A nil input yields an empty slice.
func CloneItems(items []ClothingItem) []ClothingItem {
	out := make([]ClothingItem, 0, len(items))
	for _, it := range items {
		out = append(out, it.Clone())
	}
	return out
}

// Role identifies the author of a chat message.
type Role string

const (
	// RoleUser marks messages typed by the user.
	RoleUser Role = "user"
	// RoleModel marks messages produced by the stylist.
	RoleModel Role = "model"
)

// Message is one entry of the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// Sources is an opaque citation list kept exactly as the backend sent it.
	Sources json.RawMessage `json:"sources,omitempty"`
}

// CloneMessages copies a message sequence. A nil input yields an empty slice.
func CloneMessages(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		m.Sources = slices.Clone(m.Sources)
		out = append(out, m)
	}
	return out
}

// Location is a pair of device coordinates.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Weather is the coarse current weather at the session location.
type Weather struct {
	Temp        float64 `json:"temp"`
	Code        int     `json:"code"`
	Description string  `json:"description"`
}

// Video is an uploaded media blob.
type Video struct {
	Filename    string
	ContentType string
	Data        []byte
}
