package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ashureev/wardrobe-stylist/internal/domain"
)

// Keys under which the durable session slices live.
const (
	InventoryKey = "gemini_wardrobe_inventory"
	LocationKey  = "gemini_wardrobe_location"
)

// Snapshot holds the durable slices read back by Load.
// A nil field means nothing usable was stored.
type Snapshot struct {
	Inventory []domain.ClothingItem
	Location  *domain.Location
}

// locationRecord is the stored shape of a location. Both fields are nullable
// so a cleared location round-trips as {"lat":null,"lon":null}.
type locationRecord struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// Adapter persists inventory and location under fixed keys of a KV backend.
type Adapter struct {
	kv     KV
	logger *slog.Logger
}

// NewAdapter wraps a KV backend.
func NewAdapter(kv KV, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{kv: kv, logger: logger}
}

// Save serializes both slices and writes them in one batch.
func (a *Adapter) Save(ctx context.Context, inventory []domain.ClothingItem, loc *domain.Location) error {
	if inventory == nil {
		inventory = []domain.ClothingItem{}
	}
	inv, err := json.Marshal(inventory)
	if err != nil {
		return fmt.Errorf("marshal inventory: %w", err)
	}

	var rec locationRecord
	if loc != nil {
		rec.Lat, rec.Lon = &loc.Lat, &loc.Lon
	}
	locData, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal location: %w", err)
	}

	if err := a.kv.SetMany(ctx, map[string][]byte{
		InventoryKey: inv,
		LocationKey:  locData,
	}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load reads both slices. Missing or undecodable entries are reported as
// absent; only backend failures return an error.
func (a *Adapter) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	raw, err := a.get(ctx, InventoryKey)
	if err != nil {
		return Snapshot{}, err
	}
	if raw != nil {
		var items []domain.ClothingItem
		if err := json.Unmarshal(raw, &items); err != nil {
			a.logger.Warn("Ignoring corrupt persisted inventory", "key", InventoryKey, "error", err)
		} else {
			snap.Inventory = items
		}
	}

	raw, err = a.get(ctx, LocationKey)
	if err != nil {
		return Snapshot{}, err
	}
	if raw != nil {
		var rec locationRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			a.logger.Warn("Ignoring corrupt persisted location", "key", LocationKey, "error", err)
		} else if rec.Lat != nil && rec.Lon != nil {
			snap.Location = &domain.Location{Lat: *rec.Lat, Lon: *rec.Lon}
		}
	}

	return snap, nil
}

// Clear removes both persisted entries.
func (a *Adapter) Clear(ctx context.Context) error {
	if err := a.kv.Delete(ctx, InventoryKey, LocationKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Ping verifies the backend is reachable.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.kv.Ping(ctx)
}

// Close closes the backend.
func (a *Adapter) Close() error {
	return a.kv.Close()
}

func (a *Adapter) get(ctx context.Context, key string) ([]byte, error) {
	raw, err := a.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return raw, nil
}
