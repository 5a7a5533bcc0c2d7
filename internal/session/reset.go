package session

import (
	"context"

	"github.com/ashureev/wardrobe-stylist/internal/domain"
	"github.com/ashureev/wardrobe-stylist/internal/metrics"
)

const demoWelcome = "Demo Mode activated. I see your simulated wardrobe. Ask me for an outfit!"

// ClearWardrobe wipes the session and its persisted entries. Results of
// workflows started before the reset are discarded when they arrive.
func (m *Manager) ClearWardrobe(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.epoch++
	m.convEpoch++
	m.replaceMediaLocked(nil)
	m.state.inventory = []domain.ClothingItem{}
	m.state.messages = []domain.Message{}
	m.state.err = nil
	m.state.weather = nil
	m.state.location = nil
	m.reconcileHighlightsLocked()
	metrics.SetInventorySize(0)

	m.clearPersistedLocked(ctx)
	m.publishLocked()
	m.logger.Info("Wardrobe cleared")
}

// LoadDemoData replaces the inventory with the demo catalog so the stylist can
// be tried without recording a video.
func (m *Manager) LoadDemoData(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.replaceMediaLocked(nil)
	m.state.inventory = domain.DemoCatalog()
	m.reconcileHighlightsLocked()
	m.persistLocked(ctx)
	m.appendModelMessageLocked(demoWelcome)
	m.publishLocked()
	m.logger.Info("Demo wardrobe loaded", "inventory_items", len(m.state.inventory))
}
