package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ashureev/wardrobe-stylist/internal/backend"
	"github.com/ashureev/wardrobe-stylist/internal/domain"
	"github.com/ashureev/wardrobe-stylist/internal/media"
	"github.com/ashureev/wardrobe-stylist/internal/metrics"
)

const (
	workflowIngest = "ingest"

	ingestErrorMessage = "Error analyzing video. Please try again."
	hintPrefix         = "💡 Hint: "
)

var errEmptyAnalysis = errors.New("stylist returned no analysis")

// AnalyzeVideo sends a recorded video to the stylist backend and appends the
// detected items to the inventory. Failures surface through the session error
// field rather than a return value. Only the most recent call may update state.
func (m *Manager) AnalyzeVideo(ctx context.Context, video domain.Video) {
	start := time.Now()

	m.mu.Lock()
	m.ingestSeq++
	m.convEpoch++
	token, epoch := m.ingestSeq, m.epoch
	m.state.messages = []domain.Message{}
	m.state.err = nil
	m.replaceMediaLocked(nil)
	m.state.loading = true
	m.state.loadingMessage = loadingPhases[0]
	var loc *domain.Location
	if m.state.location != nil {
		l := *m.state.location
		loc = &l
	}
	m.publishLocked()
	m.mu.Unlock()

	metrics.IngestionStarted()
	stop := m.rotatePhases(token)
	defer func() {
		stop()
		metrics.IngestionFinished()
		m.mu.Lock()
		if m.ingestSeq == token {
			m.state.loading = false
			m.publishLocked()
		}
		m.mu.Unlock()
	}()

	m.attachMedia(token, epoch, video)

	resp, err := m.stylist.AnalyzeVideo(ctx, backend.AnalyzeRequest{Video: video, Location: loc})
	if err == nil && resp == nil {
		err = errEmptyAnalysis
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ingestSeq != token || m.epoch != epoch {
		m.logger.Info("Discarding stale ingestion result", "token", token)
		metrics.RecordStale(workflowIngest)
		metrics.RecordWorkflow(workflowIngest, metrics.OutcomeStale, time.Since(start).Seconds())
		return
	}

	if err != nil {
		m.logger.Error("Video analysis failed", "error", err)
		msg := ingestErrorMessage
		m.state.err = &msg
		m.publishLocked()
		metrics.RecordWorkflow(workflowIngest, metrics.OutcomeFailure, time.Since(start).Seconds())
		return
	}

	added := m.assignIDsLocked(resp.Inventory)
	m.state.inventory = append(m.state.inventory, added...)
	m.reconcileHighlightsLocked()
	m.persistLocked(ctx)

	if resp.WelcomeMessage != "" {
		m.appendModelMessageLocked(resp.WelcomeMessage)
	}
	if resp.SuggestionStarter != "" {
		m.appendModelMessageLocked(hintPrefix + resp.SuggestionStarter)
	}
	m.state.loading = false
	m.publishLocked()

	m.logger.Info("Video analyzed",
		"items_added", len(added),
		"inventory_items", len(m.state.inventory),
	)
	metrics.RecordWorkflow(workflowIngest, metrics.OutcomeSuccess, time.Since(start).Seconds())
}

// attachMedia creates the playback handle without holding the lock and installs
// it only if the ingestion that asked for it is still current.
func (m *Manager) attachMedia(token, epoch uint64, video domain.Video) {
	if m.media == nil {
		return
	}
	h, err := m.media.Create(video)
	if err != nil {
		m.logger.Warn("Failed to create media handle", "error", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ingestSeq != token || m.epoch != epoch || m.closed {
		m.releaseHandle(h)
		return
	}
	m.replaceMediaLocked(h)
	m.publishLocked()
}

func (m *Manager) releaseHandle(h *media.Handle) {
	if err := h.Release(); err != nil {
		m.logger.Warn("Failed to release media handle", "id", h.ID(), "error", err)
	}
}

// assignIDsLocked gives every detected item a fresh id of the form
// <unixMillis>_<index>_<random>. Ids returned by the backend are ignored.
func (m *Manager) assignIDsLocked(items []domain.ClothingItem) []domain.ClothingItem {
	taken := make(map[string]struct{}, len(m.state.inventory)+len(items))
	for _, it := range m.state.inventory {
		taken[it.ID] = struct{}{}
	}

	millis := m.now().UnixMilli()
	out := make([]domain.ClothingItem, 0, len(items))
	for i, it := range items {
		item := it.Clone()
		for {
			id := fmt.Sprintf("%d_%d_%s", millis, i, m.newSuffix())
			if _, dup := taken[id]; !dup {
				item.ID = id
				taken[id] = struct{}{}
				break
			}
		}
		out = append(out, item)
	}
	return out
}
