// Package session owns the wardrobe session state and the workflows that mutate it.
package session

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ashureev/wardrobe-stylist/internal/backend"
	"github.com/ashureev/wardrobe-stylist/internal/domain"
	"github.com/ashureev/wardrobe-stylist/internal/geo"
	"github.com/ashureev/wardrobe-stylist/internal/media"
	"github.com/ashureev/wardrobe-stylist/internal/metrics"
	"github.com/ashureev/wardrobe-stylist/internal/store"
)

const (
	defaultPhaseInterval  = 2500 * time.Millisecond
	defaultPersistTimeout = 5 * time.Second
)

// Stylist is the backend consumed by ingestion and conversation.
type Stylist interface {
	AnalyzeVideo(ctx context.Context, req backend.AnalyzeRequest) (*backend.AnalyzeResponse, error)
	Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error)
}

// WeatherService resolves coordinates to current weather.
type WeatherService interface {
	Current(ctx context.Context, lat, lon float64) (domain.Weather, error)
}

// Persister stores the durable slices of the session.
type Persister interface {
	Save(ctx context.Context, inventory []domain.ClothingItem, loc *domain.Location) error
	Load(ctx context.Context) (store.Snapshot, error)
	Clear(ctx context.Context) error
}

// MediaFactory creates playback handles for uploads.
type MediaFactory interface {
	Create(v domain.Video) (*media.Handle, error)
}

// Options wires a Manager to its collaborators.
type Options struct {
	Stylist Stylist
	Weather WeatherService
	Locator geo.Locator
	Store   Persister
	Media   MediaFactory
	Logger  *slog.Logger

	// PhaseInterval is how often the loading message rotates during ingestion.
	PhaseInterval time.Duration
	// PersistTimeout bounds each durable write.
	PersistTimeout time.Duration
	// Now is used for ingestion id timestamps.
	Now func() time.Time
}

// Snapshot is a point-in-time copy of the session, safe to hand to the UI.
type Snapshot struct {
	Inventory        []domain.ClothingItem `json:"inventory"`
	Messages         []domain.Message      `json:"messages"`
	Loading          bool                  `json:"loading"`
	LoadingMessage   string                `json:"loading_message"`
	Error            *string               `json:"error"`
	Media            *media.Descriptor     `json:"media"`
	HighlightedItems []string              `json:"highlighted_items"`
	Location         *domain.Location      `json:"location"`
	Weather          *domain.Weather       `json:"weather"`
}

type state struct {
	inventory      []domain.ClothingItem
	messages       []domain.Message
	loading        bool
	loadingMessage string
	err            *string
	media          *media.Handle
	highlights     []string
	location       *domain.Location
	weather        *domain.Weather
}

// Manager is the single owner of session state. All mutation goes through
// its methods; backend calls run without holding the lock.
type Manager struct {
	stylist Stylist
	weather WeatherService
	locator geo.Locator
	store   Persister
	media   MediaFactory
	logger  *slog.Logger
	persist *persister

	phaseInterval time.Duration
	now           func() time.Time
	newSuffix     func() string

	mu    sync.Mutex
	state state

	// Request tokens. A completion is applied only if its token is still current.
	ingestSeq  uint64
	chatSeq    uint64
	weatherSeq uint64
	// epoch changes on reset; convEpoch changes whenever the conversation restarts.
	epoch     uint64
	convEpoch uint64

	subs    map[uint64]chan Snapshot
	nextSub uint64
	closed  bool
}

// NewManager creates a Manager with empty state.
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PhaseInterval <= 0 {
		opts.PhaseInterval = defaultPhaseInterval
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = defaultPersistTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Locator == nil {
		opts.Locator = geo.Denied{}
	}

	m := &Manager{
		stylist:       opts.Stylist,
		weather:       opts.Weather,
		locator:       opts.Locator,
		store:         opts.Store,
		media:         opts.Media,
		logger:        opts.Logger,
		phaseInterval: opts.PhaseInterval,
		now:           opts.Now,
		newSuffix:     randomSuffix,
		state: state{
			inventory:      []domain.ClothingItem{},
			messages:       []domain.Message{},
			highlights:     []string{},
			loadingMessage: loadingPhases[0],
		},
		subs: make(map[uint64]chan Snapshot),
	}
	if opts.Store != nil {
		m.persist = newPersister(opts.Store, opts.PersistTimeout, opts.Logger)
	}
	return m
}

// Hydrate restores the durable slices saved by a previous session.
// Corrupt entries are already filtered out by the store.
func (m *Manager) Hydrate(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	snap, err := m.store.Load(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if snap.Inventory != nil {
		m.state.inventory = domain.CloneItems(snap.Inventory)
		m.reconcileHighlightsLocked()
	}
	if snap.Location != nil {
		loc := *snap.Location
		m.state.location = &loc
	}
	metrics.SetInventorySize(len(m.state.inventory))
	m.logger.Info("Session hydrated",
		"inventory_items", len(m.state.inventory),
		"has_location", m.state.location != nil,
	)
	m.publishLocked()
	return nil
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe returns a channel that receives the current snapshot and then the
// latest snapshot after each change. Slow readers only ever miss intermediate
// states. The returned func unsubscribes and closes the channel.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if m.closed {
		close(ch)
		return ch, func() {}
	}

	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	ch <- m.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if c, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(c)
			}
		})
	}
}

// MediaFile returns the backing file of the live media handle when id matches it.
func (m *Manager) MediaFile(id string) (path, contentType string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.state.media
	if h == nil || h.ID() != id || h.Released() {
		return "", "", false
	}
	return h.Path(), h.Descriptor().ContentType, true
}

// Close releases the media handle, disconnects subscribers and waits for
// the last durable write.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.replaceMediaLocked(nil)
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
	m.mu.Unlock()

	if m.persist != nil {
		m.persist.close()
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	s := Snapshot{
		Inventory:        domain.CloneItems(m.state.inventory),
		Messages:         domain.CloneMessages(m.state.messages),
		Loading:          m.state.loading,
		LoadingMessage:   m.state.loadingMessage,
		HighlightedItems: slices.Clone(m.state.highlights),
	}
	if s.HighlightedItems == nil {
		s.HighlightedItems = []string{}
	}
	if m.state.err != nil {
		e := *m.state.err
		s.Error = &e
	}
	if m.state.media != nil {
		d := m.state.media.Descriptor()
		s.Media = &d
	}
	if m.state.location != nil {
		l := *m.state.location
		s.Location = &l
	}
	if m.state.weather != nil {
		w := *m.state.weather
		s.Weather = &w
	}
	return s
}

func (m *Manager) publishLocked() {
	if len(m.subs) == 0 {
		return
	}
	snap := m.snapshotLocked()
	for _, ch := range m.subs {
		// Replace any undelivered snapshot with the newest one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// persistLocked hands a copy of inventory and location to the writer.
// Writes are queued in state order; failures are logged only.
func (m *Manager) persistLocked(ctx context.Context) {
	metrics.SetInventorySize(len(m.state.inventory))
	if m.persist == nil {
		return
	}
	op := persistOp{
		ctx:       context.WithoutCancel(ctx),
		inventory: domain.CloneItems(m.state.inventory),
	}
	if m.state.location != nil {
		loc := *m.state.location
		op.location = &loc
	}
	m.persist.enqueue(op)
}

// clearPersistedLocked queues deletion of the persisted session.
func (m *Manager) clearPersistedLocked(ctx context.Context) {
	if m.persist == nil {
		return
	}
	m.persist.enqueue(persistOp{ctx: context.WithoutCancel(ctx), clear: true})
}

// replaceMediaLocked releases the live handle before installing next.
func (m *Manager) replaceMediaLocked(next *media.Handle) {
	if prev := m.state.media; prev != nil && prev != next {
		m.releaseHandle(prev)
	}
	m.state.media = next
}

// reconcileHighlightsLocked drops highlighted ids that are no longer in the inventory.
func (m *Manager) reconcileHighlightsLocked() {
	if len(m.state.highlights) == 0 {
		return
	}
	present := make(map[string]struct{}, len(m.state.inventory))
	for _, it := range m.state.inventory {
		present[it.ID] = struct{}{}
	}
	kept := m.state.highlights[:0:0]
	for _, id := range m.state.highlights {
		if _, ok := present[id]; ok {
			kept = append(kept, id)
		}
	}
	m.state.highlights = kept
}

func (m *Manager) appendModelMessageLocked(content string) {
	m.state.messages = append(m.state.messages, domain.Message{Role: domain.RoleModel, Content: content})
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
