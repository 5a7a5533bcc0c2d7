package session

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/ashureev/wardrobe-stylist/internal/backend"
	"github.com/ashureev/wardrobe-stylist/internal/domain"
	"github.com/ashureev/wardrobe-stylist/internal/metrics"
)

const (
	workflowChat = "chat"

	chatPlaceholder = "I'm not sure what to say."
	chatApology     = "Sorry, I'm having trouble connecting to the stylist brain right now."
)

var errEmptyReply = errors.New("stylist returned no reply")

// SendMessage appends the user's message and the stylist's reply to the
// conversation. A failed call still produces a model message.
func (m *Manager) SendMessage(ctx context.Context, text string) {
	start := time.Now()

	m.mu.Lock()
	m.chatSeq++
	token, conv := m.chatSeq, m.convEpoch
	history := domain.CloneMessages(m.state.messages)
	m.state.messages = append(m.state.messages, domain.Message{Role: domain.RoleUser, Content: text})
	m.state.highlights = []string{}
	req := backend.ChatRequest{
		UserMessage:      text,
		ChatHistory:      history,
		InventoryContext: domain.CloneItems(m.state.inventory),
	}
	if loc := m.state.location; loc != nil {
		lat, lon := loc.Lat, loc.Lon
		req.Lat, req.Lon = &lat, &lon
	}
	m.publishLocked()
	m.mu.Unlock()

	resp, err := m.stylist.Chat(ctx, req)
	if err == nil && resp == nil {
		err = errEmptyReply
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.convEpoch != conv {
		m.logger.Info("Discarding stale chat reply", "token", token)
		metrics.RecordStale(workflowChat)
		metrics.RecordWorkflow(workflowChat, metrics.OutcomeStale, time.Since(start).Seconds())
		return
	}

	if err != nil {
		m.logger.Error("Chat request failed", "error", err)
		m.appendModelMessageLocked(chatApology)
		m.publishLocked()
		metrics.RecordWorkflow(workflowChat, metrics.OutcomeFailure, time.Since(start).Seconds())
		return
	}

	reply := domain.Message{Role: domain.RoleModel, Content: resp.Text}
	if reply.Content == "" {
		reply.Content = chatPlaceholder
	}
	if len(resp.Sources) > 0 && !bytes.Equal(resp.Sources, []byte("null")) {
		reply.Sources = slices.Clone(resp.Sources)
	}
	m.state.messages = append(m.state.messages, reply)

	if resp.RelatedItemIDs != nil && m.chatSeq == token {
		m.state.highlights = slices.Clone(resp.RelatedItemIDs)
	}
	m.publishLocked()
	metrics.RecordWorkflow(workflowChat, metrics.OutcomeSuccess, time.Since(start).Seconds())
}

// HighlightItems replaces the highlighted set. Any chat reply still in flight
// loses the right to change highlights.
func (m *Manager) HighlightItems(ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chatSeq++
	if ids == nil {
		ids = []string{}
	}
	m.state.highlights = slices.Clone(ids)
	m.publishLocked()
}
