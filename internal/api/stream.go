package api

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const streamWriteTimeout = 10 * time.Second

// Stream upgrades to a WebSocket and pushes a session snapshot after every
// state change. Messages from the client are ignored.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "stream ended"); closeErr != nil {
			h.logger.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	// CloseRead cancels ctx once the client goes away.
	ctx := ws.CloseRead(r.Context())

	updates, cancel := h.session.Subscribe()
	defer cancel()

	h.logger.Info("Snapshot stream opened", "ip", r.RemoteAddr)
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("Snapshot stream closed by client")
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			writeCtx, cancelWrite := context.WithTimeout(ctx, streamWriteTimeout)
			err := wsjson.Write(writeCtx, ws, snap)
			cancelWrite()
			if err != nil {
				h.logger.Debug("WebSocket write error", "error", err)
				return
			}
		}
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	h.logger.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}
