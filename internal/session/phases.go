package session

import (
	"sync"
	"time"
)

// loadingPhases is the perceived-progress text shown while a video is analyzed.
// It is not tied to real backend progress.
var loadingPhases = []string{
	"Preparing video...",
	"Detecting fabrics...",
	"Analyzing color palette...",
	"Consulting fashion trends...",
	"Identifying items...",
}

// rotatePhases cycles the loading message for the ingestion holding token.
// The returned stop func blocks until the rotation goroutine has exited and
// must not be called with m.mu held.
func (m *Manager) rotatePhases(token uint64) func() {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(m.phaseInterval)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				i = (i + 1) % len(loadingPhases)
				m.mu.Lock()
				if m.ingestSeq == token && m.state.loading {
					m.state.loadingMessage = loadingPhases[i]
					m.publishLocked()
				}
				m.mu.Unlock()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}
