package websocket

import (
	"sync"
	"sync/atomic"
)

// Hub tracks the open selection sessions
type Hub struct {
	sessions   map[*Session]struct{}
	register   chan *Session
	unregister chan *Session
	stop       chan struct{}
	stopOnce   sync.Once
	done       chan struct{}
	count      atomic.Int64
}

// NewHub creates an idle hub; call Run to start it
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[*Session]struct{}),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Run serves register and unregister requests until Stop. Sessions still
// open at that point are closed.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case s := <-h.register:
			h.sessions[s] = struct{}{}
			h.count.Add(1)
		case s := <-h.unregister:
			if _, ok := h.sessions[s]; ok {
				delete(h.sessions, s)
				h.count.Add(-1)
			}
		case <-h.stop:
			for s := range h.sessions {
				delete(h.sessions, s)
				s.close()
			}
			h.count.Store(0)
			return
		}
	}
}

// Stop ends Run and waits for it to return
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

// ClientCount returns the number of open sessions
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

func (h *Hub) add(s *Session) bool {
	select {
	case h.register <- s:
		return true
	case <-h.stop:
		return false
	}
}

func (h *Hub) remove(s *Session) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}
