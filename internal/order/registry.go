package order

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"marmitaria/internal/catalog"
)

// Registry keeps the live sessions in memory. Sessions are independent; the
// registry lock only guards the map.
type Registry struct {
	live *catalog.Live
	opts Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(live *catalog.Live, opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		live:     live,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

func (r *Registry) Create() *Session {
	s := NewSession(r.live, r.opts)
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than idle and returns how many went.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.opts.Now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				r.opts.Logger.Info("swept idle sessions", zap.Int("removed", n), zap.Int("remaining", r.Len()))
			}
		}
	}
}
