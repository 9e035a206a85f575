package catalog

import "sync/atomic"

// Live publishes the current snapshot. Readers always see a complete
// snapshot; writers swap in a new one after the store changes.
type Live struct {
	current atomic.Pointer[Catalog]
}

func NewLive(initial *Catalog) *Live {
	l := &Live{}
	l.current.Store(initial)
	return l
}

func (l *Live) Snapshot() *Catalog {
	return l.current.Load()
}

func (l *Live) Replace(c *Catalog) {
	if c == nil {
		return
	}
	l.current.Store(c)
}
