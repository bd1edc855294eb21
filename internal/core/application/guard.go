package application

import "sync"

// guard provides per-agreement mutual exclusion. A transition operation
// holds it for its full duration, so a reentrant or concurrent call on the
// same agreement observes it as busy instead of interleaving with the
// in-flight transition.
type guard struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newGuard() *guard {
	return &guard{ids: make(map[string]struct{})}
}

func (g *guard) tryAcquire(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.ids[id]; busy {
		return false
	}
	g.ids[id] = struct{}{}
	return true
}

func (g *guard) release(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.ids, id)
}
