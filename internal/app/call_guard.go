package app

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// CallGuard suppresses redundant reminder checks for the same volunteer.
// Begin must be an atomic check-and-set: it reports false when the (volunteer, hours)
// pair already completed or when any check for the volunteer is still running.
type CallGuard interface {
	Begin(ctx context.Context, volunteerID string, approvedHours float64) (bool, error)
	// Finish releases the in-flight slot. completed marks the pair as processed.
	Finish(ctx context.Context, volunteerID string, approvedHours float64, completed bool)
	// Forget drops every cached result and in-flight slot for the volunteer.
	Forget(ctx context.Context, volunteerID string) error
	// Prune evicts expired results and returns how many were removed.
	Prune(ctx context.Context) int
}

// ResultKey is the result-cache key for a volunteer/hours pair, e.g. "vol-1-32.5".
func ResultKey(volunteerID string, approvedHours float64) string {
	return volunteerID + "-" + strconv.FormatFloat(approvedHours, 'f', -1, 64)
}

// DedupGuard is the in-process CallGuard. Results expire after ttl; a zero ttl keeps them
// for the life of the process.
type DedupGuard struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	processed map[string]map[string]time.Time // volunteerID -> result key -> completed at
	inFlight  map[string]struct{}
}

func NewDedupGuard(ttl time.Duration) *DedupGuard {
	return &DedupGuard{
		ttl:       ttl,
		now:       time.Now,
		processed: make(map[string]map[string]time.Time),
		inFlight:  make(map[string]struct{}),
	}
}

func (g *DedupGuard) Begin(_ context.Context, volunteerID string, approvedHours float64) (bool, error) {
	key := ResultKey(volunteerID, approvedHours)

	g.mu.Lock()
	defer g.mu.Unlock()

	if doneAt, ok := g.processed[volunteerID][key]; ok {
		if !g.expired(doneAt) {
			return false, nil
		}
		delete(g.processed[volunteerID], key)
	}
	if _, running := g.inFlight[volunteerID]; running {
		return false, nil
	}
	g.inFlight[volunteerID] = struct{}{}
	return true, nil
}

func (g *DedupGuard) Finish(_ context.Context, volunteerID string, approvedHours float64, completed bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.inFlight, volunteerID)
	if !completed {
		return
	}
	keys, ok := g.processed[volunteerID]
	if !ok {
		keys = make(map[string]time.Time)
		g.processed[volunteerID] = keys
	}
	keys[ResultKey(volunteerID, approvedHours)] = g.now()
}

func (g *DedupGuard) Forget(_ context.Context, volunteerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.processed, volunteerID)
	delete(g.inFlight, volunteerID)
	return nil
}

func (g *DedupGuard) Prune(_ context.Context) int {
	if g.ttl <= 0 {
		return 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for volunteerID, keys := range g.processed {
		for key, doneAt := range keys {
			if g.expired(doneAt) {
				delete(keys, key)
				removed++
			}
		}
		if len(keys) == 0 {
			delete(g.processed, volunteerID)
		}
	}
	return removed
}

// Len returns the number of cached results.
func (g *DedupGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for _, keys := range g.processed {
		n += len(keys)
	}
	return n
}

func (g *DedupGuard) expired(doneAt time.Time) bool {
	return g.ttl > 0 && g.now().Sub(doneAt) >= g.ttl
}
