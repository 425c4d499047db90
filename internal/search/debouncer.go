// Package search runs keystroke-driven profile searches where only the
// latest query's results are delivered.
package search

import (
	"context"
	"sync"
	"time"

	"reelhub/internal/models"
	"reelhub/internal/observability"
)

const DefaultLimit = 20

// Searcher runs one profile search.
type Searcher interface {
	SearchProfiles(ctx context.Context, query string, limit int) ([]*models.Profile, error)
}

// Result is delivered for the most recent query only.
type Result struct {
	Token    uint64            `json:"token"`
	Query    string            `json:"query"`
	Profiles []*models.Profile `json:"profiles"`
	Err      error             `json:"-"`
}

// Debouncer waits delay after each Submit before searching. A newer Submit
// cancels the pending or running search of an older one, and results carrying
// a superseded token are dropped. deliver must not call Submit or Close.
type Debouncer struct {
	searcher Searcher
	delay    time.Duration
	limit    int
	deliver  func(Result)

	// deliverMu is taken before mu. Once Submit or Close returns, no result
	// for an older token is delivered.
	deliverMu sync.Mutex

	mu     sync.Mutex
	token  uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
}

func NewDebouncer(searcher Searcher, delay time.Duration, deliver func(Result)) *Debouncer {
	return &Debouncer{searcher: searcher, delay: delay, limit: DefaultLimit, deliver: deliver}
}

// Submit schedules a search for query and returns its token.
func (d *Debouncer) Submit(ctx context.Context, query string) uint64 {
	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return d.token
	}

	d.token++
	token := d.token
	d.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.timer = time.AfterFunc(d.delay, func() { d.run(runCtx, token, query) })
	return token
}

func (d *Debouncer) run(ctx context.Context, token uint64, query string) {
	if !d.current(token) {
		return
	}
	profiles, err := d.searcher.SearchProfiles(ctx, query, d.limit)

	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()
	if !d.current(token) {
		observability.GlobalLogger.DebugContext(ctx, "stale search result dropped", "token", token)
		return
	}
	d.deliver(Result{Token: token, Query: query, Profiles: profiles, Err: err})
}

func (d *Debouncer) current(token uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed && token == d.token
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancel != nil {
		d.cancel()
	}
}

// Close drops any pending search. Nothing is delivered afterwards.
func (d *Debouncer) Close() {
	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.stopLocked()
}
