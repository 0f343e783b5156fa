package sync

import (
	"context"
	"fmt"
	"log"
	"sync"

	"org-sync-backend/pkg/snapshot"
	"org-sync-backend/pkg/store"
)

// Engine keeps per-organization snapshots current against the store's
// change feed. Each subscribed org has one feed subscription and one
// goroutine folding its events into the cache. The feed is lossy, so
// the cache is only ever as good as the last Refresh plus whatever
// events arrived since; callers who suspect drift call Refresh.
type Engine struct {
	store store.Store
	cache *Cache

	mu   sync.Mutex
	subs map[string]*orgFeed

	// applyMu serializes event application and refresh per engine so
	// a refresh can discard events that were queued before it.
	applyMu sync.Mutex

	listenMu  sync.Mutex
	listeners map[chan string]string // channel -> org filter, "" means all
}

type orgFeed struct {
	sub  store.Subscription
	done chan struct{}
}

func NewEngine(st store.Store) *Engine {
	return &Engine{
		store:     st,
		cache:     NewCache(),
		subs:      map[string]*orgFeed{},
		listeners: map[chan string]string{},
	}
}

// Snapshot returns the cached snapshot for the org, or nil when the
// org was never fetched.
func (e *Engine) Snapshot(orgID string) *snapshot.Snapshot {
	return e.cache.Get(orgID)
}

// Subscribe attaches the engine to the org's change feed. Calling it
// again for the same org is a no-op. Subscribing does not populate
// the cache; events that arrive before the first Refresh are dropped.
func (e *Engine) Subscribe(orgID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.subs[orgID]; ok {
		return nil
	}
	sub, err := e.store.Subscribe(orgID)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", orgID, err)
	}
	feed := &orgFeed{sub: sub, done: make(chan struct{})}
	e.subs[orgID] = feed
	go e.consume(orgID, feed)
	return nil
}

// Unsubscribe detaches from the org's feed. The cached snapshot stays
// available for reads; it just stops updating.
func (e *Engine) Unsubscribe(orgID string) {
	e.mu.Lock()
	feed, ok := e.subs[orgID]
	if ok {
		delete(e.subs, orgID)
	}
	e.mu.Unlock()
	if ok {
		close(feed.done)
		feed.sub.Close()
	}
}

// Subscribed reports whether the org's feed is currently attached.
func (e *Engine) Subscribed(orgID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.subs[orgID]
	return ok
}

func (e *Engine) consume(orgID string, feed *orgFeed) {
	for {
		select {
		case <-feed.done:
			return
		case ev, ok := <-feed.sub.Events():
			if !ok {
				return
			}
			e.apply(ev)
		}
	}
}

func (e *Engine) apply(ev store.Event) {
	e.applyMu.Lock()
	orgID := ev.EventOrg()
	snap := e.cache.Get(orgID)
	if snap == nil {
		// no baseline yet; nothing to fold the event into
		e.applyMu.Unlock()
		return
	}
	e.cache.Set(orgID, Apply(snap, ev))
	e.applyMu.Unlock()
	e.notify(orgID)
}

// Refresh fetches the org from the store and replaces the cached
// snapshot wholesale. Events already queued on the feed when the
// fresh snapshot lands are discarded; they describe writes the fetch
// has already seen.
func (e *Engine) Refresh(ctx context.Context, orgID string) (*snapshot.Snapshot, error) {
	snap, err := e.store.Fetch(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh %s: %w", orgID, err)
	}

	e.applyMu.Lock()
	e.mu.Lock()
	if feed, ok := e.subs[orgID]; ok {
		drain(feed.sub.Events())
	}
	e.mu.Unlock()
	e.cache.Set(orgID, snap)
	e.applyMu.Unlock()

	e.notify(orgID)
	return snap, nil
}

func drain(events <-chan store.Event) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// Forget drops the org entirely: feed and cached snapshot.
func (e *Engine) Forget(orgID string) {
	e.Unsubscribe(orgID)
	e.cache.Delete(orgID)
}

// Listen registers a channel that receives the org id whenever a
// snapshot changes. An empty orgID listens to every org. The send is
// non-blocking; a listener that has not drained yet misses the nudge
// and catches up on its next read, so the channel works as a
// coalescing dirty flag.
func (e *Engine) Listen(orgID string) chan string {
	ch := make(chan string, 1)
	e.listenMu.Lock()
	e.listeners[ch] = orgID
	e.listenMu.Unlock()
	return ch
}

func (e *Engine) Ignore(ch chan string) {
	e.listenMu.Lock()
	delete(e.listeners, ch)
	e.listenMu.Unlock()
}

func (e *Engine) notify(orgID string) {
	e.listenMu.Lock()
	for ch, filter := range e.listeners {
		if filter != "" && filter != orgID {
			continue
		}
		select {
		case ch <- orgID:
		default:
		}
	}
	e.listenMu.Unlock()
}

// Close detaches every feed. Cached snapshots stay readable.
func (e *Engine) Close() {
	e.mu.Lock()
	subs := e.subs
	e.subs = map[string]*orgFeed{}
	e.mu.Unlock()
	for orgID, feed := range subs {
		close(feed.done)
		feed.sub.Close()
		log.Printf("detached change feed for org %s", orgID)
	}
}
