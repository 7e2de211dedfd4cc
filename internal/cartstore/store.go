package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/YARN-DEV/NOREG/internal/domain"
)

// Store owns the authoritative in-memory cart for one shopper session and
// mirrors it to durable storage. Nobody else mutates the cart; consumers
// only ever see snapshot copies.
//
// Persistence is fire-and-forget: every mutation issues a write of the full
// current snapshot, a single writer goroutine applies them in issue order,
// and because writes carry complete state (never diffs) last-write-wins is
// safe even if the mirror is slow. No write is issued before the initial
// Load has completed, so a delayed startup can never clobber the durable
// cart with an empty one.
type Store struct {
	key    string
	mirror Mirror

	mu      sync.Mutex
	items   []domain.CartItem
	ready   bool
	pending bool
	closed  bool

	seq    uint64
	writes chan snapshot
	quit   chan struct{}
	done   chan struct{}
}

// snapshot is one queued full-state write. The sequence number orders
// snapshots taken under the store lock so the writer can tell stale from
// fresh even when goroutines race to enqueue.
type snapshot struct {
	seq   uint64
	items []domain.CartItem
}

func NewStore(key string, mirror Mirror) *Store {
	return &Store{
		key:    key,
		mirror: mirror,
		writes: make(chan snapshot, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Load reads the durable mirror and makes the store ready. Missing, corrupt
// or undecodable data degrades to an empty cart; corruption is a recoverable
// condition and is only logged. Load never fails from the caller's view.
func (s *Store) Load(ctx context.Context) []domain.CartItem {
	var items []domain.CartItem

	data, err := s.mirror.Get(ctx, s.key)
	switch {
	case errors.Is(err, ErrMirrorNotFound):
		// first visit, nothing persisted yet
	case err != nil:
		log.Printf("cart %s: mirror read failed, starting empty: %v", s.key, err)
	default:
		if err := json.Unmarshal(data, &items); err != nil {
			log.Printf("cart %s: mirror data undecodable, starting empty: %v", s.key, err)
			items = nil
		}
	}

	s.mu.Lock()
	s.items = items
	s.ready = true
	closed := s.closed
	flush := s.pending
	s.pending = false
	s.mu.Unlock()

	// Close already ran; starting the writer now would leave it with no one
	// left to stop it.
	if closed {
		return domain.CloneItems(items)
	}

	go s.writer()

	// a mutation arrived before the load finished; persist it now
	if flush {
		s.persist()
	}

	return domain.CloneItems(items)
}

// Key is the session key this store persists under.
func (s *Store) Key() string {
	return s.key
}

// Ready is false until the initial Load has completed. Mutations are legal
// before readiness, but callers should not act on cart contents (for
// example redirect away from an "empty" cart) until Ready reports true.
func (s *Store) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Items returns a snapshot copy of the cart in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneItems(s.items)
}

// Add merges a catalog item into the cart. An existing entry with the same
// ID gets its quantity incremented and keeps its original metadata; a new
// entry is appended with quantity 1.
func (s *Store) Add(item domain.CatalogItem) {
	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, domain.CartItem{
			ID:       item.ID,
			Title:    item.Title,
			Author:   item.Author,
			Price:    item.Price,
			Image:    item.Image,
			Quantity: 1,
		})
	}
	s.mu.Unlock()

	s.persist()
}

// Remove deletes the entry with the given ID. Removing an absent ID is a
// no-op, not an error.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.persist()
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = s.items[:0]
	s.mu.Unlock()

	s.persist()
}

// persist queues the current full snapshot for the writer goroutine.
// Before the initial load completes the write is deferred (flag only) so
// the mirror is never overwritten ahead of being read. The queue holds the
// latest snapshot only: a newer snapshot displaces a not-yet-written older
// one, which is exactly last-write-wins.
func (s *Store) persist() {
	s.mu.Lock()
	if !s.ready || s.closed {
		s.pending = true
		s.mu.Unlock()
		return
	}
	items := domain.CloneItems(s.items)
	if items == nil {
		items = []domain.CartItem{}
	}
	s.seq++
	snap := snapshot{seq: s.seq, items: items}
	s.mu.Unlock()

	for {
		select {
		case s.writes <- snap:
			return
		default:
		}
		select {
		case queued := <-s.writes:
			// never displace a fresher snapshot with an older one
			if queued.seq > snap.seq {
				snap = queued
			}
		default:
		}
	}
}

func (s *Store) writer() {
	defer close(s.done)
	var lastSeq uint64
	save := func(snap snapshot) {
		if snap.seq < lastSeq {
			return
		}
		lastSeq = snap.seq
		s.save(snap.items)
	}
	for {
		select {
		case snap := <-s.writes:
			save(snap)
		case <-s.quit:
			// drain the last queued snapshot before exiting
			select {
			case snap := <-s.writes:
				save(snap)
			default:
			}
			return
		}
	}
}

func (s *Store) save(items []domain.CartItem) {
	data, err := json.Marshal(items)
	if err != nil {
		log.Printf("cart %s: marshal failed: %v", s.key, err)
		return
	}
	if err := s.mirror.Set(context.Background(), s.key, data); err != nil {
		// cart degrades to in-memory only for this session
		log.Printf("cart %s: mirror write failed: %v", s.key, err)
	}
}

// Close stops the writer goroutine after flushing any queued snapshot.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	ready := s.ready
	s.mu.Unlock()

	if !ready {
		return
	}
	close(s.quit)
	<-s.done
}
