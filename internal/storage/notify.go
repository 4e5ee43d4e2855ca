package storage

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Veraticus/ndalama/internal/service"
)

// snapshotHub fans committed record sets out to subscribers.
// Each subscriber channel holds at most one pending snapshot; a newer one
// replaces it, so slow readers always see the latest state.
type snapshotHub struct {
	subs   map[int]chan service.Snapshot
	nextID int
	mu     sync.Mutex
	// pubMu orders load-then-publish so the last delivered snapshot is the newest.
	pubMu  sync.Mutex
	closed bool
}

func newSnapshotHub() *snapshotHub {
	return &snapshotHub{subs: make(map[int]chan service.Snapshot)}
}

func (h *snapshotHub) add() (int, chan service.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, nil, false
	}
	id := h.nextID
	h.nextID++
	ch := make(chan service.Snapshot, 1)
	h.subs[id] = ch
	return id, ch, true
}

func (h *snapshotHub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *snapshotHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *snapshotHub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *snapshotHub) publish(snap service.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		offer(ch, snap)
	}
}

func (h *snapshotHub) send(id int, snap service.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		offer(ch, snap)
	}
}

func offer(ch chan service.Snapshot, snap service.Snapshot) {
	select {
	case ch <- snap:
		return
	default:
	}
	// Drop the stale pending snapshot.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}

// Subscribe returns a channel that receives the full record set now and
// after every committed write. The channel closes when ctx is done or the
// storage is closed.
func (s *SQLiteStorage) Subscribe(ctx context.Context) (<-chan service.Snapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	id, ch, ok := s.hub.add()
	if !ok {
		return nil, ErrStorageClosed
	}

	s.hub.pubMu.Lock()
	snap, err := s.Snapshot(ctx)
	if err != nil {
		s.hub.pubMu.Unlock()
		s.hub.remove(id)
		return nil, err
	}
	s.hub.send(id, snap)
	s.hub.pubMu.Unlock()

	go func() {
		<-ctx.Done()
		s.hub.remove(id)
	}()

	return ch, nil
}

// notify publishes the current record set after a commit.
func (s *SQLiteStorage) notify(ctx context.Context) {
	if s.hub.len() == 0 {
		return
	}
	s.hub.pubMu.Lock()
	defer s.hub.pubMu.Unlock()

	// Writes are already durable; a canceled caller must not hide them.
	snap, err := s.Snapshot(context.WithoutCancel(ctx))
	if err != nil {
		slog.Warn("failed to load snapshot for subscribers", "error", err)
		return
	}
	s.hub.publish(snap)
}
