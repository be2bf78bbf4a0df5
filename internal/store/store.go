// Package store persists the canonical game state keyed by room code and
// fans write notifications out to subscribers. The host's room loop is the
// only writer; subscribers receive complete snapshots, never deltas.
package store

import (
	"context"
	"sync"

	"github.com/cagdev/cag-backend/internal/engine"
)

// Record is one persisted snapshot of a room's canonical state.
type Record struct {
	RoomCode string       `json:"roomCode"`
	Version  int          `json:"version"`
	State    engine.State `json:"state"`
}

type Store interface {
	// Write persists the snapshot and notifies subscribers of the room.
	Write(ctx context.Context, rec Record) error
	// Load returns the latest snapshot for the room, or ok=false.
	Load(ctx context.Context, roomCode string) (Record, bool, error)
	// Subscribe delivers every subsequent write for the room until the
	// context is cancelled. Slow subscribers may miss intermediate
	// snapshots; the latest one is always eventually delivered.
	Subscribe(ctx context.Context, roomCode string) (<-chan Record, error)
	// Delete removes the room's snapshot when the room ends.
	Delete(ctx context.Context, roomCode string) error
}

// MemoryStore is the in-process Store used in tests and single-node runs.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
	subs    map[string][]chan Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: map[string]Record{},
		subs:    map[string][]chan Record{},
	}
}

func (m *MemoryStore) Write(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.RoomCode] = rec

	for _, ch := range m.subs[rec.RoomCode] {
		select {
		case ch <- rec:
		default:
			// Subscriber is behind; drop the older snapshot in favor of
			// this one so it always converges on the latest state.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- rec:
			default:
			}
		}
	}
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, roomCode string) (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[roomCode]
	return rec, ok, nil
}

func (m *MemoryStore) Subscribe(ctx context.Context, roomCode string) (<-chan Record, error) {
	ch := make(chan Record, 1)
	m.mu.Lock()
	m.subs[roomCode] = append(m.subs[roomCode], ch)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		subs := m.subs[roomCode]
		for i, c := range subs {
			if c == ch {
				m.subs[roomCode] = append(subs[:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
	}()
	return ch, nil
}

func (m *MemoryStore) Delete(ctx context.Context, roomCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, roomCode)
	return nil
}
