package room

import (
	"context"
	"sync"

	"github.com/cagdev/cag-backend/internal/engine"
	"github.com/cagdev/cag-backend/internal/store"
)

// Mirror is the client-side Authority: a read-only replica of the canonical
// state. It never applies actions locally; intents are forwarded to the host
// and every received snapshot replaces the local copy wholesale.
type Mirror struct {
	mu      sync.RWMutex
	state   engine.State
	version int
	synced  bool
	forward func(engine.Action)
}

// NewMirror wires the mirror to a transport send function carrying intents
// to the host.
func NewMirror(forward func(engine.Action)) *Mirror {
	return &Mirror{forward: forward}
}

func (m *Mirror) Submit(sessionID string, act engine.Action) {
	act.PlayerID = sessionID
	m.forward(act)
}

// Update installs a received snapshot. Older snapshots arriving late are
// ignored so the mirror converges on the host's newest state.
func (m *Mirror) Update(snap Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.synced && snap.Version < m.version {
		return
	}
	m.state = snap.State
	m.version = snap.Version
	m.synced = true
}

func (m *Mirror) Latest() (engine.State, int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, m.version, m.synced
}

// Follow feeds the mirror from a store subscription until the context is
// cancelled. It lets a separate process (a spectator service, an admin UI)
// track a room without a websocket to the host.
func (m *Mirror) Follow(ctx context.Context, st store.Store, roomCode string) error {
	if rec, ok, err := st.Load(ctx, roomCode); err == nil && ok {
		m.Update(Snapshot{Version: rec.Version, State: rec.State})
	}
	ch, err := st.Subscribe(ctx, roomCode)
	if err != nil {
		return err
	}
	for rec := range ch {
		m.Update(Snapshot{Version: rec.Version, State: rec.State})
	}
	return ctx.Err()
}
