package room

import "github.com/cagdev/cag-backend/internal/engine"

// Authority is the role a process plays in the replication protocol,
// selected once at startup. The host applies actions against the canonical
// state; a mirror only forwards intents and replaces its local copy with
// whatever snapshot the host broadcasts.
type Authority interface {
	// Submit hands over an action on behalf of the authenticated session.
	Submit(sessionID string, act engine.Action)
	// Latest returns the newest known snapshot. ok is false before the
	// first sync.
	Latest() (engine.State, int, bool)
}

// Submit implements Authority for the host side: the intent is serialized
// into the room's action queue.
func (r *Room) Submit(sessionID string, act engine.Action) {
	select {
	case r.inbox <- Intent{SessionID: sessionID, Action: act}:
	case <-r.ctx.Done():
	}
}

// Latest implements Authority for the host side with a synchronous view of
// the loop's state.
func (r *Room) Latest() (engine.State, int, bool) {
	reply := make(chan View, 1)
	select {
	case r.inbox <- GetView{Reply: reply}:
	case <-r.ctx.Done():
		return engine.State{}, 0, false
	}
	select {
	case v := <-reply:
		return v.State, v.Version, true
	case <-r.ctx.Done():
		return engine.State{}, 0, false
	}
}
