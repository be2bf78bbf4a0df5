// Package room hosts the single-writer replication loop. Exactly one
// goroutine per room owns the canonical engine.State, applies every action
// (client intents and the host's own), persists the result, and broadcasts
// full snapshots to every connected client. Clients never mutate state from
// their own intents; they wait for the resulting snapshot.
package room

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/cagdev/cag-backend/internal/engine"
	"github.com/cagdev/cag-backend/internal/store"
)

type Msg interface{ isRoomMsg() }

// Intent is a player-submitted action. SessionID is the authenticated
// sender; the loop re-derives the acting player from it and never trusts a
// client-supplied actor id.
type Intent struct {
	SessionID string
	Action    engine.Action
}

func (Intent) isRoomMsg() {}

// SetPlayers feeds a fresh membership snapshot from the directory.
type SetPlayers struct{ Players []engine.Player }

func (SetPlayers) isRoomMsg() {}

type Join struct {
	SessionID string
	Outbox    chan Snapshot // where this client receives snapshots
}

func (Join) isRoomMsg() {}

// Leave detaches one connection's outbox. It carries the outbox so a stale
// Leave from a dead connection cannot deregister the session's live
// reconnected one.
type Leave struct {
	SessionID string
	Outbox    chan Snapshot
}

func (Leave) isRoomMsg() {}

type GetView struct{ Reply chan View }

func (GetView) isRoomMsg() {}

// Shutdown stops the loop. Purge additionally deletes the persisted
// snapshot; leave it false on process shutdown so the room can be restored.
type Shutdown struct{ Purge bool }

func (Shutdown) isRoomMsg() {}

// timerFired is posted by a timer goroutine. The version tags the state the
// timer was armed against; a fired timer whose version no longer matches is
// discarded so no timer ever acts on stale state.
type timerFired struct {
	version int
	action  engine.Action
}

func (timerFired) isRoomMsg() {}

type Snapshot struct {
	Version int
	State   engine.State
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
}

// Timings are the host-side progression delays. They pace the game, not its
// correctness: shortening any of them to zero keeps every invariant intact.
type Timings struct {
	Turn      time.Duration // per-turn window before AUTO_PASS
	RoundOver time.Duration // result display before the next round
	NextRound time.Duration // gap between entering AUCTION and the first round
}

func DefaultTimings() Timings {
	return Timings{
		Turn:      15 * time.Second,
		RoundOver: 5 * time.Second,
		NextRound: 2 * time.Second,
	}
}

type Room struct {
	inbox   chan Msg
	state   engine.State
	version int
	clients map[string]chan Snapshot
	pending clockwork.Timer
	clock   clockwork.Clock
	timings Timings
	store   store.Store
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, initial engine.State, st store.Store, clock clockwork.Clock, timings Timings, log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		inbox:   make(chan Msg, 64),
		state:   initial,
		clients: make(map[string]chan Snapshot),
		clock:   clock,
		timings: timings,
		store:   st,
		log:     log.With(zap.String("room", initial.RoomCode)),
		ctx:     ctx,
		cancel:  cancel,
	}
	go r.loop()
	return r
}

// Inbox exposes the serialized action queue: every socket reader and timer
// funnels into it, so no two applies ever race on the same state.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	// Arm for the initial state too: a room restored from the store may
	// already be mid-auction.
	r.rearm()
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown(false)
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				// Register and sync immediately: a (re)joining client
				// always gets the complete current snapshot, never a
				// log to replay. A reconnect replaces the session's old
				// outbox, closing it so its writer stops.
				if old, ok := r.clients[msg.SessionID]; ok && old != msg.Outbox {
					close(old)
				}
				r.clients[msg.SessionID] = msg.Outbox
				msg.Outbox <- Snapshot{Version: r.version, State: r.state}

			case Leave:
				if cur, ok := r.clients[msg.SessionID]; ok && cur == msg.Outbox {
					delete(r.clients, msg.SessionID)
					close(cur)
				}

			case Intent:
				r.handleIntent(msg)

			case SetPlayers:
				r.step(engine.Action{Type: engine.ActSetPlayers, Players: msg.Players})

			case timerFired:
				if msg.version != r.version {
					r.log.Debug("discarding stale timer",
						zap.Int("armed", msg.version), zap.Int("current", r.version))
					break
				}
				r.step(msg.action)

			case GetView:
				msg.Reply <- View{Version: r.version, NumClients: len(r.clients), State: r.state}

			case Shutdown:
				r.shutdown(msg.Purge)
				return
			}
		}
	}
}

func (r *Room) handleIntent(m Intent) {
	act := m.Action
	switch {
	case act.Type.Internal():
		r.reject("that action cannot be submitted directly")
		return
	case act.Type.HostOnly():
		if host := r.state.HostID(); host == "" || m.SessionID != host {
			r.reject("only the host can do that")
			return
		}
	default:
		// The actor is always the authenticated sender.
		act.PlayerID = m.SessionID
	}
	r.step(act)
}

// step applies one action and chases it with END_ROUND for as long as the
// live round satisfies a resolution condition, broadcasting after every
// accepted transition.
func (r *Room) step(act engine.Action) {
	accepted := false
	for {
		next, err := engine.Apply(r.state, act)
		if err != nil {
			r.log.Debug("action rejected",
				zap.String("action", string(act.Type)), zap.Error(err))
			r.reject(err.Error())
			break
		}
		r.state = next
		r.version++
		accepted = true
		r.persist()
		r.broadcast()

		if engine.ShouldResolveRound(r.state) {
			act = engine.Action{Type: engine.ActEndRound}
			continue
		}
		break
	}
	if accepted {
		r.rearm()
	}
}

// reject surfaces a validation failure as the message on the otherwise
// unchanged canonical state. The version does not advance: no transition
// happened, and any armed timer is still valid.
func (r *Room) reject(msg string) {
	r.state.Message = msg
	r.broadcast()
}

func (r *Room) persist() {
	ctx, cancel := context.WithTimeout(r.ctx, 3*time.Second)
	defer cancel()
	rec := store.Record{RoomCode: r.state.RoomCode, Version: r.version, State: r.state}
	if err := r.store.Write(ctx, rec); err != nil {
		r.log.Warn("failed to persist snapshot", zap.Int("version", r.version), zap.Error(err))
	}
}

func (r *Room) broadcast() {
	snap := Snapshot{Version: r.version, State: r.state}
	for id, ch := range r.clients {
		select {
		case ch <- snap:
		default:
			// Client is slow/full - drop them; they resync on rejoin.
			close(ch)
			delete(r.clients, id)
		}
	}
}

// rearm cancels any pending timer and schedules the one progression trigger
// the current status calls for, tagged with the current version.
func (r *Room) rearm() {
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}

	var (
		d   time.Duration
		act engine.Action
	)
	switch {
	case r.state.Status == engine.StatusAuction && r.state.OnBlock != nil:
		d = r.timings.Turn
		act = engine.Action{Type: engine.ActAutoPass, PlayerID: r.state.ActivePlayerID}
	case r.state.Status == engine.StatusAuction:
		d = r.timings.NextRound
		act = engine.Action{Type: engine.ActStartNextRound}
	case r.state.Status == engine.StatusRoundOver:
		d = r.timings.RoundOver
		act = engine.Action{Type: engine.ActStartNextRound}
	default:
		// SUBPOOL_BREAK is host-gated and LOBBY/POOL_VIEW/GAME_OVER have
		// no scheduled progression.
		return
	}

	// AfterFunc keeps exactly one scheduled callback alive per room. A
	// callback that loses the race with Stop posts a stale version and is
	// discarded by the loop.
	armed := r.version
	r.pending = r.clock.AfterFunc(d, func() {
		select {
		case r.inbox <- timerFired{version: armed, action: act}:
		case <-r.ctx.Done():
		}
	})
}

func (r *Room) shutdown(purge bool) {
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
	for id, ch := range r.clients {
		close(ch)
		delete(r.clients, id)
	}
	if purge {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := r.store.Delete(ctx, r.state.RoomCode); err != nil {
			r.log.Warn("failed to delete snapshot on shutdown", zap.Error(err))
		}
	}
	r.cancel()
}
