package hub

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/cagdev/cag-backend/internal/engine"
	"github.com/cagdev/cag-backend/internal/room"
	"github.com/cagdev/cag-backend/internal/store"
)

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	Code  string
	State engine.State
	Reply chan *room.Room
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

type EnsureRoom struct {
	Code  string
	State engine.State // only used if creation happens
	Reply chan *room.Room
}

type RemoveRoom struct {
	Code string
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (EnsureRoom) isHubMsg()  {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

// Hub is the actor owning the set of live rooms, keyed by room code.
type Hub struct {
	inbox   chan HubMsg
	rooms   map[string]*room.Room
	store   store.Store
	clock   clockwork.Clock
	timings room.Timings
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, st store.Store, clock clockwork.Clock, timings room.Timings, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		rooms:   make(map[string]*room.Room),
		store:   st,
		clock:   clock,
		timings: timings,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				if rm := h.rooms[msg.Code]; rm != nil {
					msg.Reply <- rm
					break
				}
				msg.Reply <- h.spawn(msg.Code, msg.State)

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // may be nil

			case EnsureRoom:
				if rm := h.rooms[msg.Code]; rm != nil {
					msg.Reply <- rm
					break
				}
				msg.Reply <- h.spawn(msg.Code, msg.State)

			case RemoveRoom:
				if rm := h.rooms[msg.Code]; rm != nil {
					rm.Inbox() <- room.Shutdown{Purge: true}
					delete(h.rooms, msg.Code)
				}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

// spawn prefers the persisted snapshot over the caller's initial state so a
// restarted server resumes a room mid-game instead of resetting it.
func (h *Hub) spawn(code string, initial engine.State) *room.Room {
	if rec, ok, err := h.store.Load(h.ctx, code); err == nil && ok {
		h.log.Info("restoring room from store",
			zap.String("room", code), zap.Int("version", rec.Version))
		initial = rec.State
	}
	rm := room.New(h.ctx, initial, h.store, h.clock, h.timings, h.log)
	h.rooms[code] = rm
	return rm
}

func (h *Hub) shutdown() {
	for code, rm := range h.rooms {
		rm.Inbox() <- room.Shutdown{}
		delete(h.rooms, code)
	}
	h.cancel()
}
