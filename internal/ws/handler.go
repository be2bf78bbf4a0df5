package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cagdev/cag-backend/internal/directory"
	"github.com/cagdev/cag-backend/internal/engine"
	"github.com/cagdev/cag-backend/internal/hub"
	"github.com/cagdev/cag-backend/internal/room"
	"github.com/cagdev/cag-backend/internal/types"
)

// Handler upgrades a client onto a room's snapshot feed.
//
// Query params: code (required), session (optional, reuse to reconnect),
// name (optional display name, defaults to "Player").
func Handler(h *hub.Hub, dir directory.Directory, startingBudget int, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "Player"
		}

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
		rm := <-reply
		if rm == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		if err := dir.JoinRoom(r.Context(), code, directory.Member{
			SessionID: sessionID,
			Name:      name,
		}); err != nil {
			http.Error(w, "cannot join room", http.StatusConflict)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		log.Info("client connected",
			zap.String("room", code), zap.String("session", sessionID))

		if err := pushRoster(r.Context(), dir, rm, code, startingBudget); err != nil {
			log.Warn("roster push failed", zap.String("room", code), zap.Error(err))
		}

		members, _ := dir.Members(r.Context(), code)
		isHost := false
		for _, m := range members {
			if m.SessionID == sessionID {
				isHost = m.IsHost
			}
		}
		writeMsg(r.Context(), conn, types.ServerMessage{
			Type: types.MsgJoinSuccess,
			Payload: types.JoinSuccessPayload{
				RoomCode:  code,
				SessionID: sessionID,
				IsHost:    isHost,
			},
		})

		out := make(chan room.Snapshot, 8)
		rm.Inbox() <- room.Join{SessionID: sessionID, Outbox: out}
		defer func() { rm.Inbox() <- room.Leave{SessionID: sessionID, Outbox: out} }()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				payload, _ := json.Marshal(types.StateUpdate(snap.Version, snap.State))
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeMsg(r.Context(), conn, types.ErrorMessage("bad json"))
				continue
			}

			act, ok := toAction(cm)
			if !ok {
				writeMsg(r.Context(), conn, types.ErrorMessage("unknown type"))
				continue
			}

			// Lobby readiness lives in the directory, everything else in
			// the room loop. Toggles flip the row and re-push the roster.
			if act.Type == engine.ActToggleReady {
				if _, err := dir.ToggleReady(r.Context(), code, sessionID); err != nil {
					writeMsg(r.Context(), conn, types.ErrorMessage("not a member of this room"))
					continue
				}
				if err := pushRoster(r.Context(), dir, rm, code, startingBudget); err != nil {
					log.Warn("roster push failed", zap.String("room", code), zap.Error(err))
				}
				continue
			}

			rm.Inbox() <- room.Intent{SessionID: sessionID, Action: act}
		}
	}
}

// toAction maps a wire message to an engine action. Internal action types
// never come off the wire.
func toAction(m types.ClientMessage) (engine.Action, bool) {
	t := engine.ActionType(m.Type)
	switch t {
	case engine.ActDrawPools, engine.ActStartAuction, engine.ActPlaceBid,
		engine.ActPassTurn, engine.ActDropFromRound, engine.ActContinueSubPool,
		engine.ActEndGame, engine.ActToggleReady, engine.ActToggleAuctionReady:
		return engine.Action{Type: t}, true
	default:
		return engine.Action{}, false
	}
}

func pushRoster(ctx context.Context, dir directory.Directory, rm *room.Room, code string, startingBudget int) error {
	members, err := dir.Members(ctx, code)
	if err != nil {
		return err
	}
	rm.Inbox() <- room.SetPlayers{Players: directory.Roster(members, startingBudget)}
	return nil
}

func writeMsg(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	payload, _ := json.Marshal(msg)
	wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
