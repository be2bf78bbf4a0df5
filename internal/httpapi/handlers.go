package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cagdev/cag-backend/internal/directory"
	"github.com/cagdev/cag-backend/internal/engine"
	"github.com/cagdev/cag-backend/internal/hub"
	"github.com/cagdev/cag-backend/internal/room"
	"github.com/cagdev/cag-backend/internal/types"
)

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

type createRoomRequest struct {
	HostName  string `json:"hostName"`
	SessionID string `json:"sessionId,omitempty"`
}

// CreateRoom allocates a fresh code, registers the caller as host and spawns
// the room actor seeded with the cricketer catalog.
func CreateRoom(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HostName == "" {
			http.Error(w, "hostName is required", http.StatusBadRequest)
			return
		}
		if req.SessionID == "" {
			req.SessionID = uuid.NewString()
		}

		var code string
		for {
			c, err := GenerateCode()
			if err != nil {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
			exists, err := deps.Directory.RoomExists(r.Context(), c)
			if err != nil {
				http.Error(w, "directory unavailable", http.StatusInternalServerError)
				return
			}
			if !exists {
				code = c
				break
			}
			deps.Log.Info("collision on code, regenerating", zap.String("code", c))
		}

		if err := deps.Directory.CreateRoom(r.Context(), code, directory.Member{
			SessionID: req.SessionID,
			Name:      req.HostName,
		}); err != nil {
			http.Error(w, "failed to register room", http.StatusInternalServerError)
			return
		}

		reply := make(chan *room.Room, 1)
		deps.Hub.Inbox() <- hub.EnsureRoom{
			Code:  code,
			State: engine.NewState(code, deps.Catalog, deps.StartingBudget),
			Reply: reply,
		}
		if <-reply == nil {
			http.Error(w, "failed to create room", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, types.ServerMessage{
			Type: types.MsgRoomCreated,
			Payload: types.JoinSuccessPayload{
				RoomCode:  code,
				SessionID: req.SessionID,
				IsHost:    true,
			},
		})
	}
}

// JoinRoom validates a code before the client opens its websocket, so the
// join form can show "room not found" without an upgrade round trip.
func JoinRoom(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		exists, err := deps.Directory.RoomExists(r.Context(), code)
		if err != nil {
			http.Error(w, "directory unavailable", http.StatusInternalServerError)
			return
		}
		if !exists {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		// The room actor may have been dropped on a restart; respawn it so
		// the websocket upgrade that follows finds it live.
		reply := make(chan *room.Room, 1)
		deps.Hub.Inbox() <- hub.EnsureRoom{
			Code:  code,
			State: engine.NewState(code, deps.Catalog, deps.StartingBudget),
			Reply: reply,
		}
		<-reply

		writeJSON(w, http.StatusOK, types.ServerMessage{
			Type:    types.MsgJoinSuccess,
			Payload: types.JoinSuccessPayload{RoomCode: code},
		})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
