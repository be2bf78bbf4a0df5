package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cagdev/cag-backend/internal/directory"
	"github.com/cagdev/cag-backend/internal/engine"
	"github.com/cagdev/cag-backend/internal/hub"
	"github.com/cagdev/cag-backend/internal/room"
	"github.com/cagdev/cag-backend/internal/store"
)

func testDeps(t *testing.T) Deps {
	t.Helper()
	h := hub.NewHub(context.Background(), store.NewMemoryStore(), clockwork.NewRealClock(), room.DefaultTimings(), zap.NewNop())
	t.Cleanup(func() { h.Inbox() <- hub.ShutdownHub{} })
	return Deps{
		Hub:            h,
		Directory:      directory.NewMemoryDirectory(),
		Catalog:        []engine.Cricketer{{ID: 1, Name: "R Sharma", Role: engine.RoleBatsman, BasePrice: 200}},
		StartingBudget: 5000,
		Log:            zap.NewNop(),
	}
}

func TestCreateRoomReturnsCodeAndSession(t *testing.T) {
	srv := httptest.NewServer(SetupRoutes(testDeps(t)))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/rooms", "application/json",
		strings.NewReader(`{"hostName": "Asha"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Type    string `json:"type"`
		Payload struct {
			RoomCode  string `json:"roomCode"`
			SessionID string `json:"sessionId"`
			IsHost    bool   `json:"isHost"`
		} `json:"payload"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ROOM_CREATED", body.Type)
	require.Len(t, body.Payload.RoomCode, 6)
	require.NotEmpty(t, body.Payload.SessionID)
	require.True(t, body.Payload.IsHost)
}

func TestCreateRoomRequiresHostName(t *testing.T) {
	srv := httptest.NewServer(SetupRoutes(testDeps(t)))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/rooms", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestJoinUnknownRoomIs404(t *testing.T) {
	srv := httptest.NewServer(SetupRoutes(testDeps(t)))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/rooms/ZZZZZZ/join", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestJoinExistingRoomSucceeds(t *testing.T) {
	deps := testDeps(t)
	srv := httptest.NewServer(SetupRoutes(deps))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/rooms", "application/json",
		strings.NewReader(`{"hostName": "Asha"}`))
	require.NoError(t, err)
	var body struct {
		Payload struct {
			RoomCode string `json:"roomCode"`
		} `json:"payload"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()

	resp, err = http.Post(srv.URL+"/rooms/"+body.Payload.RoomCode+"/join", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGenerateCodeShape(t *testing.T) {
	code, err := GenerateCode()
	require.NoError(t, err)
	require.Len(t, code, 6)
	for _, c := range code {
		require.Contains(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", string(c))
	}
}
