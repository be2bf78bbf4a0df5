package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cagdev/cag-backend/internal/directory"
	"github.com/cagdev/cag-backend/internal/engine"
	"github.com/cagdev/cag-backend/internal/hub"
	"github.com/cagdev/cag-backend/internal/ws"
)

// Deps bundles what every handler needs.
type Deps struct {
	Hub            *hub.Hub
	Directory      directory.Directory
	Catalog        []engine.Cricketer
	StartingBudget int
	Log            *zap.Logger
}

func SetupRoutes(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Post("/rooms", CreateRoom(deps))
	r.Post("/rooms/{code}/join", JoinRoom(deps))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(deps.Hub, deps.Directory, deps.StartingBudget, deps.Log))
	return r
}
