package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/cagdev/cag-backend/internal/catalog"
	"github.com/cagdev/cag-backend/internal/config"
	"github.com/cagdev/cag-backend/internal/directory"
	"github.com/cagdev/cag-backend/internal/httpapi"
	"github.com/cagdev/cag-backend/internal/hub"
	"github.com/cagdev/cag-backend/internal/room"
	"github.com/cagdev/cag-backend/internal/store"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.Load()

	cricketers, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatal("loading catalog", zap.String("path", cfg.CatalogPath), zap.Error(err))
	}
	log.Info("catalog loaded", zap.Int("cricketers", len(cricketers)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Without DATABASE_URL everything runs in memory, which is enough for a
	// single-process dev server. With it, snapshots and the roster survive
	// restarts.
	var (
		st  store.Store
		dir directory.Directory
	)
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal("connecting snapshot store", zap.Error(err))
		}
		defer pg.Close()
		st = pg

		gd, err := directory.OpenGorm(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("connecting directory", zap.Error(err))
		}
		dir = gd
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store and directory")
		st = store.NewMemoryStore()
		dir = directory.NewMemoryDirectory()
	}

	timings := room.Timings{
		Turn:      cfg.TurnTimer,
		RoundOver: cfg.RoundOverDelay,
		NextRound: cfg.NextRoundDelay,
	}
	h := hub.NewHub(ctx, st, clockwork.NewRealClock(), timings, log)

	handler := httpapi.SetupRoutes(httpapi.Deps{
		Hub:            h,
		Directory:      dir,
		Catalog:        cricketers,
		StartingBudget: cfg.StartingBudget,
		Log:            log,
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("listening", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server", zap.Error(err))
	}
}
