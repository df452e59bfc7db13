package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"slaphard/internal/config"
	"slaphard/internal/orchestrator"
	"slaphard/internal/persistence"
	"slaphard/internal/registry"
	"slaphard/internal/roomstore"
	"slaphard/internal/transport"
)

func main() {
	log := logrus.NewEntry(logrus.StandardLogger())
	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore := mustRoomStore(ctx, cfg, log)
	defer closeStore()

	journal := mustJournal(cfg, log)

	hub := transport.NewHub(log)
	orch := orchestrator.New(store, journal, registry.New(), hub, log)
	hub.SetOrchestrator(orch)

	go hub.Run(ctx)

	upgrader := transport.NewUpgrader(cfg.CORSOrigins)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		transport.ServeWS(hub, upgrader, w, r)
	})
	mux.HandleFunc("/health", transport.HealthHandler)
	mux.HandleFunc("/api/debug", transport.DebugHandler(hub))
	mux.HandleFunc("/api/rooms", transport.RoomsHandler(hub))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: withCORS(cfg.CORSOrigins, mux),
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server stopped unexpectedly")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")
	cancel()
	_ = server.Shutdown(context.Background())
}

// mustRoomStore builds the room store (C4) per config: Redis by default,
// or an in-memory fallback when explicitly allowed.
func mustRoomStore(ctx context.Context, cfg config.Config, log *logrus.Entry) (roomstore.Store, func()) {
	if cfg.RedisURL == "" {
		log.Warn("ALLOW_IN_MEMORY_ROOM_STORE: running with an in-process room store")
		return roomstore.NewMemoryStore(), func() {}
	}
	rs, err := roomstore.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	log.Info("connected to redis room store")
	return rs, func() { _ = rs.Close() }
}

// mustJournal builds the durability journal (C5) per config: Postgres when
// enabled, otherwise an in-memory journal (fire-and-forget writes are lost
// on restart, which is acceptable for local development).
func mustJournal(cfg config.Config, log *logrus.Entry) persistence.Journal {
	if !cfg.EnableDBPersistence {
		log.Warn("ENABLE_DB_PERSISTENCE is false: match history will not survive a restart")
		return persistence.NewMemoryJournal()
	}
	pg, err := persistence.NewPostgresJournal(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	log.Info("connected to postgres journal")
	return pg
}

func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if _, ok := allowed[origin]; ok || len(allowed) == 0 {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
