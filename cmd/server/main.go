package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-hunt/internal/blob"
	"photo-hunt/internal/config"
	"photo-hunt/internal/db"
	"photo-hunt/internal/game"
	"photo-hunt/internal/metrics"
	"photo-hunt/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(conn); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	var (
		store  game.BlobStore
		reader server.BlobReader
	)
	switch cfg.BlobBackend {
	case config.BlobBackendDisk:
		disk, err := blob.NewDiskStore(cfg.BlobDir, cfg.BlobBaseURL)
		if err != nil {
			log.Fatalf("blob store setup failed: %v", err)
		}
		store = disk
	default:
		dbStore := blob.NewDBStore(conn, cfg.BlobBaseURL)
		store = dbStore
		reader = dbStore
	}

	scorer := game.NewScorer(conn, m)
	photos := game.NewPhotoWorkflow(conn, store, scorer, m)
	photos.MaxImageBytes = cfg.MaxPhotoBytes
	sessions := game.NewSessionManager(conn)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := sessions.EnsureExists(ctx, cfg.SessionName)
	if err != nil {
		log.Fatalf("session setup failed: %v", err)
	}
	log.Printf("session ready session_id=%s name=%q", session.ID, session.Name)

	relay := game.NewScoringRelay(scorer, cfg.ScoringRetryInterval(), cfg.ScoringBatchSize)
	go relay.Run(ctx)

	srv := server.New(conn, cfg, server.Deps{
		Sessions: sessions,
		Players:  game.NewPlayerDirectory(conn),
		Teams:    game.NewTeamRegistry(conn),
		Photos:   photos,
		Blobs:    reader,
		Metrics:  m,
		Gatherer: registry,
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("photo-hunt server listening on %s blob_backend=%s", httpServer.Addr, cfg.BlobBackend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown failed: %v", err)
	}
	if n, err := relay.Flush(shutdownCtx); err != nil {
		log.Printf("final scoring flush failed applied=%d err=%v", n, err)
	}
}
