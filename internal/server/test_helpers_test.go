package server

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"photo-hunt/internal/blob"
	"photo-hunt/internal/config"
	"photo-hunt/internal/db"
	"photo-hunt/internal/game"
	"photo-hunt/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

type testEnv struct {
	ts       *httptest.Server
	conn     *gorm.DB
	registry *prometheus.Registry
	teams    *game.TeamRegistry
}

func newTestEnv(t *testing.T, configure func(cfg *config.Config)) *testEnv {
	t.Helper()
	cfg := config.Default()
	cfg.GinMode = gin.TestMode
	if configure != nil {
		configure(&cfg)
	}
	conn := openTestDB(t)
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	blobs := blob.NewDBStore(conn, cfg.BlobBaseURL)
	scorer := game.NewScorer(conn, m)
	photos := game.NewPhotoWorkflow(conn, blobs, scorer, m)
	photos.MaxImageBytes = cfg.MaxPhotoBytes
	teams := game.NewTeamRegistry(conn)

	srv := New(conn, cfg, Deps{
		Sessions: game.NewSessionManager(conn),
		Players:  game.NewPlayerDirectory(conn),
		Teams:    teams,
		Photos:   photos,
		Blobs:    blobs,
		Metrics:  m,
		Gatherer: registry,
	})
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, conn: conn, registry: registry, teams: teams}
}
