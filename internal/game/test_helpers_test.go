package game

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"photo-hunt/internal/db"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testPNG is a 1x1 transparent PNG.
var testPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
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
	// One connection keeps the in-memory database alive and serialises
	// writers the way a single relational backend would.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
}

// Now advances one second per call so creation order is observable.
func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type memoryBlobs struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	failPut error
	deleted []string
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{blobs: make(map[string][]byte)}
}

func (m *memoryBlobs) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		return "", m.failPut
	}
	m.blobs[key] = data
	return "memory://" + key, nil
}

func (m *memoryBlobs) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memoryBlobs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

type fixture struct {
	conn     *gorm.DB
	clock    *testClock
	sessions *SessionManager
	players  *PlayerDirectory
	teams    *TeamRegistry
	scorer   *Scorer
	relay    *ScoringRelay
	photos   *PhotoWorkflow
	blobs    *memoryBlobs
	session  Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := openTestDB(t)
	clock := newTestClock()
	f := &fixture{
		conn:     conn,
		clock:    clock,
		sessions: NewSessionManager(conn),
		players:  NewPlayerDirectory(conn),
		teams:    NewTeamRegistry(conn),
		scorer:   NewScorer(conn, nil),
		blobs:    newMemoryBlobs(),
	}
	f.sessions.now = clock.Now
	f.players.now = clock.Now
	f.teams.now = clock.Now
	f.scorer.now = clock.Now
	f.relay = NewScoringRelay(f.scorer, time.Minute, 10)
	f.photos = NewPhotoWorkflow(conn, f.blobs, f.scorer, nil)
	f.photos.now = clock.Now

	session, err := f.sessions.EnsureExists(context.Background(), "Test Session")
	if err != nil {
		t.Fatalf("ensure session: %v", err)
	}
	f.session = session
	return f
}

func (f *fixture) player(t *testing.T, name string) Player {
	t.Helper()
	return f.playerIn(t, f.session.ID, name, RolePlayer)
}

func (f *fixture) admin(t *testing.T, name string) Player {
	t.Helper()
	return f.playerIn(t, f.session.ID, name, RoleAdmin)
}

func (f *fixture) playerIn(t *testing.T, sessionID uuid.UUID, name string, role Role) Player {
	t.Helper()
	player, err := f.players.Create(context.Background(), sessionID, name, string(role))
	if err != nil {
		t.Fatalf("create player %s: %v", name, err)
	}
	return player
}

func (f *fixture) team(t *testing.T) Team {
	t.Helper()
	team, err := f.teams.Create(context.Background(), f.session.ID)
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	return team
}

func (f *fixture) assign(t *testing.T, player Player, team Team) {
	t.Helper()
	if err := f.teams.Assign(context.Background(), player.ID, team.ID); err != nil {
		t.Fatalf("assign %s to %s: %v", player.Name, team.Name, err)
	}
}

func (f *fixture) submit(t *testing.T, photographer, target Player) Photo {
	t.Helper()
	photo, err := f.photos.Submit(context.Background(), Submission{
		SessionID:      f.session.ID,
		PhotographerID: photographer.ID,
		TargetPlayerID: target.ID,
		Image:          testPNG,
		Filename:       "shot.png",
	})
	if err != nil {
		t.Fatalf("submit photo: %v", err)
	}
	return photo
}

func (f *fixture) points(t *testing.T, team Team) int {
	t.Helper()
	current, err := f.teams.Get(context.Background(), team.ID)
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	return current.Points
}

// failTeamUpdates makes every UPDATE on teams fail until the returned func is called.
func failTeamUpdates(t *testing.T, conn *gorm.DB) func() {
	t.Helper()
	const name = "test:fail_team_updates"
	err := conn.Callback().Update().Before("gorm:update").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == "teams" {
			_ = tx.AddError(errors.New("points backend unavailable"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	restored := false
	restore := func() {
		if restored {
			return
		}
		restored = true
		_ = conn.Callback().Update().Remove(name)
	}
	t.Cleanup(restore)
	return restore
}
