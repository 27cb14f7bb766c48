package db

import (
	"testing"
	"time"

	"photo-hunt/internal/config"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func TestMigrateCreatesTables(t *testing.T) {
	conn := openMemory(t)
	if err := Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{"sessions", "players", "teams", "team_assignments", "photos", "score_events", "blobs"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("expected table %s", table)
		}
	}
	if err := Migrate(conn); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestMigrateNilConnection(t *testing.T) {
	if err := Migrate(nil); err == nil {
		t.Fatalf("expected error for nil connection")
	}
}

func TestSessionNameIsUnique(t *testing.T) {
	conn := openMemory(t)
	if err := Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	first := Session{ID: uuid.New(), Name: "Global Session", CreatedAt: time.Now().UTC()}
	if err := conn.Create(&first).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}
	second := Session{ID: uuid.New(), Name: "Global Session", CreatedAt: time.Now().UTC()}
	if err := conn.Create(&second).Error; err == nil {
		t.Fatalf("expected duplicate session name to be rejected")
	}
}

func TestAssignmentKeyedByPlayer(t *testing.T) {
	conn := openMemory(t)
	if err := Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	playerID := uuid.New()
	first := TeamAssignment{PlayerID: playerID, TeamID: uuid.New(), AssignedAt: time.Now().UTC()}
	if err := conn.Omit("Team").Create(&first).Error; err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	second := TeamAssignment{PlayerID: playerID, TeamID: uuid.New(), AssignedAt: time.Now().UTC()}
	if err := conn.Omit("Team").Create(&second).Error; err == nil {
		t.Fatalf("expected a second edge for the same player to be rejected")
	}
}

func TestOpenRequiresURL(t *testing.T) {
	cfg := config.Default()
	cfg.DatabaseURL = ""
	if _, err := Open(cfg); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}
