package game

import (
	"context"
	"testing"

	"photo-hunt/internal/db"

	"github.com/google/uuid"
)

func TestEnsureExistsIsIdempotent(t *testing.T) {
	conn := openTestDB(t)
	sessions := NewSessionManager(conn)
	ctx := context.Background()

	first, err := sessions.EnsureExists(ctx, "Global Session")
	if err != nil {
		t.Fatalf("ensure session: %v", err)
	}
	second, err := sessions.EnsureExists(ctx, "  Global Session ")
	if err != nil {
		t.Fatalf("ensure session again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same session, got %s and %s", first.ID, second.ID)
	}
	var count int64
	if err := conn.Model(&db.Session{}).Count(&count).Error; err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 session row, got %d", count)
	}

	other, err := sessions.EnsureExists(ctx, "Office Party")
	if err != nil {
		t.Fatalf("ensure other session: %v", err)
	}
	if other.ID == first.ID {
		t.Fatalf("expected a distinct session for a distinct name")
	}
}

func TestEnsureExistsRequiresName(t *testing.T) {
	sessions := NewSessionManager(openTestDB(t))
	if _, err := sessions.EnsureExists(context.Background(), "   "); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetSession(t *testing.T) {
	f := newFixture(t)
	got, err := f.sessions.Get(context.Background(), f.session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Name != "Test Session" {
		t.Fatalf("unexpected session name %q", got.Name)
	}
	if _, err := f.sessions.Get(context.Background(), uuid.New()); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
