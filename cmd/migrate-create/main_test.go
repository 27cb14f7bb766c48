package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestScaffoldWritesPair(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	up, down, err := scaffold(dir, "add_photo_captions", now)
	if err != nil {
		t.Fatalf("scaffold: %v", err)
	}
	if filepath.Base(up) != "20261001120000_add_photo_captions.up.sql" {
		t.Fatalf("unexpected up path %q", up)
	}
	if filepath.Base(down) != "20261001120000_add_photo_captions.down.sql" {
		t.Fatalf("unexpected down path %q", down)
	}
	data, err := os.ReadFile(up)
	if err != nil {
		t.Fatalf("read up: %v", err)
	}
	if !strings.Contains(string(data), "BEGIN;") {
		t.Fatalf("expected transaction skeleton, got %q", data)
	}

	if _, _, err := scaffold(dir, "add_photo_captions", now); err == nil {
		t.Fatalf("expected existing files to be refused")
	}
}

func TestScaffoldRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"", "add photos", "../escape", "AddPhotos"} {
		if _, _, err := scaffold(dir, name, time.Now()); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}
