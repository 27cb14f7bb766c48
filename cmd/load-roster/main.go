package main

import (
	"context"
	"flag"
	"log"
	"os"

	"photo-hunt/internal/config"
	"photo-hunt/internal/db"
	"photo-hunt/internal/game"
)

func main() {
	filePath := flag.String("file", "roster.csv", "path to roster csv (name,role,team)")
	sessionName := flag.String("session", "", "session name (defaults to SESSION_NAME)")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()
	if *sessionName == "" {
		*sessionName = cfg.SessionName
	}

	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	file, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("failed to open roster: %v", err)
	}
	defer file.Close()

	ctx := context.Background()
	session, err := game.NewSessionManager(conn).EnsureExists(ctx, *sessionName)
	if err != nil {
		log.Fatalf("session setup failed: %v", err)
	}
	importer := game.NewRosterImporter(game.NewPlayerDirectory(conn), game.NewTeamRegistry(conn))
	result, err := importer.Load(ctx, session.ID, file)
	if err != nil {
		log.Fatalf("failed to load roster: %v", err)
	}
	for _, skipped := range result.Skipped {
		log.Printf("skipped roster row: %s", skipped)
	}
	log.Printf("loaded %d players into session %q teams_created=%d skipped=%d", result.Players, session.Name, result.TeamsCreated, len(result.Skipped))
}
