package game

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"
)

func TestRosterLoad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	importer := NewRosterImporter(f.players, f.teams)

	csv := strings.Join([]string{
		"name,role,team",
		"Host,admin,",
		"Alice,player,1",
		"Bobby,,2",
		"Carol,PLAYER,2",
		"X,player,1",
		"Dave,player,zero",
		"Erin,moderator,",
	}, "\n")
	result, err := importer.Load(ctx, f.session.ID, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("load roster: %v", err)
	}
	if result.Players != 4 {
		t.Fatalf("expected 4 players, got %d", result.Players)
	}
	if result.TeamsCreated != 2 {
		t.Fatalf("expected 2 teams created, got %d", result.TeamsCreated)
	}
	if len(result.Skipped) != 3 {
		t.Fatalf("expected 3 skipped rows, got %v", result.Skipped)
	}
	if !strings.HasPrefix(result.Skipped[0], "line 6:") {
		t.Fatalf("expected skipped rows to carry line numbers, got %q", result.Skipped[0])
	}

	teams, err := f.teams.ListWithPlayers(ctx, f.session.ID)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(teams))
	}
	if got := playerNames(teams[0].Players); len(got) != 1 || got[0] != "Alice" {
		t.Fatalf("expected [Alice] on %s, got %v", teams[0].Name, got)
	}
	if got := playerNames(teams[1].Players); len(got) != 2 || got[0] != "Bobby" || got[1] != "Carol" {
		t.Fatalf("expected [Bobby Carol] on %s, got %v", teams[1].Name, got)
	}

	players, err := f.players.ListWithTeams(ctx, f.session.ID)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if players[0].Name != "Host" || players[0].Role != RoleAdmin || players[0].Team != nil {
		t.Fatalf("unexpected host row %+v", players[0])
	}
}

func TestRosterReusesExistingTeams(t *testing.T) {
	f := newFixture(t)
	existing := f.team(t)
	importer := NewRosterImporter(f.players, f.teams)

	result, err := importer.Load(context.Background(), f.session.ID, strings.NewReader("name,role,team\nAlice,player,1\n"))
	if err != nil {
		t.Fatalf("load roster: %v", err)
	}
	if result.TeamsCreated != 0 {
		t.Fatalf("expected existing team to be reused, created %d", result.TeamsCreated)
	}
	alice, err := f.players.ListWithTeams(context.Background(), f.session.ID)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if len(alice) != 1 || alice[0].Team == nil || alice[0].Team.ID != existing.ID {
		t.Fatalf("expected alice on the existing team, got %+v", alice)
	}
}

func TestRosterSkipsTeamBeyondNext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	importer := NewRosterImporter(f.players, f.teams)

	result, err := importer.Load(ctx, f.session.ID, strings.NewReader("name,role,team\nAlice,player,3000\nBobby,player,2\n"))
	if err != nil {
		t.Fatalf("load roster: %v", err)
	}
	if result.Players != 0 || result.TeamsCreated != 0 {
		t.Fatalf("expected nothing imported, got %+v", result)
	}
	if len(result.Skipped) != 2 || !strings.HasPrefix(result.Skipped[0], "line 2:") || !strings.HasPrefix(result.Skipped[1], "line 3:") {
		t.Fatalf("expected both rows skipped, got %v", result.Skipped)
	}
	teams, err := f.teams.ListBySession(ctx, f.session.ID)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(teams) != 0 {
		t.Fatalf("expected no teams, got %d", len(teams))
	}
}

func TestRosterRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	importer := NewRosterImporter(f.players, f.teams)

	const name = "test:fail_assignments"
	err := f.conn.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == "team_assignments" {
			_ = tx.AddError(errors.New("assignments unavailable"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	t.Cleanup(func() { _ = f.conn.Callback().Create().Remove(name) })

	_, err = importer.Load(ctx, f.session.ID, strings.NewReader("name,role,team\nHost,admin,\nAlice,player,1\n"))
	if err == nil {
		t.Fatalf("expected import to fail")
	}
	players, err := f.players.ListBySession(ctx, f.session.ID)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	teams, err := f.teams.ListBySession(ctx, f.session.ID)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(players) != 0 || len(teams) != 0 {
		t.Fatalf("expected nothing kept, got %d players %d teams", len(players), len(teams))
	}
}
