package game

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RosterResult struct {
	Players      int
	TeamsCreated int
	Skipped      []string
}

// RosterImporter bulk-loads players from CSV rows of name,role,team where
// team is an optional 1-based team number within the session.
type RosterImporter struct {
	players *PlayerDirectory
	teams   *TeamRegistry
}

func NewRosterImporter(players *PlayerDirectory, teams *TeamRegistry) *RosterImporter {
	return &RosterImporter{players: players, teams: teams}
}

// Load imports the roster in one transaction. A row may name an existing
// team or the next team number; anything further is skipped.
func (i *RosterImporter) Load(ctx context.Context, sessionID uuid.UUID, r io.Reader) (RosterResult, error) {
	if err := requireID("sessionId", sessionID); err != nil {
		return RosterResult{}, err
	}
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return RosterResult{}, invalid("roster", err.Error())
	}

	var result RosterResult
	err = i.players.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result = RosterResult{}
		players := i.players.withDB(tx)
		registry := i.teams.withDB(tx)
		teams, err := registry.ListBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		for index, row := range rows {
			if index == 0 || len(row) == 0 {
				continue
			}
			line := index + 1
			name := strings.TrimSpace(row[0])
			role := string(RolePlayer)
			if len(row) >= 2 && strings.TrimSpace(row[1]) != "" {
				role = strings.ToLower(strings.TrimSpace(row[1]))
			}
			teamNumber := 0
			if len(row) >= 3 && strings.TrimSpace(row[2]) != "" {
				value, err := strconv.Atoi(strings.TrimSpace(row[2]))
				if err != nil || value <= 0 {
					result.Skipped = append(result.Skipped, fmt.Sprintf("line %d: team must be a positive number", line))
					continue
				}
				if value > len(teams)+1 {
					result.Skipped = append(result.Skipped, fmt.Sprintf("line %d: team %d is beyond the next team number %d", line, value, len(teams)+1))
					continue
				}
				teamNumber = value
			}

			player, err := players.Create(ctx, sessionID, name, role)
			if err != nil {
				if IsValidation(err) {
					result.Skipped = append(result.Skipped, fmt.Sprintf("line %d: %v", line, err))
					continue
				}
				return err
			}
			result.Players++
			if teamNumber == 0 {
				continue
			}
			if teamNumber > len(teams) {
				team, err := registry.Create(ctx, sessionID)
				if err != nil {
					return err
				}
				teams = append(teams, team)
				result.TeamsCreated++
			}
			if err := registry.Assign(ctx, player.ID, teams[teamNumber-1].ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return RosterResult{}, err
	}
	return result, nil
}
