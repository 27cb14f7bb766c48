package game

import (
	"fmt"

	"photo-hunt/internal/db"
)

func sessionFromRecord(record db.Session) Session {
	return Session{
		ID:        record.ID,
		Name:      record.Name,
		CreatedAt: record.CreatedAt,
	}
}

func playerFromRecord(record db.Player) (Player, error) {
	if !IsValidRole(record.Role) {
		return Player{}, fmt.Errorf("player %s has unknown role %q", record.ID, record.Role)
	}
	return Player{
		ID:        record.ID,
		SessionID: record.SessionID,
		Name:      record.Name,
		Role:      Role(record.Role),
		CreatedAt: record.CreatedAt,
	}, nil
}

func playersFromRecords(records []db.Player) ([]Player, error) {
	players := make([]Player, 0, len(records))
	for _, record := range records {
		player, err := playerFromRecord(record)
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, nil
}

func teamFromRecord(record db.Team) Team {
	return Team{
		ID:        record.ID,
		SessionID: record.SessionID,
		Name:      record.Name,
		Color:     record.Color,
		Points:    record.Points,
		CreatedAt: record.CreatedAt,
	}
}

func photoFromRecord(record db.Photo) (Photo, error) {
	if !IsValidStatus(record.Status) {
		return Photo{}, fmt.Errorf("photo %s has unknown status %q", record.ID, record.Status)
	}
	return Photo{
		ID:             record.ID,
		SessionID:      record.SessionID,
		PhotographerID: record.PhotographerID,
		TargetPlayerID: record.TargetPlayerID,
		ImageURL:       record.ImageURL,
		Status:         PhotoStatus(record.Status),
		CreatedAt:      record.CreatedAt,
		ReviewedAt:     record.ReviewedAt,
		ReviewedBy:     record.ReviewedBy,
	}, nil
}

func summaryFromRecord(record *db.Player) PlayerSummary {
	if record == nil {
		return PlayerSummary{}
	}
	return PlayerSummary{
		ID:   record.ID,
		Name: record.Name,
		Role: Role(record.Role),
	}
}
