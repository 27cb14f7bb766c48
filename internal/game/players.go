package game

import (
	"context"
	"errors"
	"log"
	"time"

	"photo-hunt/internal/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlayerDirectory owns the players collection and the player side of team edges.
type PlayerDirectory struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPlayerDirectory(conn *gorm.DB) *PlayerDirectory {
	return &PlayerDirectory{db: conn, now: timeNowUTC}
}

func (d *PlayerDirectory) withDB(conn *gorm.DB) *PlayerDirectory {
	clone := *d
	clone.db = conn
	return &clone
}

func (d *PlayerDirectory) Create(ctx context.Context, sessionID uuid.UUID, name, role string) (Player, error) {
	if err := requireID("sessionId", sessionID); err != nil {
		return Player{}, err
	}
	trimmed, err := validatePlayerName(name)
	if err != nil {
		return Player{}, err
	}
	parsedRole, err := ParseRole(role)
	if err != nil {
		return Player{}, err
	}
	record := db.Player{
		ID:        newID(),
		SessionID: sessionID,
		Name:      trimmed,
		Role:      string(parsedRole),
		CreatedAt: d.now(),
	}
	if err := d.db.WithContext(ctx).Omit(clause.Associations).Create(&record).Error; err != nil {
		return Player{}, storageErr("create player", err)
	}
	log.Printf("player created session_id=%s player_id=%s role=%s", sessionID, record.ID, record.Role)
	return playerFromRecord(record)
}

func (d *PlayerDirectory) Get(ctx context.Context, id uuid.UUID) (Player, error) {
	if err := requireID("playerId", id); err != nil {
		return Player{}, err
	}
	var record db.Player
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return Player{}, lookupErr("player", id, err)
	}
	player, err := playerFromRecord(record)
	if err != nil {
		return Player{}, storageErr("load player", err)
	}
	return player, nil
}

func (d *PlayerDirectory) GetWithTeam(ctx context.Context, id uuid.UUID) (PlayerWithTeam, error) {
	if err := requireID("playerId", id); err != nil {
		return PlayerWithTeam{}, err
	}
	var record db.Player
	err := d.db.WithContext(ctx).
		Preload("Assignment.Team").
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return PlayerWithTeam{}, lookupErr("player", id, err)
	}
	return playerWithTeamFromRecord(record)
}

func (d *PlayerDirectory) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]Player, error) {
	if err := requireID("sessionId", sessionID); err != nil {
		return nil, err
	}
	var records []db.Player
	err := d.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, storageErr("list players", err)
	}
	players, err := playersFromRecords(records)
	if err != nil {
		return nil, storageErr("list players", err)
	}
	return players, nil
}

func (d *PlayerDirectory) ListWithTeams(ctx context.Context, sessionID uuid.UUID) ([]PlayerWithTeam, error) {
	if err := requireID("sessionId", sessionID); err != nil {
		return nil, err
	}
	var records []db.Player
	err := d.db.WithContext(ctx).
		Preload("Assignment.Team").
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, storageErr("list players", err)
	}
	list := make([]PlayerWithTeam, 0, len(records))
	for _, record := range records {
		player, err := playerWithTeamFromRecord(record)
		if err != nil {
			return nil, err
		}
		list = append(list, player)
	}
	return list, nil
}

// CurrentTeam returns the team the player is assigned to, if any.
func (d *PlayerDirectory) CurrentTeam(ctx context.Context, playerID uuid.UUID) (uuid.UUID, bool, error) {
	return currentTeam(d.db.WithContext(ctx), playerID)
}

func currentTeam(tx *gorm.DB, playerID uuid.UUID) (uuid.UUID, bool, error) {
	var assignment db.TeamAssignment
	err := tx.Where("player_id = ?", playerID).First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, storageErr("load team assignment", err)
	}
	return assignment.TeamID, true, nil
}

// Opponents lists players of the same session that sit on a different team.
// A player without a team has no opponents, and unassigned players are never
// anyone's opponent.
func (d *PlayerDirectory) Opponents(ctx context.Context, playerID uuid.UUID) ([]Player, error) {
	me, err := d.GetWithTeam(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if me.Team == nil {
		return []Player{}, nil
	}
	var records []db.Player
	err = d.db.WithContext(ctx).
		Joins("JOIN team_assignments ON team_assignments.player_id = players.id").
		Where("players.session_id = ?", me.SessionID).
		Where("players.id <> ?", me.ID).
		Where("team_assignments.team_id <> ?", me.Team.ID).
		Order("players.created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, storageErr("list opponents", err)
	}
	players, err := playersFromRecords(records)
	if err != nil {
		return nil, storageErr("list opponents", err)
	}
	return players, nil
}

// Delete removes a player with its team edge and every photo it took or appears in.
func (d *PlayerDirectory) Delete(ctx context.Context, id uuid.UUID) error {
	if err := requireID("playerId", id); err != nil {
		return err
	}
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record db.Player
		if err := tx.Where("id = ?", id).First(&record).Error; err != nil {
			return lookupErr("player", id, err)
		}
		photos := tx.Model(&db.Photo{}).Select("id").
			Where("photographer_id = ? OR target_player_id = ?", id, id)
		if err := tx.Where("photo_id IN (?)", photos).Delete(&db.ScoreEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("photographer_id = ? OR target_player_id = ?", id, id).Delete(&db.Photo{}).Error; err != nil {
			return err
		}
		if err := tx.Where("player_id = ?", id).Delete(&db.TeamAssignment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&db.Player{}).Error
	})
	if err != nil {
		return storageErr("delete player", err)
	}
	log.Printf("player deleted player_id=%s", id)
	return nil
}

// DeleteAll removes every player of the session and returns how many were removed.
func (d *PlayerDirectory) DeleteAll(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	if err := requireID("sessionId", sessionID); err != nil {
		return 0, err
	}
	var removed int64
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&db.ScoreEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", sessionID).Delete(&db.Photo{}).Error; err != nil {
			return err
		}
		players := tx.Model(&db.Player{}).Select("id").Where("session_id = ?", sessionID)
		if err := tx.Where("player_id IN (?)", players).Delete(&db.TeamAssignment{}).Error; err != nil {
			return err
		}
		result := tx.Where("session_id = ?", sessionID).Delete(&db.Player{})
		removed = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, storageErr("delete players", err)
	}
	log.Printf("players deleted session_id=%s count=%d", sessionID, removed)
	return removed, nil
}

func playerWithTeamFromRecord(record db.Player) (PlayerWithTeam, error) {
	player, err := playerFromRecord(record)
	if err != nil {
		return PlayerWithTeam{}, storageErr("load player", err)
	}
	out := PlayerWithTeam{Player: player}
	if record.Assignment != nil && record.Assignment.Team != nil {
		team := teamFromRecord(*record.Assignment.Team)
		out.Team = &team
	}
	return out, nil
}
