package game

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"photo-hunt/internal/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TeamPalette is the fixed set of colors new teams draw from.
var TeamPalette = []string{
	"#FF6B6B",
	"#4ECDC4",
	"#45B7D1",
	"#FFA07A",
	"#98D8C8",
	"#F7DC6F",
	"#BB8FCE",
	"#85C1E2",
}

func TeamName(number int) string {
	return fmt.Sprintf("Team %d", number)
}

// TeamRegistry owns teams, their points and the team side of assignment edges.
type TeamRegistry struct {
	db      *gorm.DB
	now     func() time.Time
	pickInt func(n int) int
}

func NewTeamRegistry(conn *gorm.DB) *TeamRegistry {
	return &TeamRegistry{db: conn, now: timeNowUTC, pickInt: rand.IntN}
}

func (r *TeamRegistry) withDB(conn *gorm.DB) *TeamRegistry {
	clone := *r
	clone.db = conn
	return &clone
}

func (r *TeamRegistry) pickColor() string {
	return TeamPalette[r.pickInt(len(TeamPalette))]
}

// Create numbers the team from a count of the session's existing teams, so
// names can repeat after deletions. Colors may collide.
func (r *TeamRegistry) Create(ctx context.Context, sessionID uuid.UUID) (Team, error) {
	if err := requireID("sessionId", sessionID); err != nil {
		return Team{}, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&db.Team{}).Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
		return Team{}, storageErr("count teams", err)
	}
	record := db.Team{
		ID:        newID(),
		SessionID: sessionID,
		Name:      TeamName(int(count) + 1),
		Color:     r.pickColor(),
		Points:    0,
		CreatedAt: r.now(),
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&record).Error; err != nil {
		return Team{}, storageErr("create team", err)
	}
	log.Printf("team created session_id=%s team_id=%s name=%q color=%s", sessionID, record.ID, record.Name, record.Color)
	return teamFromRecord(record), nil
}

func (r *TeamRegistry) Get(ctx context.Context, id uuid.UUID) (Team, error) {
	if err := requireID("teamId", id); err != nil {
		return Team{}, err
	}
	var record db.Team
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return Team{}, lookupErr("team", id, err)
	}
	return teamFromRecord(record), nil
}

func (r *TeamRegistry) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]Team, error) {
	if err := requireID("sessionId", sessionID); err != nil {
		return nil, err
	}
	var records []db.Team
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, storageErr("list teams", err)
	}
	teams := make([]Team, 0, len(records))
	for _, record := range records {
		teams = append(teams, teamFromRecord(record))
	}
	return teams, nil
}

func (r *TeamRegistry) ListWithPlayers(ctx context.Context, sessionID uuid.UUID) ([]TeamWithPlayers, error) {
	teams, err := r.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	var records []db.Player
	err = r.db.WithContext(ctx).
		Preload("Assignment").
		Joins("JOIN team_assignments ON team_assignments.player_id = players.id").
		Where("players.session_id = ?", sessionID).
		Order("team_assignments.assigned_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, storageErr("list team players", err)
	}
	byTeam := make(map[uuid.UUID][]Player, len(teams))
	for _, record := range records {
		if record.Assignment == nil {
			continue
		}
		player, err := playerFromRecord(record)
		if err != nil {
			return nil, storageErr("list team players", err)
		}
		byTeam[record.Assignment.TeamID] = append(byTeam[record.Assignment.TeamID], player)
	}
	list := make([]TeamWithPlayers, 0, len(teams))
	for _, team := range teams {
		players := byTeam[team.ID]
		if players == nil {
			players = []Player{}
		}
		list = append(list, TeamWithPlayers{Team: team, Players: players})
	}
	return list, nil
}

func (r *TeamRegistry) Rename(ctx context.Context, id uuid.UUID, name string) (Team, error) {
	if err := requireID("teamId", id); err != nil {
		return Team{}, err
	}
	trimmed, err := validateTeamName(name)
	if err != nil {
		return Team{}, err
	}
	result := r.db.WithContext(ctx).Model(&db.Team{}).Where("id = ?", id).Update("name", trimmed)
	if result.Error != nil {
		return Team{}, storageErr("rename team", result.Error)
	}
	if result.RowsAffected == 0 {
		return Team{}, notFound("team", id)
	}
	return r.Get(ctx, id)
}

// Assign moves the player onto the team with a single upsert on the player key.
func (r *TeamRegistry) Assign(ctx context.Context, playerID, teamID uuid.UUID) error {
	if err := requireID("playerId", playerID); err != nil {
		return err
	}
	if err := requireID("teamId", teamID); err != nil {
		return err
	}
	conn := r.db.WithContext(ctx)
	var player db.Player
	if err := conn.Where("id = ?", playerID).First(&player).Error; err != nil {
		return lookupErr("player", playerID, err)
	}
	var team db.Team
	if err := conn.Where("id = ?", teamID).First(&team).Error; err != nil {
		return lookupErr("team", teamID, err)
	}
	if player.SessionID != team.SessionID {
		return invalid("teamId", "belongs to a different session than the player")
	}
	assignment := db.TeamAssignment{
		PlayerID:   playerID,
		TeamID:     teamID,
		AssignedAt: r.now(),
	}
	err := conn.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"team_id", "assigned_at"}),
	}).Create(&assignment).Error
	if err != nil {
		return storageErr("assign player", err)
	}
	log.Printf("player assigned player_id=%s team_id=%s", playerID, teamID)
	return nil
}

// Unassign removes the player's team edge. It reports whether an edge existed.
func (r *TeamRegistry) Unassign(ctx context.Context, playerID uuid.UUID) (bool, error) {
	if err := requireID("playerId", playerID); err != nil {
		return false, err
	}
	result := r.db.WithContext(ctx).Where("player_id = ?", playerID).Delete(&db.TeamAssignment{})
	if result.Error != nil {
		return false, storageErr("unassign player", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// IncrementPoints adds one point in a single UPDATE so concurrent awards never lose updates.
func (r *TeamRegistry) IncrementPoints(ctx context.Context, teamID uuid.UUID) (bool, error) {
	if err := requireID("teamId", teamID); err != nil {
		return false, err
	}
	ok, err := addPoints(r.db.WithContext(ctx), teamID, 1)
	if err != nil {
		return false, storageErr("increment points", err)
	}
	return ok, nil
}

func addPoints(tx *gorm.DB, teamID uuid.UUID, points int) (bool, error) {
	result := tx.Model(&db.Team{}).
		Where("id = ?", teamID).
		UpdateColumn("points", gorm.Expr("points + ?", points))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ResetAllPoints zeroes every team of the session. Score events still waiting
// to be applied are discarded with it so earlier approvals cannot re-award.
func (r *TeamRegistry) ResetAllPoints(ctx context.Context, sessionID uuid.UUID) error {
	if err := requireID("sessionId", sessionID); err != nil {
		return err
	}
	now := r.now()
	var discarded int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.Team{}).Where("session_id = ?", sessionID).UpdateColumn("points", 0).Error; err != nil {
			return err
		}
		result := tx.Model(&db.ScoreEvent{}).
			Where("session_id = ? AND outcome = ?", sessionID, db.ScoreOutcomePending).
			Updates(map[string]any{"outcome": db.ScoreOutcomeDiscarded, "applied_at": now})
		discarded = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return storageErr("reset points", err)
	}
	log.Printf("team points reset session_id=%s discarded_score_events=%d", sessionID, discarded)
	return nil
}

func (r *TeamRegistry) Delete(ctx context.Context, id uuid.UUID) error {
	if err := requireID("teamId", id); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record db.Team
		if err := tx.Where("id = ?", id).First(&record).Error; err != nil {
			return lookupErr("team", id, err)
		}
		if err := tx.Where("team_id = ?", id).Delete(&db.ScoreEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&db.TeamAssignment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&db.Team{}).Error
	})
	if err != nil {
		return storageErr("delete team", err)
	}
	log.Printf("team deleted team_id=%s", id)
	return nil
}

func (r *TeamRegistry) DeleteAll(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	if err := requireID("sessionId", sessionID); err != nil {
		return 0, err
	}
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		teams := tx.Model(&db.Team{}).Select("id").Where("session_id = ?", sessionID)
		if err := tx.Where("team_id IN (?)", teams).Delete(&db.ScoreEvent{}).Error; err != nil {
			return err
		}
		teams = tx.Model(&db.Team{}).Select("id").Where("session_id = ?", sessionID)
		if err := tx.Where("team_id IN (?)", teams).Delete(&db.TeamAssignment{}).Error; err != nil {
			return err
		}
		result := tx.Where("session_id = ?", sessionID).Delete(&db.Team{})
		removed = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, storageErr("delete teams", err)
	}
	log.Printf("teams deleted session_id=%s count=%d", sessionID, removed)
	return removed, nil
}
