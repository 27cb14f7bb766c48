package game

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"
	"unicode/utf8"

	"photo-hunt/internal/db"
	"photo-hunt/internal/metrics"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxScoreErrorLength = 512

type scorePayload struct {
	PhotoID        uuid.UUID `json:"photo_id"`
	PhotographerID uuid.UUID `json:"photographer_id"`
	TargetPlayerID uuid.UUID `json:"target_player_id"`
	ReviewerID     uuid.UUID `json:"reviewer_id"`
	ApprovedAt     time.Time `json:"approved_at"`
}

func newScoreEvent(photo Photo, teamID, reviewerID uuid.UUID, approvedAt time.Time) (*db.ScoreEvent, error) {
	data, err := json.Marshal(scorePayload{
		PhotoID:        photo.ID,
		PhotographerID: photo.PhotographerID,
		TargetPlayerID: photo.TargetPlayerID,
		ReviewerID:     reviewerID,
		ApprovedAt:     approvedAt,
	})
	if err != nil {
		return nil, err
	}
	return &db.ScoreEvent{
		ID:        newID(),
		SessionID: photo.SessionID,
		PhotoID:   photo.ID,
		TeamID:    teamID,
		Points:    1,
		Outcome:   db.ScoreOutcomePending,
		Payload:   datatypes.JSON(data),
		CreatedAt: approvedAt,
	}, nil
}

// Scorer moves score events out of pending, adding their points to the team.
type Scorer struct {
	db      *gorm.DB
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewScorer(conn *gorm.DB, m *metrics.Metrics) *Scorer {
	return &Scorer{db: conn, metrics: m, now: timeNowUTC}
}

// Apply settles one score event. The outcome flip and the point increment
// commit together and only while the event is still pending, so an event
// awards its points at most once no matter how many callers race on it.
// It reports whether points were added.
func (s *Scorer) Apply(ctx context.Context, eventID uuid.UUID) (bool, error) {
	var event db.ScoreEvent
	awarded := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", eventID).First(&event).Error; err != nil {
			return err
		}
		result := tx.Model(&db.ScoreEvent{}).
			Where("id = ? AND outcome = ?", eventID, db.ScoreOutcomePending).
			Updates(map[string]any{
				"outcome":    db.ScoreOutcomeApplied,
				"applied_at": s.now(),
				"attempts":   gorm.Expr("attempts + 1"),
				"last_error": "",
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		ok, err := addPoints(tx, event.TeamID, event.Points)
		if err != nil {
			return err
		}
		if !ok {
			return tx.Model(&db.ScoreEvent{}).Where("id = ?", eventID).Update("outcome", db.ScoreOutcomeDiscarded).Error
		}
		awarded = true
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, notFound("score event", eventID)
	}
	if err != nil {
		s.metrics.ScoreApplyFailed()
		s.recordFailure(ctx, eventID, err)
		return false, storageErr("apply score", err)
	}
	if awarded {
		s.metrics.PointsAwarded(event.Points)
		log.Printf("team points awarded team_id=%s photo_id=%s points=%d", event.TeamID, event.PhotoID, event.Points)
	}
	return awarded, nil
}

func (s *Scorer) recordFailure(ctx context.Context, eventID uuid.UUID, cause error) {
	message := truncateMessage(cause.Error(), maxScoreErrorLength)
	err := s.db.WithContext(ctx).Model(&db.ScoreEvent{}).
		Where("id = ? AND outcome = ?", eventID, db.ScoreOutcomePending).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": message,
		}).Error
	if err != nil {
		log.Printf("failed to record score failure score_event_id=%s err=%v", eventID, err)
	}
}

// truncateMessage cuts s to at most limit bytes without splitting a rune.
func truncateMessage(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// PendingCount returns how many score events are waiting to be applied.
func (s *Scorer) PendingCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&db.ScoreEvent{}).
		Where("outcome = ?", db.ScoreOutcomePending).
		Count(&count).Error
	if err != nil {
		return 0, storageErr("count score events", err)
	}
	return count, nil
}

// ScoringRelay retries score events that were not applied right after approval.
type ScoringRelay struct {
	scorer   *Scorer
	interval time.Duration
	batch    int
}

func NewScoringRelay(scorer *Scorer, interval time.Duration, batch int) *ScoringRelay {
	if batch <= 0 {
		batch = 50
	}
	return &ScoringRelay{scorer: scorer, interval: interval, batch: batch}
}

// Run flushes on every tick until ctx is done. It should be run in a goroutine.
func (r *ScoringRelay) Run(ctx context.Context) {
	if r.interval <= 0 {
		log.Println("scoring relay disabled")
		return
	}
	log.Printf("scoring relay starting interval=%s batch=%d", r.interval, r.batch)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("scoring relay stopped")
			return
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
				log.Printf("scoring relay flush failed err=%v", err)
			}
		}
	}
}

// Flush applies up to one batch of pending score events, oldest first, and
// returns how many awarded points.
func (r *ScoringRelay) Flush(ctx context.Context) (int, error) {
	var ids []uuid.UUID
	err := r.scorer.db.WithContext(ctx).Model(&db.ScoreEvent{}).
		Where("outcome = ?", db.ScoreOutcomePending).
		Order("created_at ASC").
		Limit(r.batch).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, storageErr("list score events", err)
	}
	applied := 0
	var lastErr error
	for _, id := range ids {
		ok, err := r.scorer.Apply(ctx, id)
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			applied++
		}
	}
	if pending, err := r.scorer.PendingCount(ctx); err == nil {
		r.scorer.metrics.SetPendingScoreEvents(pending)
	}
	if applied > 0 {
		log.Printf("scoring relay applied count=%d", applied)
	}
	return applied, lastErr
}
