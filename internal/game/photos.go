package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"photo-hunt/internal/db"
	"photo-hunt/internal/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlobStore persists image bytes and returns the URL they are served from.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type Submission struct {
	SessionID      uuid.UUID
	PhotographerID uuid.UUID
	TargetPlayerID uuid.UUID
	Image          []byte
	Filename       string
}

// PhotoWorkflow runs the submit and review lifecycle of photos.
type PhotoWorkflow struct {
	db            *gorm.DB
	blobs         BlobStore
	scorer        *Scorer
	metrics       *metrics.Metrics
	now           func() time.Time
	MaxImageBytes int
}

var errReviewLost = errors.New("photo left pending before the review was written")

func NewPhotoWorkflow(conn *gorm.DB, blobs BlobStore, scorer *Scorer, m *metrics.Metrics) *PhotoWorkflow {
	return &PhotoWorkflow{
		db:      conn,
		blobs:   blobs,
		scorer:  scorer,
		metrics: m,
		now:     timeNowUTC,
	}
}

// Submit uploads the image and records a pending photo. No row is written
// when the upload fails.
func (w *PhotoWorkflow) Submit(ctx context.Context, sub Submission) (Photo, error) {
	if err := requireID("sessionId", sub.SessionID); err != nil {
		return Photo{}, err
	}
	if err := requireID("photographerId", sub.PhotographerID); err != nil {
		return Photo{}, err
	}
	if err := requireID("targetPlayerId", sub.TargetPlayerID); err != nil {
		return Photo{}, err
	}
	if len(sub.Image) == 0 {
		return Photo{}, invalid("image", "is required")
	}
	if w.MaxImageBytes > 0 && len(sub.Image) > w.MaxImageBytes {
		return Photo{}, invalid("image", fmt.Sprintf("must be %d bytes or fewer", w.MaxImageBytes))
	}
	contentType := http.DetectContentType(sub.Image)
	if !strings.HasPrefix(contentType, "image/") {
		return Photo{}, invalid("image", "must be an image")
	}

	now := w.now()
	key := blobKey(sub.SessionID, now, sub.Filename)
	imageURL, err := w.blobs.Put(ctx, key, sub.Image, contentType)
	if err != nil {
		w.metrics.BlobUploadFailed()
		log.Printf("photo upload failed session_id=%s photographer_id=%s key=%s err=%v", sub.SessionID, sub.PhotographerID, key, err)
		return Photo{}, &StorageError{Op: "upload image", Err: err}
	}

	record := db.Photo{
		ID:             newID(),
		SessionID:      sub.SessionID,
		PhotographerID: sub.PhotographerID,
		TargetPlayerID: sub.TargetPlayerID,
		ImageURL:       imageURL,
		Status:         string(StatusPending),
		CreatedAt:      now,
	}
	if err := w.db.WithContext(ctx).Omit(clause.Associations).Create(&record).Error; err != nil {
		if delErr := w.blobs.Delete(ctx, key); delErr != nil {
			log.Printf("orphaned photo blob key=%s err=%v", key, delErr)
		}
		return Photo{}, storageErr("create photo", err)
	}
	w.metrics.PhotoSubmitted()
	log.Printf("photo submitted session_id=%s photo_id=%s photographer_id=%s target_id=%s", record.SessionID, record.ID, record.PhotographerID, record.TargetPlayerID)
	return photoFromRecord(record)
}

func (w *PhotoWorkflow) Get(ctx context.Context, id uuid.UUID) (Photo, error) {
	if err := requireID("photoId", id); err != nil {
		return Photo{}, err
	}
	var record db.Photo
	if err := w.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return Photo{}, lookupErr("photo", id, err)
	}
	photo, err := photoFromRecord(record)
	if err != nil {
		return Photo{}, storageErr("load photo", err)
	}
	return photo, nil
}

// ListPending is the review queue: oldest submission first.
func (w *PhotoWorkflow) ListPending(ctx context.Context, sessionID uuid.UUID) ([]PhotoWithReviewContext, error) {
	if err := requireID("sessionId", sessionID); err != nil {
		return nil, err
	}
	var records []db.Photo
	err := w.db.WithContext(ctx).
		Preload("Photographer").
		Preload("TargetPlayer").
		Where("session_id = ? AND status = ?", sessionID, string(StatusPending)).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, storageErr("list pending photos", err)
	}
	list := make([]PhotoWithReviewContext, 0, len(records))
	for _, record := range records {
		photo, err := photoFromRecord(record)
		if err != nil {
			return nil, storageErr("list pending photos", err)
		}
		list = append(list, PhotoWithReviewContext{
			Photo:        photo,
			Photographer: summaryFromRecord(record.Photographer),
			TargetPlayer: summaryFromRecord(record.TargetPlayer),
		})
	}
	return list, nil
}

// ListByPhotographer is a player's own history, newest first.
func (w *PhotoWorkflow) ListByPhotographer(ctx context.Context, photographerID uuid.UUID) ([]Photo, error) {
	if err := requireID("photographerId", photographerID); err != nil {
		return nil, err
	}
	var records []db.Photo
	err := w.db.WithContext(ctx).
		Where("photographer_id = ?", photographerID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, storageErr("list photos", err)
	}
	photos := make([]Photo, 0, len(records))
	for _, record := range records {
		photo, err := photoFromRecord(record)
		if err != nil {
			return nil, storageErr("list photos", err)
		}
		photos = append(photos, photo)
	}
	return photos, nil
}

// Review applies decision to a pending photo. The write only lands while the
// stored status is still pending, so of two concurrent reviewers exactly one
// wins and the other gets a ConflictError. An approval of a photographer who
// is on a team commits a score event with the transition; the points are
// applied afterwards and a failure there does not undo the approval.
func (w *PhotoWorkflow) Review(ctx context.Context, photoID, reviewerID uuid.UUID, decision Decision) (bool, error) {
	if err := requireID("photoId", photoID); err != nil {
		return false, err
	}
	if err := requireID("reviewerId", reviewerID); err != nil {
		return false, err
	}
	if _, err := ParseDecision(string(decision)); err != nil {
		return false, err
	}
	photo, err := w.Get(ctx, photoID)
	if err != nil {
		return false, err
	}
	next, ok := Next(photo.Status, decision)
	if !ok {
		w.metrics.PhotoReviewed(string(decision), "conflict")
		return false, &ConflictError{Reason: fmt.Sprintf("photo %s is already %s", photoID, photo.Status)}
	}

	now := w.now()
	var event *db.ScoreEvent
	err = w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&db.Photo{}).
			Where("id = ? AND status = ?", photoID, string(StatusPending)).
			Updates(map[string]any{
				"status":      string(next),
				"reviewed_at": now,
				"reviewed_by": reviewerID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errReviewLost
		}
		if next != StatusApproved {
			return nil
		}
		teamID, assigned, err := currentTeam(tx, photo.PhotographerID)
		if err != nil || !assigned {
			return err
		}
		event, err = newScoreEvent(photo, teamID, reviewerID, now)
		if err != nil {
			return err
		}
		return tx.Create(event).Error
	})
	if errors.Is(err, errReviewLost) {
		w.metrics.PhotoReviewed(string(decision), "conflict")
		return false, &ConflictError{Reason: fmt.Sprintf("photo %s was reviewed concurrently", photoID)}
	}
	if err != nil {
		w.metrics.PhotoReviewed(string(decision), "error")
		return false, storageErr("review photo", err)
	}
	w.metrics.PhotoReviewed(string(decision), "ok")
	log.Printf("photo reviewed photo_id=%s reviewer_id=%s status=%s", photoID, reviewerID, next)

	switch {
	case event != nil:
		if _, err := w.scorer.Apply(ctx, event.ID); err != nil {
			log.Printf("score deferred to relay photo_id=%s team_id=%s score_event_id=%s err=%v", photoID, event.TeamID, event.ID, err)
		}
	case next == StatusApproved:
		log.Printf("photo approved without team photo_id=%s photographer_id=%s", photoID, photo.PhotographerID)
	}
	return true, nil
}

func blobKey(sessionID uuid.UUID, now time.Time, filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "photo"
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	return fmt.Sprintf("%s/%d-%s", sessionID, now.UnixMilli(), name)
}
