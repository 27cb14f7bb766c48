package blob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photo-hunt/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("blob not found")

// DBStore keeps image bytes in the blobs table.
type DBStore struct {
	db      *gorm.DB
	baseURL string
}

func NewDBStore(conn *gorm.DB, baseURL string) *DBStore {
	return &DBStore{db: conn, baseURL: baseURL}
}

func (s *DBStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	record := db.Blob{
		Key:         clean,
		ContentType: contentType,
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"content_type", "data"}),
	}).Create(&record).Error
	if err != nil {
		return "", fmt.Errorf("store blob: %w", err)
	}
	return publicURL(s.baseURL, clean), nil
}

func (s *DBStore) Get(ctx context.Context, key string) (db.Blob, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return db.Blob{}, err
	}
	var record db.Blob
	if err := s.db.WithContext(ctx).Where(map[string]any{"key": clean}).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return db.Blob{}, ErrNotFound
		}
		return db.Blob{}, fmt.Errorf("load blob: %w", err)
	}
	return record, nil
}

func (s *DBStore) Delete(ctx context.Context, key string) error {
	clean, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where(map[string]any{"key": clean}).Delete(&db.Blob{}).Error; err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}
