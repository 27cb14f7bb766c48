package db

import "time"

type Blob struct {
	Key         string    `gorm:"primaryKey;size:512"`
	ContentType string    `gorm:"size:128;not null"`
	Data        []byte    `gorm:"type:bytea;not null"`
	CreatedAt   time.Time `gorm:"not null"`
}
