package db

import (
	"time"

	"github.com/google/uuid"
)

type Photo struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SessionID      uuid.UUID  `gorm:"type:uuid;index;not null"`
	PhotographerID uuid.UUID  `gorm:"type:uuid;index;not null"`
	TargetPlayerID uuid.UUID  `gorm:"type:uuid;index;not null"`
	ImageURL       string     `gorm:"size:1024;not null"`
	Status         string     `gorm:"size:16;index;not null"`
	CreatedAt      time.Time  `gorm:"not null;index"`
	ReviewedAt     *time.Time `gorm:"index"`
	ReviewedBy     *uuid.UUID `gorm:"type:uuid"`
	Photographer   *Player    `gorm:"foreignKey:PhotographerID"`
	TargetPlayer   *Player    `gorm:"foreignKey:TargetPlayerID"`
}
