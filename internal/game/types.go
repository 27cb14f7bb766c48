package game

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Player struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"sessionId"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type PlayerWithTeam struct {
	Player
	Team *Team `json:"team,omitempty"`
}

type Team struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"sessionId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"createdAt"`
}

type TeamWithPlayers struct {
	Team
	Players []Player `json:"players"`
}

type Photo struct {
	ID             uuid.UUID   `json:"id"`
	SessionID      uuid.UUID   `json:"sessionId"`
	PhotographerID uuid.UUID   `json:"photographerId"`
	TargetPlayerID uuid.UUID   `json:"targetPlayerId"`
	ImageURL       string      `json:"imageUrl"`
	Status         PhotoStatus `json:"status"`
	CreatedAt      time.Time   `json:"createdAt"`
	ReviewedAt     *time.Time  `json:"reviewedAt,omitempty"`
	ReviewedBy     *uuid.UUID  `json:"reviewedBy,omitempty"`
}

// PlayerSummary is the slice of a player a reviewer needs to judge a photo.
type PlayerSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role Role      `json:"role"`
}

type PhotoWithReviewContext struct {
	Photo
	Photographer PlayerSummary `json:"photographer"`
	TargetPlayer PlayerSummary `json:"targetPlayer"`
}
