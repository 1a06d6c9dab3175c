package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ClassLevelMin = 6
	ClassLevelMax = 10
)

type User struct {
	Id           uuid.UUID
	Username     string
	Email        *string
	PasswordHash string
	ClassLevel   string // "6".."10"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
