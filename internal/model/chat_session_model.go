package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSession struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID      `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	ProjectId    *uuid.UUID     `gorm:"type:uuid;index"`          // Weak reference, nullable
	Title        string         `gorm:"type:text;not null;default:''"`
	Subject      *string        `gorm:"type:text"`
	Topic        *string        `gorm:"type:text"`
	Preview      *string        `gorm:"type:text"`
	MessageCount int            `gorm:"not null;default:0"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
