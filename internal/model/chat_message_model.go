package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage rows are append-only. Seq is a bigserial assigned by the
// database and is the authoritative message order; two messages can share a
// created_at timestamp.
type ChatMessage struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Seq           int64     `gorm:"autoIncrement;uniqueIndex"`
	ChatSessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Role          string    `gorm:"type:varchar(50);not null"`
	Content       string    `gorm:"type:text;not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
