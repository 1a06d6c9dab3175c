package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession is one conversation thread owned by a single user, optionally
// grouped under a project. Subject, Topic and Title are nil/empty until the
// first in-scope exchange classifies the session, then frozen.
type ChatSession struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	ProjectId    *uuid.UUID
	Title        string
	Subject      *string
	Topic        *string
	Preview      *string
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Classified reports whether the one-time classification has been committed.
func (s *ChatSession) Classified() bool {
	return s.Subject != nil
}

type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Seq           int64 // assigned by the database, authoritative ordering
	Role          string
	Content       string
	CreatedAt     time.Time
}
