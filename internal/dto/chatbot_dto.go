package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendChatRequest struct {
	ChatSessionId *uuid.UUID `json:"chat_session_id,omitempty"`
	ProjectId     *uuid.UUID `json:"project_id,omitempty"`
	Chat          string     `json:"chat" validate:"required,min=1,max=4000"`
}

type SendChatResponseChat struct {
	Id        uuid.UUID `json:"id"`
	Chat      string    `json:"chat"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type SendChatResponse struct {
	ChatSessionId    uuid.UUID             `json:"chat_session_id"`
	ChatSessionTitle string                `json:"title"`
	Subject          *string               `json:"subject,omitempty"`
	Topic            *string               `json:"topic,omitempty"`
	InScope          bool                  `json:"in_scope"`
	Sent             *SendChatResponseChat `json:"sent"`
	Reply            *SendChatResponseChat `json:"reply"`
}

type GetAllSessionsResponse struct {
	Id           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Subject      *string    `json:"subject,omitempty"`
	Topic        *string    `json:"topic,omitempty"`
	Preview      *string    `json:"preview,omitempty"`
	ProjectId    *uuid.UUID `json:"project_id,omitempty"`
	MessageCount int        `json:"message_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type GetSessionDetailResponse struct {
	Id           uuid.UUID                `json:"id"`
	Title        string                   `json:"title"`
	Subject      *string                  `json:"subject,omitempty"`
	Topic        *string                  `json:"topic,omitempty"`
	Preview      *string                  `json:"preview,omitempty"`
	ProjectId    *uuid.UUID               `json:"project_id,omitempty"`
	MessageCount int                      `json:"message_count"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
	Messages     []GetChatHistoryResponse `json:"messages,omitempty"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Chat      string    `json:"chat"`
	CreatedAt time.Time `json:"created_at"`
}

type MoveSessionRequest struct {
	ProjectId *uuid.UUID `json:"project_id"` // nil detaches the session
}
