package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Username   string  `json:"username" validate:"required,min=3,max=50"`
	Password   string  `json:"password" validate:"required,min=8"`
	ClassLevel string  `json:"class_level" validate:"required,oneof=6 7 8 9 10"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
}

type RegisterResponse struct {
	Id        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserProfileResponse struct {
	Id         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      *string   `json:"email,omitempty"`
	ClassLevel string    `json:"class_level"`
	CreatedAt  time.Time `json:"created_at"`
}
