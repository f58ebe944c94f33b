package entity

import (
	"time"

	"github.com/google/uuid"
)

// Officer roles.
const (
	RoleAdmin   = "admin"
	RoleOfficer = "officer"
)

// Officer is a sales officer account. Phone holds the WhatsApp number in E.164 form.
type Officer struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Name         *string   `json:"name,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
