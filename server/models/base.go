package models

import (
	"errors"
	"time"
)

var (
	ErrValidation         = errors.New("All fields are required")
	ErrDuplicateEmail     = errors.New("Email already exists. Please use a different email.")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrDuplicateContact   = errors.New("This phone number is already added as an emergency contact.")
	ErrContactLimit       = errors.New("You can only add up to 4 emergency contacts.")
	ErrContactNotFound    = errors.New("Contact not found")
)

type BaseModel struct {
	ID        uint      `json:"id,omitempty" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
