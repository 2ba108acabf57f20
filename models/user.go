package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the closed set of account roles. Authorization decisions are made
// against this enumeration only, never against free-form strings.
type Role string

const (
	RoleUser     Role = "user"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a raw role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleProvider, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

type User struct {
	ID                string    `json:"id" gorm:"type:char(36);primaryKey"`
	Name              string    `json:"name"`
	Email             string    `json:"email" gorm:"unique"`
	PasswordHash      string    `json:"-"`
	Phone             *string   `json:"phone,omitempty"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty"`
	Role              Role      `json:"role" gorm:"type:varchar(16);default:user"`
	IsVerified        bool      `json:"is_verified"`
	Location          *string   `json:"location,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Provider *Provider `json:"provider,omitempty" gorm:"foreignKey:UserID"`
	Bookings []Booking `json:"bookings,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if !u.Role.Valid() {
		return fmt.Errorf("invalid role %q", u.Role)
	}
	return nil
}
