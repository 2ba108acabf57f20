package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Provider layers a bookable identity on top of a user account. A provider is
// invisible to the public catalog until an admin approves it.
type Provider struct {
	ID              string    `json:"provider_id" gorm:"type:char(36);primaryKey"`
	UserID          string    `json:"user_id" gorm:"type:char(36);uniqueIndex"`
	User            User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ServiceType     string    `json:"service_type"`
	Description     string    `json:"description"`
	ExperienceYears *int      `json:"experience_years,omitempty"`
	IsApproved      bool      `json:"is_approved"`
	Rating          float64   `json:"rating" gorm:"type:decimal(2,1);default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Services []Service `json:"services,omitempty" gorm:"foreignKey:ProviderID"`
}

func (p *Provider) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
