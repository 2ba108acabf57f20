package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is a bookable offering owned by a provider. Services are never hard
// deleted; deactivation flips IsActive and hides the service from the catalog
// and from new bookings.
type Service struct {
	ID              string    `json:"service_id" gorm:"type:char(36);primaryKey"`
	ProviderID      string    `json:"provider_id" gorm:"type:char(36);index"`
	Provider        Provider  `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	BasePrice       float64   `json:"base_price" gorm:"type:decimal(10,2)"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	IsActive        bool      `json:"is_active" gorm:"default:true"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Images []ServiceImage `json:"images,omitempty" gorm:"foreignKey:ServiceID"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// ServiceImage holds a display image for a service. At most one image per
// service carries IsPrimary; writers demote the previous primary in the same
// transaction when inserting a new one.
type ServiceImage struct {
	ID        string    `json:"image_id" gorm:"type:char(36);primaryKey"`
	ServiceID string    `json:"service_id" gorm:"type:char(36);index"`
	ImageURL  string    `json:"image_url"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *ServiceImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
