package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is written by a customer against a completed booking. The core only
// reads reviews; creation is handled by the surrounding application.
type Review struct {
	ID         string    `json:"review_id" gorm:"type:char(36);primaryKey"`
	BookingID  string    `json:"booking_id" gorm:"type:char(36);index"`
	Booking    Booking   `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
	UserID     string    `json:"user_id" gorm:"type:char(36);index"`
	User       User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ProviderID string    `json:"provider_id" gorm:"type:char(36);index"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	// Clamp into the 1-5 band rather than rejecting.
	if r.Rating < 1 {
		r.Rating = 1
	} else if r.Rating > 5 {
		r.Rating = 5
	}
	return nil
}
