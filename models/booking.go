package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingStatus is the closed set of booking lifecycle states.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// PaymentStatus tracks the payment side of a booking. Refund execution is an
// external concern; the core only ever flips paid bookings to refund_pending.
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentPaid          PaymentStatus = "paid"
	PaymentRefundPending PaymentStatus = "refund_pending"
	PaymentRefunded      PaymentStatus = "refunded"
)

// bookingTransitions is the single source of truth for allowed status
// transitions. completed and cancelled are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether moving a booking from one status to another
// is allowed by the lifecycle table.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

func (s BookingStatus) Valid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// Booking is a customer's reservation of a service at a point in time. Its
// status only ever moves along the transition table above, and the provider
// on the row always matches the service's owning provider at creation time.
type Booking struct {
	ID              string        `json:"booking_id" gorm:"type:char(36);primaryKey"`
	UserID          string        `json:"user_id" gorm:"type:char(36);index"`
	User            User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ServiceID       string        `json:"service_id" gorm:"type:char(36);index"`
	Service         Service       `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	ProviderID      string        `json:"provider_id" gorm:"type:char(36);index"`
	Provider        Provider      `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
	BookingDate     time.Time     `json:"booking_date"`
	SpecialRequests *string       `json:"special_requests,omitempty"`
	Address         string        `json:"address"`
	Status          BookingStatus `json:"status" gorm:"type:varchar(16);default:pending"`
	PaymentStatus   PaymentStatus `json:"payment_status" gorm:"type:varchar(16);default:pending"`
	TotalAmount     float64       `json:"total_amount" gorm:"type:decimal(10,2)"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = StatusPending
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = PaymentPending
	}
	return nil
}

// HoursUntil returns the lead time between now and the booking date.
func (b *Booking) HoursUntil(now time.Time) float64 {
	return b.BookingDate.Sub(now).Hours()
}
