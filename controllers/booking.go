package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/servease/marketplace/booking"
	"github.com/servease/marketplace/metrics"
	"github.com/servease/marketplace/middleware"
	"github.com/servease/marketplace/models"
	"github.com/servease/marketplace/notify"
)

// BookingController carries the customer-facing booking surface. Every write
// goes through the lifecycle engine; the controller only parses, maps errors
// and shapes responses.
type BookingController struct {
	DB     *gorm.DB
	Engine *booking.Engine
	Mailer *notify.Mailer
	Dev    bool
}

func NewBookingController(db *gorm.DB, engine *booking.Engine, mailer *notify.Mailer, dev bool) *BookingController {
	return &BookingController{DB: db, Engine: engine, Mailer: mailer, Dev: dev}
}

type createBookingRequest struct {
	ServiceID       string  `json:"serviceId" validate:"required"`
	ProviderID      string  `json:"providerId" validate:"required"`
	BookingDate     string  `json:"bookingDate" validate:"required"`
	SpecialRequests *string `json:"specialRequests"`
	Address         string  `json:"address" validate:"required"`
	TotalAmount     float64 `json:"totalAmount" validate:"required,gt=0"`
}

func (ctl *BookingController) Create(c *fiber.Ctx) error {
	var req createBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "Missing required fields: serviceId, providerId, bookingDate, address and totalAmount are required")
	}
	when, err := time.Parse(time.RFC3339, req.BookingDate)
	if err != nil {
		return badRequest(c, "bookingDate must be an ISO timestamp")
	}

	customerID, _ := middleware.CallerID(c)
	b, err := ctl.Engine.Create(c.Context(), customerID, booking.CreateInput{
		ServiceID:       req.ServiceID,
		ProviderID:      req.ProviderID,
		BookingDate:     when,
		SpecialRequests: req.SpecialRequests,
		Address:         req.Address,
		TotalAmount:     req.TotalAmount,
	})
	if err != nil {
		return respondEngineError(c, ctl.Dev, err)
	}
	metrics.BookingsCreated.Inc()

	ctl.notifyCreated(b)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":       true,
		"bookingId":     b.ID,
		"status":        b.Status,
		"paymentStatus": b.PaymentStatus,
		"message":       "Booking created successfully",
	})
}

func (ctl *BookingController) notifyCreated(b *models.Booking) {
	if ctl.Mailer == nil {
		return
	}
	var customer models.User
	var svc models.Service
	if ctl.DB.First(&customer, "id = ?", b.UserID).Error != nil {
		return
	}
	if ctl.DB.First(&svc, "id = ?", b.ServiceID).Error != nil {
		return
	}
	ctl.Mailer.BookingCreated(&customer, b, svc.Title)
}

// MyBookings lists the caller's bookings, newest booking date first.
func (ctl *BookingController) MyBookings(c *fiber.Ctx) error {
	userID, _ := middleware.CallerID(c)

	var bookings []models.Booking
	err := ctl.DB.
		Preload("Service").
		Preload("Provider.User").
		Where("user_id = ?", userID).
		Order("booking_date desc").
		Find(&bookings).Error
	if err != nil {
		return respondStoreError(c, ctl.Dev, "Error fetching bookings", err)
	}
	return c.JSON(bookings)
}

// Cancel applies a customer-initiated cancellation, subject to the 24-hour
// notice window.
func (ctl *BookingController) Cancel(c *fiber.Ctx) error {
	userID, _ := middleware.CallerID(c)
	bookingID := c.Params("id")

	b, err := ctl.Engine.CustomerCancel(c.Context(), userID, bookingID)
	if err != nil {
		return respondEngineError(c, ctl.Dev, err)
	}
	metrics.BookingTransitions.WithLabelValues(string(b.Status), "customer").Inc()

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Booking cancelled successfully",
		"booking_id": b.ID,
		"new_status": b.Status,
	})
}
