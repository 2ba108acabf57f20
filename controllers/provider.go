package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/servease/marketplace/booking"
	"github.com/servease/marketplace/metrics"
	"github.com/servease/marketplace/middleware"
	"github.com/servease/marketplace/models"
	"github.com/servease/marketplace/notify"
)

// ProviderController carries the provider-facing surface: the provider's
// booking list, the lifecycle actions, and the dashboard view.
type ProviderController struct {
	DB     *gorm.DB
	Engine *booking.Engine
	Mailer *notify.Mailer
	Dev    bool
}

func NewProviderController(db *gorm.DB, engine *booking.Engine, mailer *notify.Mailer, dev bool) *ProviderController {
	return &ProviderController{DB: db, Engine: engine, Mailer: mailer, Dev: dev}
}

func (ctl *ProviderController) providerForCaller(c *fiber.Ctx) (*models.Provider, error) {
	userID, _ := middleware.CallerID(c)
	var p models.Provider
	if err := ctl.DB.First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListBookings returns all bookings for the caller's provider record.
func (ctl *ProviderController) ListBookings(c *fiber.Ctx) error {
	prov, err := ctl.providerForCaller(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Provider not found")
		}
		return respondStoreError(c, ctl.Dev, "Error fetching bookings", err)
	}

	var bookings []models.Booking
	err = ctl.DB.
		Preload("Service").
		Preload("User").
		Where("provider_id = ?", prov.ID).
		Order("booking_date desc").
		Find(&bookings).Error
	if err != nil {
		return respondStoreError(c, ctl.Dev, "Error fetching bookings", err)
	}
	return c.JSON(bookings)
}

type bookingActionRequest struct {
	Action string `json:"action" validate:"required"`
}

// UpdateBookingStatus applies confirm/complete/cancel on a booking owned by
// the calling provider.
func (ctl *ProviderController) UpdateBookingStatus(c *fiber.Ctx) error {
	var req bookingActionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "Invalid action. Allowed actions are: confirm, complete, cancel")
	}

	userID, _ := middleware.CallerID(c)
	bookingID := c.Params("id")

	b, err := ctl.Engine.ProviderAction(c.Context(), userID, bookingID, booking.Action(req.Action))
	if err != nil {
		return respondEngineError(c, ctl.Dev, err)
	}
	metrics.BookingTransitions.WithLabelValues(string(b.Status), "provider").Inc()

	ctl.notifyStatusChanged(b)

	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Booking has been " + string(b.Status),
		"bookingId": b.ID,
		"status":    b.Status,
	})
}

func (ctl *ProviderController) notifyStatusChanged(b *models.Booking) {
	if ctl.Mailer == nil {
		return
	}
	var customer models.User
	if ctl.DB.First(&customer, "id = ?", b.UserID).Error != nil {
		return
	}
	ctl.Mailer.BookingStatusChanged(&customer, b)
}

// Dashboard assembles the provider overview: identity, services, the five
// most recent bookings, and aggregate counts computed over that page.
func (ctl *ProviderController) Dashboard(c *fiber.Ctx) error {
	userID, _ := middleware.CallerID(c)

	var user models.User
	if err := ctl.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "User not found")
		}
		return respondStoreError(c, ctl.Dev, "Error fetching provider dashboard", err)
	}

	var prov models.Provider
	if err := ctl.DB.First(&prov, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "User is not a registered provider",
			})
		}
		return respondStoreError(c, ctl.Dev, "Error fetching provider dashboard", err)
	}

	var services []models.Service
	if err := ctl.DB.Preload("Images").Where("provider_id = ?", prov.ID).Find(&services).Error; err != nil {
		return respondStoreError(c, ctl.Dev, "Error fetching provider dashboard", err)
	}

	var recent []models.Booking
	err := ctl.DB.
		Preload("User").
		Preload("Service").
		Where("provider_id = ?", prov.ID).
		Order("booking_date desc").
		Limit(5).
		Find(&recent).Error
	if err != nil {
		return respondStoreError(c, ctl.Dev, "Error fetching provider dashboard", err)
	}

	// Aggregates are over the returned page, not the full table.
	now := time.Now()
	active, upcoming, completed := 0, 0, 0
	for _, s := range services {
		if s.IsActive {
			active++
		}
	}
	for _, b := range recent {
		if b.BookingDate.After(now) {
			upcoming++
		}
		if b.Status == models.StatusCompleted {
			completed++
		}
	}

	return c.JSON(fiber.Map{
		"provider": fiber.Map{
			"id":              prov.ID,
			"name":            user.Name,
			"email":           user.Email,
			"phone":           user.Phone,
			"profilePicture":  user.ProfilePictureURL,
			"location":        user.Location,
			"isVerified":      user.IsVerified,
			"serviceType":     prov.ServiceType,
			"description":     prov.Description,
			"experienceYears": prov.ExperienceYears,
			"isApproved":      prov.IsApproved,
			"rating":          prov.Rating,
			"createdAt":       prov.CreatedAt,
		},
		"services":       services,
		"recentBookings": recent,
		"stats": fiber.Map{
			"totalServices":     len(services),
			"activeServices":    active,
			"upcomingBookings":  upcoming,
			"completedBookings": completed,
		},
	})
}
