package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_bookings_created_total",
		Help: "Bookings successfully created.",
	})

	BookingTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_booking_transitions_total",
		Help: "Booking status transitions applied, by resulting status and actor.",
	}, []string{"status", "actor"})

	InvalidTransitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_booking_invalid_transitions_total",
		Help: "Rejected booking status transitions.",
	})

	ProviderDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_provider_decisions_total",
		Help: "Admin approval decisions, by outcome.",
	}, []string{"decision"})
)

// Handler exposes the Prometheus scrape endpoint on a fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
