package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/servease/marketplace/controllers"
	"github.com/servease/marketplace/middleware"
	"github.com/servease/marketplace/models"
)

// Controllers bundles every controller the router wires up.
type Controllers struct {
	Auth     *controllers.AuthController
	Catalog  *controllers.CatalogController
	Booking  *controllers.BookingController
	Provider *controllers.ProviderController
	Admin    *controllers.AdminController
}

// Setup mounts the full API under /api. Public catalog routes come first;
// everything else sits behind JWT auth with per-group role checks.
func Setup(app *fiber.App, ctl Controllers, jwtSecret string) {
	api := app.Group("/api")

	SetupAuthRoutes(api, ctl.Auth, jwtSecret)
	SetupCatalogRoutes(api, ctl.Catalog, jwtSecret)
	SetupBookingRoutes(api, ctl.Booking, ctl.Provider, jwtSecret)
	SetupAdminRoutes(api, ctl.Admin, jwtSecret)
}

// SetupAuthRoutes configures registration, login and profile routes.
func SetupAuthRoutes(api fiber.Router, ctl *controllers.AuthController, secret string) {
	api.Post("/register", ctl.Register)
	api.Post("/login", ctl.Login)
	api.Get("/profile", middleware.Protected(secret), ctl.GetProfile)
	api.Put("/profile", middleware.Protected(secret), ctl.UpdateProfile)
}

// SetupCatalogRoutes configures the public catalog plus the provider-owned
// service management routes.
func SetupCatalogRoutes(api fiber.Router, ctl *controllers.CatalogController, secret string) {
	services := api.Group("/services")
	services.Get("/", ctl.ListServices)
	services.Get("/:id", ctl.GetService)
	services.Post("/", middleware.Protected(secret), middleware.RequireRole(models.RoleProvider), ctl.CreateService)
	services.Patch("/:id", middleware.Protected(secret), middleware.RequireRole(models.RoleProvider), ctl.UpdateService)
	services.Patch("/:id/deactivate", middleware.Protected(secret), middleware.RequireRole(models.RoleProvider), ctl.DeactivateService)

	providers := api.Group("/providers")
	providers.Get("/", ctl.ListProviders)
	providers.Get("/:id", ctl.GetProvider)
	providers.Post("/", middleware.Protected(secret), middleware.RequireRole(models.RoleProvider), ctl.CreateProvider)
	providers.Put("/:id", middleware.Protected(secret), middleware.RequireRole(models.RoleAdmin), ctl.UpdateProvider)
}

// SetupBookingRoutes configures the customer booking routes and the
// provider-side lifecycle routes.
func SetupBookingRoutes(api fiber.Router, bookings *controllers.BookingController, provider *controllers.ProviderController, secret string) {
	b := api.Group("/bookings", middleware.Protected(secret))
	b.Post("/", middleware.RequireRole(models.RoleUser), bookings.Create)
	b.Get("/my-bookings", middleware.RequireRole(models.RoleUser), bookings.MyBookings)
	b.Put("/:id/cancel", middleware.RequireRole(models.RoleUser), bookings.Cancel)

	p := api.Group("/provider", middleware.Protected(secret), middleware.RequireRole(models.RoleProvider))
	p.Get("/bookings", provider.ListBookings)
	p.Put("/bookings/:id", provider.UpdateBookingStatus)
	p.Get("/dashboard", provider.Dashboard)
}

// SetupAdminRoutes configures the admin-only user and approval routes.
func SetupAdminRoutes(api fiber.Router, ctl *controllers.AdminController, secret string) {
	admin := api.Group("/admin", middleware.Protected(secret), middleware.RequireRole(models.RoleAdmin))
	admin.Get("/users", ctl.ListUsers)
	admin.Get("/providers/pending", ctl.PendingProviders)
	admin.Put("/providers/:id/approve", ctl.ApproveProvider)
	admin.Delete("/providers/:id", ctl.RejectProvider)
}
