package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/servease/marketplace/booking"
	"github.com/servease/marketplace/cache"
	"github.com/servease/marketplace/config"
	"github.com/servease/marketplace/controllers"
	"github.com/servease/marketplace/db"
	"github.com/servease/marketplace/logger"
	"github.com/servease/marketplace/metrics"
	"github.com/servease/marketplace/notify"
	"github.com/servease/marketplace/providers"
	"github.com/servease/marketplace/routes"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fallback := logger.Get()
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.Init(cfg.LogLevel, cfg.Development())

	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := db.Migrate(gdb); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		log.Info().Msg("migrations applied")
		return
	}

	dev := cfg.Development()
	engine := booking.NewEngine(booking.NewGormStore(gdb))
	workflow := providers.NewWorkflow(providers.NewGormStore(gdb))
	mailer := notify.New(cfg)
	catalogCache := cache.New(cfg.RedisAddr, time.Duration(cfg.CatalogCacheS)*time.Second)

	app := fiber.New(fiber.Config{
		AppName: "servease-marketplace",
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	routes.Setup(app, routes.Controllers{
		Auth:     controllers.NewAuthController(gdb, cfg.JWTSecret, dev),
		Catalog:  controllers.NewCatalogController(gdb, catalogCache, dev),
		Booking:  controllers.NewBookingController(gdb, engine, mailer, dev),
		Provider: controllers.NewProviderController(gdb, engine, mailer, dev),
		Admin:    controllers.NewAdminController(gdb, workflow, dev),
	}, cfg.JWTSecret)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	if err := catalogCache.Close(); err != nil {
		log.Error().Err(err).Msg("cache close error")
	}
	if err := db.Close(gdb); err != nil {
		log.Error().Err(err).Msg("database close error")
	}
}
