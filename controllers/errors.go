package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/servease/marketplace/booking"
	"github.com/servease/marketplace/logger"
	"github.com/servease/marketplace/metrics"
	"github.com/servease/marketplace/providers"
	"github.com/servease/marketplace/utils"
)

var validate = validator.New()

// respondEngineError maps the lifecycle/workflow error taxonomy onto HTTP
// status codes. Unknown errors are a store failure: logged in full, surfaced
// opaquely (detail only in development mode).
func respondEngineError(c *fiber.Ctx, dev bool, err error) error {
	var te *booking.TransitionError
	if errors.As(err, &te) {
		metrics.InvalidTransitions.Inc()
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{Message: te.Error()})
	}

	switch {
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, providers.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{Message: err.Error()})
	case errors.Is(err, booking.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{Message: err.Error()})
	case errors.Is(err, booking.ErrValidation),
		errors.Is(err, booking.ErrProviderMismatch),
		errors.Is(err, booking.ErrServiceUnavailable),
		errors.Is(err, booking.ErrAlreadyCancelled),
		errors.Is(err, booking.ErrTerminalState),
		errors.Is(err, booking.ErrCancellationWindow):
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{Message: err.Error()})
	}

	log := logger.Get()
	log.Error().Err(err).Str("path", c.Path()).Msg("store failure")
	resp := utils.ErrorResponse{Message: "Internal server error"}
	if dev {
		resp.Detail = err.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(resp)
}

func respondStoreError(c *fiber.Ctx, dev bool, msg string, err error) error {
	log := logger.Get()
	log.Error().Err(err).Str("path", c.Path()).Msg(msg)
	resp := utils.ErrorResponse{Message: msg}
	if dev {
		resp.Detail = err.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(resp)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{Message: msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{Message: msg})
}
