package handlers

import (
	"soundsocial/internal/app"
	"soundsocial/internal/apperrors"
	"soundsocial/internal/handlers/middleware"
	"soundsocial/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) error {
	api := router.Group("/api")
	HealthHandler(api, app.Config)
	NewMusicHandler(*app, api).Register()
	NewRatingHandler(*app, api).Register()

	return nil
}

// statusFromError maps the error taxonomy to user-facing status codes.
func statusFromError(err error) int {
	kind, ok := apperrors.KindOf(err)
	if !ok {
		return fiber.StatusInternalServerError
	}

	switch kind {
	case apperrors.KindInvalidInput:
		return fiber.StatusBadRequest
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindRemoteUnavailable:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(statusFromError(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
