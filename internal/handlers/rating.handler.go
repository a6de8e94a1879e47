package handlers

import (
	"soundsocial/internal/app"
	"soundsocial/internal/handlers/middleware"
	"soundsocial/internal/logger"
	"soundsocial/internal/models"
	"soundsocial/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RatingHandler struct {
	Handler
	ratingService *services.RatingService
}

type ratingRequest struct {
	EntityType string  `json:"entityType"`
	EntityID   string  `json:"entityId"`
	Value      float64 `json:"value"`
}

func NewRatingHandler(app app.App, router fiber.Router) *RatingHandler {
	log := logger.New("handlers").File("rating_handler")
	return &RatingHandler{
		ratingService: app.Service.Rating,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *RatingHandler) Register() {
	ratings := h.router.Group("/ratings", h.middleware.RequireAuth())

	ratings.Post("/", h.submitRating)
	ratings.Get("/", h.getRating)
	ratings.Delete("/", h.deleteRating)
}

func (h *RatingHandler) submitRating(c *fiber.Ctx) error {
	var req ratingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	entityID, err := uuid.Parse(req.EntityID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid entity id",
		})
	}

	rating, err := h.ratingService.SubmitRating(
		c.UserContext(),
		middleware.GetUserID(c),
		models.EntityType(req.EntityType),
		entityID,
		req.Value,
	)
	if err != nil {
		h.log.Er("rating submission failed", err, "entityID", entityID)
		return errorResponse(c, err)
	}

	return c.JSON(rating)
}

func (h *RatingHandler) getRating(c *fiber.Ctx) error {
	entityID, err := uuid.Parse(c.Query("entityId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid entity id",
		})
	}

	rating, err := h.ratingService.GetRating(
		c.UserContext(),
		middleware.GetUserID(c),
		models.EntityType(c.Query("entityType")),
		entityID,
	)
	if err != nil {
		h.log.Er("rating lookup failed", err, "entityID", entityID)
		return errorResponse(c, err)
	}
	if rating == nil {
		return c.JSON(nil)
	}

	return c.JSON(rating)
}

func (h *RatingHandler) deleteRating(c *fiber.Ctx) error {
	var req ratingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	entityID, err := uuid.Parse(req.EntityID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid entity id",
		})
	}

	err = h.ratingService.DeleteRating(
		c.UserContext(),
		middleware.GetUserID(c),
		models.EntityType(req.EntityType),
		entityID,
	)
	if err != nil {
		h.log.Er("rating deletion failed", err, "entityID", entityID)
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"message": "Rating removed"})
}
