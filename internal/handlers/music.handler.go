package handlers

import (
	"soundsocial/internal/app"
	"soundsocial/internal/logger"
	"soundsocial/internal/services"

	"github.com/gofiber/fiber/v2"
)

type MusicHandler struct {
	Handler
	catalogService *services.CatalogService
}

func NewMusicHandler(app app.App, router fiber.Router) *MusicHandler {
	log := logger.New("handlers").File("music_handler")
	return &MusicHandler{
		catalogService: app.Service.Catalog,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *MusicHandler) Register() {
	music := h.router.Group("/music")

	music.Get("/search", h.search)
	music.Get("/albums/:mbid", h.getAlbum)
	music.Get("/artists/:mbid", h.getArtist)
}

func (h *MusicHandler) search(c *fiber.Ctx) error {
	results, err := h.catalogService.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		h.log.Er("search failed", err, "query", c.Query("q"))
		return errorResponse(c, err)
	}

	return c.JSON(results)
}

func (h *MusicHandler) getAlbum(c *fiber.Ctx) error {
	view, err := h.catalogService.ResolveAlbum(c.UserContext(), c.Params("mbid"))
	if err != nil {
		h.log.Er("album resolution failed", err, "mbid", c.Params("mbid"))
		return errorResponse(c, err)
	}

	return c.JSON(view)
}

func (h *MusicHandler) getArtist(c *fiber.Ctx) error {
	view, err := h.catalogService.ResolveArtist(c.UserContext(), c.Params("mbid"))
	if err != nil {
		h.log.Er("artist resolution failed", err, "mbid", c.Params("mbid"))
		return errorResponse(c, err)
	}

	return c.JSON(view)
}
