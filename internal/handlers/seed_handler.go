package handlers

import (
	"log"

	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SeedHandler exposes the one-shot database seeding routine.
type SeedHandler struct {
	seedService *services.SeedService
}

// NewSeedHandler creates a new SeedHandler.
func NewSeedHandler(seedService *services.SeedService) *SeedHandler {
	return &SeedHandler{
		seedService: seedService,
	}
}

// RegisterRoutes registers the seed route with the Fiber app.
func (h *SeedHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/seed", h.HandleSeed)
}

// HandleSeed wipes the catalog and repopulates it with the demo data set.
func (h *SeedHandler) HandleSeed(c *fiber.Ctx) error {
	if err := h.seedService.Run(); err != nil {
		log.Printf("Seed failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Seed failed",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Seed executed",
	})
}
