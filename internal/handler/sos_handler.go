package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/pavelkonansro/AIc/internal/model"
	"github.com/pavelkonansro/AIc/internal/service"
)

type SosHandler struct {
	sos *service.SosService
}

func NewSosHandler(sos *service.SosService) *SosHandler {
	return &SosHandler{sos: sos}
}

// GetResources returns emergency contacts for a country.
// GET /api/v1/sos/resources?country=CZ&locale=cs-CZ
func (h *SosHandler) GetResources(c *fiber.Ctx) error {
	country := c.Query("country")
	if country == "" {
		return c.Status(400).JSON(fiber.Map{"error": "country is required"})
	}

	contacts, err := h.sos.Contacts(c.Context(), country, c.Query("locale"))
	if err != nil {
		log.Printf("[SOS] GetResources error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to get contacts"})
	}
	if contacts == nil {
		contacts = []model.SosContact{}
	}
	return c.JSON(contacts)
}

// CrisisCheck classifies free text for crisis signals.
// GET /api/v1/sos/crisis-check?text=...
func (h *SosHandler) CrisisCheck(c *fiber.Ctx) error {
	text := c.Query("text")
	if text == "" {
		return c.Status(400).JSON(fiber.Map{"error": "text is required"})
	}
	return c.JSON(h.sos.CrisisCheck(c.Context(), text))
}
