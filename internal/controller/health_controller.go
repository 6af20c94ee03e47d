package controller

import (
	"github.com/gofiber/fiber/v2"

	"notesquest-be/internal/pkg/serverutils"
	"notesquest-be/internal/service"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	generationService service.IGenerationService
}

func NewHealthController(generationService service.IGenerationService) IHealthController {
	return &healthController{
		generationService: generationService,
	}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

// Health reports service liveness plus the reachability of each
// configured provider.
func (c *healthController) Health(ctx *fiber.Ctx) error {
	providers := c.generationService.ProviderHealth(ctx.Context())

	status := "ok"
	for _, state := range providers {
		if state != "ok" {
			status = "degraded"
			break
		}
	}

	return ctx.JSON(serverutils.SuccessResponse("Health check", fiber.Map{
		"status":    status,
		"providers": providers,
	}))
}
