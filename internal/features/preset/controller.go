package preset

import (
	"errors"

	"go-league/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PresetController struct {
	PresetService PresetService
}

func NewPresetController(presetService PresetService) *PresetController {
	return &PresetController{PresetService: presetService}
}

func (c *PresetController) Create(ctx *fiber.Ctx) error {
	var req SaveRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	p, err := c.PresetService.Save(ctx.Context(), orgID(ctx), req.Name, req.Snapshot)
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(p)
}

func (c *PresetController) List(ctx *fiber.Ctx) error {
	presets, err := c.PresetService.List(ctx.Context(), orgID(ctx))
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(presets)
}

func (c *PresetController) Get(ctx *fiber.Ctx) error {
	p, err := c.PresetService.Load(ctx.Context(), orgID(ctx), ctx.Params("id"))
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(p)
}

func (c *PresetController) Delete(ctx *fiber.Ctx) error {
	if err := c.PresetService.Delete(ctx.Context(), orgID(ctx), ctx.Params("id")); err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func orgID(ctx *fiber.Ctx) string {
	if claims := middleware.Claims(ctx); claims != nil {
		return claims.OrgID
	}
	return ""
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidPreset):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
