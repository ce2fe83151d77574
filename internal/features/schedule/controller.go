package schedule

import (
	"context"
	"errors"
	"time"

	"go-league/internal/features/export"
	"go-league/internal/features/report"
	"go-league/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ScheduleController struct {
	Service ScheduleService
}

func NewScheduleController(service ScheduleService) *ScheduleController {
	return &ScheduleController{Service: service}
}

// ListJobs shows platform administrators every job and everyone else the
// jobs of their own organization.
func (c *ScheduleController) ListJobs(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)
	if claims == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	if claims.HasRole("platform_admin") {
		return ctx.JSON(c.Service.ListJobs())
	}
	return ctx.JSON(c.Service.ListOrgJobs(claims.OrgID))
}

// ExecuteJob runs a scheduled export immediately.
func (c *ScheduleController) ExecuteJob(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)
	if claims == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	ctxt, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var err error
	if claims.HasRole("platform_admin") {
		err = c.Service.ExecuteJob(ctxt, ctx.Params("name"))
	} else {
		err = c.Service.ExecuteOrgJob(ctxt, claims.OrgID, ctx.Params("name"))
	}
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Scheduled export executed"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrJobUnknown):
		return fiber.StatusNotFound
	case errors.Is(err, export.ErrMailUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return report.StatusFor(err)
	}
}
