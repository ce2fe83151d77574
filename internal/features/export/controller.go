package export

import (
	"errors"
	"fmt"

	"go-league/internal/features/report"
	"go-league/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ExportController struct {
	ExportService ExportService
}

func NewExportController(exportService ExportService) *ExportController {
	return &ExportController{ExportService: exportService}
}

func parseRequest(ctx *fiber.Ctx) (*ExportRequest, report.Identity, int, error) {
	var req ExportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return nil, nil, fiber.StatusBadRequest, errors.New("invalid request body")
	}
	if req.Format == "" {
		req.Format = ctx.Query("format")
	}
	if status, err := report.Authorize(ctx, &req.RunRequest); err != nil {
		return nil, nil, status, err
	}
	claims := middleware.Claims(ctx)
	return &req, report.StaticIdentity{Org: claims.OrgName, User: claims.DisplayName()}, fiber.StatusOK, nil
}

// Export renders the report and returns it as a download.
func (c *ExportController) Export(ctx *fiber.Ctx) error {
	req, id, status, err := parseRequest(ctx)
	if err != nil {
		return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	doc, err := c.ExportService.Export(ctx.Context(), *req, id)
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Set("Content-Type", doc.MIMEType)
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", doc.Filename))
	return ctx.Send(doc.Body)
}

// Email returns the email handoff, sending it when recipients are given.
func (c *ExportController) Email(ctx *fiber.Ctx) error {
	req, id, status, err := parseRequest(ctx)
	if err != nil {
		return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := c.ExportService.Email(ctx.Context(), *req, id)
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(result)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownFormat):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrMailUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return report.StatusFor(err)
	}
}
