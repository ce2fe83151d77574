package report

import (
	"errors"

	"go-league/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportController struct {
	ReportService ReportService
}

func NewReportController(reportService ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// Types lists the report catalog.
func (c *ReportController) Types(ctx *fiber.Ctx) error {
	return ctx.JSON(c.ReportService.Catalog())
}

// Type returns one catalog entry.
func (c *ReportController) Type(ctx *fiber.Ctx) error {
	def, err := Lookup(ReportType(ctx.Params("type")))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(def)
}

// Run composes a report and returns the rendered panel view.
func (c *ReportController) Run(ctx *fiber.Ctx) error {
	var req RunRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if status, err := Authorize(ctx, &req); err != nil {
		return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	panel, err := c.ReportService.OpenPanel(ctx.Context(), req)
	if panel == nil {
		return ctx.Status(StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return ctx.Status(StatusFor(err)).JSON(fiber.Map{
			"error":  "Error loading report",
			"report": panel.View(),
		})
	}
	return ctx.JSON(panel.View())
}

var errPlatformOnly = errors.New("report requires platform administrator")

// Authorize scopes a run request to the caller's organization and guards
// platform wide reports. It returns the HTTP status to use on failure.
func Authorize(ctx *fiber.Ctx, req *RunRequest) (int, error) {
	claims := middleware.Claims(ctx)
	if claims == nil {
		return fiber.StatusUnauthorized, errors.New("unauthorized")
	}
	req.OrgID = claims.OrgID

	def, err := Lookup(req.ReportType)
	if err != nil {
		return fiber.StatusBadRequest, err
	}
	if def.Scope == ScopePlatform && !claims.HasRole("platform_admin") {
		return fiber.StatusForbidden, errPlatformOnly
	}
	return fiber.StatusOK, nil
}

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownReportType),
		errors.Is(err, ErrUnknownColumn),
		errors.Is(err, ErrUnknownFilter),
		errors.Is(err, ErrInvalidFilter),
		errors.Is(err, ErrUnsortable),
		errors.Is(err, ErrMissingScope):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrSeasonNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrRequiredSource):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
