package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/flowprobe/flowprobe/pkg/convert"
	"github.com/flowprobe/flowprobe/pkg/persistence"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleStorageError maps persistence errors onto problem responses.
func handleStorageError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, persistence.ErrWorkflowNotFound):
		return notFound(c, "workflow not found")
	case errors.Is(err, persistence.ErrRunReportNotFound):
		return notFound(c, "run report not found")
	default:
		return internalError(c, err)
	}
}

// isConversionError reports whether err came from process-structure
// validation rather than from infrastructure.
func isConversionError(err error) bool {
	return errors.Is(err, convert.ErrUnsupportedSchemaVersion) ||
		errors.Is(err, convert.ErrNoNodes) ||
		errors.Is(err, convert.ErrInvalidNode) ||
		errors.Is(err, convert.ErrDanglingConnection)
}
