// Package web provides the REST API for converting process structures,
// discovering scenario paths and browsing workflows and run reports.
package web

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/flowprobe/flowprobe/pkg/convert"
	"github.com/flowprobe/flowprobe/pkg/discovery"
	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/persistence"
)

type APIHandlers struct {
	persistence persistence.Persistence
	reportCache persistence.ReportCache
	converter   *convert.Converter
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewAPIHandlers wires the API handler set. reportCache may be nil.
func NewAPIHandlers(
	store persistence.Persistence,
	reportCache persistence.ReportCache,
	converter *convert.Converter,
	validate *validator.Validate,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		persistence: store,
		reportCache: reportCache,
		converter:   converter,
		validator:   validate,
		logger:      logger.With("module", "web"),
	}
}

// ConvertProcessStructure turns a process structure into a workflow.
// ?save=true persists the result.
func (h *APIHandlers) ConvertProcessStructure(c fiber.Ctx) error {
	var req ConvertRequest

	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, "Invalid request: "+err.Error())
	}

	workflow, err := h.converter.Convert(req.ProcessStructure, convert.Options{
		ProcessMapID:        req.ProcessMapID,
		OrgID:               req.OrgID,
		TestConfigOverrides: req.TestConfigOverrides,
	})
	if err != nil {
		if isConversionError(err) {
			return badRequest(c, err.Error())
		}

		return internalError(c, err)
	}

	if save, _ := strconv.ParseBool(c.Query("save")); save {
		if err := h.persistence.SaveWorkflow(c.Context(), workflow); err != nil {
			return handleStorageError(c, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

// DiscoverPaths enumerates the scenario paths of a process structure.
func (h *APIHandlers) DiscoverPaths(c fiber.Ctx) error {
	var req DiscoverRequest

	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, "Invalid request: "+err.Error())
	}

	result, err := discovery.DiscoverPaths(req.ProcessStructure, discovery.Options{
		MaxPaths:            req.MaxPaths,
		IncludePartialPaths: req.IncludePartialPaths,
	})
	if err != nil {
		if errors.Is(err, discovery.ErrEmptyStructure) {
			return badRequest(c, err.Error())
		}

		return internalError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.persistence.Workflows(c.Context())
	if err != nil {
		return handleStorageError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows": workflows,
		"count":     len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return badRequest(c, "Invalid workflow id")
	}

	workflow, err := h.persistence.WorkflowByID(c.Context(), id)
	if err != nil {
		return handleStorageError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var workflow models.Workflow

	if err := c.Bind().JSON(&workflow); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
	}

	if err := h.validator.Struct(&workflow); err != nil {
		return badRequest(c, "Invalid workflow: "+err.Error())
	}

	if err := h.persistence.SaveWorkflow(c.Context(), &workflow); err != nil {
		return handleStorageError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return badRequest(c, "Invalid workflow id")
	}

	if err := h.persistence.DeleteWorkflow(c.Context(), id); err != nil {
		return handleStorageError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HealthCheck reports storage health.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	if err := h.persistence.HealthCheck(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{"status": "healthy"})
}

// GetRuns lists run reports, optionally filtered by ?workflow_id=.
func (h *APIHandlers) GetRuns(c fiber.Ctx) error {
	reports, err := h.persistence.RunReports(c.Context(), c.Query("workflow_id"))
	if err != nil {
		return handleStorageError(c, err)
	}

	return c.JSON(fiber.Map{
		"runs":  reports,
		"count": len(reports),
	})
}

// GetRun returns one run report, preferring the hot cache when present.
func (h *APIHandlers) GetRun(c fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return badRequest(c, "Invalid run id")
	}

	if h.reportCache != nil {
		report, err := h.reportCache.Get(c.Context(), id)
		if err == nil {
			return c.JSON(report)
		}

		if !errors.Is(err, persistence.ErrRunReportNotFound) {
			h.logger.WarnContext(c.Context(), "Report cache lookup failed", "run_id", id, "error", err)
		}
	}

	report, err := h.persistence.RunReportByID(c.Context(), id)
	if err != nil {
		return handleStorageError(c, err)
	}

	return c.JSON(report)
}
