package api

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"crisiswatch/internal/bulk"
	"crisiswatch/internal/db"
	"crisiswatch/internal/models"
	"crisiswatch/internal/validation"
)

// BulkHandler handles bulk keyword operations: set and CSV imports,
// exports, and mass admin actions.
type BulkHandler struct {
	db       *db.DB
	importer *bulk.Importer
	exporter *bulk.Exporter
	sets     *bulk.SetLibrary
}

// NewBulkHandler creates a new bulk handler.
func NewBulkHandler(database *db.DB, importer *bulk.Importer, exporter *bulk.Exporter, sets *bulk.SetLibrary) *BulkHandler {
	return &BulkHandler{db: database, importer: importer, exporter: exporter, sets: sets}
}

// ListSets returns the names of the loaded predefined keyword sets.
func (h *BulkHandler) ListSets(c fiber.Ctx) error {
	return jsonSuccess(c, h.sets.Names())
}

type importSetBody struct {
	SetName           string     `json:"set_name"`
	CategoryID        *uuid.UUID `json:"category_id"`
	DefaultSeverity   string     `json:"default_severity"`
	OverwriteExisting bool       `json:"overwrite_existing"`
}

// ImportSet imports a predefined keyword set. The batch always completes;
// per-item failures are reported in the result, not as an HTTP error.
func (h *BulkHandler) ImportSet(c fiber.Ctx) error {
	var body importSetBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.SetName == "" {
		return jsonError(c, fiber.StatusBadRequest, "set_name is required")
	}
	if body.DefaultSeverity == "" {
		body.DefaultSeverity = models.SeverityMedium
	}
	if ok, msg := validation.ValidateSeverity(body.DefaultSeverity); !ok {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	if ok, resp := h.resolveCategory(c, body.CategoryID); !ok {
		return resp
	}

	result, err := h.importer.ImportSet(c.Context(), body.SetName, body.CategoryID, body.DefaultSeverity, body.OverwriteExisting, actorFrom(c))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return jsonSuccess(c, result)
}

// ImportCSV imports keywords from a CSV request body of `text[,severity]`
// rows. Query parameters carry the import options.
func (h *BulkHandler) ImportCSV(c fiber.Ctx) error {
	defaultSeverity := c.Query("default_severity", models.SeverityMedium)
	if ok, msg := validation.ValidateSeverity(defaultSeverity); !ok {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	var categoryID *uuid.UUID
	if raw := c.Query("category_id", ""); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid category_id")
		}
		categoryID = &id
	}
	if ok, resp := h.resolveCategory(c, categoryID); !ok {
		return resp
	}

	overwrite, _ := strconv.ParseBool(c.Query("overwrite_existing", "false"))

	if len(c.Body()) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "request body must contain CSV data")
	}

	result, err := h.importer.ImportCSV(c.Context(), bytes.NewReader(c.Body()), categoryID, defaultSeverity, overwrite, actorFrom(c))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return jsonSuccess(c, result)
}

// Export serializes keywords as JSON or CSV, optionally with trigger
// statistics.
func (h *BulkHandler) Export(c fiber.Ctx) error {
	filter := db.KeywordFilter{Severity: c.Query("severity", "")}
	if filter.Severity != "" {
		if ok, msg := validation.ValidateSeverity(filter.Severity); !ok {
			return jsonError(c, fiber.StatusBadRequest, msg)
		}
	}
	if raw := c.Query("category_id", ""); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid category_id")
		}
		filter.CategoryID = &id
	}
	if raw := c.Query("active", ""); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid active filter")
		}
		filter.Active = &active
	}

	includeStats, _ := strconv.ParseBool(c.Query("stats", "false"))

	rows, err := h.exporter.Export(c.Context(), filter, includeStats)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to export keywords")
	}

	switch c.Query("format", "json") {
	case "json":
		return jsonSuccess(c, rows)
	case "csv":
		var buf bytes.Buffer
		if err := bulk.WriteCSV(&buf, rows, includeStats); err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "failed to serialize CSV")
		}
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="keywords.csv"`)
		return c.Send(buf.Bytes())
	default:
		return jsonError(c, fiber.StatusBadRequest, "format must be json or csv")
	}
}

type bulkActionBody struct {
	Action        string      `json:"action"`
	IDs           []uuid.UUID `json:"ids"`
	SeverityLevel string      `json:"severity_level"`
}

// Action applies one admin action to a set of keywords: activate,
// deactivate, delete, set-severity, or reset-stats.
func (h *BulkHandler) Action(c fiber.Ctx) error {
	var body bulkActionBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(body.IDs) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "ids is required")
	}

	actor := actorFrom(c)
	var affected int64
	var err error

	switch body.Action {
	case "activate":
		affected, err = h.db.SetKeywordsActive(c.Context(), body.IDs, true, actor)
	case "deactivate":
		affected, err = h.db.SetKeywordsActive(c.Context(), body.IDs, false, actor)
	case "delete":
		affected, err = h.db.DeleteKeywords(c.Context(), body.IDs)
	case "set-severity":
		if ok, msg := validation.ValidateSeverity(body.SeverityLevel); !ok {
			return jsonError(c, fiber.StatusBadRequest, msg)
		}
		affected, err = h.db.SetKeywordsSeverity(c.Context(), body.IDs, body.SeverityLevel, actor)
	case "reset-stats":
		affected, err = h.db.ResetKeywordStats(c.Context(), body.IDs, actor)
	default:
		return jsonError(c, fiber.StatusBadRequest, "action must be one of: activate, deactivate, delete, set-severity, reset-stats")
	}

	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "bulk action failed")
	}
	return jsonSuccess(c, models.BulkActionResult{Affected: affected})
}

// resolveCategory validates an optional category reference. When the bool
// is false a response has already been written and resp carries its result.
func (h *BulkHandler) resolveCategory(c fiber.Ctx, categoryID *uuid.UUID) (ok bool, resp error) {
	if categoryID == nil {
		return true, nil
	}
	if _, err := h.db.GetCategoryByID(c.Context(), *categoryID); err != nil {
		return false, jsonError(c, fiber.StatusBadRequest, "unknown ticket category")
	}
	return true, nil
}
